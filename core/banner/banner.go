package banner

import (
	"database/sql"
	"time"
)

// Banner is one hero-carousel slide. DisplayOrder drives the carousel
// sequence; the admin reorder endpoint rewrites it in bulk.
type Banner struct {
	ID           string         `json:"id" db:"banner_id"`
	Title        string         `json:"title" db:"title"`
	Subtitle     sql.NullString `json:"subtitle" db:"subtitle"`
	ButtonText   sql.NullString `json:"buttonText" db:"button_text"`
	ButtonLink   sql.NullString `json:"buttonLink" db:"button_link"`
	ImageURL     sql.NullString `json:"imageUrl" db:"image_url"`
	Active       bool           `json:"active" db:"active"`
	DisplayOrder int            `json:"displayOrder" db:"display_order"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" db:"updated_at"`
}
