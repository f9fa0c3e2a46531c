package settings

import (
	"database/sql"
	"time"
)

// Setting is one free-form key/value pair the storefront reads on every
// page (store name, contact details, footer text).
type Setting struct {
	Key       string         `json:"key" db:"key"`
	Value     sql.NullString `json:"value" db:"value"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}

// Seal is one trust seal shown in the storefront footer.
type Seal struct {
	ID           string         `json:"id" db:"seal_id"`
	Label        string         `json:"label" db:"label"`
	ImageURL     sql.NullString `json:"imageUrl" db:"image_url"`
	DisplayOrder int            `json:"displayOrder" db:"display_order"`
}
