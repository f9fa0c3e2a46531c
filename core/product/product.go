package product

import (
	"database/sql"
	"math"
	"math/rand"
	"time"
)

// Product is the catalog row as admins manage it. Prices are stored in
// cents.
type Product struct {
	ID               string         `json:"id" db:"product_id"`
	Name             string         `json:"name" db:"name"`
	Description      sql.NullString `json:"description" db:"description"`
	Price            int            `json:"price" db:"price"`
	PromotionalPrice sql.NullInt64  `json:"promotionalPrice" db:"promotional_price"`
	Category         string         `json:"category" db:"category"`
	Stock            int            `json:"stock" db:"stock"`
	ImageURL         sql.NullString `json:"imageUrl" db:"image_url"`
	Active           bool           `json:"active" db:"active"`
	CreatedAt        time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time      `json:"updatedAt" db:"updated_at"`
}

// StoreProduct is the storefront view of a product: the effective price is
// the promotional price when one is set, and presentation fields (sizes,
// colors, installments) are derived the way the store always has.
type StoreProduct struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Price         int      `json:"price"`
	OriginalPrice int      `json:"originalPrice"`
	Discount      int      `json:"discount"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
	Image         string   `json:"image"`
	Sizes         []string `json:"sizes"`
	Colors        []string `json:"colors"`
	Brand         string   `json:"brand"`
	Description   string   `json:"description"`
	Installments  int      `json:"installments"`
}

const (
	brand            = "Aura Store"
	installments     = 12
	fallbackImage    = "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=400&h=500&fit=crop"
	fallbackDescribe = "Produto de alta qualidade"
)

var colors = []string{"Preto", "Branco", "Azul"}

// StoreView converts a catalog row into its storefront shape.
func StoreView(p Product) StoreProduct {
	originalPrice := p.Price
	price := p.Price
	discount := 0
	if p.PromotionalPrice.Valid && p.PromotionalPrice.Int64 > 0 {
		price = int(p.PromotionalPrice.Int64)
		discount = int(math.Round(float64(originalPrice-price) / float64(originalPrice) * 100))
	}

	image := fallbackImage
	if p.ImageURL.Valid && p.ImageURL.String != "" {
		image = p.ImageURL.String
	}

	description := fallbackDescribe
	if p.Description.Valid && p.Description.String != "" {
		description = p.Description.String
	}

	return StoreProduct{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		Price:         price,
		OriginalPrice: originalPrice,
		Discount:      discount,
		Rating:        4.5 + rand.Float64()*0.5,
		Reviews:       rand.Intn(200) + 50,
		Image:         image,
		Sizes:         SizesForCategory(p.Category),
		Colors:        colors,
		Brand:         brand,
		Description:   description,
		Installments:  installments,
	}
}

func StoreViews(ps []Product) []StoreProduct {
	views := make([]StoreProduct, 0, len(ps))
	for _, p := range ps {
		views = append(views, StoreView(p))
	}
	return views
}

func SizesForCategory(category string) []string {
	switch category {
	case "Acessórios":
		return []string{"Único"}
	case "Calçados":
		return []string{"38", "39", "40", "41", "42", "43"}
	default:
		return []string{"P", "M", "G", "GG"}
	}
}

var categorySlugs = map[string]string{
	"masculino":  "Masculino",
	"feminino":   "Feminino",
	"acessorios": "Acessórios",
	"calcados":   "Calçados",
	"infantil":   "Infantil",
}

// CategoryFromSlug maps a storefront URL slug to the catalog category.
// Unknown slugs return "" which callers treat as "no filter".
func CategoryFromSlug(slug string) string {
	return categorySlugs[slug]
}
