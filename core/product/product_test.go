package product

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreViewWithoutPromotion(t *testing.T) {
	p := Product{
		ID:       "p1",
		Name:     "Camiseta",
		Price:    12000,
		Category: "Masculino",
		Active:   true,
	}

	v := StoreView(p)

	assert.Equal(t, 12000, v.Price)
	assert.Equal(t, 12000, v.OriginalPrice)
	assert.Equal(t, 0, v.Discount)
	assert.Equal(t, "Aura Store", v.Brand)
	assert.Equal(t, 12, v.Installments)
}

func TestStoreViewWithPromotion(t *testing.T) {
	p := Product{
		ID:               "p1",
		Name:             "Camiseta",
		Price:            10000,
		PromotionalPrice: sql.NullInt64{Int64: 7500, Valid: true},
		Category:         "Masculino",
	}

	v := StoreView(p)

	assert.Equal(t, 7500, v.Price, "effective price is the promotional one")
	assert.Equal(t, 10000, v.OriginalPrice)
	assert.Equal(t, 25, v.Discount)
}

func TestStoreViewDiscountRounds(t *testing.T) {
	p := Product{
		Price:            9000,
		PromotionalPrice: sql.NullInt64{Int64: 6000, Valid: true},
	}

	// 3000/9000 = 33.33...% rounds to 33.
	assert.Equal(t, 33, StoreView(p).Discount)
}

func TestStoreViewFallbacks(t *testing.T) {
	v := StoreView(Product{ID: "p1", Name: "Camiseta", Price: 100})

	assert.NotEmpty(t, v.Image, "missing image falls back to the placeholder")
	assert.Equal(t, "Produto de alta qualidade", v.Description)
}

func TestStoreViewRatingBounds(t *testing.T) {
	for i := 0; i < 50; i++ {
		v := StoreView(Product{Price: 100})
		assert.GreaterOrEqual(t, v.Rating, 4.5)
		assert.Less(t, v.Rating, 5.0)
		assert.GreaterOrEqual(t, v.Reviews, 50)
		assert.Less(t, v.Reviews, 250)
	}
}

func TestSizesForCategory(t *testing.T) {
	assert.Equal(t, []string{"Único"}, SizesForCategory("Acessórios"))
	assert.Equal(t, []string{"38", "39", "40", "41", "42", "43"}, SizesForCategory("Calçados"))
	assert.Equal(t, []string{"P", "M", "G", "GG"}, SizesForCategory("Masculino"))
	assert.Equal(t, []string{"P", "M", "G", "GG"}, SizesForCategory("Infantil"))
}

func TestCategoryFromSlug(t *testing.T) {
	cases := map[string]string{
		"masculino":  "Masculino",
		"feminino":   "Feminino",
		"acessorios": "Acessórios",
		"calcados":   "Calçados",
		"infantil":   "Infantil",
		"unknown":    "",
	}

	for slug, want := range cases {
		require.Equal(t, want, CategoryFromSlug(slug), "slug %q", slug)
	}
}
