package product

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, p Product) error {
	const q = `
	INSERT INTO products
		(product_id, name, description, price, promotional_price, category,
		 stock, image_url, active, created_at, updated_at)
	VALUES
		(:product_id, :name, :description, :price, :promotional_price, :category,
		 :stock, :image_url, :active, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, p); err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}

	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, p Product) error {
	const q = `
	UPDATE products SET
		name              = :name,
		description       = :description,
		price             = :price,
		promotional_price = :promotional_price,
		category          = :category,
		stock             = :stock,
		image_url         = :image_url,
		active            = :active,
		updated_at        = :updated_at
	WHERE product_id = :product_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, p); err != nil {
		return fmt.Errorf("updating product: %w", err)
	}

	return nil
}

// Deactivate is the soft delete used by the admin surface: the row stays
// for order history, the storefront stops listing it.
func Deactivate(ctx context.Context, db sqlx.ExtContext, productID string) error {
	const q = `UPDATE products SET active = FALSE, updated_at = NOW() WHERE product_id = $1`

	if _, err := db.ExecContext(ctx, q, productID); err != nil {
		return fmt.Errorf("deactivating product: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, productID string) (Product, error) {
	const q = `SELECT * FROM products WHERE product_id = $1`

	var p Product
	if err := sqlx.GetContext(ctx, db, &p, q, productID); err != nil {
		return Product{}, fmt.Errorf("fetching product[%s]: %w", productID, err)
	}

	return p, nil
}

func List(ctx context.Context, db sqlx.ExtContext) ([]Product, error) {
	const q = `SELECT * FROM products WHERE active ORDER BY created_at DESC`

	ps := []Product{}
	if err := sqlx.SelectContext(ctx, db, &ps, q); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	return ps, nil
}

func ListByCategory(ctx context.Context, db sqlx.ExtContext, category string) ([]Product, error) {
	const q = `SELECT * FROM products WHERE active AND category = $1 ORDER BY created_at DESC`

	ps := []Product{}
	if err := sqlx.SelectContext(ctx, db, &ps, q, category); err != nil {
		return nil, fmt.Errorf("listing products by category[%s]: %w", category, err)
	}

	return ps, nil
}

func ListOffers(ctx context.Context, db sqlx.ExtContext) ([]Product, error) {
	const q = `
	SELECT * FROM products
	WHERE active AND promotional_price IS NOT NULL
	ORDER BY created_at DESC`

	ps := []Product{}
	if err := sqlx.SelectContext(ctx, db, &ps, q); err != nil {
		return nil, fmt.Errorf("listing offers: %w", err)
	}

	return ps, nil
}

// ListAll feeds the admin table: inactive products included.
func ListAll(ctx context.Context, db sqlx.ExtContext) ([]Product, error) {
	const q = `SELECT * FROM products ORDER BY created_at DESC`

	ps := []Product{}
	if err := sqlx.SelectContext(ctx, db, &ps, q); err != nil {
		return nil, fmt.Errorf("listing all products: %w", err)
	}

	return ps, nil
}
