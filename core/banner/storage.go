package banner

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, b Banner) error {
	const q = `
	INSERT INTO banners
		(banner_id, title, subtitle, button_text, button_link, image_url,
		 active, display_order, created_at, updated_at)
	VALUES
		(:banner_id, :title, :subtitle, :button_text, :button_link, :image_url,
		 :active, :display_order, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, b); err != nil {
		return fmt.Errorf("inserting banner: %w", err)
	}

	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, b Banner) error {
	const q = `
	UPDATE banners SET
		title         = :title,
		subtitle      = :subtitle,
		button_text   = :button_text,
		button_link   = :button_link,
		image_url     = :image_url,
		active        = :active,
		display_order = :display_order,
		updated_at    = :updated_at
	WHERE banner_id = :banner_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, b); err != nil {
		return fmt.Errorf("updating banner: %w", err)
	}

	return nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, bannerID string) error {
	const q = `DELETE FROM banners WHERE banner_id = $1`

	if _, err := db.ExecContext(ctx, q, bannerID); err != nil {
		return fmt.Errorf("deleting banner: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, bannerID string) (Banner, error) {
	const q = `SELECT * FROM banners WHERE banner_id = $1`

	var b Banner
	if err := sqlx.GetContext(ctx, db, &b, q, bannerID); err != nil {
		return Banner{}, fmt.Errorf("fetching banner[%s]: %w", bannerID, err)
	}

	return b, nil
}

// ListActive is the storefront query: active slides in display order.
func ListActive(ctx context.Context, db sqlx.ExtContext) ([]Banner, error) {
	const q = `SELECT * FROM banners WHERE active ORDER BY display_order ASC`

	bs := []Banner{}
	if err := sqlx.SelectContext(ctx, db, &bs, q); err != nil {
		return nil, fmt.Errorf("listing active banners: %w", err)
	}

	return bs, nil
}

func ListAll(ctx context.Context, db sqlx.ExtContext) ([]Banner, error) {
	const q = `SELECT * FROM banners ORDER BY display_order ASC`

	bs := []Banner{}
	if err := sqlx.SelectContext(ctx, db, &bs, q); err != nil {
		return nil, fmt.Errorf("listing banners: %w", err)
	}

	return bs, nil
}

// SetOrder rewrites display_order to the given position.
func SetOrder(ctx context.Context, db sqlx.ExtContext, bannerID string, position int) error {
	const q = `UPDATE banners SET display_order = $2, updated_at = NOW() WHERE banner_id = $1`

	if _, err := db.ExecContext(ctx, q, bannerID, position); err != nil {
		return fmt.Errorf("reordering banner[%s]: %w", bannerID, err)
	}

	return nil
}
