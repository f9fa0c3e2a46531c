package settings

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func List(ctx context.Context, db sqlx.ExtContext) ([]Setting, error) {
	const q = `SELECT * FROM settings ORDER BY key ASC`

	ss := []Setting{}
	if err := sqlx.SelectContext(ctx, db, &ss, q); err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}

	return ss, nil
}

func Upsert(ctx context.Context, db sqlx.ExtContext, s Setting) error {
	const q = `
	INSERT INTO settings (key, value, updated_at)
	VALUES (:key, :value, :updated_at)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := sqlx.NamedExecContext(ctx, db, q, s); err != nil {
		return fmt.Errorf("upserting setting[%s]: %w", s.Key, err)
	}

	return nil
}

func ListSeals(ctx context.Context, db sqlx.ExtContext) ([]Seal, error) {
	const q = `SELECT * FROM seals ORDER BY display_order ASC`

	seals := []Seal{}
	if err := sqlx.SelectContext(ctx, db, &seals, q); err != nil {
		return nil, fmt.Errorf("listing seals: %w", err)
	}

	return seals, nil
}

func CreateSeal(ctx context.Context, db sqlx.ExtContext, s Seal) error {
	const q = `
	INSERT INTO seals (seal_id, label, image_url, display_order)
	VALUES (:seal_id, :label, :image_url, :display_order)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, s); err != nil {
		return fmt.Errorf("inserting seal: %w", err)
	}

	return nil
}

func UpdateSeal(ctx context.Context, db sqlx.ExtContext, s Seal) error {
	const q = `
	UPDATE seals SET
		label         = :label,
		image_url     = :image_url,
		display_order = :display_order
	WHERE seal_id = :seal_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, s); err != nil {
		return fmt.Errorf("updating seal[%s]: %w", s.ID, err)
	}

	return nil
}

func DeleteSeal(ctx context.Context, db sqlx.ExtContext, sealID string) error {
	const q = `DELETE FROM seals WHERE seal_id = $1`

	if _, err := db.ExecContext(ctx, q, sealID); err != nil {
		return fmt.Errorf("deleting seal[%s]: %w", sealID, err)
	}

	return nil
}
