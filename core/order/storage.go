package order

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, ord Order) error {
	const q = `
	INSERT INTO orders
		(order_id, reference, user_id, customer_name, customer_email, total,
		 status, items, created_at, updated_at)
	VALUES
		(:order_id, :reference, :user_id, :customer_name, :customer_email, :total,
		 :status, :items, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, ord); err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, orderID string) (Order, error) {
	const q = `SELECT * FROM orders WHERE order_id = $1`

	var ord Order
	if err := sqlx.GetContext(ctx, db, &ord, q, orderID); err != nil {
		return Order{}, fmt.Errorf("fetching order[%s]: %w", orderID, err)
	}

	return ord, nil
}

func List(ctx context.Context, db sqlx.ExtContext, status Status) ([]Order, error) {
	const all = `SELECT * FROM orders ORDER BY created_at DESC`
	const filtered = `SELECT * FROM orders WHERE status = $1 ORDER BY created_at DESC`

	ords := []Order{}
	if status == "" {
		if err := sqlx.SelectContext(ctx, db, &ords, all); err != nil {
			return nil, fmt.Errorf("listing orders: %w", err)
		}
		return ords, nil
	}

	if err := sqlx.SelectContext(ctx, db, &ords, filtered, status); err != nil {
		return nil, fmt.Errorf("listing orders by status[%s]: %w", status, err)
	}
	return ords, nil
}

func UpdateStatus(ctx context.Context, db sqlx.ExtContext, up StatusUp) error {
	const q = `
	UPDATE orders SET
		status     = :status,
		updated_at = :updated_at
	WHERE order_id = :order_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, up); err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	return nil
}
