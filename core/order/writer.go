package order

import (
	"context"
	"fmt"
	"time"

	"github.com/aurastore/storefront/random"
	"github.com/aurastore/storefront/validate"
	"github.com/jmoiron/sqlx"
)

// Writer is the persistence collaborator checkout writes through. Exactly
// one insert per checkout; the writer never reads order state back.
type Writer struct {
	DB *sqlx.DB
}

func (wr Writer) Create(ctx context.Context, no NewOrder) (Order, error) {
	now := time.Now().UTC()
	ord := Order{
		ID:            validate.GenerateID(),
		Reference:     "ORD-" + random.String(8),
		UserID:        no.UserID,
		CustomerName:  no.CustomerName,
		CustomerEmail: no.CustomerEmail,
		Total:         no.Total,
		Status:        Pending,
		Items:         no.Items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := Create(ctx, wr.DB, ord); err != nil {
		return Order{}, fmt.Errorf("creating order[%s]: %w", ord.Reference, err)
	}

	return ord, nil
}
