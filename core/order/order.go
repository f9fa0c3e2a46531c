package order

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Status string

const (
	Pending   Status = "pending"
	Paid      Status = "paid"
	Shipped   Status = "shipped"
	Delivered Status = "delivered"
	Cancelled Status = "cancelled"
)

// Item is one cart line frozen into the order at checkout time. It keeps
// no reference back to the live cart: later cart mutations cannot alter a
// submitted order.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size"`
	Color    string `json:"color"`
	Category string `json:"category"`
}

// Items is stored as a single JSONB column; the snapshot is read back as
// a whole or not at all.
type Items []Item

func (i Items) Value() (driver.Value, error) {
	return json.Marshal(i)
}

func (i *Items) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported source type %T for order items", src)
	}
	return json.Unmarshal(b, i)
}

type Order struct {
	ID            string    `json:"id" db:"order_id"`
	Reference     string    `json:"reference" db:"reference"`
	UserID        *string   `json:"userId" db:"user_id"`
	CustomerName  string    `json:"customerName" db:"customer_name"`
	CustomerEmail string    `json:"customerEmail" db:"customer_email"`
	Total         int       `json:"total" db:"total"`
	Status        Status    `json:"status" db:"status"`
	Items         Items     `json:"items" db:"items"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// NewOrder is what checkout submits: the customer fields plus the item
// snapshot. Everything else (id, reference, status, timestamps) is
// generated at write time.
type NewOrder struct {
	UserID        *string
	CustomerName  string
	CustomerEmail string
	Total         int
	Items         Items
}

type StatusUp struct {
	ID        string    `db:"order_id"`
	Status    Status    `db:"status"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Notifier propagates order lifecycle changes to interested consumers
// (the message broker in production, a recorder in tests). Implementations
// are best-effort: a notification failure never fails the operation that
// triggered it.
type Notifier interface {
	OrderCreated(ctx context.Context, ord Order) error
	OrderUpdated(ctx context.Context, ord Order) error
}
