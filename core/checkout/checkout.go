// Package checkout converts a session's cart into exactly one persisted
// order, or fails with the cart untouched. Per attempt the lifecycle is:
//
//	Idle -> Submitting -> Idle (success: cart cleared, drawer closed)
//	Idle -> Submitting -> Idle (failure: cart unchanged)
//	Idle -> Idle            (empty cart: immediate failure, no write)
//
// There are no retries and no partial states.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aurastore/storefront/core/cart"
	"github.com/aurastore/storefront/core/order"
	"github.com/aurastore/storefront/validate"
)

var (
	// ErrEmptyCart rejects a checkout before any external call is made.
	ErrEmptyCart = errors.New("no items to checkout")

	// ErrInFlight rejects a second submission while one is already
	// running for the same cart.
	ErrInFlight = errors.New("a checkout is already in progress")
)

// Request carries the customer fields submitted once per attempt.
type Request struct {
	CustomerName  string `json:"customerName" validate:"required"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
}

// Rule is a validation predicate run against the request and the cart
// snapshot before any external call. Rules are pluggable so callers can
// tighten or relax checks without touching the orchestrator.
type Rule func(req Request, snap cart.Cart) error

// RuleError marks a failure produced by a Rule so transports can map it
// to a validation response rather than a server fault.
type RuleError struct {
	Err error
}

func (e *RuleError) Error() string { return e.Err.Error() }

func (e *RuleError) Unwrap() error { return e.Err }

// RequireCustomer is the default rule: name present, email syntactically
// plausible.
func RequireCustomer(req Request, _ cart.Cart) error {
	return validate.Check(req)
}

// OrderWriter is the order-persistence collaborator. One write per
// successful checkout; the orchestrator never reads order state back.
type OrderWriter interface {
	Create(ctx context.Context, no order.NewOrder) (order.Order, error)
}

// Identity resolves the optionally-authenticated user. A false return is
// a guest checkout, never an error.
type Identity func(ctx context.Context) (userID string, ok bool)

// Orchestrator coordinates cart, identity and order persistence. The
// in-flight guard is enforced here with a real check-and-set per cart,
// not left to UI cooperation.
type Orchestrator struct {
	carts    *cart.Store
	orders   OrderWriter
	identity Identity
	rules    []Rule

	mu       sync.Mutex
	inflight map[string]bool
}

func New(carts *cart.Store, orders OrderWriter, identity Identity, rules ...Rule) *Orchestrator {
	if len(rules) == 0 {
		rules = []Rule{RequireCustomer}
	}
	return &Orchestrator{
		carts:    carts,
		orders:   orders,
		identity: identity,
		rules:    rules,
		inflight: make(map[string]bool),
	}
}

// InFlight reports whether a checkout is currently running for the cart.
func (o *Orchestrator) InFlight(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inflight[key]
}

func (o *Orchestrator) begin(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight[key] {
		return false
	}
	o.inflight[key] = true
	return true
}

func (o *Orchestrator) end(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, key)
}

// Checkout runs one attempt for the cart stored under key. On success the
// cart is cleared and the drawer flag closed; on any failure the cart is
// left exactly as it was. The item snapshot is taken before the write, so
// the user shopping on while the write is in flight cannot corrupt the
// submitted order.
func (o *Orchestrator) Checkout(ctx context.Context, key string, req Request) (order.Order, error) {
	if !o.begin(key) {
		return order.Order{}, ErrInFlight
	}
	defer o.end(key)

	snap := o.carts.Get(key)
	if len(snap.Lines) == 0 {
		return order.Order{}, ErrEmptyCart
	}

	for _, rule := range o.rules {
		if err := rule(req, snap); err != nil {
			return order.Order{}, &RuleError{Err: err}
		}
	}

	// Identity lookup failure degrades to guest checkout.
	var userID *string
	if o.identity != nil {
		if id, ok := o.identity(ctx); ok {
			userID = &id
		}
	}

	items := make(order.Items, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		items = append(items, order.Item{
			ID:       l.ProductID,
			Name:     l.Name,
			Price:    l.Price,
			Quantity: l.Quantity,
			Size:     l.Size,
			Color:    l.Color,
			Category: l.Category,
		})
	}

	no := order.NewOrder{
		UserID:        userID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Total:         snap.TotalPrice(),
		Items:         items,
	}

	ord, err := o.orders.Create(ctx, no)
	if err != nil {
		return order.Order{}, fmt.Errorf("writing order: %w", err)
	}

	o.carts.Clear(key)
	o.carts.SetOpen(key, false)

	return ord, nil
}
