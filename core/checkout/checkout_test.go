package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aurastore/storefront/core/cart"
	"github.com/aurastore/storefront/core/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockWriter records every order it is asked to persist and can be told
// to fail, block, or run a callback mid-write.
type mockWriter struct {
	mu      sync.Mutex
	created []order.NewOrder
	err     error
	during  func()
}

func (m *mockWriter) Create(ctx context.Context, no order.NewOrder) (order.Order, error) {
	if m.during != nil {
		m.during()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return order.Order{}, m.err
	}

	m.created = append(m.created, no)
	return order.Order{
		ID:            "ord-1",
		Reference:     "ORD-TEST0001",
		UserID:        no.UserID,
		CustomerName:  no.CustomerName,
		CustomerEmail: no.CustomerEmail,
		Total:         no.Total,
		Status:        order.Pending,
		Items:         no.Items,
	}, nil
}

func (m *mockWriter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

func guest(ctx context.Context) (string, bool) { return "", false }

func loggedIn(id string) Identity {
	return func(ctx context.Context) (string, bool) { return id, true }
}

func fill(t *testing.T, carts *cart.Store, key string) {
	t.Helper()
	carts.Add(key, cart.Snapshot{ProductID: "a", Name: "Camiseta", Price: 100, Category: "Masculino"}, "M", "Preto")
	carts.Add(key, cart.Snapshot{ProductID: "a", Name: "Camiseta", Price: 100, Category: "Masculino"}, "M", "Preto")
	carts.Add(key, cart.Snapshot{ProductID: "b", Name: "Boné", Price: 50, Category: "Acessórios"}, "Único", "Azul")
}

func TestCheckoutEmptyCart(t *testing.T) {
	carts := cart.NewStore(time.Hour)
	writer := &mockWriter{}
	o := New(carts, writer, guest)

	_, err := o.Checkout(context.Background(), "s1", Request{CustomerName: "Jane", CustomerEmail: "jane@x.com"})

	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, writer.count(), "empty cart must not reach the persistence collaborator")
}

func TestCheckoutSuccess(t *testing.T) {
	carts := cart.NewStore(time.Hour)
	writer := &mockWriter{}
	o := New(carts, writer, guest)

	const key = "s1"
	fill(t, carts, key)

	ord, err := o.Checkout(context.Background(), key, Request{CustomerName: "Jane", CustomerEmail: "jane@x.com"})
	require.NoError(t, err)

	require.Equal(t, 1, writer.count())
	submitted := writer.created[0]
	assert.Nil(t, submitted.UserID, "guest checkout records no user")
	assert.Equal(t, "Jane", submitted.CustomerName)
	assert.Equal(t, 250, submitted.Total)
	require.Len(t, submitted.Items, 2)
	assert.Equal(t, 2, submitted.Items[0].Quantity)
	assert.Equal(t, "Acessórios", submitted.Items[1].Category)

	assert.Equal(t, order.Pending, ord.Status)

	after := carts.Get(key)
	assert.Empty(t, after.Lines, "success clears the cart")
	assert.False(t, after.Open, "success closes the drawer flag")
	assert.False(t, o.InFlight(key))
}

func TestCheckoutIdentifiedUser(t *testing.T) {
	carts := cart.NewStore(time.Hour)
	writer := &mockWriter{}
	o := New(carts, writer, loggedIn("user-42"))

	const key = "s1"
	fill(t, carts, key)

	_, err := o.Checkout(context.Background(), key, Request{CustomerName: "Jane", CustomerEmail: "jane@x.com"})
	require.NoError(t, err)

	require.Equal(t, 1, writer.count())
	require.NotNil(t, writer.created[0].UserID)
	assert.Equal(t, "user-42", *writer.created[0].UserID)
}

func TestCheckoutPersistenceFailureLeavesCartUntouched(t *testing.T) {
	carts := cart.NewStore(time.Hour)
	writer := &mockWriter{err: errors.New("insert rejected")}
	o := New(carts, writer, guest)

	const key = "s1"
	fill(t, carts, key)
	before := carts.Get(key)

	_, err := o.Checkout(context.Background(), key, Request{CustomerName: "Jane", CustomerEmail: "jane@x.com"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyCart)

	after := carts.Get(key)
	assert.Equal(t, before.Lines, after.Lines, "failure must not modify the cart")
	assert.Equal(t, before.TotalPrice(), after.TotalPrice())
	assert.False(t, o.InFlight(key), "the in-flight flag must drop on failure")
}

func TestCheckoutValidationRules(t *testing.T) {
	cases := []struct {
		name string
		req  Request
	}{
		{"blank name", Request{CustomerName: "", CustomerEmail: "jane@x.com"}},
		{"blank email", Request{CustomerName: "Jane", CustomerEmail: ""}},
		{"implausible email", Request{CustomerName: "Jane", CustomerEmail: "not-an-email"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			carts := cart.NewStore(time.Hour)
			writer := &mockWriter{}
			o := New(carts, writer, guest)

			const key = "s1"
			fill(t, carts, key)

			_, err := o.Checkout(context.Background(), key, tc.req)

			var re *RuleError
			require.ErrorAs(t, err, &re)
			assert.Zero(t, writer.count())
			assert.NotEmpty(t, carts.Get(key).Lines, "validation failure must not touch the cart")
		})
	}
}

func TestCheckoutCustomRule(t *testing.T) {
	carts := cart.NewStore(time.Hour)
	writer := &mockWriter{}

	maxTotal := func(req Request, snap cart.Cart) error {
		if snap.TotalPrice() > 100 {
			return errors.New("order too large")
		}
		return nil
	}
	o := New(carts, writer, guest, RequireCustomer, maxTotal)

	const key = "s1"
	fill(t, carts, key)

	_, err := o.Checkout(context.Background(), key, Request{CustomerName: "Jane", CustomerEmail: "jane@x.com"})

	var re *RuleError
	require.ErrorAs(t, err, &re)
	assert.EqualError(t, re.Err, "order too large")
}

func TestCheckoutRejectsConcurrentSubmission(t *testing.T) {
	carts := cart.NewStore(time.Hour)

	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	writer := &mockWriter{during: func() {
		once.Do(func() { close(started) })
		<-release
	}}
	o := New(carts, writer, guest)

	const key = "s1"
	fill(t, carts, key)

	req := Request{CustomerName: "Jane", CustomerEmail: "jane@x.com"}

	done := make(chan error, 1)
	go func() {
		_, err := o.Checkout(context.Background(), key, req)
		done <- err
	}()

	<-started
	assert.True(t, o.InFlight(key))

	_, err := o.Checkout(context.Background(), key, req)
	require.ErrorIs(t, err, ErrInFlight)

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, 1, writer.count(), "only the first submission may write")
}

func TestSnapshotIsImmuneToLateCartMutations(t *testing.T) {
	carts := cart.NewStore(time.Hour)
	const key = "s1"

	writer := &mockWriter{}
	writer.during = func() {
		// The shopper keeps shopping while the write is in flight.
		carts.Add(key, cart.Snapshot{ProductID: "c", Name: "Tênis", Price: 300, Category: "Calçados"}, "42", "Branco")
	}
	o := New(carts, writer, guest)

	fill(t, carts, key)

	_, err := o.Checkout(context.Background(), key, Request{CustomerName: "Jane", CustomerEmail: "jane@x.com"})
	require.NoError(t, err)

	require.Equal(t, 1, writer.count())
	assert.Equal(t, 250, writer.created[0].Total, "the submitted order uses the pre-write snapshot")
	assert.Len(t, writer.created[0].Items, 2)
}

func TestWorkedCheckoutScenario(t *testing.T) {
	carts := cart.NewStore(time.Hour)
	writer := &mockWriter{}
	o := New(carts, writer, guest)

	const key = "s1"
	a := cart.Snapshot{ProductID: "a", Name: "Camiseta", Price: 100, Category: "Masculino"}
	b := cart.Snapshot{ProductID: "b", Name: "Boné", Price: 50, Category: "Acessórios"}

	carts.Add(key, a, "M", "Preto")
	carts.Add(key, a, "M", "Preto")
	carts.Add(key, b, "Único", "Azul")
	carts.SetQuantity(key, "a", "M", "Preto", 5)
	assert.Equal(t, 550, carts.Get(key).TotalPrice())

	carts.RemoveProduct(key, "a")
	c := carts.Get(key)
	assert.Equal(t, 1, c.TotalItems())
	assert.Equal(t, 50, c.TotalPrice())

	_, err := o.Checkout(context.Background(), key, Request{CustomerName: "Jane", CustomerEmail: "jane@x.com"})
	require.NoError(t, err)

	require.Equal(t, 1, writer.count())
	assert.Len(t, writer.created[0].Items, 1)
	assert.Equal(t, 50, writer.created[0].Total)
	assert.Empty(t, carts.Get(key).Lines)
}
