package cart

import (
	"sync"
	"time"
)

// Store owns every live cart, one per browsing session. Carts are held in
// memory only: they live and die with the session that owns them. All
// mutations go through the store under a single mutex, and every method
// returns a detached copy so callers can never alias live state.
type Store struct {
	expiry time.Duration

	mu    sync.Mutex
	carts map[string]*entry
}

type entry struct {
	cart       Cart
	lastAccess time.Time
}

// NewStore builds a Store whose carts are dropped after expiry of
// inactivity; pass the session lifetime so carts outlive their sessions
// by at most one sweep.
func NewStore(expiry time.Duration) *Store {
	s := &Store{
		expiry: expiry,
		carts:  make(map[string]*entry),
	}
	go s.sweep()
	return s
}

func (s *Store) Get(key string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touch(key).cart.copy()
}

// Add merges the (product, size, color) triple into the cart: an existing
// matching line has its quantity incremented, otherwise a new line with
// quantity 1 appears. Adding always opens the cart drawer flag.
func (s *Store) Add(key string, snap Snapshot, size, color string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(key)
	e.cart.add(snap, size, color)
	return e.cart.copy()
}

// RemoveLine removes the single line matching the full variant triple.
func (s *Store) RemoveLine(key, productID, size, color string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(key)
	e.cart.removeLine(productID, size, color)
	return e.cart.copy()
}

// RemoveProduct removes every variant of the product.
func (s *Store) RemoveProduct(key, productID string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(key)
	e.cart.removeProduct(productID)
	return e.cart.copy()
}

// SetQuantity sets the matching line to the exact quantity; zero or less
// removes the line.
func (s *Store) SetQuantity(key, productID, size, color string, quantity int) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(key)
	e.cart.setQuantity(productID, size, color, quantity)
	return e.cart.copy()
}

func (s *Store) Clear(key string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(key)
	e.cart.clear()
	return e.cart.copy()
}

// SetOpen flips the drawer visibility flag; a UI concern the store tracks
// so the storefront survives page reloads with the drawer state intact.
func (s *Store) SetOpen(key string, open bool) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(key)
	e.cart.Open = open
	return e.cart.copy()
}

func (s *Store) touch(key string) *entry {
	e, ok := s.carts[key]
	if !ok {
		e = &entry{}
		s.carts[key] = e
	}
	e.lastAccess = time.Now()
	return e
}

func (s *Store) sweep() {
	for {
		time.Sleep(time.Minute)

		s.mu.Lock()
		for key, e := range s.carts {
			if time.Since(e.lastAccess) > s.expiry {
				delete(s.carts, key)
			}
		}
		s.mu.Unlock()
	}
}
