package test

import (
	"net/http"
	"testing"

	"github.com/aurastore/storefront/core/order"
	"github.com/aurastore/storefront/core/product"
	"github.com/aurastore/storefront/core/user"
)

// TestAuthFlow covers signup, session identity, role promotion and the
// user id attached to a logged-in checkout.
func TestAuthFlow(t *testing.T) {
	env := NewTestEnv(t, "auth_test")

	// Weak password is a validation error.
	env.expect(t, http.MethodPost, "/auth/signup", map[string]string{
		"fullName": "João Souza",
		"email":    "joao@example.com",
		"password": "short",
	}, http.StatusUnprocessableEntity, nil)

	var joao user.User
	env.expect(t, http.MethodPost, "/auth/signup", map[string]string{
		"fullName": "João Souza",
		"email":    "joao@example.com",
		"password": "uma-senha-decente",
	}, http.StatusCreated, &joao)

	// Signup opens a session right away.
	var prf user.ProfileWithRole
	env.expect(t, http.MethodGet, "/users/current", nil, http.StatusOK, &prf)
	if prf.FullName != "João Souza" || prf.Role != "user" {
		t.Fatalf("expected the fresh profile with role user, got %+v", prf)
	}

	// A regular user cannot reach the admin surfaces.
	env.expect(t, http.MethodGet, "/orders", nil, http.StatusUnauthorized, nil)

	// Seed a product as admin, then come back as João.
	env.Logout(t)
	env.Login(t, adminEmail, adminPass)
	var p product.Product
	env.expect(t, http.MethodPost, "/products", map[string]interface{}{
		"name":     "Mochila Urbana",
		"price":    19990,
		"category": "Acessórios",
		"stock":    2,
	}, http.StatusCreated, &p)
	env.Logout(t)

	env.Login(t, "joao@example.com", "uma-senha-decente")

	var cv cartView
	env.expect(t, http.MethodPut, "/cart/items", map[string]string{
		"productId": p.ID, "size": "U", "color": "Preto",
	}, http.StatusOK, &cv)

	// A logged-in checkout records who placed the order.
	var placed order.Order
	env.expect(t, http.MethodPost, "/checkout", map[string]string{
		"customerName": "João Souza", "customerEmail": "joao@example.com",
	}, http.StatusCreated, &placed)
	if placed.UserID == nil || *placed.UserID != joao.ID {
		t.Fatalf("expected the order to carry user %s, got %v", joao.ID, placed.UserID)
	}

	env.Logout(t)

	// Wrong password and unknown email are the same refusal.
	env.expect(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "joao@example.com", "password": "errada",
	}, http.StatusUnauthorized, nil)
	env.expect(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "ninguem@example.com", "password": "tanto-faz",
	}, http.StatusUnauthorized, nil)

	// Promote João and verify the new role takes effect on next login.
	env.Login(t, adminEmail, adminPass)
	env.expect(t, http.MethodPut, "/users/"+joao.ID+"/role", map[string]string{
		"role": "admin",
	}, http.StatusNoContent, nil)
	env.Logout(t)

	env.Login(t, "joao@example.com", "uma-senha-decente")
	env.expect(t, http.MethodGet, "/users/current", nil, http.StatusOK, &prf)
	if prf.Role != "admin" {
		t.Fatalf("expected role admin after promotion, got %q", prf.Role)
	}
	env.expect(t, http.MethodGet, "/orders", nil, http.StatusOK, nil)
}
