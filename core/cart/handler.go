package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/aurastore/storefront/api/web"
	"github.com/aurastore/storefront/api/weberr"
	"github.com/aurastore/storefront/core/product"
	"github.com/aurastore/storefront/validate"
	"github.com/jmoiron/sqlx"
)

const sessionCartKey = "cart_id"

// SessionKey returns the id the session's cart is stored under, minting
// one on first use. The id rides in the scs session cookie, so the cart
// follows the browser for the session's lifetime and no longer.
func SessionKey(ctx context.Context, session *scs.SessionManager) string {
	id := session.GetString(ctx, sessionCartKey)
	if id == "" {
		id = validate.GenerateID()
		session.Put(ctx, sessionCartKey, id)
	}
	return id
}

// view is the wire shape of a cart: lines plus the derived totals,
// recomputed on every response.
type view struct {
	Items      []Line `json:"items"`
	TotalItems int    `json:"totalItems"`
	TotalPrice int    `json:"totalPrice"`
	Open       bool   `json:"open"`
}

func viewOf(c Cart) view {
	items := c.Lines
	if items == nil {
		items = []Line{}
	}
	return view{
		Items:      items,
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
		Open:       c.Open,
	}
}

type ItemNew struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type QuantityUp struct {
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
}

func HandleShow(carts *Store, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		c := carts.Get(SessionKey(ctx, session))
		return web.Respond(ctx, w, viewOf(c), http.StatusOK)
	}
}

// HandleAddItem resolves the product from the catalog and merges it into
// the session cart at its current effective price.
func HandleAddItem(db *sqlx.DB, carts *Store, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var req ItemNew
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding cart item: %w", err))
		}

		if err := validate.Check(req); err != nil {
			return weberr.Unprocessable(err, err.Error())
		}
		if err := validate.CheckID(req.ProductID); err != nil {
			return weberr.BadRequest(err)
		}

		p, err := product.Fetch(ctx, db, req.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", req.ProductID, err)
		}
		if !p.Active {
			return weberr.NotFound(errors.New("product is no longer available"))
		}

		sp := product.StoreView(p)
		snap := Snapshot{
			ProductID: sp.ID,
			Name:      sp.Name,
			Price:     sp.Price,
			Image:     sp.Image,
			Category:  sp.Category,
		}

		c := carts.Add(SessionKey(ctx, session), snap, req.Size, req.Color)
		return web.Respond(ctx, w, viewOf(c), http.StatusOK)
	}
}

func HandleUpdateQuantity(carts *Store, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID := web.Param(r, "product_id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.BadRequest(err)
		}

		var req QuantityUp
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding quantity update: %w", err))
		}

		c := carts.SetQuantity(SessionKey(ctx, session), productID, req.Size, req.Color, req.Quantity)
		return web.Respond(ctx, w, viewOf(c), http.StatusOK)
	}
}

// HandleRemoveItem removes a single variant when size and color are given
// as query parameters, and every variant of the product otherwise.
func HandleRemoveItem(carts *Store, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID := web.Param(r, "product_id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.BadRequest(err)
		}

		key := SessionKey(ctx, session)

		var c Cart
		size := strings.TrimSpace(r.URL.Query().Get("size"))
		color := strings.TrimSpace(r.URL.Query().Get("color"))
		if size != "" || color != "" {
			c = carts.RemoveLine(key, productID, size, color)
		} else {
			c = carts.RemoveProduct(key, productID)
		}

		return web.Respond(ctx, w, viewOf(c), http.StatusOK)
	}
}

func HandleClear(carts *Store, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		c := carts.Clear(SessionKey(ctx, session))
		return web.Respond(ctx, w, viewOf(c), http.StatusOK)
	}
}

func HandleSetOpen(carts *Store, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var req struct {
			Open bool `json:"open"`
		}
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding visibility update: %w", err))
		}

		c := carts.SetOpen(SessionKey(ctx, session), req.Open)
		return web.Respond(ctx, w, viewOf(c), http.StatusOK)
	}
}
