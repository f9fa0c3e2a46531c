package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aurastore/storefront/api/web"
	"github.com/aurastore/storefront/api/weberr"
	"github.com/aurastore/storefront/validate"
	"github.com/jmoiron/sqlx"
)

type ProductNew struct {
	Name             string `json:"name" validate:"required"`
	Description      string `json:"description"`
	Price            int    `json:"price" validate:"gte=0"`
	PromotionalPrice *int   `json:"promotionalPrice" validate:"omitempty,gte=0"`
	Category         string `json:"category" validate:"required"`
	Stock            int    `json:"stock" validate:"gte=0"`
	ImageURL         string `json:"imageUrl"`
	Active           *bool  `json:"active"`
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var (
			ps  []Product
			err error
		)

		if slug := web.Query(r, "category", ""); slug != "" {
			category := CategoryFromSlug(strings.ToLower(slug))
			if category == "" {
				return web.Respond(ctx, w, []StoreProduct{}, http.StatusOK)
			}
			ps, err = ListByCategory(ctx, db, category)
		} else {
			ps, err = List(ctx, db)
		}
		if err != nil {
			return fmt.Errorf("listing products: %w", err)
		}

		return web.Respond(ctx, w, StoreViews(ps), http.StatusOK)
	}
}

func HandleListOffers(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ps, err := ListOffers(ctx, db)
		if err != nil {
			return fmt.Errorf("listing offers: %w", err)
		}

		return web.Respond(ctx, w, StoreViews(ps), http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID := web.Param(r, "id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.BadRequest(err)
		}

		p, err := Fetch(ctx, db, productID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", productID, err)
		}

		return web.Respond(ctx, w, StoreView(p), http.StatusOK)
	}
}

func HandleListAll(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ps, err := ListAll(ctx, db)
		if err != nil {
			return fmt.Errorf("listing all products: %w", err)
		}

		return web.Respond(ctx, w, ps, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var req ProductNew
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding product: %w", err))
		}

		if err := validate.Check(req); err != nil {
			return weberr.Unprocessable(err, err.Error())
		}

		now := time.Now().UTC()
		p := fromRequest(req)
		p.ID = validate.GenerateID()
		p.CreatedAt = now
		p.UpdatedAt = now

		if err := Create(ctx, db, p); err != nil {
			return fmt.Errorf("creating product: %w", err)
		}

		return web.Respond(ctx, w, p, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID := web.Param(r, "id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.BadRequest(err)
		}

		var req ProductNew
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding product: %w", err))
		}

		if err := validate.Check(req); err != nil {
			return weberr.Unprocessable(err, err.Error())
		}

		cur, err := Fetch(ctx, db, productID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", productID, err)
		}

		p := fromRequest(req)
		p.ID = cur.ID
		p.CreatedAt = cur.CreatedAt
		p.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, p); err != nil {
			return fmt.Errorf("updating product[%s]: %w", productID, err)
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID := web.Param(r, "id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.BadRequest(err)
		}

		if err := Deactivate(ctx, db, productID); err != nil {
			return fmt.Errorf("deactivating product[%s]: %w", productID, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func fromRequest(req ProductNew) Product {
	p := Product{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		Stock:    req.Stock,
		Active:   true,
	}

	if req.Description != "" {
		p.Description = sql.NullString{String: req.Description, Valid: true}
	}
	if req.PromotionalPrice != nil {
		p.PromotionalPrice = sql.NullInt64{Int64: int64(*req.PromotionalPrice), Valid: true}
	}
	if req.ImageURL != "" {
		p.ImageURL = sql.NullString{String: req.ImageURL, Valid: true}
	}
	if req.Active != nil {
		p.Active = *req.Active
	}

	return p
}
