package settings

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/aurastore/storefront/api/web"
	"github.com/aurastore/storefront/api/weberr"
	"github.com/aurastore/storefront/validate"
	"github.com/jmoiron/sqlx"
)

func HandleList(cache *Cache) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		vals, err := cache.Values(ctx)
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		return web.Respond(ctx, w, vals, http.StatusOK)
	}
}

func HandleUpsert(db *sqlx.DB, cache *Cache) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		key := web.Param(r, "key")
		if key == "" {
			return weberr.BadRequest(fmt.Errorf("missing setting key"))
		}

		var req struct {
			Value string `json:"value"`
		}
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding setting: %w", err))
		}

		s := Setting{
			Key:       key,
			Value:     sql.NullString{String: req.Value, Valid: true},
			UpdatedAt: time.Now().UTC(),
		}
		if err := Upsert(ctx, db, s); err != nil {
			return fmt.Errorf("upserting setting[%s]: %w", key, err)
		}

		cache.Invalidate()

		return web.Respond(ctx, w, s, http.StatusOK)
	}
}

func HandleListSeals(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		seals, err := ListSeals(ctx, db)
		if err != nil {
			return fmt.Errorf("listing seals: %w", err)
		}

		return web.Respond(ctx, w, seals, http.StatusOK)
	}
}

type SealNew struct {
	Label        string `json:"label" validate:"required"`
	ImageURL     string `json:"imageUrl"`
	DisplayOrder int    `json:"displayOrder" validate:"gte=0"`
}

func HandleCreateSeal(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var req SealNew
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding seal: %w", err))
		}

		if err := validate.Check(req); err != nil {
			return weberr.Unprocessable(err, err.Error())
		}

		s := sealFromRequest(req)
		s.ID = validate.GenerateID()

		if err := CreateSeal(ctx, db, s); err != nil {
			return fmt.Errorf("creating seal: %w", err)
		}

		return web.Respond(ctx, w, s, http.StatusCreated)
	}
}

func HandleUpdateSeal(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		sealID := web.Param(r, "id")
		if err := validate.CheckID(sealID); err != nil {
			return weberr.BadRequest(err)
		}

		var req SealNew
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding seal: %w", err))
		}

		if err := validate.Check(req); err != nil {
			return weberr.Unprocessable(err, err.Error())
		}

		s := sealFromRequest(req)
		s.ID = sealID

		if err := UpdateSeal(ctx, db, s); err != nil {
			return fmt.Errorf("updating seal[%s]: %w", sealID, err)
		}

		return web.Respond(ctx, w, s, http.StatusOK)
	}
}

func HandleDeleteSeal(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		sealID := web.Param(r, "id")
		if err := validate.CheckID(sealID); err != nil {
			return weberr.BadRequest(err)
		}

		if err := DeleteSeal(ctx, db, sealID); err != nil {
			return fmt.Errorf("deleting seal[%s]: %w", sealID, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func sealFromRequest(req SealNew) Seal {
	s := Seal{
		Label:        req.Label,
		DisplayOrder: req.DisplayOrder,
	}
	if req.ImageURL != "" {
		s.ImageURL = sql.NullString{String: req.ImageURL, Valid: true}
	}
	return s
}
