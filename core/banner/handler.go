package banner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aurastore/storefront/api/web"
	"github.com/aurastore/storefront/api/weberr"
	"github.com/aurastore/storefront/database"
	"github.com/aurastore/storefront/validate"
	"github.com/jmoiron/sqlx"
)

type BannerNew struct {
	Title        string `json:"title" validate:"required"`
	Subtitle     string `json:"subtitle"`
	ButtonText   string `json:"buttonText"`
	ButtonLink   string `json:"buttonLink"`
	ImageURL     string `json:"imageUrl"`
	Active       *bool  `json:"active"`
	DisplayOrder int    `json:"displayOrder" validate:"gte=0"`
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		bs, err := ListActive(ctx, db)
		if err != nil {
			return fmt.Errorf("listing banners: %w", err)
		}

		return web.Respond(ctx, w, bs, http.StatusOK)
	}
}

func HandleListAll(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		bs, err := ListAll(ctx, db)
		if err != nil {
			return fmt.Errorf("listing all banners: %w", err)
		}

		return web.Respond(ctx, w, bs, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var req BannerNew
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding banner: %w", err))
		}

		if err := validate.Check(req); err != nil {
			return weberr.Unprocessable(err, err.Error())
		}

		now := time.Now().UTC()
		b := fromRequest(req)
		b.ID = validate.GenerateID()
		b.CreatedAt = now
		b.UpdatedAt = now

		if err := Create(ctx, db, b); err != nil {
			return fmt.Errorf("creating banner: %w", err)
		}

		return web.Respond(ctx, w, b, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		bannerID := web.Param(r, "id")
		if err := validate.CheckID(bannerID); err != nil {
			return weberr.BadRequest(err)
		}

		var req BannerNew
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding banner: %w", err))
		}

		if err := validate.Check(req); err != nil {
			return weberr.Unprocessable(err, err.Error())
		}

		cur, err := Fetch(ctx, db, bannerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching banner[%s]: %w", bannerID, err)
		}

		b := fromRequest(req)
		b.ID = cur.ID
		b.CreatedAt = cur.CreatedAt
		b.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, b); err != nil {
			return fmt.Errorf("updating banner[%s]: %w", bannerID, err)
		}

		return web.Respond(ctx, w, b, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		bannerID := web.Param(r, "id")
		if err := validate.CheckID(bannerID); err != nil {
			return weberr.BadRequest(err)
		}

		if err := Delete(ctx, db, bannerID); err != nil {
			return fmt.Errorf("deleting banner[%s]: %w", bannerID, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// HandleReorder persists the sequence produced by the admin drag-and-drop:
// the request body lists banner ids in their new order, and every listed
// banner gets a contiguous display_order inside one transaction.
func HandleReorder(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var req struct {
			IDs []string `json:"ids" validate:"required,min=1"`
		}
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding reorder: %w", err))
		}

		if err := validate.Check(req); err != nil {
			return weberr.Unprocessable(err, err.Error())
		}
		for _, id := range req.IDs {
			if err := validate.CheckID(id); err != nil {
				return weberr.BadRequest(err)
			}
		}

		err := database.Transaction(db, func(tx sqlx.ExtContext) error {
			for pos, id := range req.IDs {
				if err := SetOrder(ctx, tx, id, pos); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("reordering banners: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func fromRequest(req BannerNew) Banner {
	b := Banner{
		Title:        req.Title,
		Active:       true,
		DisplayOrder: req.DisplayOrder,
	}

	if req.Subtitle != "" {
		b.Subtitle = sql.NullString{String: req.Subtitle, Valid: true}
	}
	if req.ButtonText != "" {
		b.ButtonText = sql.NullString{String: req.ButtonText, Valid: true}
	}
	if req.ButtonLink != "" {
		b.ButtonLink = sql.NullString{String: req.ButtonLink, Valid: true}
	}
	if req.ImageURL != "" {
		b.ImageURL = sql.NullString{String: req.ImageURL, Valid: true}
	}
	if req.Active != nil {
		b.Active = *req.Active
	}

	return b
}
