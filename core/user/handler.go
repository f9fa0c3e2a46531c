package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aurastore/storefront/api/web"
	"github.com/aurastore/storefront/api/weberr"
	"github.com/aurastore/storefront/core/claims"
	"github.com/aurastore/storefront/validate"
	"github.com/jmoiron/sqlx"
)

func HandleShowCurrent(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		prf, err := FetchProfile(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching profile for user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, prf, http.StatusOK)
	}
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prfs, err := ListProfiles(ctx, db)
		if err != nil {
			return fmt.Errorf("listing users: %w", err)
		}

		return web.Respond(ctx, w, prfs, http.StatusOK)
	}
}

func HandleSetRole(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		userID := web.Param(r, "id")
		if err := validate.CheckID(userID); err != nil {
			return weberr.BadRequest(err)
		}

		var body struct {
			Role string `json:"role" validate:"required,oneof=admin user"`
		}
		if err := web.Decode(w, r, &body); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding role update: %w", err))
		}

		if err := validate.Check(body); err != nil {
			return weberr.Unprocessable(err, err.Error())
		}

		if err := SetRole(ctx, db, userID, body.Role); err != nil {
			return fmt.Errorf("updating role for user[%s]: %w", userID, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
