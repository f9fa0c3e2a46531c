package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/aurastore/storefront/api/web"
	"github.com/aurastore/storefront/api/weberr"
	"github.com/aurastore/storefront/core/claims"
	"github.com/aurastore/storefront/core/user"
	"github.com/aurastore/storefront/database"
	"github.com/aurastore/storefront/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

type SignupRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func HandleSignup(db *sqlx.DB, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var req SignupRequest
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding signup: %w", err))
		}

		if err := validate.Check(req); err != nil {
			return weberr.Unprocessable(err, err.Error())
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		now := time.Now().UTC()
		usr := user.User{
			ID:           validate.GenerateID(),
			Email:        req.Email,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := user.Create(ctx, tx, usr); err != nil {
				return err
			}

			prf := user.Profile{
				ID:        validate.GenerateID(),
				UserID:    usr.ID,
				FullName:  req.FullName,
				CreatedAt: now,
			}
			if err := user.CreateProfile(ctx, tx, prf); err != nil {
				return err
			}

			return user.SetRole(ctx, tx, usr.ID, claims.RoleUser)
		})
		if err != nil {
			return fmt.Errorf("creating user[%s]: %w", req.Email, err)
		}

		if err := login(ctx, session, usr.ID, claims.RoleUser); err != nil {
			return fmt.Errorf("opening session for user[%s]: %w", usr.ID, err)
		}

		return web.Respond(ctx, w, usr, http.StatusCreated)
	}
}

func HandleLogin(db *sqlx.DB, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var req LoginRequest
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding login: %w", err))
		}

		if err := validate.Check(req); err != nil {
			return weberr.Unprocessable(err, err.Error())
		}

		usr, err := user.FetchByEmail(ctx, db, req.Email)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotAuthorized(errors.New("unknown email or wrong password"))
			}
			return fmt.Errorf("fetching user[%s]: %w", req.Email, err)
		}

		if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(req.Password)); err != nil {
			return weberr.NotAuthorized(errors.New("unknown email or wrong password"))
		}

		role, err := user.FetchRole(ctx, db, usr.ID)
		if err != nil {
			role = claims.RoleUser
		}

		if err := login(ctx, session, usr.ID, role); err != nil {
			return fmt.Errorf("opening session for user[%s]: %w", usr.ID, err)
		}

		return web.Respond(ctx, w, usr, http.StatusOK)
	}
}

func HandleLogout(session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := logout(ctx, session); err != nil {
			return fmt.Errorf("closing session: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
