package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/aurastore/storefront/api/web"
	"github.com/aurastore/storefront/api/weberr"
	"github.com/aurastore/storefront/core/claims"
)

// Session keys. The cart id also lives in this session so carts survive
// login/logout transitions within the same browser session.
const (
	userIDKey = "user_id"
	roleKey   = "user_role"
	stateKey  = "oauth_state"
)

// LoadAndSave adapts the scs middleware to the project's handler shape:
// the session is loaded before the handler runs and committed after.
func LoadAndSave(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error

			sh := session.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err = handler(r.Context(), w, r)
			}))

			sh.ServeHTTP(w, r.WithContext(ctx))
			return err
		}
		return h
	}
	return m
}

// Authenticate rejects requests without a signed-in user and attaches
// claims to the context for downstream handlers.
func Authenticate(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			userID := session.GetString(ctx, userIDKey)
			if userID == "" {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			clm := claims.Claims{
				UserID: userID,
				Role:   session.GetString(ctx, roleKey),
			}

			return handler(claims.Set(ctx, clm), w, r)
		}
		return h
	}
	return m
}

// Admin is Authenticate plus a role check.
func Admin(session *scs.SessionManager) web.Middleware {
	authen := Authenticate(session)

	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			clm, err := claims.Get(ctx)
			if err != nil {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			if !clm.IsAdmin() {
				return weberr.NotAuthorized(errors.New("user is not an admin"))
			}

			return handler(ctx, w, r)
		}
		return authen(h)
	}
	return m
}

// LoadClaims attaches claims when a user is signed in but lets anonymous
// requests through untouched. Guest checkout rides on this.
func LoadClaims(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if userID := session.GetString(ctx, userIDKey); userID != "" {
				clm := claims.Claims{
					UserID: userID,
					Role:   session.GetString(ctx, roleKey),
				}
				ctx = claims.Set(ctx, clm)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func login(ctx context.Context, session *scs.SessionManager, userID string, role string) error {
	// A fresh token on privilege change prevents session fixation.
	if err := session.RenewToken(ctx); err != nil {
		return err
	}

	session.Put(ctx, userIDKey, userID)
	session.Put(ctx, roleKey, role)
	return nil
}

func logout(ctx context.Context, session *scs.SessionManager) error {
	session.Remove(ctx, userIDKey)
	session.Remove(ctx, roleKey)
	return session.RenewToken(ctx)
}
