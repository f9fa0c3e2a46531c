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
	"github.com/aurastore/storefront/random"
	"github.com/aurastore/storefront/validate"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jmoiron/sqlx"
	"golang.org/x/oauth2"
)

type ProviderConfig struct {
	Name        string
	Client      string
	Secret      string
	URL         string
	RedirectURL string
}

type Provider struct {
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// MakeProviders discovers each configured OIDC issuer. Providers with no
// client id are skipped so the server can run without oauth configured.
func MakeProviders(ctx context.Context, cfgs []ProviderConfig) (map[string]Provider, error) {
	provs := make(map[string]Provider)

	for _, cfg := range cfgs {
		if cfg.Client == "" {
			continue
		}

		p, err := oidc.NewProvider(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("discovering provider[%s]: %w", cfg.Name, err)
		}

		provs[cfg.Name] = Provider{
			oauth: oauth2.Config{
				ClientID:     cfg.Client,
				ClientSecret: cfg.Secret,
				Endpoint:     p.Endpoint(),
				RedirectURL:  cfg.RedirectURL,
				Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
			},
			verifier: p.Verifier(&oidc.Config{ClientID: cfg.Client}),
		}
	}

	return provs, nil
}

func HandleOauthLogin(session *scs.SessionManager, provs map[string]Provider) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prov, ok := provs[web.Param(r, "provider")]
		if !ok {
			return weberr.NotFound(errors.New("unknown oauth provider"))
		}

		state, err := random.StringSecure(32)
		if err != nil {
			return fmt.Errorf("generating oauth state: %w", err)
		}
		session.Put(ctx, stateKey, state)

		http.Redirect(w, r, prov.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
		return nil
	}
}

func HandleOauthCallback(db *sqlx.DB, session *scs.SessionManager, provs map[string]Provider, redirectURL string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		prov, ok := provs[web.Param(r, "provider")]
		if !ok {
			return weberr.NotFound(errors.New("unknown oauth provider"))
		}

		state := session.PopString(ctx, stateKey)
		if state == "" || state != r.URL.Query().Get("state") {
			return weberr.BadRequest(errors.New("oauth state mismatch"))
		}

		token, err := prov.oauth.Exchange(ctx, r.URL.Query().Get("code"))
		if err != nil {
			return fmt.Errorf("exchanging oauth code: %w", err)
		}

		rawID, ok := token.Extra("id_token").(string)
		if !ok {
			return weberr.BadRequest(errors.New("oauth token carries no id_token"))
		}

		idToken, err := prov.verifier.Verify(ctx, rawID)
		if err != nil {
			return fmt.Errorf("verifying id token: %w", err)
		}

		var ident struct {
			Email   string `json:"email"`
			Name    string `json:"name"`
			Picture string `json:"picture"`
		}
		if err := idToken.Claims(&ident); err != nil {
			return fmt.Errorf("decoding id token claims: %w", err)
		}

		usr, err := findOrCreate(ctx, db, ident.Email, ident.Name, ident.Picture)
		if err != nil {
			return fmt.Errorf("resolving oauth user[%s]: %w", ident.Email, err)
		}

		role, err := user.FetchRole(ctx, db, usr.ID)
		if err != nil {
			role = claims.RoleUser
		}

		if err := login(ctx, session, usr.ID, role); err != nil {
			return fmt.Errorf("opening session for user[%s]: %w", usr.ID, err)
		}

		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
		return nil
	}
}

func findOrCreate(ctx context.Context, db *sqlx.DB, email, name, avatar string) (user.User, error) {
	usr, err := user.FetchByEmail(ctx, db, email)
	if err == nil {
		return usr, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return user.User{}, err
	}

	now := time.Now().UTC()
	usr = user.User{
		ID:        validate.GenerateID(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = database.Transaction(db, func(tx sqlx.ExtContext) error {
		if err := user.Create(ctx, tx, usr); err != nil {
			return err
		}

		prf := user.Profile{
			ID:        validate.GenerateID(),
			UserID:    usr.ID,
			FullName:  name,
			AvatarURL: avatar,
			CreatedAt: now,
		}
		if err := user.CreateProfile(ctx, tx, prf); err != nil {
			return err
		}

		return user.SetRole(ctx, tx, usr.ID, claims.RoleUser)
	})
	if err != nil {
		return user.User{}, err
	}

	return usr, nil
}
