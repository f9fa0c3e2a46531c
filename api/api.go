package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/aurastore/storefront/api/background"
	"github.com/aurastore/storefront/api/middleware"
	"github.com/aurastore/storefront/api/web"
	"github.com/aurastore/storefront/core/auth"
	"github.com/aurastore/storefront/core/banner"
	"github.com/aurastore/storefront/core/cart"
	"github.com/aurastore/storefront/core/checkout"
	"github.com/aurastore/storefront/core/order"
	"github.com/aurastore/storefront/core/product"
	"github.com/aurastore/storefront/core/settings"
	"github.com/aurastore/storefront/core/user"
	"github.com/aurastore/storefront/rate"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin       string
	Log              logrus.FieldLogger
	DB               *sqlx.DB
	Session          *scs.SessionManager
	Carts            *cart.Store
	Checkout         *checkout.Orchestrator
	CheckoutLimiter  *rate.Limiter
	Background       *background.Background
	Notifier         order.Notifier
	Mailer           checkout.Mailer
	SettingsCache    *settings.Cache
	Providers        map[string]auth.Provider
	LoginRedirectURL string
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)
	admin := auth.Admin(cfg.Session)
	identified := auth.LoadClaims(cfg.Session)

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.DB, cfg.Session))
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session))
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))
	a.Handle(http.MethodGet, "/auth/oauth-login/{provider}", auth.HandleOauthLogin(cfg.Session, cfg.Providers))
	a.Handle(http.MethodGet, "/auth/oauth-callback/{provider}", auth.HandleOauthCallback(cfg.DB, cfg.Session, cfg.Providers, cfg.LoginRedirectURL))

	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(cfg.DB), authen)
	a.Handle(http.MethodGet, "/users", user.HandleList(cfg.DB), admin)
	a.Handle(http.MethodPut, "/users/{id}/role", user.HandleSetRole(cfg.DB), admin)

	a.Handle(http.MethodGet, "/products/offers", product.HandleListOffers(cfg.DB))
	a.Handle(http.MethodGet, "/products/{id}", product.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/products", product.HandleList(cfg.DB))
	a.Handle(http.MethodGet, "/admin/products", product.HandleListAll(cfg.DB), admin)
	a.Handle(http.MethodPost, "/products", product.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/products/{id}", product.HandleUpdate(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/products/{id}", product.HandleDelete(cfg.DB), admin)

	a.Handle(http.MethodGet, "/banners", banner.HandleList(cfg.DB))
	a.Handle(http.MethodGet, "/admin/banners", banner.HandleListAll(cfg.DB), admin)
	a.Handle(http.MethodPost, "/banners", banner.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/banners/order", banner.HandleReorder(cfg.DB), admin)
	a.Handle(http.MethodPut, "/banners/{id}", banner.HandleUpdate(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/banners/{id}", banner.HandleDelete(cfg.DB), admin)

	a.Handle(http.MethodGet, "/settings/seals", settings.HandleListSeals(cfg.DB))
	a.Handle(http.MethodGet, "/settings", settings.HandleList(cfg.SettingsCache))
	a.Handle(http.MethodPost, "/settings/seals", settings.HandleCreateSeal(cfg.DB), admin)
	a.Handle(http.MethodPut, "/settings/seals/{id}", settings.HandleUpdateSeal(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/settings/seals/{id}", settings.HandleDeleteSeal(cfg.DB), admin)
	a.Handle(http.MethodPut, "/settings/{key}", settings.HandleUpsert(cfg.DB, cfg.SettingsCache), admin)

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.Carts, cfg.Session))
	a.Handle(http.MethodPut, "/cart/items", cart.HandleAddItem(cfg.DB, cfg.Carts, cfg.Session))
	a.Handle(http.MethodPut, "/cart/items/{product_id}", cart.HandleUpdateQuantity(cfg.Carts, cfg.Session))
	a.Handle(http.MethodDelete, "/cart/items/{product_id}", cart.HandleRemoveItem(cfg.Carts, cfg.Session))
	a.Handle(http.MethodDelete, "/cart", cart.HandleClear(cfg.Carts, cfg.Session))
	a.Handle(http.MethodPut, "/cart/open", cart.HandleSetOpen(cfg.Carts, cfg.Session))

	a.Handle(http.MethodPost, "/checkout", checkout.Handle(checkout.HandlerConfig{
		Orchestrator: cfg.Checkout,
		Session:      cfg.Session,
		Limiter:      cfg.CheckoutLimiter,
		Background:   cfg.Background,
		Notifier:     cfg.Notifier,
		Mailer:       cfg.Mailer,
	}), identified)

	a.Handle(http.MethodGet, "/orders/{id}", order.HandleShow(cfg.DB), admin)
	a.Handle(http.MethodGet, "/orders", order.HandleList(cfg.DB), admin)
	a.Handle(http.MethodPut, "/orders/{id}", order.HandleUpdateStatus(cfg.DB, cfg.Notifier, cfg.Log), admin)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
