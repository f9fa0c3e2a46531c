package checkout

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/aurastore/storefront/api/background"
	"github.com/aurastore/storefront/api/web"
	"github.com/aurastore/storefront/api/weberr"
	"github.com/aurastore/storefront/core/cart"
	"github.com/aurastore/storefront/core/order"
	"github.com/aurastore/storefront/rate"
)

// Mailer sends the order confirmation. Nil disables mailing.
type Mailer interface {
	OrderConfirmation(to, name, reference string, total int) error
}

// HandlerConfig gathers the checkout endpoint's collaborators. Notifier
// and Mailer are optional; their failures are logged and swallowed since
// the order is already safely persisted.
type HandlerConfig struct {
	Orchestrator *Orchestrator
	Session      *scs.SessionManager
	Limiter      *rate.Limiter
	Background   *background.Background
	Notifier     order.Notifier
	Mailer       Mailer
}

func Handle(cfg HandlerConfig) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if cfg.Limiter != nil && !cfg.Limiter.Check(clientAddr(r)) {
			return weberr.NewError(
				errors.New("checkout rate exceeded"),
				"too many checkout attempts, slow down",
				http.StatusTooManyRequests,
			)
		}

		var req Request
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding checkout: %w", err))
		}

		key := cart.SessionKey(ctx, cfg.Session)

		ord, err := cfg.Orchestrator.Checkout(ctx, key, req)
		if err != nil {
			switch {
			case errors.Is(err, ErrEmptyCart):
				return weberr.Unprocessable(err, err.Error())

			case errors.Is(err, ErrInFlight):
				return weberr.NewError(err, err.Error(), http.StatusConflict)
			}

			var re *RuleError
			if errors.As(err, &re) {
				return weberr.Unprocessable(err, re.Err.Error())
			}

			// The persistence boundary is opaque: the user gets a generic
			// message, the log gets the cause.
			return weberr.NewError(
				err,
				"não foi possível finalizar o pedido, tente novamente",
				http.StatusInternalServerError,
			)
		}

		if cfg.Notifier != nil {
			cfg.Background.Add(func() error {
				if err := cfg.Notifier.OrderCreated(context.Background(), ord); err != nil {
					return fmt.Errorf("notifying creation of order[%s]: %w", ord.ID, err)
				}
				return nil
			})
		}

		if cfg.Mailer != nil {
			cfg.Background.Add(func() error {
				err := cfg.Mailer.OrderConfirmation(ord.CustomerEmail, ord.CustomerName, ord.Reference, ord.Total)
				if err != nil {
					return fmt.Errorf("mailing confirmation of order[%s]: %w", ord.ID, err)
				}
				return nil
			})
		}

		return web.Respond(ctx, w, ord, http.StatusCreated)
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
