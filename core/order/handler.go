package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aurastore/storefront/api/web"
	"github.com/aurastore/storefront/api/weberr"
	"github.com/aurastore/storefront/validate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		status := Status(web.Query(r, "status", ""))
		if status != "" && !validStatus(status) {
			return weberr.BadRequest(fmt.Errorf("unknown status %q", status))
		}

		ords, err := List(ctx, db, status)
		if err != nil {
			return fmt.Errorf("listing orders: %w", err)
		}

		return web.Respond(ctx, w, ords, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		orderID := web.Param(r, "id")
		if err := validate.CheckID(orderID); err != nil {
			return weberr.BadRequest(err)
		}

		ord, err := Fetch(ctx, db, orderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching order[%s]: %w", orderID, err)
		}

		return web.Respond(ctx, w, ord, http.StatusOK)
	}
}

// HandleUpdateStatus advances an order through its lifecycle (pending,
// paid, shipped, delivered, cancelled) and notifies consumers of the
// change. Notification failures are logged, never surfaced.
func HandleUpdateStatus(db *sqlx.DB, notifier Notifier, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		orderID := web.Param(r, "id")
		if err := validate.CheckID(orderID); err != nil {
			return weberr.BadRequest(err)
		}

		var req struct {
			Status Status `json:"status" validate:"required,oneof=pending paid shipped delivered cancelled"`
		}
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding status update: %w", err))
		}

		if err := validate.Check(req); err != nil {
			return weberr.Unprocessable(err, err.Error())
		}

		ord, err := Fetch(ctx, db, orderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching order[%s]: %w", orderID, err)
		}

		up := StatusUp{
			ID:        ord.ID,
			Status:    req.Status,
			UpdatedAt: time.Now().UTC(),
		}
		if err := UpdateStatus(ctx, db, up); err != nil {
			return fmt.Errorf("updating order[%s]: %w", orderID, err)
		}

		ord.Status = up.Status
		ord.UpdatedAt = up.UpdatedAt

		if notifier != nil {
			if err := notifier.OrderUpdated(ctx, ord); err != nil {
				log.Errorf("notifying update of order[%s]: %v", ord.ID, err)
			}
		}

		return web.Respond(ctx, w, ord, http.StatusOK)
	}
}

func validStatus(s Status) bool {
	switch s {
	case Pending, Paid, Shipped, Delivered, Cancelled:
		return true
	}
	return false
}
