package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/aurastore/storefront/api/web"
	"github.com/sirupsen/logrus"
	"github.com/zenazn/goji/web/mutil"
)

// Logger emits one line per request once the handler is done, with the
// written status and size. The response writer is wrapped because status
// and byte count are otherwise lost after the handler returns.
func Logger(log logrus.FieldLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			log := log.WithFields(logrus.Fields{
				"req_id": ContextRequestID(ctx),
				"method": r.Method,
				"path":   r.URL.Path,
				"remote": r.RemoteAddr,
			})

			log.Debug("request started")
			start := time.Now().UTC()

			lw := mutil.WrapWriter(w)
			err := handler(ctx, lw, r)

			// A handler that writes nothing (redirect helpers aside) still
			// ends up as a 200 on the wire.
			status := lw.Status()
			if status == 0 {
				status = http.StatusOK
			}

			log.WithFields(logrus.Fields{
				"status":      status,
				"bytes":       lw.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			}).Info("request completed")

			return err
		}
		return h
	}
	return m
}
