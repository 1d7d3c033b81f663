package http

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/AlibekovAA/secure-blog/internal/common/httpmetrics"
	"github.com/AlibekovAA/secure-blog/internal/common/logger"
	"github.com/AlibekovAA/secure-blog/internal/observability/metrics"
)

// RecoveryMiddleware turns a handler panic into a 500 envelope.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func RecoveryMiddleware(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				path := httpmetrics.NormalizePath(r.URL.Path)
				metrics.HTTPPanicsRecoveredTotal.WithLabelValues(r.Method, path).Inc()
				log.WithFields(r.Context(), logger.Fields{
					"method": r.Method,
					"path":   path,
					"action": "panic_recovered",
				}).Criticalf("panic recovered: %v\n%s", rec, debug.Stack())
				WriteErrorEnvelope(w, http.StatusInternalServerError, CodeUnknown, "internal server error", nil, TraceIDFromContext(r.Context()))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
