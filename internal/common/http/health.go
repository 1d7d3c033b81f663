package http

import (
	"context"
	"net/http"
	"time"

	"github.com/AlibekovAA/secure-blog/internal/common/logger"
)

type HealthCheck func(ctx context.Context) error

// HealthHandler runs every check with a shared deadline. Any failure turns
// the response into 503 with the failing component named.
func HealthHandler(log *logger.Logger, checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteErrorEnvelope(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", nil, "")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.WithFields(ctx, logger.Fields{"component": name}).Warnf("health check failed: %v", err)
				status[name] = "unavailable"
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}

		WriteJSON(w, code, status)
	}
}
