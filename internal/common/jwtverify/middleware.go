package jwtverify

import (
	"context"
	"net/http"
	"strings"

	"github.com/AlibekovAA/secure-blog/internal/common/constants"
	commonhttp "github.com/AlibekovAA/secure-blog/internal/common/http"
	"github.com/AlibekovAA/secure-blog/internal/common/logger"
)

type Identity struct {
	Username     string
	TokenVersion int64
}

// Authenticator resolves a raw session token. It must return a domain error
// so the response carries the right status.
type Authenticator func(ctx context.Context, token string) (Identity, error)

type contextKey string

const identityKey contextKey = "session_identity"

// Middleware rejects requests without a valid session. The token is read from
// the session cookie first, then from a Bearer header.
func Middleware(authenticate Authenticator, log *logger.Logger) func(next http.Handler) http.Handler {
	errorHandler := commonhttp.NewErrorHandler(log)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				log.WithFields(r.Context(), logger.Fields{
					"path":   r.URL.Path,
					"action": "session_missing",
				}).Debug("session auth failed: no token")
				commonhttp.WriteErrorEnvelope(
					w,
					http.StatusUnauthorized,
					commonhttp.CodeUnauthenticated,
					"not authenticated",
					nil,
					commonhttp.TraceIDFromContext(r.Context()),
				)
				return
			}

			identity, err := authenticate(r.Context(), token)
			if err != nil {
				errorHandler.HandleError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	raw := r.Header.Get("Authorization")
	if strings.HasPrefix(raw, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	}
	return ""
}
