package http

import (
	"net/http"

	"github.com/AlibekovAA/secure-blog/internal/common/constants"
)

// MaxRequestSizeMiddleware rejects declared oversized bodies up front and
// caps the rest while they are read; DecodeJSON reports the latter as
// ErrBodyTooLarge.
func MaxRequestSizeMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = constants.DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				WriteErrorEnvelope(w, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, "request body too large", nil, TraceIDFromContext(r.Context()))
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
