package jwtverify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlibekovAA/secure-blog/internal/common/constants"
	commonerrors "github.com/AlibekovAA/secure-blog/internal/common/errors"
	"github.com/AlibekovAA/secure-blog/internal/common/logger"
)

var errRejected = commonerrors.NewDomainError("UNAUTHENTICATED", commonerrors.CategoryUnauthorized, http.StatusUnauthorized, "not authenticated")

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func protected(t *testing.T, seen *Identity) http.Handler {
	auth := func(_ context.Context, token string) (Identity, error) {
		if token != "good" {
			return Identity{}, errRejected
		}
		return Identity{Username: "alice", TokenVersion: 1}, nil
	}
	return Middleware(auth, testLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := FromContext(r.Context())
		if !ok {
			t.Error("expected identity in context")
		}
		*seen = identity
		w.WriteHeader(http.StatusOK)
	}))
}

func TestMiddleware_Cookie(t *testing.T) {
	var seen Identity
	h := protected(t, &seen)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/welcome", nil)
	req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "good"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if seen.Username != "alice" {
		t.Errorf("expected alice, got %q", seen.Username)
	}
}

func TestMiddleware_Bearer(t *testing.T) {
	var seen Identity
	h := protected(t, &seen)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/welcome", nil)
	req.Header.Set("Authorization", "Bearer good")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestMiddleware_Rejects(t *testing.T) {
	var seen Identity
	h := protected(t, &seen)

	for name, setup := range map[string]func(*http.Request){
		"missing": func(*http.Request) {},
		"bad cookie": func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "bad"})
		},
		"not bearer": func(r *http.Request) {
			r.Header.Set("Authorization", "Basic good")
		},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/welcome", nil)
			setup(req)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rr.Code)
			}
		})
	}
}
