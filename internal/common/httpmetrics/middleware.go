package httpmetrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/AlibekovAA/secure-blog/internal/observability/metrics"
)

type Collector struct {
	service string
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type routeKey struct{}

// route is filled in by RouteTemplate once a router has matched the request.
type route struct {
	template string
}

func New(service string) *Collector {
	return &Collector{
		service: service,
	}
}

// Wrap records request counts and latency. The path label is the matched
// gorilla/mux route template when one of the inner routers uses
// RouteTemplate; unmatched requests fall back to NormalizePath.
func (c *Collector) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inFlight := metrics.HTTPRequestsInFlight.WithLabelValues(c.service)
		inFlight.Inc()
		defer inFlight.Dec()

		matched := &route{}
		r = r.WithContext(context.WithValue(r.Context(), routeKey{}, matched))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := matched.template
		if path == "" {
			path = NormalizePath(r.URL.Path)
		}
		statusClass := fmt.Sprintf("%dxx", rec.status/100)

		metrics.HTTPRequestsTotal.WithLabelValues(c.service, r.Method, path).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(c.service, r.Method, path, statusClass).Observe(time.Since(start).Seconds())
	})
}

// RouteTemplate is a mux middleware that reports the matched route template
// to the enclosing Collector. Nested routers overwrite the outer template
// with their more specific one.
func RouteTemplate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if matched, ok := r.Context().Value(routeKey{}).(*route); ok {
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					matched.template = tpl
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RouteLabel is the path label for a request already inside a router: the
// matched route template, or the normalized path when nothing matched.
func RouteLabel(r *http.Request) string {
	if current := mux.CurrentRoute(r); current != nil {
		if tpl, err := current.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return NormalizePath(r.URL.Path)
}
