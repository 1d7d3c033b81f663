package http

import (
	"net/http"

	"github.com/AlibekovAA/secure-blog/internal/common/constants"
	"github.com/AlibekovAA/secure-blog/internal/common/httpmetrics"
	"github.com/AlibekovAA/secure-blog/internal/common/logger"
)

// BuildBaseHandler wraps the service router with the shared middleware. The
// metrics collector sits outside recovery and the body limit, so recovered
// panics and 413s are counted with their real status.
func BuildBaseHandler(appName string, log *logger.Logger, handler http.Handler) http.Handler {
	collector := httpmetrics.New(appName)
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	csp := ContentSecurityPolicyMiddleware(APIContentSecurityPolicy)

	return SecurityHeadersMiddleware(csp(TraceIDMiddleware(collector.Wrap(recovery(maxRequestSize(handler))))))
}
