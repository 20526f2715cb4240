package http

import (
	"net/http"

	"github.com/perplexiplay/backend/internal/common/constants"
	"github.com/perplexiplay/backend/internal/common/httpmetrics"
	"github.com/perplexiplay/backend/internal/common/logger"
)

// BuildBaseHandler wraps handler with the shared middleware chain, outermost first:
// security headers, trace id, recovery, body limit, request metrics.
func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	collector := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)

	return SecurityHeadersMiddleware(TraceIDMiddleware(recovery(maxRequestSize(collector.Wrap(handler)))))
}
