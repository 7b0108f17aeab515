package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/chessgame-go/internal/api/apierr"
	"github.com/mcoot/chessgame-go/internal/middleware"
)

// Recovery turns a panicking handler into a 500 INTERNAL_ERROR body
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}

// RateLimit limits each client to perSecond requests with the given burst,
// answering excess requests with 429 RATE_LIMITED. A non-positive rate
// disables limiting.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	if perSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := middleware.NewRateLimiter(perSecond, max(burst, 1), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewRateLimitedError())
	}))
	return limiter.Middleware
}
