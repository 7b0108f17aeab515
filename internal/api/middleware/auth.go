package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/chessgame-go/internal/api/apierr"
	"github.com/mcoot/chessgame-go/internal/services/auth"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Auth creates authentication middleware
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := authService.Authenticate(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// WithSession returns a context carrying session
func WithSession(ctx context.Context, session *auth.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionContextKey).(*auth.Session)
	return session
}

// MustGetHandle returns the authenticated handle or panics
func MustGetHandle(ctx context.Context) string {
	session := GetSession(ctx)
	if session == nil {
		panic("no session in context - auth middleware not applied?")
	}
	return session.Handle
}
