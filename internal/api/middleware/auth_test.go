package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/chessgame-go/internal/api/middleware"
	"github.com/mcoot/chessgame-go/internal/dependencies/mocks"
	"github.com/mcoot/chessgame-go/internal/services/auth"
	"github.com/mcoot/chessgame-go/internal/storage/memory"
	"github.com/mcoot/chessgame-go/internal/testutil"
)

func newAuthService(t *testing.T) *auth.Service {
	t.Helper()
	cfg := auth.DefaultConfig()
	cfg.TokenSecret = "test-secret"
	cfg.BcryptCost = bcrypt.MinCost
	clock := mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	return auth.New(memory.New(), clock, mocks.NewMockRandom(), cfg, testutil.NopLogger())
}

func handleEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(middleware.MustGetHandle(r.Context())))
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	svc := newAuthService(t)
	h := middleware.Auth(svc)(handleEcho())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "UNAUTHORIZED")
}

func TestAuthRejectsBadToken(t *testing.T) {
	svc := newAuthService(t)
	h := middleware.Auth(svc)(handleEcho())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthStoresSession(t *testing.T) {
	svc := newAuthService(t)
	require.NoError(t, svc.Register(t.Context(), "alice", "password"))
	session, err := svc.Login(t.Context(), "alice", "password")
	require.NoError(t, err)

	h := middleware.Auth(svc)(handleEcho())
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer "+session.Token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alice", rr.Body.String())
}

func TestRecoveryWritesJSON(t *testing.T) {
	logger := testutil.NopLogger()
	h := middleware.Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "INTERNAL_ERROR")
}

func TestRateLimitRejectsBurst(t *testing.T) {
	h := middleware.RateLimit(0.001, 2)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// Other clients have their own bucket.
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRateLimitDisabled(t *testing.T) {
	h := middleware.RateLimit(0, 0)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for range 50 {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, http.StatusNoContent, rr.Code)
	}
}
