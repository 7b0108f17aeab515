package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter applies a token bucket per client address
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
	lastScan time.Time
	now      func() time.Time
	onLimit  http.Handler
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perSecond requests per client with the given burst.
// onLimit writes the response for rejected requests.
func NewRateLimiter(perSecond float64, burst int, onLimit http.Handler) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
		onLimit:  onLimit,
	}
}

// Middleware rejects requests from clients that exhausted their bucket
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientKey(r)) {
			rl.onLimit.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastScan) > rl.idleTTL {
		for k, cl := range rl.limiters {
			if now.Sub(cl.lastSeen) > rl.idleTTL {
				delete(rl.limiters, k)
			}
		}
		rl.lastScan = now
	}

	cl, ok := rl.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// clientKey is the remote IP without its port
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
