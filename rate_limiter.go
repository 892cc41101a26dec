// rate_limiter.go
// ----------------
// RateLimiter throttles outgoing calls per backend kind with a token bucket.
// It never rejects or retries a call: Wait blocks until a token is available
// or the context is done.
package omsbridge

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

type RateLimiter struct {
	mu       sync.Mutex
	limiters map[BackendKind]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiter returns nil when requestsPerSecond is zero; a nil
// RateLimiter never waits.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[BackendKind]*rate.Limiter),
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (r *RateLimiter) limiter(kind BackendKind) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[kind]
	if !ok {
		l = rate.NewLimiter(r.limit, r.burst)
		r.limiters[kind] = l
	}
	return l
}

// Wait blocks until a call against kind may proceed.
func (r *RateLimiter) Wait(ctx context.Context, kind BackendKind) error {
	if r == nil {
		return nil
	}
	return r.limiter(kind).Wait(ctx)
}

// Allow reports whether a call could proceed right now, consuming a token
// if so.
func (r *RateLimiter) Allow(kind BackendKind) bool {
	if r == nil {
		return true
	}
	return r.limiter(kind).Allow()
}
