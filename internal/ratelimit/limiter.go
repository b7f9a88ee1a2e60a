package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// UpstreamLimiter throttles outbound calls per upstream API (flight search,
// emissions, photos) so that bursts of requests stay under provider quotas.
type UpstreamLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults Limit
}

type Limit struct {
	RequestsPerSecond float64
	Burst             int
}

func DefaultLimit() Limit {
	return Limit{
		RequestsPerSecond: 5,
		Burst:             10,
	}
}

func NewUpstreamLimiter(defaults Limit, overrides map[string]Limit) *UpstreamLimiter {
	l := &UpstreamLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: defaults,
	}
	for upstream, limit := range overrides {
		l.limiters[upstream] = newLimiter(limit)
	}
	return l
}

func newLimiter(l Limit) *rate.Limiter {
	if l.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := l.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(l.RequestsPerSecond), burst)
}

func (u *UpstreamLimiter) limiterFor(upstream string) *rate.Limiter {
	u.mu.RLock()
	limiter, exists := u.limiters[upstream]
	u.mu.RUnlock()

	if exists {
		return limiter
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if limiter, exists = u.limiters[upstream]; exists {
		return limiter
	}

	limiter = newLimiter(u.defaults)
	u.limiters[upstream] = limiter
	return limiter
}

// Wait blocks until a call to upstream is allowed or ctx is done. A nil
// limiter never blocks.
func (u *UpstreamLimiter) Wait(ctx context.Context, upstream string) error {
	if u == nil {
		return nil
	}
	return u.limiterFor(upstream).Wait(ctx)
}
