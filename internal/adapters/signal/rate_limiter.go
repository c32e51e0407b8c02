package signal

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/dkeye/jump/internal/domain"
)

// RateLimiter keeps one token bucket per connection. A nil limiter allows
// everything.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[domain.UserID]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewRateLimiter returns nil when perSecond is not positive.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		buckets: make(map[domain.UserID]*rate.Limiter),
		limit:   rate.Limit(perSecond),
		burst:   burst,
	}
}

func (rl *RateLimiter) Allow(uid domain.UserID) bool {
	if rl == nil {
		return true
	}
	rl.mu.Lock()
	b, ok := rl.buckets[uid]
	if !ok {
		b = rate.NewLimiter(rl.limit, rl.burst)
		rl.buckets[uid] = b
	}
	rl.mu.Unlock()
	return b.Allow()
}

func (rl *RateLimiter) Forget(uid domain.UserID) {
	if rl == nil {
		return
	}
	rl.mu.Lock()
	delete(rl.buckets, uid)
	rl.mu.Unlock()
}
