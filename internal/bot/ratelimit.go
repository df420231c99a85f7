package bot

import (
	"sync"

	"golang.org/x/time/rate"
)

// userLimiter keeps one token bucket per chat user.
type userLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newUserLimiter(r rate.Limit, burst int) *userLimiter {
	return &userLimiter{limiters: make(map[int64]*rate.Limiter), limit: r, burst: burst}
}

func (l *userLimiter) Allow(userID int64) bool {
	if l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	limiter, exists := l.limiters[userID]
	if !exists {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
