package quotecache

import "sync"

// Limiter is a fixed-window call budget for the upstream market-data API.
// Allow consumes one call from the current window; the window itself is reset
// externally by the scheduler, which keeps the budget aligned to wall-clock
// minutes instead of a sliding window per caller.
type Limiter struct {
	mu     sync.Mutex
	budget int
	used   int
}

// NewLimiter creates a limiter that permits budget calls per window.
// A budget of zero or less disables the limiter entirely.
func NewLimiter(budget int) *Limiter {
	return &Limiter{budget: budget}
}

// Allow consumes one call from the current window. It returns false when the
// budget is exhausted; the caller is expected to fall back to cached data.
func (l *Limiter) Allow() bool {
	if l.budget <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.used >= l.budget {
		return false
	}
	l.used++
	return true
}

// Reset starts a new window. Called by the scheduler once per minute.
func (l *Limiter) Reset() {
	l.mu.Lock()
	l.used = 0
	l.mu.Unlock()
}

// Remaining reports how many calls are left in the current window.
func (l *Limiter) Remaining() int {
	if l.budget <= 0 {
		return -1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.budget - l.used
}
