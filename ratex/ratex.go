// Package ratex is a per-key fixed window limiter kept in process memory.
package ratex

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Defaults match the customer-facing budget of 10 messages a minute
const (
	DefaultPoints = 10
	DefaultWindow = time.Minute
)

// Limiter allows at most points hits per key in each window.
// A window starts at the first hit for a key and its counter expires with it.
// State lives in this process only and is lost on restart.
type Limiter struct {
	points int
	window time.Duration
	store  *cache.Cache
}

// New creates a limiter. Non-positive arguments fall back to the defaults.
func New(points int, window time.Duration) *Limiter {
	if points <= 0 {
		points = DefaultPoints
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		points: points,
		window: window,
		store:  cache.New(window, 2*window),
	}
}

// Allow consumes one point for key and reports whether it was within budget.
func (l *Limiter) Allow(key string) bool {
	for {
		// Add only succeeds for a missing or expired key, opening a new window.
		if err := l.store.Add(key, 1, l.window); err == nil {
			return true
		}

		n, err := l.store.IncrementInt(key, 1)
		if err != nil {
			// expired between Add and IncrementInt
			continue
		}
		return n <= l.points
	}
}

// Remaining reports the points left in the current window for key
func (l *Limiter) Remaining(key string) int {
	v, ok := l.store.Get(key)
	if !ok {
		return l.points
	}
	used, _ := v.(int)
	if used >= l.points {
		return 0
	}
	return l.points - used
}

// Reset forgets the window for key
func (l *Limiter) Reset(key string) {
	l.store.Delete(key)
}

// Points returns the per-window budget
func (l *Limiter) Points() int {
	return l.points
}

// Window returns the window length
func (l *Limiter) Window() time.Duration {
	return l.window
}
