// internal/app/system/ratelimit/email.go
package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Defaults for the sign-in throttle.
const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 10 * time.Minute
)

// User-facing messages for the sign-in form.
const (
	MsgTooManyAttempts    = "Too many login attempts. Please try again in 10 minutes."
	MsgInvalidCredentials = "Invalid login credentials"
)

// EmailLimiter counts failed sign-in attempts per email address.
//
// A window opens on the first failure and lasts for the configured
// duration. While attempts < max the caller may try again; once attempts
// reach max every check is denied until the window expires. A successful
// sign-in clears the entry.
type EmailLimiter struct {
	mu      sync.Mutex
	entries map[string]*attempts
	max     int
	window  time.Duration
	now     func() time.Time
}

type attempts struct {
	count   int
	resetAt time.Time
}

// Option configures an EmailLimiter.
type Option func(*EmailLimiter)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(l *EmailLimiter) { l.now = now }
}

// NewEmailLimiter creates a limiter allowing maxAttempts failures per window.
// Non-positive arguments fall back to 5 attempts / 10 minutes.
func NewEmailLimiter(maxAttempts int, window time.Duration, opts ...Option) *EmailLimiter {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	l := &EmailLimiter{
		entries: make(map[string]*attempts),
		max:     maxAttempts,
		window:  window,
		now:     time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Check reports whether another attempt is allowed and how many remain.
func (l *EmailLimiter) Check(email string) (allowed bool, remaining int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[emailKey(email)]
	if !ok || !l.now().Before(e.resetAt) {
		return true, l.max
	}
	if e.count >= l.max {
		return false, 0
	}
	return true, l.max - e.count
}

// RecordFailure counts a failed attempt, opening a new window when none is active.
func (l *EmailLimiter) RecordFailure(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := emailKey(email)
	now := l.now()
	e, ok := l.entries[key]
	if !ok || !now.Before(e.resetAt) {
		l.entries[key] = &attempts{count: 1, resetAt: now.Add(l.window)}
		return
	}
	e.count++
}

// Reset forgets all failures for email.
func (l *EmailLimiter) Reset(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, emailKey(email))
}

// Len is the number of tracked emails, expired or not.
func (l *EmailLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Sweep drops expired entries and returns how many were removed.
func (l *EmailLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for k, e := range l.entries {
		if !now.Before(e.resetAt) {
			delete(l.entries, k)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is canceled.
func (l *EmailLimiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = l.window
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
