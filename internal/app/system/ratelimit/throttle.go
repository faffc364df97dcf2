// internal/app/system/ratelimit/throttle.go
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IPThrottle is a per-client token bucket for public POST endpoints
// (contact form, analytics ingest, kiosk search).
type IPThrottle struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
}

type client struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewIPThrottle allows perMinute requests per IP with the given burst.
// Clients idle longer than idle are forgotten by Sweep.
func NewIPThrottle(perMinute float64, burst int, idle time.Duration) *IPThrottle {
	return &IPThrottle{
		clients: make(map[string]*client),
		limit:   rate.Limit(perMinute / 60),
		burst:   burst,
		idle:    idle,
		now:     time.Now,
	}
}

// Allow reports whether ip may make another request now.
func (t *IPThrottle) Allow(ip string) bool {
	t.mu.Lock()
	c, ok := t.clients[ip]
	if !ok {
		c = &client{lim: rate.NewLimiter(t.limit, t.burst)}
		t.clients[ip] = c
	}
	c.lastSeen = t.now()
	t.mu.Unlock()
	return c.lim.Allow()
}

// Sweep forgets clients that have been idle longer than the idle duration.
func (t *IPThrottle) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := t.now().Add(-t.idle)
	n := 0
	for ip, c := range t.clients {
		if c.lastSeen.Before(cutoff) {
			delete(t.clients, ip)
			n++
		}
	}
	return n
}

// Middleware answers 429 once a client exhausts its bucket.
func (t *IPThrottle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.Allow(ClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
