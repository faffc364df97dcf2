package ratelimit

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func TestEmailLimiter_AllowsFiveFailuresThenDenies(t *testing.T) {
	clk := newClock()
	l := NewEmailLimiter(5, 10*time.Minute, WithClock(clk.Now))

	for i := 0; i < 5; i++ {
		allowed, remaining := l.Check("ada@example.com")
		require.True(t, allowed, "attempt %d should be allowed", i+1)
		assert.Equal(t, 5-i, remaining)
		l.RecordFailure("ada@example.com")
	}

	allowed, remaining := l.Check("ada@example.com")
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
}

func TestEmailLimiter_KeyIsCaseAndSpaceInsensitive(t *testing.T) {
	clk := newClock()
	l := NewEmailLimiter(5, 10*time.Minute, WithClock(clk.Now))

	for i := 0; i < 5; i++ {
		l.RecordFailure("  Ada@Example.COM ")
	}
	allowed, _ := l.Check("ada@example.com")
	assert.False(t, allowed)
}

func TestEmailLimiter_WindowResets(t *testing.T) {
	clk := newClock()
	l := NewEmailLimiter(5, 10*time.Minute, WithClock(clk.Now))

	for i := 0; i < 5; i++ {
		l.RecordFailure("ada@example.com")
	}
	clk.Advance(9*time.Minute + 59*time.Second)
	allowed, _ := l.Check("ada@example.com")
	assert.False(t, allowed, "still inside the window")

	clk.Advance(time.Second)
	allowed, remaining := l.Check("ada@example.com")
	assert.True(t, allowed, "window elapsed")
	assert.Equal(t, 5, remaining)

	// A failure after expiry starts a fresh window.
	l.RecordFailure("ada@example.com")
	_, remaining = l.Check("ada@example.com")
	assert.Equal(t, 4, remaining)
}

func TestEmailLimiter_WindowIsFixedFromFirstFailure(t *testing.T) {
	clk := newClock()
	l := NewEmailLimiter(5, 10*time.Minute, WithClock(clk.Now))

	l.RecordFailure("ada@example.com")
	clk.Advance(5 * time.Minute)
	l.RecordFailure("ada@example.com")
	_, remaining := l.Check("ada@example.com")
	assert.Equal(t, 3, remaining)

	// Ten minutes after the first failure the window is over even though
	// the second failure was only five minutes ago.
	clk.Advance(5 * time.Minute)
	_, remaining = l.Check("ada@example.com")
	assert.Equal(t, 5, remaining, "later failures must not extend the window")
}

func TestEmailLimiter_ResetClears(t *testing.T) {
	l := NewEmailLimiter(5, 10*time.Minute)
	for i := 0; i < 5; i++ {
		l.RecordFailure("ada@example.com")
	}
	l.Reset("ADA@example.com")
	allowed, remaining := l.Check("ada@example.com")
	assert.True(t, allowed)
	assert.Equal(t, 5, remaining)
}

func TestEmailLimiter_IndependentKeys(t *testing.T) {
	l := NewEmailLimiter(5, 10*time.Minute)
	for i := 0; i < 5; i++ {
		l.RecordFailure("a@example.com")
	}
	allowed, _ := l.Check("b@example.com")
	assert.True(t, allowed)
}

func TestEmailLimiter_Sweep(t *testing.T) {
	clk := newClock()
	l := NewEmailLimiter(5, 10*time.Minute, WithClock(clk.Now))

	l.RecordFailure("old@example.com")
	clk.Advance(6 * time.Minute)
	l.RecordFailure("new@example.com")
	clk.Advance(5 * time.Minute)

	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())
}

func TestEmailLimiter_Defaults(t *testing.T) {
	l := NewEmailLimiter(0, 0)
	assert.Equal(t, DefaultMaxAttempts, l.max)
	assert.Equal(t, DefaultWindow, l.window)
}

func TestEmailLimiter_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := NewEmailLimiter(5, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	<-done
}

func TestEmailLimiter_ConcurrentFailures(t *testing.T) {
	l := NewEmailLimiter(1000, time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.RecordFailure("ada@example.com")
		}()
	}
	wg.Wait()
	_, remaining := l.Check("ada@example.com")
	assert.Equal(t, 950, remaining)
}

func TestLimiter_AllowAndReset(t *testing.T) {
	l := New(2, time.Minute)
	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
	assert.True(t, l.Allow("other"), "keys are counted separately")

	l.Reset("k")
	assert.True(t, l.Allow("k"))
}

func TestLimiter_Sweep(t *testing.T) {
	clk := newClock()
	l := New(2, time.Minute)
	l.now = clk.Now
	l.Allow("a")
	clk.Advance(2 * time.Minute)
	assert.Equal(t, 1, l.Sweep())
}

func TestParseProxies(t *testing.T) {
	nets, err := ParseProxies(" 10.0.0.0/8, 192.0.2.10 ,, ::1")
	require.NoError(t, err)
	require.Len(t, nets, 3)
	assert.True(t, nets[1].Contains(net.ParseIP("192.0.2.10")))
	assert.False(t, nets[1].Contains(net.ParseIP("192.0.2.11")))

	nets, err = ParseProxies("")
	require.NoError(t, err)
	assert.Empty(t, nets)

	_, err = ParseProxies("10.0.0.0/8, lb.internal")
	assert.Error(t, err)
}

func TestClientIP(t *testing.T) {
	nets, err := ParseProxies("10.0.0.0/8")
	require.NoError(t, err)

	tests := []struct {
		name    string
		trusted []*net.IPNet
		xff     string
		xri     string
		remote  string
		want    string
	}{
		{"untrusted peer ignores xff", nil, "203.0.113.5", "", "192.0.2.1:1234", "192.0.2.1"},
		{"untrusted peer ignores x-real-ip", nil, "", "203.0.113.5", "192.0.2.1:1234", "192.0.2.1"},
		{"trusted peer uses xff", nets, "203.0.113.5, 10.0.0.1", "", "10.0.0.2:1234", "203.0.113.5"},
		{"spoofed leading xff entry", nets, "1.1.1.1, 203.0.113.5, 10.0.0.1", "", "10.0.0.2:1234", "203.0.113.5"},
		{"trusted peer uses x-real-ip", nets, "", "198.51.100.7", "10.0.0.2:1234", "198.51.100.7"},
		{"garbage headers", nets, "not-an-ip", "also bad", "10.0.0.2:1234", "10.0.0.2"},
		{"remote without port", nil, "", "", "192.0.2.1", "192.0.2.1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			SetTrustedProxies(tc.trusted)
			t.Cleanup(func() { SetTrustedProxies(nil) })

			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remote
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xri != "" {
				r.Header.Set("X-Real-IP", tc.xri)
			}
			assert.Equal(t, tc.want, ClientIP(r))
		})
	}
}

func TestIPThrottle_SpoofedHeaderDoesNotEvade(t *testing.T) {
	th := NewIPThrottle(60, 1, time.Minute)
	h := th.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 2)
	for _, fake := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest("POST", "/analytics/login", nil)
		req.RemoteAddr = "192.0.2.9:1000"
		req.Header.Set("X-Forwarded-For", fake)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestIPThrottle_Middleware(t *testing.T) {
	th := NewIPThrottle(60, 2, time.Minute)
	h := th.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/contact", nil)
		req.RemoteAddr = "192.0.2.9:1000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestIPThrottle_Sweep(t *testing.T) {
	clk := newClock()
	th := NewIPThrottle(60, 1, time.Minute)
	th.now = clk.Now
	th.Allow("a")
	clk.Advance(2 * time.Minute)
	th.Allow("b")
	assert.Equal(t, 1, th.Sweep())
}
