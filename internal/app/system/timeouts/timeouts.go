// Package timeouts holds the deadlines handlers put on database and other
// I/O work.
//
// Tiers:
//   - Ping: health checks
//   - Short: single-document reads and writes (load an event, toggle a check-in)
//   - Medium: list pages and dashboards
//   - Long: writes spanning collections (kiosk check-in, swaps, auto-assign)
//   - Batch: CSV imports, event clone, account deletion, broadcasts
//
// Bootstrap calls Configure with the timeout_* config keys; unset tiers keep
// their defaults.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

// Config is one value per tier. Zero fields mean "leave as is".
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

func defaults() Config {
	return Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
		Batch:  DefaultBatch,
	}
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(cur)
}

func Ping() time.Duration   { return get(func(c Config) time.Duration { return c.Ping }) }
func Short() time.Duration  { return get(func(c Config) time.Duration { return c.Short }) }
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }
func Long() time.Duration   { return get(func(c Config) time.Duration { return c.Long }) }
func Batch() time.Duration  { return get(func(c Config) time.Duration { return c.Batch }) }

func override(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// Configure overrides the tiers set in cfg. Call it before serving.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	override(&cur.Ping, cfg.Ping)
	override(&cur.Short, cfg.Short)
	override(&cur.Medium, cfg.Medium)
	override(&cur.Long, cfg.Long)
	override(&cur.Batch, cfg.Batch)
}

// Reset restores the defaults. Tests use it.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// Current returns the effective values.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was what ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "auto-assign replace")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if log != nil && ctx.Err() == context.DeadlineExceeded {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
