// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	invitationstore "github.com/dalemusser/shiftboard/internal/app/store/invitations"
	"github.com/dalemusser/shiftboard/internal/app/store/oauthstate"
	"github.com/dalemusser/shiftboard/internal/app/store/passwordreset"
	"go.uber.org/zap"
)

// Sweeper is anything holding expiring in-memory entries
// (ratelimit.EmailLimiter, ratelimit.Limiter, ratelimit.IPThrottle).
type Sweeper interface {
	Sweep() int
}

// RateLimitSweepJob drops expired rate-limit entries every 10 minutes.
func RateLimitSweepJob(logger *zap.Logger, sweepers ...Sweeper) Job {
	return Job{
		Name:     "rate-limit-sweep",
		Interval: 10 * time.Minute,
		Run: func(ctx context.Context) error {
			total := 0
			for _, s := range sweepers {
				if s != nil {
					total += s.Sweep()
				}
			}
			if total > 0 {
				logger.Debug("swept rate-limit entries", zap.Int("count", total))
			}
			return nil
		},
	}
}

// OAuthStateCleanupJob creates a job that removes expired OAuth state tokens.
// This is a backup for when MongoDB's TTL index cleanup is delayed.
func OAuthStateCleanupJob(stateStore *oauthstate.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "oauth-state-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := stateStore.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleaned up expired OAuth states", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// PasswordResetCleanupJob removes expired reset tokens.
func PasswordResetCleanupJob(resets *passwordreset.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "password-reset-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := resets.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleaned up expired password resets", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// InvitationExpiryJob flips pending invitations past their expiry to expired.
func InvitationExpiryJob(invites *invitationstore.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "invitation-expiry",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := invites.ExpireOld(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("expired event invitations", zap.Int64("count", count))
			}
			return nil
		},
	}
}
