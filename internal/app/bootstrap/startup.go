// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/shiftboard/internal/app/resources"
	"github.com/dalemusser/shiftboard/internal/app/system/ratelimit"
	"github.com/dalemusser/shiftboard/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	logger.Info("timeouts configured", zap.Any("timeouts", timeouts.Current()))

	proxies, err := ratelimit.ParseProxies(appCfg.TrustedProxies)
	if err != nil {
		return err
	}
	ratelimit.SetTrustedProxies(proxies)
	if len(proxies) > 0 {
		logger.Info("trusting forwarded client IPs", zap.String("proxies", appCfg.TrustedProxies))
	}

	resources.LoadSharedTemplates()
	return nil
}
