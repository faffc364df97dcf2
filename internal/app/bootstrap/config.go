// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/passcheck"
	"github.com/dalemusser/shiftboard/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Shiftboard.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: SHIFTBOARD_MONGO_URI, SHIFTBOARD_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "shiftboard", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "shiftboard-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session lifetime (e.g., 720h)"},
	{Name: "csrf_key", Default: "", Desc: "CSRF signing key, 32 bytes (blank derives from session_key)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@shiftboard.app", Desc: "From email address"},
	{Name: "mail_from_name", Default: "Shiftboard", Desc: "From display name"},
	{Name: "contact_notify_to", Default: "", Desc: "Address notified of contact form messages (blank disables)"},

	// Broadcast email
	{Name: "broadcast_accounts", Default: "", Desc: "Broadcast sending accounts as user:pass,user:pass (at least 3)"},
	{Name: "broadcast_batch_size", Default: 25, Desc: "BCC recipients per broadcast message"},

	// Base URL for email links and OAuth callbacks
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for email links"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Analytics dashboard
	{Name: "analytics_password_hash", Default: "", Desc: "Hex SHA-256 of the /analytics password (blank disables the dashboard)"},

	// Auto-assign optimizer
	{Name: "scheduler_url", Default: "", Desc: "Auto-assign scheduler base URL (blank disables auto-assign)"},
	{Name: "scheduler_api_key", Default: "", Desc: "Auto-assign scheduler API key"},

	// Login rate limiting
	{Name: "login_max_attempts", Default: 5, Desc: "Failed logins allowed per email within login_window"},
	{Name: "login_window", Default: "10m", Desc: "Login rate-limit window"},

	// Comma-separated IPs/CIDRs of reverse proxies whose X-Forwarded-For is believed
	{Name: "trusted_proxies", Default: "", Desc: "Reverse proxy IPs or CIDRs allowed to set X-Forwarded-For (blank trusts none)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "password_reset_expiry", Default: "1h", Desc: "Password reset link lifetime"},

	// Timeouts
	{Name: "timeout_short", Default: "", Desc: "Timeout for single-document operations (e.g., 5s)"},
	{Name: "timeout_medium", Default: "", Desc: "Timeout for list and page operations (e.g., 10s)"},
	{Name: "timeout_long", Default: "", Desc: "Timeout for exports and bulk operations (e.g., 30s)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, SHIFTBOARD_* for app) and
// flags, merged with precedence: flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SHIFTBOARD", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 30*24*time.Hour),
		CSRFKey:          appValues.String("csrf_key"),

		// Email/SMTP
		MailSMTPHost:    appValues.String("mail_smtp_host"),
		MailSMTPPort:    appValues.Int("mail_smtp_port"),
		MailSMTPUser:    appValues.String("mail_smtp_user"),
		MailSMTPPass:    appValues.String("mail_smtp_pass"),
		MailFrom:        appValues.String("mail_from"),
		MailFromName:    appValues.String("mail_from_name"),
		ContactNotifyTo: appValues.String("contact_notify_to"),

		// Broadcast
		BroadcastAccounts:  appValues.String("broadcast_accounts"),
		BroadcastBatchSize: appValues.Int("broadcast_batch_size"),

		BaseURL: appValues.String("base_url"),

		// Google OAuth
		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		AnalyticsPasswordHash: appValues.String("analytics_password_hash"),

		SchedulerURL:    appValues.String("scheduler_url"),
		SchedulerAPIKey: appValues.String("scheduler_api_key"),

		LoginMaxAttempts: appValues.Int("login_max_attempts"),
		LoginWindow:      appValues.Duration("login_window", 10*time.Minute),

		TrustedProxies: appValues.String("trusted_proxies"),

		AuditLogAuth: appValues.String("audit_log_auth"),

		PasswordResetExpiry: appValues.Duration("password_reset_expiry", time.Hour),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Shiftboard validates the MongoDB URI format before attempting to
// connect, insists on a strong session key in production, and rejects
// an analytics hash that is not a SHA-256 hex digest.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SessionKey) < 32 {
		return fmt.Errorf("session_key must be at least 32 characters in production")
	}

	if appCfg.AnalyticsPasswordHash != "" && !passcheck.ValidHash(appCfg.AnalyticsPasswordHash) {
		return fmt.Errorf("analytics_password_hash must be a 64-character hex SHA-256 digest")
	}

	if appCfg.LoginMaxAttempts < 1 {
		return fmt.Errorf("login_max_attempts must be at least 1")
	}

	if _, err := ratelimit.ParseProxies(appCfg.TrustedProxies); err != nil {
		return err
	}

	return nil
}
