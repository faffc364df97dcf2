// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for Shiftboard.
//
// These values come from environment variables (SHIFTBOARD_*), config
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers ports, TLS, logging and CORS; everything specific to this app
// lives here and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: shiftboard-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// CSRFKey signs CSRF tokens. Blank derives one from SessionKey.
	CSRFKey string

	// Email/SMTP configuration for transactional mail (invites, resets, contact)
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// ContactNotifyTo receives a copy of each contact form message.
	ContactNotifyTo string

	// Broadcast sending accounts ("user:pass,user:pass,...") and BCC batch size.
	BroadcastAccounts  string
	BroadcastBatchSize int

	// Base URL for email links (invitations, password reset) and OAuth callbacks
	BaseURL string

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// AnalyticsPasswordHash is the hex SHA-256 of the /analytics password.
	AnalyticsPasswordHash string

	// External auto-assign optimizer
	SchedulerURL    string
	SchedulerAPIKey string

	// Login rate limiting
	LoginMaxAttempts int
	LoginWindow      time.Duration

	// TrustedProxies lists the peers whose forwarding headers name the client
	TrustedProxies string

	// Audit logging mode for auth events: all, db, log or off
	AuditLogAuth string

	PasswordResetExpiry time.Duration

	// Database operation timeouts (zero keeps the defaults)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
