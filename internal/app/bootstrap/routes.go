// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"
	"sync"
	"time"

	aboutfeature "github.com/dalemusser/shiftboard/internal/app/features/about"
	accountfeature "github.com/dalemusser/shiftboard/internal/app/features/account"
	activityfeature "github.com/dalemusser/shiftboard/internal/app/features/activity"
	analyticsfeature "github.com/dalemusser/shiftboard/internal/app/features/analytics"
	assetsfeature "github.com/dalemusser/shiftboard/internal/app/features/assets"
	assignfeature "github.com/dalemusser/shiftboard/internal/app/features/assign"
	authgooglefeature "github.com/dalemusser/shiftboard/internal/app/features/authgoogle"
	broadcastfeature "github.com/dalemusser/shiftboard/internal/app/features/broadcast"
	checkinfeature "github.com/dalemusser/shiftboard/internal/app/features/checkin"
	contactfeature "github.com/dalemusser/shiftboard/internal/app/features/contact"
	dashboardfeature "github.com/dalemusser/shiftboard/internal/app/features/dashboard"
	_ "github.com/dalemusser/shiftboard/internal/app/features/dashboard/views"
	errorsfeature "github.com/dalemusser/shiftboard/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/shiftboard/internal/app/features/events"
	groupsfeature "github.com/dalemusser/shiftboard/internal/app/features/groups"
	healthfeature "github.com/dalemusser/shiftboard/internal/app/features/health"
	homefeature "github.com/dalemusser/shiftboard/internal/app/features/home"
	kioskfeature "github.com/dalemusser/shiftboard/internal/app/features/kiosk"
	loginfeature "github.com/dalemusser/shiftboard/internal/app/features/login"
	logoutfeature "github.com/dalemusser/shiftboard/internal/app/features/logout"
	reportsfeature "github.com/dalemusser/shiftboard/internal/app/features/reports"
	sharefeature "github.com/dalemusser/shiftboard/internal/app/features/share"
	shiftsfeature "github.com/dalemusser/shiftboard/internal/app/features/shifts"
	shifttemplatesfeature "github.com/dalemusser/shiftboard/internal/app/features/shifttemplates"
	termsfeature "github.com/dalemusser/shiftboard/internal/app/features/terms"
	volunteersfeature "github.com/dalemusser/shiftboard/internal/app/features/volunteers"
	"github.com/dalemusser/shiftboard/internal/app/store/audit"
	invitationstore "github.com/dalemusser/shiftboard/internal/app/store/invitations"
	"github.com/dalemusser/shiftboard/internal/app/store/oauthstate"
	"github.com/dalemusser/shiftboard/internal/app/store/passwordreset"
	userstore "github.com/dalemusser/shiftboard/internal/app/store/users"
	"github.com/dalemusser/shiftboard/internal/app/system/auditlog"
	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/broadcast"
	"github.com/dalemusser/shiftboard/internal/app/system/gates"
	"github.com/dalemusser/shiftboard/internal/app/system/mailer"
	"github.com/dalemusser/shiftboard/internal/app/system/ratelimit"
	"github.com/dalemusser/shiftboard/internal/app/system/scheduler"
	"github.com/dalemusser/shiftboard/internal/app/system/tasks"
	"github.com/dalemusser/shiftboard/internal/app/system/telemetry"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

var (
	bgMu sync.Mutex
	bg   *tasks.Runner
)

// stopBackground stops the job runner started by BuildHandler, if any.
func stopBackground() {
	bgMu.Lock()
	defer bgMu.Unlock()
	if bg != nil {
		bg.Stop()
		bg = nil
	}
}

// csrfKey returns the 32-byte CSRF signing key. Without an explicit
// csrf_key it is derived from the session key.
func csrfKey(appCfg AppConfig) []byte {
	if len(appCfg.CSRFKey) == 32 {
		return []byte(appCfg.CSRFKey)
	}
	sum := sha256.Sum256([]byte("csrf:" + appCfg.SessionKey))
	return sum[:]
}

// broadcastSenders builds one SMTP mailer per configured broadcast account.
func broadcastSenders(appCfg AppConfig, logger *zap.Logger) ([]broadcast.Sender, error) {
	accounts, err := broadcast.ParseAccounts(appCfg.BroadcastAccounts)
	if err != nil {
		return nil, err
	}
	senders := make([]broadcast.Sender, 0, len(accounts))
	for _, a := range accounts {
		senders = append(senders, mailer.New(mailer.Config{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			User:     a.User,
			Pass:     a.Pass,
			From:     a.User,
			FromName: appCfg.MailFromName,
		}, logger))
	}
	return senders, nil
}

// BuildHandler constructs the root HTTP handler (router) for Shiftboard.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It boots the template engine, applies
// the session, flash and CSRF middleware, starts the background sweepers,
// and mounts the feature routers: public pages, authentication, the event
// list, and every per-event feature under /events/{eventID}.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Re-read the user on each request so deleted accounts lose access immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: appCfg.AuditLogAuth, Admin: "all"})

	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)

	senders, err := broadcastSenders(appCfg, logger)
	if err != nil {
		logger.Error("broadcast accounts invalid", zap.Error(err))
		return nil, err
	}
	if len(senders) > 0 && len(senders) < broadcast.MinAccounts {
		logger.Warn("broadcast disabled: not enough sending accounts",
			zap.Int("configured", len(senders)), zap.Int("required", broadcast.MinAccounts))
	}

	// Process-local limiters and analytics.
	loginLimiter := ratelimit.NewEmailLimiter(appCfg.LoginMaxAttempts, appCfg.LoginWindow)
	resetLimiter := ratelimit.New(3, time.Hour)
	formThrottle := ratelimit.NewIPThrottle(10, 5, 30*time.Minute)
	beaconThrottle := ratelimit.NewIPThrottle(120, 30, 30*time.Minute)
	kioskThrottle := ratelimit.NewIPThrottle(240, 40, 30*time.Minute)
	gateThrottle := ratelimit.NewIPThrottle(5, 5, 30*time.Minute)
	analyticsStore := telemetry.New()

	stopBackground()
	bgMu.Lock()
	bg = tasks.NewRunner(logger,
		tasks.RateLimitSweepJob(logger, loginLimiter, resetLimiter, formThrottle, beaconThrottle, kioskThrottle, gateThrottle),
		tasks.OAuthStateCleanupJob(oauthstate.New(db), logger),
		tasks.PasswordResetCleanupJob(passwordreset.New(db, appCfg.PasswordResetExpiry), logger),
		tasks.InvitationExpiryJob(invitationstore.New(db), logger),
	)
	bg.Start()
	bgMu.Unlock()

	r := chi.NewRouter()

	// Health check endpoint for load balancers, outside sessions and CSRF.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	errorsHandler := errorsfeature.NewHandler()

	r.Group(func(r chi.Router) {
		// Global auth middleware: loads SessionUser into context if logged in.
		r.Use(sessionMgr.LoadSessionUser)
		r.Use(sessionMgr.Flashes)
		r.Use(csrf.Protect(csrfKey(appCfg),
			csrf.Secure(secure),
			csrf.Path("/"),
			csrf.ErrorHandler(http.HandlerFunc(errorsHandler.Forbidden)),
		))

		// Public pages
		homeHandler := homefeature.NewHandler(logger)
		r.Mount("/", homefeature.Routes(homeHandler))

		aboutHandler := aboutfeature.NewHandler(logger)
		r.Mount("/about", aboutfeature.Routes(aboutHandler))

		contactHandler := contactfeature.NewHandler(db, mail, appCfg.ContactNotifyTo, errLog, logger)
		r.Mount("/contact", contactfeature.Routes(contactHandler, formThrottle))

		termsHandler := termsfeature.NewHandler(logger)
		r.Mount("/terms", termsfeature.Routes(termsHandler))
		r.Handle("/privacy", termsfeature.PrivacyHandler(termsHandler))

		// Authentication
		googleEnabled := appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret != ""
		loginHandler := loginfeature.NewHandler(db, loginfeature.Deps{
			SessionMgr:    sessionMgr,
			AuditLog:      auditLog,
			Limiter:       loginLimiter,
			ResetLimiter:  resetLimiter,
			Mailer:        mail,
			ResetExpiry:   appCfg.PasswordResetExpiry,
			BaseURL:       appCfg.BaseURL,
			GoogleEnabled: googleEnabled,
		}, errLog, logger)
		r.Mount("/login", loginfeature.Routes(loginHandler))
		r.Mount("/signup", loginfeature.SignupRoutes(loginHandler))
		r.Mount("/forgot-password", loginfeature.ForgotRoutes(loginHandler, formThrottle))
		r.Mount("/reset-password", loginfeature.ResetRoutes(loginHandler))

		if googleEnabled {
			googleHandler := authgooglefeature.NewHandler(db, sessionMgr, auditLog,
				appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
			r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
		}

		logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
		r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

		accountHandler := accountfeature.NewHandler(db, sessionMgr, auditLog, errLog, logger)
		r.Mount("/account", accountfeature.Routes(accountHandler, sessionMgr))

		// Error pages
		r.Get("/forbidden", errorsHandler.Forbidden)
		r.Get("/unauthorized", errorsHandler.Unauthorized)

		// Organizer's own shift templates
		templatesHandler := shifttemplatesfeature.NewHandler(db, sessionMgr, errLog, logger)
		r.Mount("/shift-templates", shifttemplatesfeature.Routes(templatesHandler, sessionMgr))

		// Analytics beacons and dashboard
		analyticsHandler := analyticsfeature.NewHandler(analyticsStore, appCfg.AnalyticsPasswordHash, beaconThrottle, sessionMgr, errLog, logger)
		analyticsHandler.LoginThrottle = gateThrottle
		r.Mount("/analytics", analyticsfeature.Routes(analyticsHandler))

		// Event invitations (accept / decline by token)
		shareHandler := sharefeature.NewHandler(db, sessionMgr, mail, appCfg.BaseURL, errLog, logger)
		r.Mount("/invite", sharefeature.InviteRoutes(shareHandler, sessionMgr))

		// Events and everything scoped to one event
		dashboardHandler := dashboardfeature.NewHandler(db, errLog, logger)
		volunteersHandler := volunteersfeature.NewHandler(db, sessionMgr, errLog, logger)
		groupsHandler := groupsfeature.NewHandler(db, sessionMgr, errLog, logger)
		shiftsHandler := shiftsfeature.NewHandler(db, sessionMgr, errLog, logger)
		assignHandler := assignfeature.NewHandler(db, sessionMgr, scheduler.New(appCfg.SchedulerURL, appCfg.SchedulerAPIKey, logger), errLog, logger)
		checkinHandler := checkinfeature.NewHandler(db, sessionMgr, errLog, logger)
		kioskHandler := kioskfeature.NewHandler(db, kioskThrottle, errLog, logger)
		assetsHandler := assetsfeature.NewHandler(db, sessionMgr, errLog, logger)
		activityHandler := activityfeature.NewHandler(db, errLog, logger)
		broadcastHandler := broadcastfeature.NewHandler(db, sessionMgr, senders, appCfg.BroadcastBatchSize, errLog, logger)
		reportsHandler := reportsfeature.NewHandler(db, errLog, logger)

		eventsHandler := eventsfeature.NewHandler(db, sessionMgr, auditLog, errLog, logger)
		gate := gates.NewEventGate(db, logger)
		r.Mount("/events", eventsfeature.Routes(eventsHandler, sessionMgr, gate, func(er chi.Router) {
			dashboardfeature.Routes(dashboardHandler, er)
			er.Mount("/volunteers", volunteersfeature.Routes(volunteersHandler))
			er.Mount("/groups", groupsfeature.Routes(groupsHandler))
			er.Mount("/shifts", shiftsfeature.Routes(shiftsHandler))
			er.Mount("/assign", assignfeature.Routes(assignHandler))
			er.Mount("/checkin", checkinfeature.Routes(checkinHandler))
			er.Mount("/active", checkinfeature.ActiveRoutes(checkinHandler))
			er.Mount("/kiosk", kioskfeature.Routes(kioskHandler))
			er.Mount("/assets", assetsfeature.Routes(assetsHandler))
			er.Mount("/activity", activityfeature.Routes(activityHandler))
			er.Mount("/broadcast", broadcastfeature.Routes(broadcastHandler))
			er.Mount("/share", sharefeature.Routes(shareHandler))
			er.Mount("/reports", reportsfeature.Routes(reportsHandler))
		}))

		r.NotFound(errorsHandler.NotFound)
	})

	return r, nil
}
