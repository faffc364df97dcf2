package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
)

// Flash is a one-shot banner carried across a redirect.
type Flash struct {
	Kind    string
	Message string
}

const flashKey ctxKey = "flash"

// AddFlash queues a banner for the next page view. Call it before writing
// the response (usually right before http.Redirect).
func (sm *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.log.Debug("session decode failed while adding flash", zap.Error(err))
	}
	sess.AddFlash(kind + "|" + msg)
	if err := sess.Save(r, w); err != nil {
		sm.log.Warn("failed to save flash", zap.Error(err))
	}
}

// Flashes pops any queued banner into the request context so view models
// can read it with FlashFrom.
func (sm *SessionManager) Flashes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.GetSession(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		vals := sess.Flashes()
		if len(vals) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		if err := sess.Save(r, w); err != nil {
			sm.log.Warn("failed to clear flashes", zap.Error(err))
		}
		// The newest banner wins.
		s, _ := vals[len(vals)-1].(string)
		f := parseFlash(s)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), flashKey, f)))
	})
}

func parseFlash(s string) *Flash {
	kind, msg, ok := strings.Cut(s, "|")
	if !ok {
		return &Flash{Kind: FlashSuccess, Message: s}
	}
	return &Flash{Kind: kind, Message: msg}
}

// FlashFrom returns the banner popped for this request, or nil.
func FlashFrom(r *http.Request) *Flash {
	f, _ := r.Context().Value(flashKey).(*Flash)
	return f
}
