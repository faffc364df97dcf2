// internal/app/features/analytics/dashboard.go
package analytics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/auth"
	"github.com/dalemusser/shiftboard/internal/app/system/formutil"
	"github.com/dalemusser/shiftboard/internal/app/system/passcheck"
	"github.com/dalemusser/shiftboard/internal/app/system/telemetry"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// recentRows is how many entries of each list the dashboard shows.
const recentRows = 25

type viewRow struct {
	Path     string
	Referrer string
	At       string
}

type eventRow struct {
	Name     string
	Category string
	At       string
}

type errorRow struct {
	Message string
	URL     string
	At      string
}

type dashboardData struct {
	formutil.Base

	Summary telemetry.Summary
	Views   []viewRow
	Events  []eventRow
	Errors  []errorRow
}

func stamp(t time.Time) string { return t.UTC().Format("2006-01-02 15:04:05 UTC") }

// ServeLogin renders GET /analytics/login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var data formutil.Base
	formutil.SetBase(&data, r, "Analytics", "/")
	if h.PasswordHash == "" {
		data.SetError("Analytics is not configured on this server.")
	}
	templates.Render(w, r, "analytics_login", data)
}

// HandleLogin checks the dashboard password and marks the session.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var data formutil.Base
	formutil.SetBase(&data, r, "Analytics", "/")

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/analytics/login")
		return
	}
	if h.PasswordHash == "" {
		data.SetError("Analytics is not configured on this server.")
		templates.Render(w, r, "analytics_login", data)
		return
	}
	if !passcheck.Verify(r.FormValue("password"), h.PasswordHash) {
		h.Log.Info("analytics: rejected password", zap.String("ip", r.RemoteAddr))
		data.SetError("Incorrect password.")
		templates.Render(w, r, "analytics_login", data)
		return
	}
	if err := h.SessionMgr.SetFlag(w, r, auth.AnalyticsKey, true); err != nil {
		h.ErrLog.LogServerError(w, r, "analytics: save session failed", err, "Could not sign in to analytics.", "/analytics/login")
		return
	}
	http.Redirect(w, r, "/analytics", http.StatusSeeOther)
}

// ServeDashboard renders GET /analytics.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{Summary: h.Store.Summary()}
	formutil.SetBase(&data.Base, r, "Analytics", "/")

	for i, v := range h.Store.PageViews() {
		if i == recentRows {
			break
		}
		data.Views = append(data.Views, viewRow{Path: v.Path, Referrer: v.Referrer, At: stamp(v.Timestamp)})
	}
	for i, e := range h.Store.Events() {
		if i == recentRows {
			break
		}
		data.Events = append(data.Events, eventRow{Name: e.Name, Category: e.Category, At: stamp(e.Timestamp)})
	}
	for i, e := range h.Store.Errors() {
		if i == recentRows {
			break
		}
		data.Errors = append(data.Errors, errorRow{Message: e.Message, URL: e.URL, At: stamp(e.Timestamp)})
	}

	templates.Render(w, r, "analytics_dashboard", data)
}

// ServeExport downloads everything as JSON.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	exp := h.Store.Export()
	filename := fmt.Sprintf("analytics_%s.json", exp.ExportedAt.Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exp); err != nil {
		h.Log.Warn("analytics export write failed", zap.Error(err))
	}
}

// HandleClear drops all stored analytics.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.Store.ClearAll()
	h.Log.Info("analytics cleared")
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Analytics cleared.")
	http.Redirect(w, r, "/analytics", http.StatusSeeOther)
}
