// internal/app/features/analytics/beacon.go
package analytics

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/shiftboard/internal/app/system/limits"
)

// maxField caps any single string stored from a beacon.
const maxField = 2000

type pageViewIn struct {
	Path     string `json:"path"`
	Referrer string `json:"referrer"`
}

type eventIn struct {
	Name       string         `json:"name"`
	Category   string         `json:"category"`
	Properties map[string]any `json:"properties"`
}

type errorIn struct {
	Message string         `json:"message"`
	Stack   string         `json:"stack"`
	URL     string         `json:"url"`
	Context map[string]any `json:"context"`
}

// clip trims s and cuts it to at most maxField bytes on a rune boundary.
func clip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxField {
		return s
	}
	cut := maxField
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// decode reads a bounded JSON body into v. It writes the 400 itself.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxBeaconSize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.ErrLog.LogJSONError(w, r, "analytics: bad beacon body", err, http.StatusBadRequest, "Invalid JSON.")
		return false
	}
	return true
}

func badField(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// HandlePageView records POST /analytics/pageview.
func (h *Handler) HandlePageView(w http.ResponseWriter, r *http.Request) {
	var in pageViewIn
	if !h.decode(w, r, &in) {
		return
	}
	path := clip(in.Path)
	if path == "" {
		badField(w, "path is required")
		return
	}
	h.Store.TrackPageView(path, clip(in.Referrer), clip(r.UserAgent()))
	w.WriteHeader(http.StatusNoContent)
}

// HandleEvent records POST /analytics/event.
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var in eventIn
	if !h.decode(w, r, &in) {
		return
	}
	name := clip(in.Name)
	if name == "" {
		badField(w, "name is required")
		return
	}
	h.Store.TrackEvent(name, clip(in.Category), in.Properties)
	w.WriteHeader(http.StatusNoContent)
}

// HandleError records POST /analytics/error.
func (h *Handler) HandleError(w http.ResponseWriter, r *http.Request) {
	var in errorIn
	if !h.decode(w, r, &in) {
		return
	}
	msg := clip(in.Message)
	if msg == "" {
		badField(w, "message is required")
		return
	}
	h.Store.LogError(msg, clip(in.Stack), clip(in.URL), in.Context)
	w.WriteHeader(http.StatusNoContent)
}
