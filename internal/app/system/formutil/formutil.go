// Package formutil provides helpers for form re-rendering with validation errors.
//
// When a form submission fails validation, the form should be re-rendered with:
// - The user's previously entered values (echoed back)
// - An error message explaining what went wrong
//
// Example usage:
//
//	type signupData struct {
//		formutil.Base
//		FullName string
//		Email    string
//	}
//
//	data := signupData{FullName: full, Email: email}
//	formutil.SetBase(&data.Base, r, "Create account", "/")
//	data.SetError("Email is required.")
//	templates.Render(w, r, "signup", data)
package formutil

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/dalemusser/shiftboard/internal/domain/models"
)

// Base contains common fields for form pages that can be embedded in form data structs.
type Base struct {
	viewdata.BaseVM
	Error   template.HTML
	Success string
}

// SetBase populates the common Base fields from the request context.
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	b.BaseVM = viewdata.NewBaseVM(r, title, backDefault)
}

// SetError sets the error message, escaping it for display.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(template.HTMLEscapeString(msg))
}

// SetErrorHTML sets a pre-built HTML error summary (CSV row reports).
func (b *Base) SetErrorHTML(h template.HTML) {
	b.Error = h
}

// EventBase is Base for pages under /events/{eventID}.
type EventBase struct {
	viewdata.EventVM
	Error   template.HTML
	Success string
}

// SetEventBase populates the event page fields.
func SetEventBase(b *EventBase, r *http.Request, ev models.Event, title, tab string) {
	b.EventVM = viewdata.NewEventVM(r, ev, title, tab)
}

// SetError sets the error message, escaping it for display.
func (b *EventBase) SetError(msg string) {
	b.Error = template.HTML(template.HTMLEscapeString(msg))
}

// SetErrorHTML sets a pre-built HTML error summary.
func (b *EventBase) SetErrorHTML(h template.HTML) {
	b.Error = h
}

// Values returns the trimmed values of a multi-value form field, skipping blanks.
func Values(r *http.Request, key string) []string {
	var out []string
	for _, v := range r.Form[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Checked reports whether a checkbox field was submitted as on.
func Checked(r *http.Request, key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.FormValue(key))) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
