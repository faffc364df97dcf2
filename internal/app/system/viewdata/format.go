package viewdata

import (
	"strings"
	"time"
	"unicode"
)

// Window formats a shift as "Sat Mar 7, 9:00 AM – 12:00 PM" in loc.
// A window that ends on another day repeats the date.
func Window(start, end time.Time, loc *time.Location) string {
	start, end = start.In(loc), end.In(loc)
	s := start.Format("Mon Jan 2, 3:04 PM")
	if start.Format("2006-01-02") == end.Format("2006-01-02") {
		return s + " – " + end.Format("3:04 PM")
	}
	return s + " – " + end.Format("Mon Jan 2, 3:04 PM")
}

// Stamp formats an instant for tables and feeds.
func Stamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("Jan 2 3:04 PM")
}

// DateTimeLocal formats t for an <input type="datetime-local"> in loc.
func DateTimeLocal(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format("2006-01-02T15:04")
}

// FileSlug turns a display name into a download file name stem.
func FileSlug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "event"
	}
	return s
}
