// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ugc is for organizer-authored rich text (event descriptions).
	ugc = func() *bluemonday.Policy {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "td", "th")
		return p
	}()

	// email is the narrow policy for broadcast message bodies.
	email = func() *bluemonday.Policy {
		p := bluemonday.NewPolicy()
		p.AllowElements("br", "p", "div", "strong", "em", "b", "i", "u")
		p.AllowStandardURLs()
		p.AllowAttrs("href").OnElements("a")
		p.RequireNoFollowOnLinks(true)
		return p
	}()
)

// Sanitize strips anything not allowed for user-generated content.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugc.Sanitize(s)
}

// SanitizeToHTML is Sanitize returning template.HTML for direct rendering.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// Email sanitizes an HTML email body.
func Email(s string) string {
	if s == "" {
		return ""
	}
	return email.Sanitize(s)
}

// IsPlainText reports whether s contains no tag-like "<...>" sequence.
func IsPlainText(s string) bool {
	i := strings.Index(s, "<")
	if i < 0 {
		return true
	}
	return !strings.Contains(s[i:], ">")
}

// PlainTextToHTML escapes s and wraps it in a paragraph, turning newlines into <br>.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	esc := html.EscapeString(s)
	esc = strings.ReplaceAll(esc, "\r\n", "\n")
	esc = strings.ReplaceAll(esc, "\n", "<br>")
	return "<p>" + esc + "</p>"
}

// PrepareForDisplay renders stored text that may be either plain text or HTML.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
