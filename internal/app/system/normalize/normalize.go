// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"
	"unicode"
)

// Email trims and lower-cases an address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims and collapses internal whitespace; case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Group normalizes a volunteer group label the same way as Name.
func Group(s string) string {
	return Name(s)
}

// Phone keeps digits and a leading +, dropping punctuation and spaces.
func Phone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		if unicode.IsDigit(r) || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// QueryParam trims a search query; case is preserved.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// GroupFilter maps the "all" option of a group dropdown to "".
func GroupFilter(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return ""
	}
	return s
}
