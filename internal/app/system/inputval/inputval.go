// internal/app/system/inputval/inputval.go
package inputval

import (
	"fmt"
	"net/mail"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string
	Message string
}

// Result collects validation failures in field order.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Add appends a custom failure (cross-field rules).
func (r *Result) Add(field, msg string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: msg})
}

// IsValidEmail reports whether s is a bare addr-spec (no display name).
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t<>") {
		return false
	}
	local, domain, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(domain, "@") {
		return false
	}
	if !dotted(local) || !dotted(domain) {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Name == "" && addr.Address == s
}

func dotted(s string) bool {
	return s != "" && !strings.HasPrefix(s, ".") && !strings.HasSuffix(s, ".") && !strings.Contains(s, "..")
}

// IsValidHexColor accepts "#rgb" and "#rrggbb".
func IsValidHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}

// Validate checks struct fields against their `validate` tags and reports
// failures using the `label` tag. Supported rules:
//
//	required, max=N, min=N (string length), gte=X, lte=X (numbers),
//	email, hexcolor
//
// Rules other than required are skipped for empty values. Pointer fields
// are dereferenced; a nil pointer is empty.
func Validate(v any) *Result {
	res := &Result{}
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return res
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag := f.Tag.Get("validate")
		if tag == "" || !f.IsExported() {
			continue
		}
		label := f.Tag.Get("label")
		if label == "" {
			label = f.Name
		}
		if msg := checkField(rv.Field(i), tag, label); msg != "" {
			res.Add(f.Name, msg)
		}
	}
	return res
}

func checkField(fv reflect.Value, tag, label string) string {
	for fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			if hasRule(tag, "required") {
				return label + " is required."
			}
			return ""
		}
		fv = fv.Elem()
	}

	empty := fv.IsZero()
	if fv.Kind() == reflect.String {
		empty = strings.TrimSpace(fv.String()) == ""
	}

	for _, rule := range strings.Split(tag, ",") {
		name, arg, _ := strings.Cut(strings.TrimSpace(rule), "=")
		if name == "required" {
			if empty {
				return label + " is required."
			}
			continue
		}
		if empty {
			continue
		}
		if msg := applyRule(fv, name, arg, label); msg != "" {
			return msg
		}
	}
	return ""
}

func applyRule(fv reflect.Value, name, arg, label string) string {
	switch name {
	case "max", "min":
		if fv.Kind() != reflect.String {
			return ""
		}
		n, _ := strconv.Atoi(arg)
		l := utf8.RuneCountInString(strings.TrimSpace(fv.String()))
		if name == "max" && l > n {
			return fmt.Sprintf("%s must be at most %d characters.", label, n)
		}
		if name == "min" && l < n {
			return fmt.Sprintf("%s must be at least %d characters.", label, n)
		}
	case "gte", "lte":
		x, ok := number(fv)
		if !ok {
			return ""
		}
		lim, _ := strconv.ParseFloat(arg, 64)
		if name == "gte" && x < lim {
			return fmt.Sprintf("%s must be at least %s.", label, arg)
		}
		if name == "lte" && x > lim {
			return fmt.Sprintf("%s must be at most %s.", label, arg)
		}
	case "email":
		if !IsValidEmail(fv.String()) {
			return "A valid email address is required."
		}
	case "hexcolor":
		if !IsValidHexColor(fv.String()) {
			return label + " must be a hex color like #4f46e5."
		}
	}
	return ""
}

func number(fv reflect.Value) (float64, bool) {
	switch fv.Kind() {
	case reflect.Float32, reflect.Float64:
		return fv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(fv.Int()), true
	}
	return 0, false
}

func hasRule(tag, rule string) bool {
	for _, r := range strings.Split(tag, ",") {
		if strings.TrimSpace(r) == rule {
			return true
		}
	}
	return false
}
