// Package groupspec parses and formats shift group requirements.
//
// Requirements are written "Medical:2|Runners:4"; allow/exclude lists are
// written "Medical|Runners". A bare group name in a requirement counts 1.
package groupspec

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ParseList splits "A|B" (commas are accepted too) into trimmed, de-duplicated names.
func ParseList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' })
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		k := strings.ToLower(f)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	return out
}

// ParseRequired parses "A:1|B:2" into a count map. Counts must be
// non-negative integers; repeated groups are summed.
func ParseRequired(s string) (map[string]int, error) {
	out := make(map[string]int)
	for _, item := range strings.Split(s, "|") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, countStr, hasCount := strings.Cut(item, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("missing group name in %q", item)
		}
		n := 1
		if hasCount {
			v, err := strconv.Atoi(strings.TrimSpace(countStr))
			if err != nil || v < 0 {
				return nil, fmt.Errorf("invalid count for group %q", name)
			}
			n = v
		}
		out[name] += n
	}
	return out, nil
}

// Normalize accepts the shapes required_groups has been stored in
// (a map of counts, a JSON-decoded map, a list of "G:n" strings, or a
// single string) and returns a count map. Unparseable counts become 0.
func Normalize(v any) map[string]int {
	out := make(map[string]int)
	switch g := v.(type) {
	case nil:
	case map[string]int:
		for k, n := range g {
			out[k] = n
		}
	case map[string]any:
		for k, n := range g {
			out[k] = toInt(n)
		}
	case []string:
		for _, item := range g {
			addItem(out, item)
		}
	case []any:
		for _, item := range g {
			addItem(out, fmt.Sprint(item))
		}
	case string:
		for _, item := range strings.Split(g, "|") {
			if strings.TrimSpace(item) != "" {
				addItem(out, item)
			}
		}
	}
	return out
}

func addItem(out map[string]int, item string) {
	name, countStr, hasCount := strings.Cut(item, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if !hasCount {
		out[name] = 1
		return
	}
	n, _ := strconv.Atoi(strings.TrimSpace(countStr))
	out[name] = n
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		if math.IsNaN(n) {
			return 0
		}
		return int(n)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	}
	return 0
}

// Total sums the counts.
func Total(m map[string]int) int {
	t := 0
	for _, n := range m {
		t += n
	}
	return t
}

// FormatRequired renders m as "A:1|B:2" sorted by group name.
func FormatRequired(m map[string]int) string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = k + ":" + strconv.Itoa(m[k])
	}
	return strings.Join(parts, "|")
}

// FormatList renders a list as "A|B".
func FormatList(l []string) string {
	return strings.Join(l, "|")
}

// Allowed reports whether a volunteer in group may take a shift with the
// given allow and exclude lists. Exclusion wins; an empty allow list
// admits everyone. Matching is case-insensitive.
func Allowed(group string, allowed, excluded []string) bool {
	if containsFold(excluded, group) {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	return containsFold(allowed, group)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}
