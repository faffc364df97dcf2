// Package timezones holds the zones an organizer can pick for an event.
// Every event stores one of these IDs; shift times are entered and shown in
// that zone.
package timezones

import (
	"embed"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

//go:embed timezonedata/timezones.json
var data embed.FS

// Default is the zone a new event starts with.
const Default = "America/New_York"

type zone struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Region string `json:"region,omitempty"`
}

// Option is one entry of the zone select.
type Option struct {
	ID       string
	Label    string
	Selected bool
}

// Group is an optgroup of the zone select.
type Group struct {
	Region  string
	Options []Option
}

var (
	once    sync.Once
	known   map[string]bool
	regions []Group
)

func load() {
	once.Do(func() {
		known = map[string]bool{}
		raw, err := data.ReadFile("timezonedata/timezones.json")
		if err != nil {
			return
		}
		var list []zone
		if json.Unmarshal(raw, &list) != nil {
			return
		}
		byRegion := map[string][]Option{}
		for _, z := range list {
			known[z.ID] = true
			region := z.Region
			if region == "" {
				region = "Other"
			}
			byRegion[region] = append(byRegion[region], Option{ID: z.ID, Label: z.Label})
		}
		for region, opts := range byRegion {
			sort.SliceStable(opts, func(i, j int) bool { return opts[i].Label < opts[j].Label })
			regions = append(regions, Group{Region: region, Options: opts})
		}
		sort.Slice(regions, func(i, j int) bool { return regions[i].Region < regions[j].Region })
	})
}

// Options returns the zone select for an event form with selected marked.
// An empty or unknown selected falls back to Default.
func Options(selected string) []Group {
	load()
	if !known[selected] {
		selected = Default
	}
	out := make([]Group, 0, len(regions))
	for _, g := range regions {
		opts := make([]Option, len(g.Options))
		copy(opts, g.Options)
		for i := range opts {
			opts[i].Selected = opts[i].ID == selected
		}
		out = append(out, Group{Region: g.Region, Options: opts})
	}
	return out
}

// Valid reports whether an event may use id.
func Valid(id string) bool {
	load()
	return known[id]
}

// Location is the *time.Location of an event zone. Unknown zones read as UTC.
func Location(id string) *time.Location {
	if !Valid(id) {
		return time.UTC
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return time.UTC
	}
	return loc
}
