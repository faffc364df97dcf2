package telemetry

import (
	"sort"
	"time"
)

// Store limits.
const (
	MaxPageViews = 500
	MaxEvents    = 500
	MaxErrors    = 100
)

// PageView is one page load reported by app.js.
type PageView struct {
	Path      string    `json:"path"`
	Referrer  string    `json:"referrer,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Event is a named client-side action with free-form properties.
type Event struct {
	Name       string         `json:"name"`
	Category   string         `json:"category,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// ErrorEntry is an uncaught browser error.
type ErrorEntry struct {
	Message   string         `json:"message"`
	Stack     string         `json:"stack,omitempty"`
	URL       string         `json:"url,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Export is the JSON document served by /analytics/export.
type Export struct {
	PageViews  []PageView   `json:"pageViews"`
	Events     []Event      `json:"events"`
	Errors     []ErrorEntry `json:"errors"`
	ExportedAt time.Time    `json:"exportedAt"`
}

// PageCount is one row of the top-pages table.
type PageCount struct {
	Path  string
	Count int
}

// Summary is the dashboard header: totals and the top pages.
type Summary struct {
	PageViews int
	Events    int
	Errors    int
	TopPages  []PageCount
}

// Analytics groups the three rings. The zero value is not usable; call New.
type Analytics struct {
	pageViews *Ring[PageView]
	events    *Ring[Event]
	errors    *Ring[ErrorEntry]
	now       func() time.Time
}

// New returns an empty store sized by the Max* limits.
func New() *Analytics {
	return &Analytics{
		pageViews: NewRing[PageView](MaxPageViews),
		events:    NewRing[Event](MaxEvents),
		errors:    NewRing[ErrorEntry](MaxErrors),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// TrackPageView records a page view stamped with the current UTC time.
func (a *Analytics) TrackPageView(path, referrer, userAgent string) {
	a.pageViews.Add(PageView{Path: path, Referrer: referrer, UserAgent: userAgent, Timestamp: a.now()})
}

// TrackEvent records a custom event.
func (a *Analytics) TrackEvent(name, category string, props map[string]any) {
	a.events.Add(Event{Name: name, Category: category, Properties: props, Timestamp: a.now()})
}

// LogError records a client-side error.
func (a *Analytics) LogError(message, stack, url string, ctx map[string]any) {
	a.errors.Add(ErrorEntry{Message: message, Stack: stack, URL: url, Context: ctx, Timestamp: a.now()})
}

// PageViews, Events and Errors return copies, newest first.
func (a *Analytics) PageViews() []PageView { return a.pageViews.List() }
func (a *Analytics) Events() []Event       { return a.events.List() }
func (a *Analytics) Errors() []ErrorEntry  { return a.errors.List() }

// ClearAll empties all three lists.
func (a *Analytics) ClearAll() {
	a.pageViews.Clear()
	a.events.Clear()
	a.errors.Clear()
}

// Export snapshots everything for download.
func (a *Analytics) Export() Export {
	return Export{
		PageViews:  a.PageViews(),
		Events:     a.Events(),
		Errors:     a.Errors(),
		ExportedAt: a.now(),
	}
}

// Summary returns the counts plus the ten most viewed paths.
func (a *Analytics) Summary() Summary {
	views := a.PageViews()
	counts := make(map[string]int)
	for _, v := range views {
		counts[v.Path]++
	}
	top := make([]PageCount, 0, len(counts))
	for p, n := range counts {
		top = append(top, PageCount{Path: p, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Path < top[j].Path
	})
	if len(top) > 10 {
		top = top[:10]
	}
	return Summary{
		PageViews: len(views),
		Events:    a.events.Len(),
		Errors:    a.errors.Len(),
		TopPages:  top,
	}
}
