// internal/app/system/csvutil/shifts.go
package csvutil

import (
	"html/template"
	"io"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/groupspec"
)

// ShiftCSVRow is the normalized row produced by PreScanShiftsCSV.
type ShiftCSVRow struct {
	Name           string
	Start          time.Time
	End            time.Time
	RequiredGroups map[string]int
	AllowedGroups  []string
	ExcludedGroups []string
}

var shiftTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04 PM",
}

// ParseShiftTime accepts RFC3339 (zone included) or a local wall-clock
// layout interpreted in loc.
func ParseShiftTime(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range shiftTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PreScanShiftsCSV validates a shifts upload. Columns:
//
//	name,start,end[,required_groups][,allowed_groups][,excluded_groups]
//
// Required groups use "Medical:2|Runners:1"; lists use "A|B". Times
// without a zone are read in loc. Either rows or htmlErr is returned; it
// never touches the database.
func PreScanShiftsCSV(r io.Reader, loc *time.Location) (rows []ShiftCSVRow, htmlErr template.HTML, err error) {
	if loc == nil {
		loc = time.UTC
	}
	recs, rerr := readRecords(r, func(rec []string) bool {
		return headerIs(rec, "name", "start") || headerIs(rec, "shift name", "start")
	})
	if rerr != nil {
		return nil, readError(rerr), nil
	}

	var errs []rowErr
	for _, rec := range recs {
		row := ShiftCSVRow{Name: rec.col(0)}
		bad := func(reason string) {
			errs = append(errs, rowErr{Line: rec.line, Label: row.Name, Reason: reason})
		}
		if row.Name == "" {
			bad("missing shift name")
			continue
		}
		start, ok := ParseShiftTime(rec.col(1), loc)
		if !ok {
			bad("invalid start time")
			continue
		}
		end, ok := ParseShiftTime(rec.col(2), loc)
		if !ok {
			bad("invalid end time")
			continue
		}
		if !end.After(start) {
			bad("end must be after start")
			continue
		}
		req, gerr := groupspec.ParseRequired(rec.col(3))
		if gerr != nil {
			bad(gerr.Error())
			continue
		}
		row.Start, row.End = start.UTC(), end.UTC()
		row.RequiredGroups = req
		row.AllowedGroups = groupspec.ParseList(rec.col(4))
		row.ExcludedGroups = groupspec.ParseList(rec.col(5))
		rows = append(rows, row)
	}

	if len(errs) > 0 {
		return nil, errorSummary(
			"Each row needs a name, a start and an end (e.g. 2025-06-01 09:00); end must be after start.", errs), nil
	}
	return rows, "", nil
}
