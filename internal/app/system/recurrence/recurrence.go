// Package recurrence computes event dates for recurring events and expands
// recurring-shift forms into concrete shift windows.
package recurrence

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dalemusser/shiftboard/internal/domain/models"
)

// ErrNoRule is returned by NextOccurrence for an event that does not repeat.
var ErrNoRule = errors.New("recurrence: event has no rule")

// MaxSeriesDays bounds a recurring-shift date range.
const MaxSeriesDays = 366

// NextOccurrence returns the date of the next event in the series.
// Unknown rules advance by a week.
func NextOccurrence(rule string, date time.Time) (time.Time, error) {
	switch strings.ToUpper(strings.TrimSpace(rule)) {
	case models.RecurrenceNone:
		return time.Time{}, ErrNoRule
	case models.RecurrenceBiweekly:
		return date.AddDate(0, 0, 14), nil
	case models.RecurrenceMonthly:
		return date.AddDate(0, 1, 0), nil
	default:
		return date.AddDate(0, 0, 7), nil
	}
}

// OffsetDays is the whole number of days from one date to another,
// rounded so a DST change does not lose a day.
func OffsetDays(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// ShiftDates moves a shift window by days in loc, keeping wall-clock times.
func ShiftDates(start, end time.Time, days int, loc *time.Location) (time.Time, time.Time) {
	return start.In(loc).AddDate(0, 0, days), end.In(loc).AddDate(0, 0, days)
}

// Window is one generated shift slot.
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseClock parses "15:04".
func ParseClock(s string) (hour, min int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q", s)
	}
	return t.Hour(), t.Minute(), nil
}

// GenerateSeries returns one window per day between startDate and endDate
// (inclusive, "2006-01-02") whose weekday is in weekdays. Clock times are
// "15:04" in loc. An end clock at or before the start clock ends the next day.
func GenerateSeries(startDate, endDate, startClock, endClock string, weekdays []time.Weekday, loc *time.Location) ([]Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	from, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(startDate), loc)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q", startDate)
	}
	to, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(endDate), loc)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q", endDate)
	}
	if to.Before(from) {
		return nil, errors.New("end date must be on or after start date")
	}
	if OffsetDays(from, to) > MaxSeriesDays {
		return nil, fmt.Errorf("date range may not exceed %d days", MaxSeriesDays)
	}
	sh, sm, err := ParseClock(startClock)
	if err != nil {
		return nil, err
	}
	eh, em, err := ParseClock(endClock)
	if err != nil {
		return nil, err
	}
	if len(weekdays) == 0 {
		return nil, errors.New("select at least one day of the week")
	}
	want := make(map[time.Weekday]bool, len(weekdays))
	for _, d := range weekdays {
		want[d] = true
	}

	var out []Window
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if !want[d.Weekday()] {
			continue
		}
		y, m, day := d.Date()
		start := time.Date(y, m, day, sh, sm, 0, 0, loc)
		end := time.Date(y, m, day, eh, em, 0, 0, loc)
		if !end.After(start) {
			end = end.AddDate(0, 0, 1)
		}
		out = append(out, Window{Start: start, End: end})
	}
	return out, nil
}

// ParseWeekdays converts form values "0".."6" (Sunday=0) to weekdays,
// ignoring anything else.
func ParseWeekdays(vals []string) []time.Weekday {
	out := make([]time.Weekday, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if len(v) == 1 && v[0] >= '0' && v[0] <= '6' {
			out = append(out, time.Weekday(v[0]-'0'))
		}
	}
	return out
}
