// Package stats aggregates an event's shifts, assignments and volunteers
// into the numbers shown on the event dashboard.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/groupspec"
	"github.com/dalemusser/shiftboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fill statuses for a shift row.
const (
	StatusFilled   = "Filled"
	StatusUnfilled = "Unfilled"
)

// Input is everything Compute needs for one event.
type Input struct {
	Shifts      []models.Shift
	Assignments []models.Assignment
	Volunteers  []models.Volunteer
}

// GroupCount is one slice of the volunteers-by-group chart.
type GroupCount struct {
	Name  string
	Count int
}

// ShiftFill is one row of the shift fill table.
type ShiftFill struct {
	ShiftID   primitive.ObjectID
	Name      string
	Start     time.Time
	End       time.Time
	Required  int
	Filled    int
	Remaining int
	Status    string
}

// Dashboard holds the computed numbers.
type Dashboard struct {
	TotalVolunteers int
	TotalShifts     int
	TotalSlots      int
	Filled          int
	Unfilled        int
	FillRate        int // percent, rounded
	TotalHours      float64
	CheckedIn       int
	ActiveNow       int
	Late            int

	VolunteersByGroup []GroupCount
	ShiftFill         []ShiftFill
	Upcoming          []models.Shift
}

// MaxUpcoming caps the upcoming-shifts list.
const MaxUpcoming = 5

// NormalizeGroups converts any stored required_groups shape to a count map.
func NormalizeGroups(v any) map[string]int {
	return groupspec.Normalize(v)
}

// Compute aggregates in at time now.
func Compute(in Input, now time.Time) Dashboard {
	d := Dashboard{
		TotalVolunteers: len(in.Volunteers),
		TotalShifts:     len(in.Shifts),
		Filled:          len(in.Assignments),
	}

	shiftByID := make(map[primitive.ObjectID]models.Shift, len(in.Shifts))
	for _, s := range in.Shifts {
		shiftByID[s.ID] = s
		d.TotalSlots += groupspec.Total(s.RequiredGroups)
		d.TotalHours += s.Hours()
	}
	d.TotalHours = math.Round(d.TotalHours*10) / 10

	if d.TotalSlots > 0 {
		d.FillRate = int(math.Round(float64(d.Filled) / float64(d.TotalSlots) * 100))
	}
	if d.TotalSlots > d.Filled {
		d.Unfilled = d.TotalSlots - d.Filled
	}

	perShift := make(map[primitive.ObjectID]int, len(in.Shifts))
	for _, a := range in.Assignments {
		perShift[a.ShiftID]++
		if a.CheckedIn {
			d.CheckedIn++
			if a.CheckedOutAt == nil {
				d.ActiveNow++
			}
			continue
		}
		if a.LateDismissed {
			continue
		}
		if s, ok := shiftByID[a.ShiftID]; ok && s.StartTime.Before(now) {
			d.Late++
		}
	}

	groups := make(map[string]int)
	for _, v := range in.Volunteers {
		groups[v.GroupLabel()]++
	}
	for name, n := range groups {
		d.VolunteersByGroup = append(d.VolunteersByGroup, GroupCount{Name: name, Count: n})
	}
	sort.Slice(d.VolunteersByGroup, func(i, j int) bool {
		a, b := d.VolunteersByGroup[i], d.VolunteersByGroup[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})

	shifts := append([]models.Shift(nil), in.Shifts...)
	sort.SliceStable(shifts, func(i, j int) bool { return shifts[i].StartTime.Before(shifts[j].StartTime) })
	for _, s := range shifts {
		req := groupspec.Total(s.RequiredGroups)
		filled := perShift[s.ID]
		row := ShiftFill{
			ShiftID:  s.ID,
			Name:     s.Name,
			Start:    s.StartTime,
			End:      s.EndTime,
			Required: req,
			Filled:   filled,
			Status:   StatusUnfilled,
		}
		if req > filled {
			row.Remaining = req - filled
		} else {
			row.Status = StatusFilled
		}
		d.ShiftFill = append(d.ShiftFill, row)

		if !s.StartTime.Before(now) && len(d.Upcoming) < MaxUpcoming {
			d.Upcoming = append(d.Upcoming, s)
		}
	}
	return d
}
