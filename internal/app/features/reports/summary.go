// internal/app/features/reports/summary.go
package reports

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/shiftboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	statusPresent   = "Present"
	statusAbsent    = "Absent"
	statusScheduled = "Scheduled"

	unfilled = "UNFILLED"
	blank    = "-"
)

var (
	scheduleHeader = []string{"Shift Name", "Shift Start", "Shift End", "Volunteer Name", "Group", "Status"}
	statsHeader    = []string{"Name", "Group", "Total Hours", "Shifts Completed", "Late/Absent"}
)

// eventData is everything a report needs about one event.
type eventData struct {
	Shifts      []models.Shift
	Assignments []models.Assignment
	Volunteers  []models.Volunteer
}

func (h *Handler) load(ctx context.Context, eventID primitive.ObjectID) (eventData, error) {
	var d eventData
	var err error
	if d.Shifts, err = h.Shifts.List(ctx, eventID); err != nil {
		return d, err
	}
	if d.Assignments, err = h.Assignments.ListByEvent(ctx, eventID); err != nil {
		return d, err
	}
	if d.Volunteers, err = h.Volunteers.List(ctx, eventID, ""); err != nil {
		return d, err
	}
	return d, nil
}

// scheduleLine is one row of the master schedule. Volunteer is
// "UNFILLED" for a shift nobody is assigned to.
type scheduleLine struct {
	Shift     string
	Start     time.Time
	End       time.Time
	Volunteer string
	Group     string
	Status    string
}

// attendance classifies one assignment at now.
func attendance(a models.Assignment, sh models.Shift, now time.Time) string {
	switch {
	case a.CheckedIn:
		return statusPresent
	case now.After(sh.EndTime):
		return statusAbsent
	default:
		return statusScheduled
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return blank
	}
	return s
}

// schedule flattens shifts and their assignments in shift start order.
// Volunteers within a shift are ordered by name.
func schedule(d eventData, now time.Time) []scheduleLine {
	vols := make(map[primitive.ObjectID]models.Volunteer, len(d.Volunteers))
	for _, v := range d.Volunteers {
		vols[v.ID] = v
	}
	byShift := make(map[primitive.ObjectID][]models.Assignment)
	for _, a := range d.Assignments {
		byShift[a.ShiftID] = append(byShift[a.ShiftID], a)
	}

	shifts := append([]models.Shift(nil), d.Shifts...)
	sort.SliceStable(shifts, func(i, j int) bool {
		if !shifts[i].StartTime.Equal(shifts[j].StartTime) {
			return shifts[i].StartTime.Before(shifts[j].StartTime)
		}
		return shifts[i].Name < shifts[j].Name
	})

	var out []scheduleLine
	for _, sh := range shifts {
		as := byShift[sh.ID]
		if len(as) == 0 {
			out = append(out, scheduleLine{
				Shift: orDash(sh.Name), Start: sh.StartTime, End: sh.EndTime,
				Volunteer: unfilled, Group: blank, Status: blank,
			})
			continue
		}
		rows := make([]scheduleLine, 0, len(as))
		for _, a := range as {
			name, group := "Unknown", blank
			if v, ok := vols[a.VolunteerID]; ok {
				name, group = v.Name, orDash(v.Group)
			}
			rows = append(rows, scheduleLine{
				Shift: orDash(sh.Name), Start: sh.StartTime, End: sh.EndTime,
				Volunteer: name, Group: group, Status: attendance(a, sh, now),
			})
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return strings.ToLower(rows[i].Volunteer) < strings.ToLower(rows[j].Volunteer)
		})
		out = append(out, rows...)
	}
	return out
}

// volunteerStat summarizes one volunteer's attendance. Hours count only
// shifts they checked in to.
type volunteerStat struct {
	Name      string
	Group     string
	Hours     float64
	Completed int
	Late      int
	Absent    int
}

// Missed is the Late/Absent column.
func (s volunteerStat) Missed() int { return s.Late + s.Absent }

// volunteerStats returns one entry per volunteer in roster order.
// Late means the shift is underway without a check-in; Absent means it
// ended without one.
func volunteerStats(d eventData, now time.Time) []volunteerStat {
	shifts := make(map[primitive.ObjectID]models.Shift, len(d.Shifts))
	for _, sh := range d.Shifts {
		shifts[sh.ID] = sh
	}
	byVol := make(map[primitive.ObjectID][]models.Assignment)
	for _, a := range d.Assignments {
		byVol[a.VolunteerID] = append(byVol[a.VolunteerID], a)
	}

	out := make([]volunteerStat, 0, len(d.Volunteers))
	for _, v := range d.Volunteers {
		st := volunteerStat{Name: v.Name, Group: orDash(v.Group)}
		for _, a := range byVol[v.ID] {
			sh, ok := shifts[a.ShiftID]
			if !ok {
				continue
			}
			switch {
			case a.CheckedIn:
				st.Hours += sh.Hours()
				st.Completed++
			case now.After(sh.EndTime):
				st.Absent++
			case now.After(sh.StartTime):
				st.Late++
			}
		}
		out = append(out, st)
	}
	return out
}

// signInLine is one row of the printable sign-in sheet.
type signInLine struct {
	Volunteer string
	Shift     string
	Date      string
	Time      string
}

// signInSheet lists every assignment chronologically, then by shift and
// volunteer name.
func signInSheet(d eventData, loc *time.Location) []signInLine {
	lines := schedule(d, time.Time{})
	kept := lines[:0]
	for _, l := range lines {
		if l.Volunteer != unfilled {
			kept = append(kept, l)
		}
	}
	out := make([]signInLine, 0, len(kept))
	for _, l := range kept {
		out = append(out, signInLine{
			Volunteer: l.Volunteer,
			Shift:     l.Shift,
			Date:      l.Start.In(loc).Format("1/2"),
			Time:      l.Start.In(loc).Format("3:04 PM") + " – " + l.End.In(loc).Format("3:04 PM"),
		})
	}
	return out
}
