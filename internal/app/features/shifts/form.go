// internal/app/features/shifts/form.go
package shifts

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/csvutil"
	"github.com/dalemusser/shiftboard/internal/app/system/groupspec"
	"github.com/dalemusser/shiftboard/internal/app/system/inputval"
	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/app/system/viewdata"
	"github.com/dalemusser/shiftboard/internal/domain/models"
)

// shiftForm echoes the add/edit form back on error. Start and End hold
// datetime-local values in the event's zone.
type shiftForm struct {
	Name     string
	Start    string
	End      string
	Required string
	Allowed  string
	Excluded string
}

func parseShiftForm(r *http.Request) shiftForm {
	return shiftForm{
		Name:     normalize.Name(r.FormValue("name")),
		Start:    strings.TrimSpace(r.FormValue("start")),
		End:      strings.TrimSpace(r.FormValue("end")),
		Required: strings.TrimSpace(r.FormValue("required_groups")),
		Allowed:  strings.TrimSpace(r.FormValue("allowed_groups")),
		Excluded: strings.TrimSpace(r.FormValue("excluded_groups")),
	}
}

func formFromShift(s models.Shift, loc *time.Location) shiftForm {
	return shiftForm{
		Name:     s.Name,
		Start:    viewdata.DateTimeLocal(s.StartTime, loc),
		End:      viewdata.DateTimeLocal(s.EndTime, loc),
		Required: groupspec.FormatRequired(s.RequiredGroups),
		Allowed:  groupspec.FormatList(s.AllowedGroups),
		Excluded: groupspec.FormatList(s.ExcludedGroups),
	}
}

// parsedShift is a validated form.
type parsedShift struct {
	Name     string
	Start    time.Time
	End      time.Time
	Required map[string]int
	Allowed  []string
	Excluded []string
}

// parse validates the form in loc and returns the first problem as msg.
func (f shiftForm) parse(loc *time.Location) (parsedShift, string) {
	start, _ := csvutil.ParseShiftTime(f.Start, loc)
	end, _ := csvutil.ParseShiftTime(f.End, loc)
	if res := inputval.ValidateShift(inputval.ShiftInput{Name: f.Name, Start: start, End: end}); res.HasErrors() {
		return parsedShift{}, res.First()
	}
	req, err := groupspec.ParseRequired(f.Required)
	if err != nil {
		return parsedShift{}, "Required groups: " + err.Error() + ". Use Medical:2|Runners:1."
	}
	return parsedShift{
		Name:     f.Name,
		Start:    start,
		End:      end,
		Required: req,
		Allowed:  groupspec.ParseList(f.Allowed),
		Excluded: groupspec.ParseList(f.Excluded),
	}, ""
}

func (p parsedShift) model() models.Shift {
	return models.Shift{
		Name:           p.Name,
		StartTime:      p.Start,
		EndTime:        p.End,
		RequiredGroups: p.Required,
		AllowedGroups:  p.Allowed,
		ExcludedGroups: p.Excluded,
	}
}

func listURL(ev models.Event) string {
	return "/events/" + ev.ID.Hex() + "/shifts"
}
