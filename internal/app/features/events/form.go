// internal/app/features/events/form.go
package events

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/htmlsanitize"
	"github.com/dalemusser/shiftboard/internal/app/system/inputval"
	"github.com/dalemusser/shiftboard/internal/app/system/normalize"
	"github.com/dalemusser/shiftboard/internal/app/system/timezones"
	"github.com/dalemusser/shiftboard/internal/domain/models"
)

// dateLayout is the HTML date input format.
const dateLayout = "2006-01-02"

// RecurrenceOption is one entry of the recurrence select.
type RecurrenceOption struct {
	Value    string
	Label    string
	Selected bool
}

func recurrenceOptions(selected string) []RecurrenceOption {
	opts := []RecurrenceOption{
		{Value: models.RecurrenceNone, Label: "Does not repeat"},
		{Value: models.RecurrenceWeekly, Label: "Weekly"},
		{Value: models.RecurrenceBiweekly, Label: "Every two weeks"},
		{Value: models.RecurrenceMonthly, Label: "Monthly"},
	}
	for i := range opts {
		opts[i].Selected = opts[i].Value == selected
	}
	return opts
}

func validRecurrence(rule string) bool {
	switch rule {
	case models.RecurrenceNone, models.RecurrenceWeekly, models.RecurrenceBiweekly, models.RecurrenceMonthly:
		return true
	}
	return false
}

// eventForm is the parsed create/settings form.
type eventForm struct {
	Name        string
	Date        string
	TimeZone    string
	Description string
	Recurrence  string
}

func parseEventForm(r *http.Request) eventForm {
	return eventForm{
		Name:        normalize.Name(r.FormValue("name")),
		Date:        strings.TrimSpace(r.FormValue("date")),
		TimeZone:    strings.TrimSpace(r.FormValue("timezone")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Recurrence:  strings.ToUpper(strings.TrimSpace(r.FormValue("recurrence_rule"))),
	}
}

// validate returns the first problem, or "".
func (f eventForm) validate() string {
	res := inputval.ValidateEvent(inputval.EventInput{
		Name:        f.Name,
		Date:        f.Date,
		TimeZone:    f.TimeZone,
		Description: f.Description,
	}, timezones.Valid)
	if !validRecurrence(f.Recurrence) {
		res.Add("RecurrenceRule", "Choose a repeat option from the list.")
	}
	if res.HasErrors() {
		return res.First()
	}
	return ""
}

// date returns midnight of the form date in the form's zone, as UTC.
func (f eventForm) date() time.Time {
	return parseDay(f.Date, timezones.Location(f.TimeZone))
}

// parseDay parses YYYY-MM-DD at midnight in loc. Callers validate first.
func parseDay(s string, loc *time.Location) time.Time {
	d, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}
	}
	return d.UTC()
}

// description strips unsafe markup; descriptions are rendered as HTML.
func (f eventForm) description() string {
	return htmlsanitize.Sanitize(f.Description)
}
