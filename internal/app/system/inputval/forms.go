// internal/app/system/inputval/forms.go
package inputval

import (
	"time"

	"github.com/dalemusser/shiftboard/internal/app/system/authutil"
)

// LoginInput is the sign-in form.
type LoginInput struct {
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required" label:"Password"`
}

// SignupInput is the account creation form.
type SignupInput struct {
	FullName string `validate:"required,max=100" label:"Full name"`
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required" label:"Password"`
}

// ValidateSignup adds the password-strength rules to the tag rules.
func ValidateSignup(in SignupInput) *Result {
	res := Validate(in)
	if in.Password != "" {
		if err := authutil.ValidatePassword(in.Password); err != nil {
			res.Add("Password", err.Error()+".")
		}
	}
	return res
}

// VolunteerInput is the add/edit volunteer form.
type VolunteerInput struct {
	Name     string   `validate:"required,max=100" label:"Name"`
	Email    string   `validate:"email" label:"Email"`
	Phone    string   `validate:"max=30" label:"Phone"`
	Group    string   `validate:"max=50" label:"Group"`
	MaxHours *float64 `validate:"gte=0,lte=168" label:"Max hours"`
}

// ShiftInput is the add/edit shift form after time parsing.
type ShiftInput struct {
	Name  string `validate:"required,max=100" label:"Shift name"`
	Start time.Time
	End   time.Time
}

// ValidateShift checks the tag rules plus the time window.
func ValidateShift(in ShiftInput) *Result {
	res := Validate(in)
	switch {
	case in.Start.IsZero():
		res.Add("Start", "Invalid start time.")
	case in.End.IsZero():
		res.Add("End", "Invalid end time.")
	case !in.End.After(in.Start):
		res.Add("End", "End time must be after start time.")
	}
	return res
}

// ContactInput is the public contact form.
type ContactInput struct {
	FirstName string `validate:"required,max=100" label:"First name"`
	LastName  string `validate:"required,max=100" label:"Last name"`
	Email     string `validate:"required,email" label:"Email"`
	Subject   string `validate:"required,max=200" label:"Subject"`
	Message   string `validate:"required,min=10,max=5000" label:"Message"`
}

// GroupInput is the volunteer-group form.
type GroupInput struct {
	Name            string   `validate:"required,max=50" label:"Group name"`
	Color           string   `validate:"hexcolor" label:"Color"`
	Description     string   `validate:"max=500" label:"Description"`
	MaxHoursDefault *float64 `validate:"gte=0,lte=168" label:"Default max hours"`
}

// AssetInput is the asset form.
type AssetInput struct {
	Name       string `validate:"required,max=100" label:"Asset name"`
	Type       string `validate:"max=50" label:"Type"`
	Identifier string `validate:"max=100" label:"Identifier"`
}

// EventInput is the create-event and event-settings form.
type EventInput struct {
	Name        string `validate:"required,max=120" label:"Event name"`
	Date        string `validate:"required" label:"Date"`
	TimeZone    string `validate:"required" label:"Time zone"`
	Description string `validate:"max=5000" label:"Description"`
}

// ValidateEvent checks tag rules, the date format and the time zone.
func ValidateEvent(in EventInput, validZone func(string) bool) *Result {
	res := Validate(in)
	if in.Date != "" {
		if _, err := time.Parse("2006-01-02", in.Date); err != nil {
			res.Add("Date", "Date must be YYYY-MM-DD.")
		}
	}
	if in.TimeZone != "" && validZone != nil && !validZone(in.TimeZone) {
		res.Add("TimeZone", "Choose a time zone from the list.")
	}
	return res
}

// TemplateInput is the shift-template form.
type TemplateInput struct {
	Name         string `validate:"required,max=100" label:"Template name"`
	DefaultStart string `validate:"required" label:"Default start"`
	DefaultEnd   string `validate:"required" label:"Default end"`
	Description  string `validate:"max=500" label:"Description"`
}
