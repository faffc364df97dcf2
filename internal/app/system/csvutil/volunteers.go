// internal/app/system/csvutil/volunteers.go
package csvutil

import (
	"html/template"
	"io"
	"net/mail"
	"strconv"
	"strings"
)

// VolunteerCSVRow is the normalized row produced by PreScanVolunteersCSV.
type VolunteerCSVRow struct {
	Name       string
	Email      string // lower-case
	Phone      string
	Group      string
	MaxHours   *float64
	ExternalID string
}

// PreScanVolunteersCSV validates a volunteer upload. Columns:
//
//	name,email,phone,group,max_hours,external_id
//
// Only name is required. max_hours must be 0–168 when present.
func PreScanVolunteersCSV(r io.Reader) (rows []VolunteerCSVRow, htmlErr template.HTML, err error) {
	recs, rerr := readRecords(r, func(rec []string) bool {
		return headerIs(rec, "name") || headerIs(rec, "full name")
	})
	if rerr != nil {
		return nil, readError(rerr), nil
	}

	var errs []rowErr
	for _, rec := range recs {
		row := VolunteerCSVRow{
			Name:       rec.col(0),
			Email:      strings.ToLower(rec.col(1)),
			Phone:      rec.col(2),
			Group:      rec.col(3),
			ExternalID: rec.col(5),
		}
		bad := func(reason string) {
			errs = append(errs, rowErr{Line: rec.line, Label: row.Name, Reason: reason})
		}
		if row.Name == "" {
			bad("missing name")
			continue
		}
		if len(row.Name) > 100 {
			bad("name too long")
			continue
		}
		if len(row.Group) > 50 {
			bad("group name too long")
			continue
		}
		if row.Email != "" {
			if _, perr := mail.ParseAddress(row.Email); perr != nil {
				bad("invalid email")
				continue
			}
		}
		if s := rec.col(4); s != "" {
			h, perr := strconv.ParseFloat(s, 64)
			if perr != nil || h < 0 || h > 168 {
				bad("max_hours must be a number from 0 to 168")
				continue
			}
			row.MaxHours = &h
		}
		rows = append(rows, row)
	}

	if len(errs) > 0 {
		return nil, errorSummary("Each row needs a name; email, phone, group, max_hours and external_id are optional.", errs), nil
	}
	return rows, "", nil
}
