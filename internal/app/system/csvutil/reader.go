// internal/app/system/csvutil/reader.go
package csvutil

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strings"
)

// rowErr describes one rejected line for the HTML summary.
type rowErr struct {
	Line   int
	Label  string
	Reason string
}

// readRecords reads all records from r, strips a UTF-8 BOM, and drops the
// first row when isHeader reports it is a header. Each returned record
// carries its 1-based line number.
func readRecords(r io.Reader, isHeader func([]string) bool) ([]record, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var out []record
	line := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, err
		}
		if line == 1 && isHeader(rec) {
			continue
		}
		if blank(rec) {
			continue
		}
		if len(out) >= MaxRows {
			return nil, fmt.Errorf("too many rows (max %d)", MaxRows)
		}
		out = append(out, record{line: line, fields: rec})
	}
	return out, nil
}

type record struct {
	line   int
	fields []string
}

func (r record) col(i int) string {
	if i < len(r.fields) {
		return strings.TrimSpace(r.fields[i])
	}
	return ""
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func headerIs(rec []string, names ...string) bool {
	if len(rec) < len(names) {
		return false
	}
	for i, n := range names {
		if !strings.EqualFold(strings.TrimSpace(rec[i]), n) {
			return false
		}
	}
	return true
}

// errorSummary formats the first few bad rows as HTML.
func errorSummary(intro string, errs []rowErr) template.HTML {
	var b strings.Builder
	b.WriteString("Upload rejected: one or more rows are invalid.<br>")
	b.WriteString(template.HTMLEscapeString(intro))
	b.WriteString("<br>")

	n := len(errs)
	if n > maxErrorExamples {
		n = maxErrorExamples
	}
	b.WriteString("Examples:<br>")
	for _, e := range errs[:n] {
		label := strings.TrimSpace(e.Label)
		if label == "" {
			label = "(missing)"
		}
		fmt.Fprintf(&b, "• line %d | %s → %s<br>",
			e.Line, template.HTMLEscapeString(label), template.HTMLEscapeString(e.Reason))
	}
	if len(errs) > n {
		fmt.Fprintf(&b, "…and %d more.<br>", len(errs)-n)
	}
	return template.HTML(b.String())
}

func readError(err error) template.HTML {
	return template.HTML(template.HTMLEscapeString("Could not read CSV: " + err.Error()))
}
