package classify

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/goliatone/go-formintake/pkg/schema"
)

// FormReport groups the fields of one form by tag. Field names are sorted.
type FormReport struct {
	FormID string
	Fields map[Tag][]string
}

// Report summarises classification across forms, sorted by form id.
type Report struct {
	Forms []FormReport
}

// NewReport classifies every field of the supplied forms.
func NewReport(forms ...schema.FormSchema) Report {
	report := Report{Forms: make([]FormReport, 0, len(forms))}
	for _, form := range forms {
		entry := FormReport{FormID: form.FormID, Fields: make(map[Tag][]string)}
		for name, tag := range Schema(form) {
			entry.Fields[tag] = append(entry.Fields[tag], name)
		}
		for tag := range entry.Fields {
			sort.Strings(entry.Fields[tag])
		}
		report.Forms = append(report.Forms, entry)
	}
	sort.Slice(report.Forms, func(i, j int) bool {
		return report.Forms[i].FormID < report.Forms[j].FormID
	})
	return report
}

// Totals counts fields per tag across all forms.
func (r Report) Totals() map[Tag]int {
	totals := make(map[Tag]int, len(Tags()))
	for _, form := range r.Forms {
		for tag, names := range form.Fields {
			totals[tag] += len(names)
		}
	}
	return totals
}

// WriteText renders the report as plain text.
func (r Report) WriteText(w io.Writer) error {
	var b strings.Builder
	for _, form := range r.Forms {
		fmt.Fprintf(&b, "form %s\n", form.FormID)
		for _, tag := range Tags() {
			names := form.Fields[tag]
			if len(names) == 0 {
				continue
			}
			fmt.Fprintf(&b, "  %-13s %d: %s\n", tag, len(names), strings.Join(names, ", "))
		}
	}
	totals := r.Totals()
	b.WriteString("totals\n")
	for _, tag := range Tags() {
		fmt.Fprintf(&b, "  %-13s %d\n", tag, totals[tag])
	}
	_, err := io.WriteString(w, b.String())
	return err
}
