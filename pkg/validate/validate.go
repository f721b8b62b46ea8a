// Package validate checks canonical submissions against their form schema.
package validate

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formintake/pkg/schema"
)

// MissingFieldsError lists every mandatory field that was absent or blank.
type MissingFieldsError struct {
	FormID string
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing mandatory fields: " + strings.Join(e.Fields, ", ")
}

// Validate reports all mandatory fields of form that have no value or only
// whitespace in submission. It returns nil when every mandatory field is set.
func Validate(form schema.FormSchema, submission schema.CanonicalSubmission) error {
	var missing []string
	for name, field := range form.Fields {
		if !field.Mandatory {
			continue
		}
		value, ok := submission.Value(name)
		if !ok || strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &MissingFieldsError{FormID: form.FormID, Fields: missing}
}
