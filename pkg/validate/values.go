package validate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-formintake/pkg/schema"
)

// Reasons attached to a ValueProblem.
const (
	ReasonNotInList = "not in list of values"
	ReasonNotNumber = "not numeric"
	ReasonTooLong   = "too long"
)

// ValueProblem describes one submitted value that does not fit its field.
type ValueProblem struct {
	Field  string
	Value  string
	Reason string
}

// InvalidValuesError lists every field whose value failed a data check.
// Problems are sorted by field name.
type InvalidValuesError struct {
	FormID   string
	Problems []ValueProblem
}

func (e *InvalidValuesError) Error() string {
	return "invalid field values: " + e.Summary()
}

// Summary renders the problems as "field (reason)" pairs.
func (e *InvalidValuesError) Summary() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, fmt.Sprintf("%s (%s)", p.Field, p.Reason))
	}
	return strings.Join(parts, ", ")
}

// CheckValues verifies submitted values against their field declarations:
// inline list-of-values membership, numeric parsing and maximum length.
// Blank values are left to Validate. Master-data fields are not checked since
// the external list owns their codes.
func CheckValues(form schema.FormSchema, submission schema.CanonicalSubmission) error {
	var problems []ValueProblem
	for name, value := range submission.Values {
		field, ok := form.Field(name)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		if reason := checkValue(field, value); reason != "" {
			problems = append(problems, ValueProblem{Field: name, Value: value, Reason: reason})
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Slice(problems, func(i, j int) bool { return problems[i].Field < problems[j].Field })
	return &InvalidValuesError{FormID: form.FormID, Problems: problems}
}

func checkValue(field schema.FieldDescriptor, value string) string {
	switch field.DeclaredType {
	case schema.DeclaredTypeLOV:
		if options := field.Options(); hasCodes(options) && !inList(options, value) {
			return ReasonNotInList
		}
	case schema.DeclaredTypeNumeric:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return ReasonNotNumber
		}
	}
	if field.MaxLength > 0 && utf8.RuneCountInString(value) > field.MaxLength {
		return fmt.Sprintf("%s, max %d characters", ReasonTooLong, field.MaxLength)
	}
	return ""
}

func hasCodes(options []string) bool {
	for _, option := range options {
		if strings.TrimSpace(option) != "" {
			return true
		}
	}
	return false
}

func inList(options []string, value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, option := range options {
		if strings.ToLower(strings.TrimSpace(option)) == value {
			return true
		}
	}
	return false
}
