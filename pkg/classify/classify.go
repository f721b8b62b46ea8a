// Package classify assigns each form field a normalization tag derived from
// its declared type and inline list of values.
package classify

import (
	"strings"

	"github.com/goliatone/go-formintake/pkg/schema"
)

// Tag selects the normalization rule applied to a field value.
type Tag string

const (
	TagLOVYesNo     Tag = "LOV_YES_NO"
	TagLOVOneTwo    Tag = "LOV_ONE_TWO"
	TagMasterdata   Tag = "MASTERDATA"
	TagUnclassified Tag = "UNCLASSIFIED"
)

// Tags lists every tag in report order.
func Tags() []Tag {
	return []Tag{TagLOVYesNo, TagLOVOneTwo, TagMasterdata, TagUnclassified}
}

var (
	yesNoCodes  = []string{"no", "yes"}
	oneTwoCodes = []string{"1", "2"}
)

// Classify returns the tag for a field descriptor. It is pure and total.
//
// Fields backed by an external master-data list are always MASTERDATA, even
// when their literal codes look like a binary list: the external list owns
// its codes and they must never be rewritten.
func Classify(field schema.FieldDescriptor) Tag {
	if field.DeclaredType == schema.DeclaredTypeMasterdataRef {
		return TagMasterdata
	}
	if len(field.ListOfValues) == 0 {
		return TagUnclassified
	}

	codes := codeSet(field.ListOfValues)
	switch {
	case sameSet(codes, yesNoCodes):
		return TagLOVYesNo
	case sameSet(codes, oneTwoCodes):
		return TagLOVOneTwo
	default:
		return TagUnclassified
	}
}

// Schema classifies every field of a form.
func Schema(form schema.FormSchema) map[string]Tag {
	out := make(map[string]Tag, len(form.Fields))
	for name, field := range form.Fields {
		out[name] = Classify(field)
	}
	return out
}

// codeSet lower-cases and trims the codes. Blank codes are the empty
// placeholder option of select widgets and are ignored.
func codeSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		code := strings.ToLower(strings.TrimSpace(value))
		if code == "" {
			continue
		}
		set[code] = struct{}{}
	}
	return set
}

func sameSet(set map[string]struct{}, codes []string) bool {
	if len(set) != len(codes) {
		return false
	}
	for _, code := range codes {
		if _, ok := set[code]; !ok {
			return false
		}
	}
	return true
}
