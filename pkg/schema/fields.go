package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// DeclaredType is the field type as declared by the schema source.
type DeclaredType string

const (
	DeclaredTypeText          DeclaredType = "text"
	DeclaredTypeLOV           DeclaredType = "lov"
	DeclaredTypeMasterdataRef DeclaredType = "masterdataRef"
	DeclaredTypeNumeric       DeclaredType = "numeric"
	DeclaredTypeOther         DeclaredType = "other"
)

// ParseDeclaredType resolves a declared type name case-insensitively. Empty
// input maps to DeclaredTypeText.
func ParseDeclaredType(value string) (DeclaredType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "text", "string":
		return DeclaredTypeText, nil
	case "lov", "list":
		return DeclaredTypeLOV, nil
	case "masterdataref", "masterdata":
		return DeclaredTypeMasterdataRef, nil
	case "numeric", "number", "integer":
		return DeclaredTypeNumeric, nil
	case "other":
		return DeclaredTypeOther, nil
	default:
		return "", fmt.Errorf("schema: unknown declared type %q", value)
	}
}

// FieldDescriptor describes one field of a form as declared by its schema.
type FieldDescriptor struct {
	Name         string
	Label        string
	DeclaredType DeclaredType
	Mandatory    bool
	// ListOfValues holds the inline option codes, in declaration order.
	ListOfValues []string
	// OptionsSource names the external list backing a masterdataRef field.
	OptionsSource string
	// MaxLength caps the value length in characters. Zero means unbounded.
	MaxLength int
}

// Options returns a copy of the inline option codes.
func (d FieldDescriptor) Options() []string {
	if len(d.ListOfValues) == 0 {
		return nil
	}
	return append([]string(nil), d.ListOfValues...)
}

// Clone returns a deep copy of the descriptor.
func (d FieldDescriptor) Clone() FieldDescriptor {
	d.ListOfValues = d.Options()
	return d
}

// FormSchema is the set of field descriptors for one form. Schemas are read
// only once constructed; callers must not mutate Fields.
type FormSchema struct {
	FormID string
	Fields map[string]FieldDescriptor
}

// NewFormSchema validates the descriptors and builds a FormSchema. Field names
// must be non-empty and unique within the form.
func NewFormSchema(formID string, fields []FieldDescriptor) (FormSchema, error) {
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return FormSchema{}, fmt.Errorf("schema: form id is required")
	}

	out := FormSchema{
		FormID: formID,
		Fields: make(map[string]FieldDescriptor, len(fields)),
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return FormSchema{}, fmt.Errorf("schema: form %q has a field without a name", formID)
		}
		if _, exists := out.Fields[name]; exists {
			return FormSchema{}, fmt.Errorf("schema: form %q declares field %q more than once", formID, name)
		}
		if field.DeclaredType == "" {
			field.DeclaredType = DeclaredTypeText
		}
		field.Name = name
		out.Fields[name] = field.Clone()
	}
	return out, nil
}

// MustNewFormSchema panics when the schema is invalid. Useful for tests.
func MustNewFormSchema(formID string, fields ...FieldDescriptor) FormSchema {
	out, err := NewFormSchema(formID, fields)
	if err != nil {
		panic(err)
	}
	return out
}

// Field looks up a descriptor by name.
func (s FormSchema) Field(name string) (FieldDescriptor, bool) {
	field, ok := s.Fields[name]
	if !ok {
		return FieldDescriptor{}, false
	}
	return field.Clone(), true
}

// FieldNames returns the sorted field names.
func (s FormSchema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MandatoryFields returns the sorted names of mandatory fields.
func (s FormSchema) MandatoryFields() []string {
	var names []string
	for name, field := range s.Fields {
		if field.Mandatory {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// FormatAdapter turns one schema document format into form schemas.
type FormatAdapter interface {
	Name() string
	Detect(src Source, raw []byte) bool
	Parse(ctx context.Context, doc Document) ([]FormSchema, error)
}
