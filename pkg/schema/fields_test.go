package schema

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewFormSchema_RejectsDuplicateFields(t *testing.T) {
	_, err := NewFormSchema("registration", []FieldDescriptor{
		{Name: "district"},
		{Name: " district "},
	})
	if err == nil || !strings.Contains(err.Error(), `declares field "district" more than once`) {
		t.Fatalf("expected duplicate field error, got %v", err)
	}
}

func TestNewFormSchema_Validation(t *testing.T) {
	if _, err := NewFormSchema("  ", nil); err == nil {
		t.Fatalf("expected error for empty form id")
	}
	if _, err := NewFormSchema("f", []FieldDescriptor{{Name: ""}}); err == nil {
		t.Fatalf("expected error for unnamed field")
	}
}

func TestNewFormSchema_CopiesOptions(t *testing.T) {
	options := []string{"yes", "no"}
	form := MustNewFormSchema("f", FieldDescriptor{
		Name:         "hasLivestock",
		DeclaredType: DeclaredTypeLOV,
		ListOfValues: options,
	})
	options[0] = "mutated"

	field, ok := form.Field("hasLivestock")
	if !ok {
		t.Fatalf("field not found")
	}
	if diff := cmp.Diff([]string{"yes", "no"}, field.Options()); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestFormSchema_Accessors(t *testing.T) {
	form := MustNewFormSchema("f",
		FieldDescriptor{Name: "c", Mandatory: true},
		FieldDescriptor{Name: "a"},
		FieldDescriptor{Name: "b", Mandatory: true},
	)

	if diff := cmp.Diff([]string{"a", "b", "c"}, form.FieldNames()); diff != "" {
		t.Fatalf("field names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "c"}, form.MandatoryFields()); diff != "" {
		t.Fatalf("mandatory mismatch (-want +got):\n%s", diff)
	}
	if got := form.Fields["a"].DeclaredType; got != DeclaredTypeText {
		t.Fatalf("expected default text type, got %q", got)
	}
}

func TestParseDeclaredType(t *testing.T) {
	cases := map[string]DeclaredType{
		"":              DeclaredTypeText,
		"LOV":           DeclaredTypeLOV,
		"masterdataRef": DeclaredTypeMasterdataRef,
		"masterdata":    DeclaredTypeMasterdataRef,
		"integer":       DeclaredTypeNumeric,
		" other ":       DeclaredTypeOther,
	}
	for input, want := range cases {
		got, err := ParseDeclaredType(input)
		if err != nil {
			t.Fatalf("ParseDeclaredType(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseDeclaredType(%q) = %q, want %q", input, got, want)
		}
	}
	if _, err := ParseDeclaredType("blob"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
