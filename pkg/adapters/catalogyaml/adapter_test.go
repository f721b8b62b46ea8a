package catalogyaml

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formintake/pkg/schema"
)

const catalogYAML = `
forms:
  - id: farmer-registration
    fields:
      - name: firstName
        label: First name
        mandatory: true
        max_length: 80
      - name: hasLivestock
        type: lov
        mandatory: true
        options: [yes, no]
      - name: ownsLand
        options: ["1", "2"]
      - name: gender
        type: masterdataRef
        options: [yes, no]
        source: md.gender
      - name: farmSize
        type: numeric
`

func TestAdapter_Detect(t *testing.T) {
	a := New()
	src := schema.SourceFromFile("forms.yaml")

	if !a.Detect(src, []byte(catalogYAML)) {
		t.Fatalf("expected yaml catalog to be detected")
	}
	if !a.Detect(src, []byte(`{"forms":[{"id":"x","fields":[]}]}`)) {
		t.Fatalf("expected json catalog to be detected")
	}
	if a.Detect(src, []byte("openapi: 3.0.3\n")) {
		t.Fatalf("openapi document must not be detected")
	}
	if a.Detect(src, []byte(`{"forms": "nope"}`)) {
		t.Fatalf("non-sequence forms key must not be detected")
	}
}

func TestAdapter_Parse(t *testing.T) {
	doc := schema.MustNewDocument(schema.SourceFromFile("forms.yaml"), []byte(catalogYAML))

	forms, err := New().Parse(context.Background(), doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := []schema.FormSchema{
		schema.MustNewFormSchema("farmer-registration",
			schema.FieldDescriptor{Name: "firstName", Label: "First name", DeclaredType: schema.DeclaredTypeText, Mandatory: true, MaxLength: 80},
			schema.FieldDescriptor{Name: "hasLivestock", DeclaredType: schema.DeclaredTypeLOV, Mandatory: true, ListOfValues: []string{"yes", "no"}},
			schema.FieldDescriptor{Name: "ownsLand", DeclaredType: schema.DeclaredTypeLOV, ListOfValues: []string{"1", "2"}},
			schema.FieldDescriptor{Name: "gender", DeclaredType: schema.DeclaredTypeMasterdataRef, ListOfValues: []string{"yes", "no"}, OptionsSource: "md.gender"},
			schema.FieldDescriptor{Name: "farmSize", DeclaredType: schema.DeclaredTypeNumeric},
		),
	}
	if diff := cmp.Diff(want, forms); diff != "" {
		t.Fatalf("forms mismatch (-want +got):\n%s", diff)
	}
}

func TestAdapter_ParseErrors(t *testing.T) {
	cases := map[string]string{
		"unknown type":    "forms:\n  - id: f\n    fields:\n      - name: a\n        type: blob\n",
		"duplicate field": "forms:\n  - id: f\n    fields:\n      - name: a\n      - name: a\n",
		"missing id":      "forms:\n  - fields:\n      - name: a\n",
		"unknown key":     "forms:\n  - id: f\n    colour: red\n",
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			doc := schema.MustNewDocument(schema.SourceFromFile("forms.yaml"), []byte(payload))
			_, err := New().Parse(context.Background(), doc)
			if err == nil || !strings.HasPrefix(err.Error(), "catalog adapter:") {
				t.Fatalf("expected catalog adapter error, got %v", err)
			}
		})
	}
}
