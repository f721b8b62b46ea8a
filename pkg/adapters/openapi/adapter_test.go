package openapi

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formintake/pkg/schema"
)

const registrationAPI = `
openapi: 3.0.3
info:
  title: Intake
  version: "1.0"
paths:
  /registrations:
    post:
      operationId: farmerRegistration
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Registration'
      responses:
        "200":
          description: ok
  /surveys:
    post:
      x-form-id: livestock-survey
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                herdSize:
                  type: integer
      responses:
        "200":
          description: ok
    get:
      operationId: listSurveys
      responses:
        "200":
          description: ok
components:
  schemas:
    Registration:
      type: object
      required: [firstName, hasLivestock]
      properties:
        firstName:
          type: string
          title: First name
          maxLength: 80
        hasLivestock:
          type: string
          enum: ["yes", "no"]
        householdHead:
          type: integer
          enum: [1, 2]
        gender:
          type: string
          enum: ["1", "2"]
          x-masterdata: md.gender
        crop:
          type: string
          x-masterdata:
            source: md.crops
        location:
          type: object
`

func TestAdapter_Detect(t *testing.T) {
	a := New()
	src := schema.SourceFromFile("api.yaml")

	if !a.Detect(src, []byte(registrationAPI)) {
		t.Fatalf("expected yaml openapi document to be detected")
	}
	if !a.Detect(src, []byte(`{"openapi":"3.0.3","paths":{}}`)) {
		t.Fatalf("expected json openapi document to be detected")
	}
	if a.Detect(src, []byte(`{"forms":[]}`)) {
		t.Fatalf("catalog document must not be detected")
	}
	if a.Detect(src, []byte("forms:\n  - id: x\n    description: see openapi: docs\n")) {
		t.Fatalf("nested openapi text must not be detected")
	}
}

func TestAdapter_Parse(t *testing.T) {
	a := New()
	doc := schema.MustNewDocument(schema.SourceFromFile("api.yaml"), []byte(registrationAPI))

	forms, err := a.Parse(context.Background(), doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := []schema.FormSchema{
		schema.MustNewFormSchema("farmerRegistration",
			schema.FieldDescriptor{Name: "firstName", Label: "First name", DeclaredType: schema.DeclaredTypeText, Mandatory: true, MaxLength: 80},
			schema.FieldDescriptor{Name: "hasLivestock", DeclaredType: schema.DeclaredTypeLOV, Mandatory: true, ListOfValues: []string{"yes", "no"}},
			schema.FieldDescriptor{Name: "householdHead", DeclaredType: schema.DeclaredTypeLOV, ListOfValues: []string{"1", "2"}},
			schema.FieldDescriptor{Name: "gender", DeclaredType: schema.DeclaredTypeMasterdataRef, ListOfValues: []string{"1", "2"}, OptionsSource: "md.gender"},
			schema.FieldDescriptor{Name: "crop", DeclaredType: schema.DeclaredTypeMasterdataRef, OptionsSource: "md.crops"},
			schema.FieldDescriptor{Name: "location", DeclaredType: schema.DeclaredTypeOther},
		),
		schema.MustNewFormSchema("livestock-survey",
			schema.FieldDescriptor{Name: "herdSize", DeclaredType: schema.DeclaredTypeNumeric},
		),
	}
	if diff := cmp.Diff(want, forms); diff != "" {
		t.Fatalf("forms mismatch (-want +got):\n%s", diff)
	}
}

func TestAdapter_ParseRejectsEmptyPaths(t *testing.T) {
	a := New()
	doc := schema.MustNewDocument(schema.SourceFromFile("api.json"), []byte(`{"openapi":"3.0.3","info":{"title":"x","version":"1"},"paths":{}}`))

	_, err := a.Parse(context.Background(), doc)
	if err == nil || !strings.Contains(err.Error(), "does not contain any paths") {
		t.Fatalf("expected empty paths error, got %v", err)
	}
}
