// Package testsupport holds fixtures shared by package tests.
package testsupport

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/goliatone/go-formintake/pkg/catalog"
	"github.com/goliatone/go-formintake/pkg/schema"
	"github.com/goliatone/go-formintake/pkg/workflow"
)

// RegistrationFormID identifies the farmer registration fixture.
const RegistrationFormID = "farmerRegistration"

// RegistrationForm returns a farmer registration schema covering every tag:
//
//	firstName     text, mandatory
//	hasLivestock  yes/no list, mandatory
//	householdHead 1/2 list
//	gender        master-data list whose codes are "yes"/"no"
//	district      master-data list
//	farmSize      numeric
func RegistrationForm() schema.FormSchema {
	return schema.MustNewFormSchema(RegistrationFormID,
		schema.FieldDescriptor{Name: "firstName", DeclaredType: schema.DeclaredTypeText, Mandatory: true},
		schema.FieldDescriptor{Name: "hasLivestock", DeclaredType: schema.DeclaredTypeLOV, Mandatory: true, ListOfValues: []string{"yes", "no"}},
		schema.FieldDescriptor{Name: "householdHead", DeclaredType: schema.DeclaredTypeLOV, ListOfValues: []string{"1", "2"}},
		schema.FieldDescriptor{Name: "gender", DeclaredType: schema.DeclaredTypeMasterdataRef, ListOfValues: []string{"yes", "no"}, OptionsSource: "md.gender"},
		schema.FieldDescriptor{Name: "district", DeclaredType: schema.DeclaredTypeMasterdataRef, OptionsSource: "md.district"},
		schema.FieldDescriptor{Name: "farmSize", DeclaredType: schema.DeclaredTypeNumeric},
	)
}

// Catalog returns a static provider holding forms, failing the test on error.
func Catalog(t testing.TB, forms ...schema.FormSchema) *catalog.Static {
	t.Helper()
	provider, err := catalog.NewStatic(forms...)
	if err != nil {
		t.Fatalf("testsupport: catalog: %v", err)
	}
	return provider
}

// Field is one entry of a submission body.
type Field struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// SubmissionBody encodes a request body for formID.
func SubmissionBody(t testing.TB, formID string, fields ...Field) []byte {
	t.Helper()
	payload := map[string]any{
		"formId": formID,
		"applicationData": map[string]any{
			"fields": fields,
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("testsupport: encode submission: %v", err)
	}
	return raw
}

// RecordingEngine is a workflow.Engine that records every call and returns
// a configured outcome.
type RecordingEngine struct {
	mu      sync.Mutex
	Result  workflow.Result
	Err     error
	Panic   any
	started []workflow.Request
}

var _ workflow.Engine = (*RecordingEngine)(nil)

// NewRecordingEngine returns an engine answering with fixed identifiers.
func NewRecordingEngine() *RecordingEngine {
	return &RecordingEngine{Result: workflow.Result{ApplicationID: "app-1", ProcessID: "proc-1"}}
}

// Start records req and returns the configured outcome.
func (e *RecordingEngine) Start(_ context.Context, req workflow.Request) (workflow.Result, error) {
	e.mu.Lock()
	e.started = append(e.started, req)
	e.mu.Unlock()
	if e.Panic != nil {
		panic(e.Panic)
	}
	if e.Err != nil {
		return workflow.Result{}, e.Err
	}
	return e.Result, nil
}

// Calls returns the recorded requests.
func (e *RecordingEngine) Calls() []workflow.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]workflow.Request(nil), e.started...)
}
