package processing

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind_StatusAndType(t *testing.T) {
	cases := []struct {
		kind   Kind
		status int
		label  string
	}{
		{KindInvalidRequest, 400, "Invalid request"},
		{KindFormSubmission, 400, "Form submission error"},
		{KindValidation, 400, "Validation error"},
		{KindNotFound, 404, "Not found"},
		{KindConfiguration, 500, "Configuration error"},
		{KindWorkflow, 500, "Workflow processing error"},
		{KindInternal, 500, "Internal server error"},
		{Kind(99), 500, "Internal server error"},
	}
	for _, tc := range cases {
		if got := tc.kind.Status(); got != tc.status {
			t.Fatalf("%v status = %d, want %d", tc.kind, got, tc.status)
		}
		if got := tc.kind.String(); got != tc.label {
			t.Fatalf("kind %d label = %q, want %q", int(tc.kind), got, tc.label)
		}
	}
}

func TestAsError(t *testing.T) {
	cause := errors.New("engine down")
	tagged := NewError(KindWorkflow, "starting process failed", cause)
	wrapped := fmt.Errorf("outer: %w", tagged)

	if got := AsError(wrapped); got != tagged {
		t.Fatalf("expected tagged error to be extracted, got %v", got)
	}
	if !errors.Is(wrapped, cause) {
		t.Fatalf("expected cause to be reachable")
	}

	plain := AsError(errors.New("boom"))
	if plain.Kind != KindInternal || plain.Status() != 500 {
		t.Fatalf("expected internal error, got %+v", plain)
	}
	if AsError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}
