package dispatch

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formintake/pkg/processing"
)

func noopFactory() (processing.Processor, error) { return nil, nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(" Farmers ", noopFactory); err != nil {
		t.Fatalf("register: %v", err)
	}
	r.MustRegister("fishermen", noopFactory)

	if err := r.Register("farmers", noopFactory); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := r.Register("", noopFactory); err == nil {
		t.Fatalf("expected empty id error")
	}
	if err := r.Register("x", nil); err == nil {
		t.Fatalf("expected nil factory error")
	}

	if diff := cmp.Diff([]string{"farmers", "fishermen"}, r.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	if !r.Has("FARMERS") {
		t.Fatalf("expected case-insensitive lookup")
	}
	if _, err := r.Get("beekeepers"); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
}
