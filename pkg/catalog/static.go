package catalog

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formintake/pkg/schema"
)

// Static is an in-memory Provider over a fixed set of schemas.
type Static struct {
	forms map[string]schema.FormSchema
}

var _ Provider = (*Static)(nil)

// NewStatic builds a Static provider. Duplicate form ids are rejected.
func NewStatic(forms ...schema.FormSchema) (*Static, error) {
	s := &Static{forms: make(map[string]schema.FormSchema, len(forms))}
	for _, form := range forms {
		if _, dup := s.forms[form.FormID]; dup {
			return nil, fmt.Errorf("catalog: form %q registered twice", form.FormID)
		}
		s.forms[form.FormID] = form
	}
	return s, nil
}

// Schema returns the schema registered for formID.
func (s *Static) Schema(_ context.Context, formID string) (schema.FormSchema, error) {
	form, ok := s.forms[formID]
	if !ok {
		return schema.FormSchema{}, fmt.Errorf("%w: %q", ErrFormNotFound, formID)
	}
	return form, nil
}

// Forms returns every schema sorted by form id.
func (s *Static) Forms(context.Context) ([]schema.FormSchema, error) {
	return sortedForms(s.forms), nil
}
