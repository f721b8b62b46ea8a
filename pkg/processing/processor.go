// Package processing turns a raw submission body into a started workflow.
// Every failure is reported as an *Error carrying its Kind.
package processing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formintake/pkg/catalog"
	"github.com/goliatone/go-formintake/pkg/classify"
	"github.com/goliatone/go-formintake/pkg/execctx"
	"github.com/goliatone/go-formintake/pkg/logger"
	"github.com/goliatone/go-formintake/pkg/normalize"
	"github.com/goliatone/go-formintake/pkg/schema"
	"github.com/goliatone/go-formintake/pkg/validate"
	"github.com/goliatone/go-formintake/pkg/workflow"
)

// Processor handles one request body for a service.
type Processor interface {
	Process(ctx context.Context, raw []byte) (any, error)
}

// Factory builds the Processor for a service.
type Factory func() (Processor, error)

// Result is the success payload.
type Result struct {
	ApplicationID string `json:"applicationId"`
	ProcessID     string `json:"processId"`
}

// FormProcessor validates and normalizes form submissions and starts the
// service's workflow.
type FormProcessor struct {
	serviceID           string
	processDefinitionID string
	allowedForms        map[string]struct{}
	schemas             catalog.Provider
	engine              workflow.Engine
}

var _ Processor = (*FormProcessor)(nil)

// Option configures a FormProcessor.
type Option func(*FormProcessor)

// WithAllowedForms restricts the forms accepted by the service. Without it
// any form known to the catalog is accepted.
func WithAllowedForms(formIDs ...string) Option {
	return func(p *FormProcessor) {
		for _, id := range formIDs {
			if id = strings.TrimSpace(id); id != "" {
				if p.allowedForms == nil {
					p.allowedForms = make(map[string]struct{})
				}
				p.allowedForms[id] = struct{}{}
			}
		}
	}
}

// NewFormProcessor constructs a processor for serviceID starting
// processDefinitionID on engine.
func NewFormProcessor(serviceID, processDefinitionID string, schemas catalog.Provider, engine workflow.Engine, opts ...Option) (*FormProcessor, error) {
	if strings.TrimSpace(serviceID) == "" {
		return nil, errors.New("processing: service id is required")
	}
	if strings.TrimSpace(processDefinitionID) == "" {
		return nil, fmt.Errorf("processing: service %q has no process definition", serviceID)
	}
	if schemas == nil {
		return nil, errors.New("processing: schema provider is required")
	}
	if engine == nil {
		return nil, errors.New("processing: workflow engine is required")
	}
	p := &FormProcessor{
		serviceID:           serviceID,
		processDefinitionID: processDefinitionID,
		schemas:             schemas,
		engine:              engine,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Factory returns a Factory yielding p.
func (p *FormProcessor) Factory() Factory {
	return func() (Processor, error) { return p, nil }
}

// Process parses, canonicalizes and validates raw, then starts the workflow
// exactly once. Missing mandatory fields are reported before malformed values.
func (p *FormProcessor) Process(ctx context.Context, raw []byte) (any, error) {
	log := logger.FromContext(ctx).With("service", p.serviceID)

	submission, err := ParseSubmission(raw)
	if err != nil {
		return nil, err
	}
	log = log.With("form", submission.FormID)

	if !p.accepts(submission.FormID) {
		return nil, Errorf(KindValidation, "form %q is not accepted by service %q", submission.FormID, p.serviceID)
	}

	form, err := p.schemas.Schema(ctx, submission.FormID)
	if err != nil {
		if errors.Is(err, catalog.ErrFormNotFound) {
			return nil, NewError(KindConfiguration, fmt.Sprintf("no schema registered for form %q", submission.FormID), err)
		}
		return nil, NewError(KindConfiguration, fmt.Sprintf("schema for form %q unavailable", submission.FormID), err)
	}

	canonical := Canonicalize(ctx, form, submission)

	if err := validate.Validate(form, canonical); err != nil {
		var missing *validate.MissingFieldsError
		if errors.As(err, &missing) {
			return nil, NewError(KindFormSubmission, "Missing mandatory fields: "+strings.Join(missing.Fields, ", "), err)
		}
		return nil, NewError(KindFormSubmission, "submission rejected", err)
	}
	if err := validate.CheckValues(form, canonical); err != nil {
		var invalid *validate.InvalidValuesError
		if errors.As(err, &invalid) {
			return nil, NewError(KindValidation, "Invalid field values: "+invalid.Summary(), err)
		}
		return nil, NewError(KindValidation, "submission rejected", err)
	}

	req := workflow.Request{
		ServiceID:           p.serviceID,
		FormID:              form.FormID,
		ProcessDefinitionID: p.processDefinitionID,
		Values:              canonical.CloneValues(),
	}
	if id, ok := execctx.IdentityFrom(ctx); ok {
		req.Initiator = id.Username
	}

	res, err := p.engine.Start(ctx, req)
	if err != nil {
		return nil, NewError(KindWorkflow, fmt.Sprintf("starting process %q failed", p.processDefinitionID), err)
	}
	if res.ProcessID == "" {
		return nil, NewError(KindWorkflow, fmt.Sprintf("starting process %q failed", p.processDefinitionID), workflow.ErrMissingProcess)
	}

	log.Info("Application submitted", "application_id", res.ApplicationID, "process_id", res.ProcessID)
	return Result{ApplicationID: res.ApplicationID, ProcessID: res.ProcessID}, nil
}

func (p *FormProcessor) accepts(formID string) bool {
	if len(p.allowedForms) == 0 {
		return true
	}
	_, ok := p.allowedForms[formID]
	return ok
}

// Canonicalize classifies and normalizes every submitted field known to form.
// Fields absent from the schema are dropped.
func Canonicalize(ctx context.Context, form schema.FormSchema, submission schema.Submission) schema.CanonicalSubmission {
	log := logger.FromContext(ctx)
	canonical := schema.CanonicalSubmission{
		FormID: form.FormID,
		Values: make(map[string]string, len(submission.Values)),
	}
	for name, raw := range submission.Values {
		field, ok := form.Field(name)
		if !ok {
			log.Debug("Dropping unknown field", "form", form.FormID, "field", name)
			continue
		}
		canonical.Values[name] = normalize.Normalize(classify.Classify(field), raw)
	}
	return canonical
}
