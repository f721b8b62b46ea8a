// Package openapi reads form schemas from OpenAPI request bodies.
//
// Every operation with a JSON object request body becomes one form keyed by
// its operationId. Properties map onto fields: "enum" values form an inline
// list, an "x-masterdata" extension marks an externally governed list and the
// schema's "required" list sets the mandatory flag.
package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formintake/pkg/schema"
)

const (
	// AdapterName is the registry identifier.
	AdapterName = "openapi"
	// ExtensionMasterdata names the external list that backs a property.
	ExtensionMasterdata = "x-masterdata"
	// ExtensionFormID overrides the operationId as the form identifier.
	ExtensionFormID = "x-form-id"
)

// Options configures the adapter.
type Options struct {
	// ResolveReferences allows external $ref documents and validates the
	// loaded document.
	ResolveReferences bool
}

// Option mutates Options.
type Option func(*Options)

// WithReferenceResolution toggles external reference resolution.
func WithReferenceResolution(enabled bool) Option {
	return func(o *Options) {
		o.ResolveReferences = enabled
	}
}

// Adapter implements schema.FormatAdapter using kin-openapi.
type Adapter struct {
	options Options
}

var _ schema.FormatAdapter = (*Adapter)(nil)

// New constructs an OpenAPI adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{}
	for _, opt := range opts {
		if opt != nil {
			opt(&a.options)
		}
	}
	return a
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return AdapterName
}

// Detect reports whether the raw payload appears to be an OpenAPI document.
func (a *Adapter) Detect(_ schema.Source, raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] == '{' {
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return false
		}
		_, ok := payload["openapi"]
		return ok
	}
	for _, line := range strings.Split(string(trimmed), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if strings.HasPrefix(line, "openapi:") {
			return true
		}
	}
	return false
}

// Parse loads the document and converts operation request bodies into forms.
func (a *Adapter) Parse(ctx context.Context, doc schema.Document) ([]schema.FormSchema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi adapter: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: a.options.ResolveReferences,
	}
	api, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi adapter: load %s: %w", doc.Location(), err)
	}
	if a.options.ResolveReferences {
		if err := api.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi adapter: validate %s: %w", doc.Location(), err)
		}
	}
	if api.Paths == nil || api.Paths.Len() == 0 {
		return nil, fmt.Errorf("openapi adapter: %s does not contain any paths", doc.Location())
	}

	paths := make([]string, 0, api.Paths.Len())
	for path := range api.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var forms []schema.FormSchema
	seen := make(map[string]string)
	for _, path := range paths {
		item := api.Paths.Value(path)
		if item == nil {
			continue
		}
		operations := item.Operations()
		methods := make([]string, 0, len(operations))
		for method := range operations {
			methods = append(methods, method)
		}
		sort.Strings(methods)

		for _, method := range methods {
			operation := operations[method]
			body := requestSchema(operation)
			if body == nil {
				continue
			}
			formID := formIdentifier(method, path, operation)
			if previous, dup := seen[formID]; dup {
				return nil, fmt.Errorf("openapi adapter: form %q declared by %s and %s %s", formID, previous, method, path)
			}
			seen[formID] = method + " " + path

			form, err := formFromSchema(formID, body)
			if err != nil {
				return nil, fmt.Errorf("openapi adapter: %w", err)
			}
			forms = append(forms, form)
		}
	}
	if len(forms) == 0 {
		return nil, fmt.Errorf("openapi adapter: %s declares no request bodies", doc.Location())
	}
	return forms, nil
}

func formIdentifier(method, path string, operation *openapi3.Operation) string {
	if id, ok := operation.Extensions[ExtensionFormID].(string); ok && strings.TrimSpace(id) != "" {
		return strings.TrimSpace(id)
	}
	if operation.OperationID != "" {
		return operation.OperationID
	}
	return strings.ToLower(method) + ":" + path
}

func requestSchema(operation *openapi3.Operation) *openapi3.Schema {
	if operation == nil || operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil
	}
	content := operation.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func formFromSchema(formID string, body *openapi3.Schema) (schema.FormSchema, error) {
	required := make(map[string]struct{}, len(body.Required))
	for _, name := range body.Required {
		required[name] = struct{}{}
	}

	fields := make([]schema.FieldDescriptor, 0, len(body.Properties))
	for name, ref := range body.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		field := fieldFromProperty(name, ref.Value)
		_, field.Mandatory = required[name]
		fields = append(fields, field)
	}
	return schema.NewFormSchema(formID, fields)
}

func fieldFromProperty(name string, prop *openapi3.Schema) schema.FieldDescriptor {
	field := schema.FieldDescriptor{
		Name:  name,
		Label: strings.TrimSpace(prop.Title),
	}
	if field.Label == "" {
		field.Label = strings.TrimSpace(prop.Description)
	}
	if prop.MaxLength != nil {
		field.MaxLength = int(*prop.MaxLength)
	}
	if len(prop.Enum) > 0 {
		field.ListOfValues = make([]string, 0, len(prop.Enum))
		for _, value := range prop.Enum {
			field.ListOfValues = append(field.ListOfValues, enumCode(value))
		}
	}

	if source, ok := masterdataSource(prop.Extensions); ok {
		field.DeclaredType = schema.DeclaredTypeMasterdataRef
		field.OptionsSource = source
		return field
	}

	switch {
	case len(field.ListOfValues) > 0:
		field.DeclaredType = schema.DeclaredTypeLOV
	case prop.Type.Is(openapi3.TypeInteger), prop.Type.Is(openapi3.TypeNumber):
		field.DeclaredType = schema.DeclaredTypeNumeric
	case prop.Type.Is(openapi3.TypeString), prop.Type == nil:
		field.DeclaredType = schema.DeclaredTypeText
	default:
		field.DeclaredType = schema.DeclaredTypeOther
	}
	return field
}

// masterdataSource reads the x-masterdata extension. It accepts a source name,
// an object with a "source" key, or a bare true.
func masterdataSource(extensions map[string]any) (string, bool) {
	value, ok := extensions[ExtensionMasterdata]
	if !ok {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), true
	case bool:
		return "", v
	case map[string]any:
		source, _ := v["source"].(string)
		return strings.TrimSpace(source), true
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return "", false
		}
		return masterdataSource(map[string]any{ExtensionMasterdata: decoded})
	default:
		return "", false
	}
}

func enumCode(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
