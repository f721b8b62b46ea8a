// Package formdef reads form-builder definitions: a JSON element tree where
// each element carries a className and a properties object. Containers nest
// their children under "elements".
//
// Choice elements (radio, select, checkbox) with an optionsBinder are bound to
// an external master-data list; those with inline "options" carry their codes
// directly. A validator with mandatory "true" marks the field mandatory.
package formdef

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/goliatone/go-formintake/pkg/schema"
)

// AdapterName is the registry identifier.
const AdapterName = "formdef"

type elementKind int

const (
	kindContainer elementKind = iota
	kindText
	kindChoice
	kindOther
)

// elementKinds maps the short class name onto how the element is read.
var elementKinds = map[string]elementKind{
	"Form":          kindContainer,
	"Section":       kindContainer,
	"Column":        kindContainer,
	"TextField":     kindText,
	"TextArea":      kindText,
	"PasswordField": kindText,
	"Radio":         kindChoice,
	"SelectBox":     kindChoice,
	"CheckBox":      kindChoice,
	"DatePicker":    kindOther,
	"HiddenField":   kindOther,
	"Grid":          kindOther,
	"FileUpload":    kindOther,
}

// Adapter implements schema.FormatAdapter for form-builder definitions.
type Adapter struct{}

var _ schema.FormatAdapter = (*Adapter)(nil)

// New constructs a form definition adapter.
func New() *Adapter {
	return &Adapter{}
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return AdapterName
}

// Detect reports whether raw is a JSON form definition or a list of them.
func (a *Adapter) Detect(_ schema.Source, raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !gjson.ValidBytes(trimmed) {
		return false
	}
	root := gjson.ParseBytes(trimmed)
	if root.IsArray() {
		first := root.Get("0")
		return first.Exists() && isFormDefinition(first)
	}
	return isFormDefinition(root)
}

func isFormDefinition(node gjson.Result) bool {
	return node.IsObject() &&
		node.Get("className").Type == gjson.String &&
		node.Get("elements").IsArray()
}

// Parse walks the element tree of every form definition in the document.
func (a *Adapter) Parse(ctx context.Context, doc schema.Document) ([]schema.FormSchema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("formdef adapter: %s is not valid JSON", doc.Location())
	}

	root := gjson.ParseBytes(raw)
	definitions := []gjson.Result{root}
	if root.IsArray() {
		definitions = root.Array()
	}

	forms := make([]schema.FormSchema, 0, len(definitions))
	for i, def := range definitions {
		formID := strings.TrimSpace(def.Get("properties.id").String())
		if formID == "" {
			return nil, fmt.Errorf("formdef adapter: definition %d has no properties.id", i)
		}
		var fields []schema.FieldDescriptor
		collectFields(def.Get("elements"), &fields)

		form, err := schema.NewFormSchema(formID, fields)
		if err != nil {
			return nil, fmt.Errorf("formdef adapter: %w", err)
		}
		forms = append(forms, form)
	}
	return forms, nil
}

func collectFields(elements gjson.Result, out *[]schema.FieldDescriptor) {
	elements.ForEach(func(_, element gjson.Result) bool {
		kind, known := elementKinds[shortClassName(element.Get("className").String())]
		if !known || kind == kindContainer {
			collectFields(element.Get("elements"), out)
			return true
		}
		id := strings.TrimSpace(element.Get("properties.id").String())
		if id == "" {
			return true
		}
		*out = append(*out, fieldFromElement(id, kind, element.Get("properties")))
		return true
	})
}

func fieldFromElement(id string, kind elementKind, props gjson.Result) schema.FieldDescriptor {
	field := schema.FieldDescriptor{
		Name:      id,
		Label:     strings.TrimSpace(props.Get("label").String()),
		Mandatory: strings.EqualFold(props.Get("validator.properties.mandatory").String(), "true"),
	}

	switch kind {
	case kindText:
		field.DeclaredType = schema.DeclaredTypeText
		field.MaxLength = int(props.Get("maxlength").Int())
		if strings.EqualFold(props.Get("validator.properties.type").String(), "numeric") {
			field.DeclaredType = schema.DeclaredTypeNumeric
		}
	case kindChoice:
		props.Get("options").ForEach(func(_, option gjson.Result) bool {
			field.ListOfValues = append(field.ListOfValues, option.Get("value").String())
			return true
		})
		binder := props.Get("optionsBinder")
		if binderClass := strings.TrimSpace(binder.Get("className").String()); binderClass != "" {
			field.DeclaredType = schema.DeclaredTypeMasterdataRef
			field.OptionsSource = strings.TrimSpace(binder.Get("properties.formDefId").String())
			if field.OptionsSource == "" {
				field.OptionsSource = binderClass
			}
			return field
		}
		field.DeclaredType = schema.DeclaredTypeLOV
	default:
		field.DeclaredType = schema.DeclaredTypeOther
	}
	return field
}

func shortClassName(className string) string {
	if idx := strings.LastIndex(className, "."); idx >= 0 {
		return className[idx+1:]
	}
	return className
}
