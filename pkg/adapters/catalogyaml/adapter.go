// Package catalogyaml reads the native form catalog format. The same document
// may be written as YAML or JSON:
//
//	forms:
//	  - id: farmer-registration
//	    fields:
//	      - name: hasLivestock
//	        type: lov
//	        mandatory: true
//	        options: ["yes", "no"]
//	      - name: gender
//	        type: masterdataRef
//	        source: md.gender
//	      - name: firstName
//	        max_length: 80
package catalogyaml

import (
	"bytes"
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formintake/pkg/schema"
)

// AdapterName is the registry identifier.
const AdapterName = "catalog"

type catalogDocument struct {
	Forms []formEntry `yaml:"forms"`
}

type formEntry struct {
	ID     string       `yaml:"id"`
	Fields []fieldEntry `yaml:"fields"`
}

type fieldEntry struct {
	Name      string   `yaml:"name"`
	Label     string   `yaml:"label"`
	Type      string   `yaml:"type"`
	Mandatory bool     `yaml:"mandatory"`
	Options   []string `yaml:"options"`
	Source    string   `yaml:"source"`
	MaxLength int      `yaml:"max_length"`
}

// Adapter implements schema.FormatAdapter for catalog documents.
type Adapter struct{}

var _ schema.FormatAdapter = (*Adapter)(nil)

// New constructs a catalog adapter.
func New() *Adapter {
	return &Adapter{}
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return AdapterName
}

// Detect reports whether raw has a top-level "forms" sequence.
func (a *Adapter) Detect(_ schema.Source, raw []byte) bool {
	if len(bytes.TrimSpace(raw)) == 0 {
		return false
	}
	var head struct {
		Forms yaml.Node `yaml:"forms"`
	}
	if err := yaml.Unmarshal(raw, &head); err != nil {
		return false
	}
	return head.Forms.Kind == yaml.SequenceNode
}

// Parse decodes the catalog document into form schemas.
func (a *Adapter) Parse(ctx context.Context, doc schema.Document) ([]schema.FormSchema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var payload catalogDocument
	decoder := yaml.NewDecoder(bytes.NewReader(doc.Raw()))
	decoder.KnownFields(true)
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("catalog adapter: decode %s: %w", doc.Location(), err)
	}

	forms := make([]schema.FormSchema, 0, len(payload.Forms))
	for i, entry := range payload.Forms {
		fields := make([]schema.FieldDescriptor, 0, len(entry.Fields))
		for _, f := range entry.Fields {
			declared, err := schema.ParseDeclaredType(f.Type)
			if err != nil {
				return nil, fmt.Errorf("catalog adapter: form %d field %q: %w", i, f.Name, err)
			}
			if declared == schema.DeclaredTypeText && len(f.Options) > 0 && f.Type == "" {
				declared = schema.DeclaredTypeLOV
			}
			fields = append(fields, schema.FieldDescriptor{
				Name:          f.Name,
				Label:         f.Label,
				DeclaredType:  declared,
				Mandatory:     f.Mandatory,
				ListOfValues:  f.Options,
				OptionsSource: f.Source,
				MaxLength:     f.MaxLength,
			})
		}
		form, err := schema.NewFormSchema(entry.ID, fields)
		if err != nil {
			return nil, fmt.Errorf("catalog adapter: form %d: %w", i, err)
		}
		forms = append(forms, form)
	}
	return forms, nil
}
