package catalog_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formintake/internal/loader"
	"github.com/goliatone/go-formintake/pkg/adapters/catalogyaml"
	"github.com/goliatone/go-formintake/pkg/adapters/formdef"
	"github.com/goliatone/go-formintake/pkg/adapters/openapi"
	"github.com/goliatone/go-formintake/pkg/catalog"
	"github.com/goliatone/go-formintake/pkg/schema"
)

var catalogFS = fstest.MapFS{
	"forms.yaml": {Data: []byte(`
forms:
  - id: registration
    fields:
      - name: hasLivestock
        type: lov
        mandatory: true
        options: ["yes", "no"]
`)},
	"survey.json": {Data: []byte(`{
  "className": "org.joget.apps.form.model.Form",
  "properties": {"id": "survey"},
  "elements": [
    {"className": "org.joget.apps.form.lib.TextField", "properties": {"id": "comment"}}
  ]
}`)},
	"api.yaml": {Data: []byte(`
openapi: 3.0.3
info: {title: api, version: "1"}
paths:
  /claims:
    post:
      operationId: claim
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                amount: {type: number}
      responses:
        "200": {description: ok}
`)},
	"dup.yaml": {Data: []byte("forms:\n  - id: registration\n    fields: []\n")},
	"unknown.txt": {Data: []byte("plain text")},
}

func newRegistry(t *testing.T) *catalog.AdapterRegistry {
	t.Helper()
	reg, err := catalog.NewAdapterRegistry(catalogyaml.New(), formdef.New(), openapi.New())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func newCatalog(t *testing.T, names ...string) *catalog.Catalog {
	t.Helper()
	l := loader.New(schema.NewLoaderOptions(schema.WithFileSystem(catalogFS)))
	sources := make([]schema.Source, 0, len(names))
	for _, name := range names {
		sources = append(sources, schema.SourceFromFS(name))
	}
	return catalog.New(l, newRegistry(t), catalog.WithSources(sources...))
}

func TestCatalog_LoadsEveryFormat(t *testing.T) {
	c := newCatalog(t, "forms.yaml", "survey.json", "api.yaml")

	forms, err := c.Forms(context.Background())
	if err != nil {
		t.Fatalf("forms: %v", err)
	}
	ids := make([]string, 0, len(forms))
	for _, form := range forms {
		ids = append(ids, form.FormID)
	}
	if diff := cmp.Diff([]string{"claim", "registration", "survey"}, ids); diff != "" {
		t.Fatalf("form ids mismatch (-want +got):\n%s", diff)
	}

	form, err := c.Schema(context.Background(), "registration")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if diff := cmp.Diff([]string{"hasLivestock"}, form.MandatoryFields()); diff != "" {
		t.Fatalf("mandatory mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog_UnknownForm(t *testing.T) {
	c := newCatalog(t, "forms.yaml")

	_, err := c.Schema(context.Background(), "missing")
	if !errors.Is(err, catalog.ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), `"missing"`) {
		t.Fatalf("expected form id in error, got %v", err)
	}
}

func TestCatalog_DuplicateFormAcrossSources(t *testing.T) {
	c := newCatalog(t, "forms.yaml", "dup.yaml")

	err := c.Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), `form "registration" declared in`) {
		t.Fatalf("expected duplicate form error, got %v", err)
	}
}

func TestCatalog_NoAdapter(t *testing.T) {
	c := newCatalog(t, "unknown.txt")

	err := c.Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "no adapter recognises") {
		t.Fatalf("expected detection error, got %v", err)
	}
}

type countingLoader struct {
	calls atomic.Int32
	inner schema.Loader
}

func (l *countingLoader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	l.calls.Add(1)
	return l.inner.Load(ctx, src)
}

func TestCatalog_LoadsOnce(t *testing.T) {
	counting := &countingLoader{inner: loader.New(schema.NewLoaderOptions(schema.WithFileSystem(catalogFS)))}
	c := catalog.New(counting, newRegistry(t), catalog.WithSources(schema.SourceFromFS("forms.yaml")))

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = c.Schema(context.Background(), "registration")
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	if got := counting.calls.Load(); got != 1 {
		t.Fatalf("expected a single source read, got %d", got)
	}
}

func TestStatic(t *testing.T) {
	form := schema.MustNewFormSchema("registration", schema.FieldDescriptor{Name: "a"})
	s, err := catalog.NewStatic(form)
	if err != nil {
		t.Fatalf("static: %v", err)
	}
	if _, err := s.Schema(context.Background(), "registration"); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if _, err := s.Schema(context.Background(), "other"); !errors.Is(err, catalog.ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
	if _, err := catalog.NewStatic(form, form); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
