// Package catalog loads form schemas from configured sources once and serves
// them read-only for the lifetime of the process.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-formintake/pkg/logger"
	"github.com/goliatone/go-formintake/pkg/schema"
)

// ErrFormNotFound reports that no schema is registered for a form id.
var ErrFormNotFound = errors.New("catalog: form not found")

// Provider resolves the schema for a form id. Implementations return an error
// wrapping ErrFormNotFound for unknown ids.
type Provider interface {
	Schema(ctx context.Context, formID string) (schema.FormSchema, error)
}

// Catalog is a Provider backed by schema documents. Sources are read on first
// use and the result, including a load failure, is memoized.
type Catalog struct {
	loader   schema.Loader
	adapters *AdapterRegistry
	sources  []schema.Source

	once  sync.Once
	forms map[string]schema.FormSchema
	err   error
}

var _ Provider = (*Catalog)(nil)

// Option configures a Catalog.
type Option func(*Catalog)

// WithSources appends catalog sources.
func WithSources(sources ...schema.Source) Option {
	return func(c *Catalog) {
		c.sources = append(c.sources, sources...)
	}
}

// New constructs a Catalog reading documents through loader and parsing them
// with the first matching adapter.
func New(loader schema.Loader, adapters *AdapterRegistry, opts ...Option) *Catalog {
	c := &Catalog{
		loader:   loader,
		adapters: adapters,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Load reads every source. Subsequent calls return the memoized outcome.
func (c *Catalog) Load(ctx context.Context) error {
	c.once.Do(func() {
		c.forms, c.err = c.load(ctx)
	})
	return c.err
}

func (c *Catalog) load(ctx context.Context) (map[string]schema.FormSchema, error) {
	if c.loader == nil {
		return nil, errors.New("catalog: loader is nil")
	}
	if c.adapters == nil {
		return nil, errors.New("catalog: adapter registry is nil")
	}

	log := logger.FromContext(ctx)
	forms := make(map[string]schema.FormSchema)
	origin := make(map[string]string)

	for _, src := range c.sources {
		doc, err := c.loader.Load(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		adapter, err := c.adapters.Detect(doc.Source(), doc.Raw())
		if err != nil {
			return nil, err
		}
		parsed, err := adapter.Parse(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		for _, form := range parsed {
			if previous, dup := origin[form.FormID]; dup {
				return nil, fmt.Errorf("catalog: form %q declared in %s and %s", form.FormID, previous, doc.Location())
			}
			origin[form.FormID] = doc.Location()
			forms[form.FormID] = form
		}
		log.Debug("Catalog source loaded", "source", doc.Location(), "adapter", adapter.Name(), "forms", len(parsed))
	}

	log.Info("Form catalog ready", "sources", len(c.sources), "forms", len(forms))
	return forms, nil
}

// Schema returns the schema registered for formID.
func (c *Catalog) Schema(ctx context.Context, formID string) (schema.FormSchema, error) {
	if err := c.Load(ctx); err != nil {
		return schema.FormSchema{}, err
	}
	form, ok := c.forms[formID]
	if !ok {
		return schema.FormSchema{}, fmt.Errorf("%w: %q", ErrFormNotFound, formID)
	}
	return form, nil
}

// Forms returns every loaded schema sorted by form id.
func (c *Catalog) Forms(ctx context.Context) ([]schema.FormSchema, error) {
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	return sortedForms(c.forms), nil
}

func sortedForms(forms map[string]schema.FormSchema) []schema.FormSchema {
	out := make([]schema.FormSchema, 0, len(forms))
	for _, form := range forms {
		out = append(out, form)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FormID < out[j].FormID })
	return out
}
