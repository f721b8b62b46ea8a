package formintake

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formintake/internal/loader"
	"github.com/goliatone/go-formintake/pkg/adapters/catalogyaml"
	"github.com/goliatone/go-formintake/pkg/adapters/formdef"
	"github.com/goliatone/go-formintake/pkg/adapters/openapi"
	"github.com/goliatone/go-formintake/pkg/catalog"
	"github.com/goliatone/go-formintake/pkg/classify"
	"github.com/goliatone/go-formintake/pkg/schema"
)

// NewLoader returns the default schema loader configured with options.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	return loader.New(schema.NewLoaderOptions(options...))
}

// DefaultAdapters registers every bundled schema format: the YAML catalog, the
// JSON form definition and OpenAPI request bodies.
func DefaultAdapters(opts ...openapi.Option) (*catalog.AdapterRegistry, error) {
	return catalog.NewAdapterRegistry(
		catalogyaml.New(),
		formdef.New(),
		openapi.New(opts...),
	)
}

// NewCatalog builds a catalog over locations using the default loader and
// adapters. Locations follow schema.ParseSource.
func NewCatalog(locations []string, options ...schema.LoaderOption) (*catalog.Catalog, error) {
	adapters, err := DefaultAdapters()
	if err != nil {
		return nil, err
	}
	sources := make([]schema.Source, 0, len(locations))
	for _, location := range locations {
		src, err := schema.ParseSource(location)
		if err != nil {
			return nil, fmt.Errorf("formintake: %w", err)
		}
		sources = append(sources, src)
	}
	return catalog.New(NewLoader(options...), adapters, catalog.WithSources(sources...)), nil
}

// ClassifyCatalog loads every form in the catalog and returns its field
// classification report.
func ClassifyCatalog(ctx context.Context, c *catalog.Catalog) (classify.Report, error) {
	forms, err := c.Forms(ctx)
	if err != nil {
		return classify.Report{}, err
	}
	return classify.NewReport(forms...), nil
}
