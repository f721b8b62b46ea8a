package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formintake/pkg/schema"
)

// AdapterRegistry stores format adapters by name.
type AdapterRegistry struct {
	mu       sync.RWMutex
	adapters map[string]schema.FormatAdapter
}

// NewAdapterRegistry creates a registry holding the supplied adapters.
func NewAdapterRegistry(adapters ...schema.FormatAdapter) (*AdapterRegistry, error) {
	r := &AdapterRegistry{
		adapters: make(map[string]schema.FormatAdapter),
	}
	for _, adapter := range adapters {
		if err := r.Register(adapter); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an adapter by its Name(). Duplicate names return an error.
func (r *AdapterRegistry) Register(adapter schema.FormatAdapter) error {
	if adapter == nil {
		return fmt.Errorf("catalog: adapter is required")
	}
	name := normalizeAdapterName(adapter.Name())
	if name == "" {
		return fmt.Errorf("catalog: adapter name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("catalog: adapter %q already registered", name)
	}
	r.adapters[name] = adapter
	return nil
}

// MustRegister panics on registration failure.
func (r *AdapterRegistry) MustRegister(adapter schema.FormatAdapter) {
	if err := r.Register(adapter); err != nil {
		panic(err)
	}
}

// Get retrieves an adapter by name.
func (r *AdapterRegistry) Get(name string) (schema.FormatAdapter, error) {
	key := normalizeAdapterName(name)
	if key == "" {
		return nil, fmt.Errorf("catalog: adapter name is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[key]
	if !ok {
		return nil, fmt.Errorf("catalog: adapter %q not found", key)
	}
	return adapter, nil
}

// List returns a sorted list of adapter names.
func (r *AdapterRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect returns the first adapter, by name, that recognises the payload.
func (r *AdapterRegistry) Detect(src schema.Source, raw []byte) (schema.FormatAdapter, error) {
	if r == nil {
		return nil, fmt.Errorf("catalog: adapter registry is nil")
	}
	for _, name := range r.List() {
		r.mu.RLock()
		adapter := r.adapters[name]
		r.mu.RUnlock()
		if adapter != nil && adapter.Detect(src, raw) {
			return adapter, nil
		}
	}
	location := ""
	if src != nil {
		location = src.Location()
	}
	return nil, fmt.Errorf("catalog: no adapter recognises %q", location)
}

func normalizeAdapterName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
