package dispatch

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formintake/pkg/processing"
)

// ErrServiceNotFound reports an unknown service id.
var ErrServiceNotFound = errors.New("dispatch: service not found")

// Registry maps service ids onto processor factories. It is populated at
// start-up and read concurrently afterwards.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]processing.Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]processing.Factory)}
}

// Register binds a factory to serviceID. Duplicate ids return an error.
func (r *Registry) Register(serviceID string, factory processing.Factory) error {
	key := normalizeServiceID(serviceID)
	if key == "" {
		return fmt.Errorf("dispatch: service id is required")
	}
	if factory == nil {
		return fmt.Errorf("dispatch: factory for %q is nil", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("dispatch: service %q already registered", key)
	}
	r.factories[key] = factory
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(serviceID string, factory processing.Factory) {
	if err := r.Register(serviceID, factory); err != nil {
		panic(err)
	}
}

// Get returns the factory for serviceID.
func (r *Registry) Get(serviceID string) (processing.Factory, error) {
	key := normalizeServiceID(serviceID)

	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrServiceNotFound, serviceID)
	}
	return factory, nil
}

// Has reports whether serviceID is registered.
func (r *Registry) Has(serviceID string) bool {
	_, err := r.Get(serviceID)
	return err == nil
}

// List returns the sorted service ids.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func normalizeServiceID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
