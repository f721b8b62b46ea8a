package workflow

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryEngine records started workflows in memory and assigns random ids. It
// backs local runs and the "memory" workflow backend.
type MemoryEngine struct {
	mu      sync.Mutex
	started []Request
}

var _ Engine = (*MemoryEngine)(nil)

// NewMemoryEngine constructs an empty MemoryEngine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{}
}

// Start records req and returns fresh identifiers.
func (e *MemoryEngine) Start(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	values := make(map[string]string, len(req.Values))
	for k, v := range req.Values {
		values[k] = v
	}
	req.Values = values

	e.mu.Lock()
	e.started = append(e.started, req)
	e.mu.Unlock()

	return Result{
		ApplicationID: uuid.NewString(),
		ProcessID:     uuid.NewString(),
	}, nil
}

// Started returns a copy of the recorded requests in call order.
func (e *MemoryEngine) Started() []Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Request(nil), e.started...)
}
