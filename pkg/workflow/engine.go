// Package workflow defines the hand-off from the intake core to the process
// engine that runs the application workflow.
package workflow

import (
	"context"
	"errors"
)

// ErrMissingProcess is returned when an engine accepted a request but did not
// report a process identifier.
var ErrMissingProcess = errors.New("workflow: engine returned no process id")

// Request is the canonical payload handed to the engine.
type Request struct {
	ServiceID           string            `json:"serviceId"`
	FormID              string            `json:"formId"`
	ProcessDefinitionID string            `json:"processDefinitionId"`
	Initiator           string            `json:"initiator,omitempty"`
	Values              map[string]string `json:"values"`
}

// Result identifies the created application and the running process.
type Result struct {
	ApplicationID string `json:"applicationId"`
	ProcessID     string `json:"processId"`
}

// Engine starts one workflow per accepted application. Start is called at most
// once per request; engines must not retry on the caller's behalf.
type Engine interface {
	Start(ctx context.Context, req Request) (Result, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, req Request) (Result, error)

// Start calls f.
func (f EngineFunc) Start(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}
