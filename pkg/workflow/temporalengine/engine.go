// Package temporalengine starts application workflows on Temporal. The
// process definition id is used as the workflow type name; the workflow id
// becomes the application id and the run id the process id.
package temporalengine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/goliatone/go-formintake/pkg/workflow"
)

// Starter is the subset of client.Client used to start workflows.
type Starter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, wf interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// Input is the single argument passed to the started workflow.
type Input struct {
	ServiceID string            `json:"serviceId"`
	FormID    string            `json:"formId"`
	Initiator string            `json:"initiator,omitempty"`
	Values    map[string]string `json:"values"`
}

// Engine implements workflow.Engine on top of a Temporal client.
type Engine struct {
	starter   Starter
	taskQueue string
	newID     func() string
}

var _ workflow.Engine = (*Engine)(nil)

// New constructs an Engine that schedules workflows on taskQueue.
func New(starter Starter, taskQueue string) (*Engine, error) {
	if starter == nil {
		return nil, errors.New("temporalengine: client is required")
	}
	taskQueue = strings.TrimSpace(taskQueue)
	if taskQueue == "" {
		return nil, errors.New("temporalengine: task queue is required")
	}
	return &Engine{
		starter:   starter,
		taskQueue: taskQueue,
		newID:     func() string { return "application-" + uuid.NewString() },
	}, nil
}

// Dial connects to a Temporal frontend.
func Dial(hostPort, namespace string) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  hostPort,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("temporalengine: dial %s: %w", hostPort, err)
	}
	return c, nil
}

// Start executes the workflow named by the process definition id.
func (e *Engine) Start(ctx context.Context, req workflow.Request) (workflow.Result, error) {
	if req.ProcessDefinitionID == "" {
		return workflow.Result{}, errors.New("temporalengine: process definition id is required")
	}

	options := client.StartWorkflowOptions{
		ID:        e.newID(),
		TaskQueue: e.taskQueue,
		Memo: map[string]interface{}{
			"serviceId": req.ServiceID,
			"formId":    req.FormID,
		},
	}
	run, err := e.starter.ExecuteWorkflow(ctx, options, req.ProcessDefinitionID, Input{
		ServiceID: req.ServiceID,
		FormID:    req.FormID,
		Initiator: req.Initiator,
		Values:    req.Values,
	})
	if err != nil {
		return workflow.Result{}, fmt.Errorf("temporalengine: start %s: %w", req.ProcessDefinitionID, err)
	}
	if run == nil || run.GetRunID() == "" {
		return workflow.Result{}, workflow.ErrMissingProcess
	}
	return workflow.Result{
		ApplicationID: run.GetID(),
		ProcessID:     run.GetRunID(),
	}, nil
}
