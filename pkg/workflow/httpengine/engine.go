// Package httpengine starts workflows on a remote process engine over HTTP.
//
// The engine receives POST {baseURL}/processes/{processDefinitionId}/start
// with the workflow request as JSON and answers with the application and
// process identifiers.
package httpengine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/goliatone/go-formintake/pkg/workflow"
)

// Engine implements workflow.Engine against a remote HTTP endpoint.
type Engine struct {
	client *resty.Client
}

var _ workflow.Engine = (*Engine)(nil)

// Option configures the underlying resty client.
type Option func(*resty.Client)

// WithTimeout caps each start call.
func WithTimeout(timeout time.Duration) Option {
	return func(c *resty.Client) {
		if timeout > 0 {
			c.SetTimeout(timeout)
		}
	}
}

// WithBearerToken authenticates every call.
func WithBearerToken(token string) Option {
	return func(c *resty.Client) {
		if token != "" {
			c.SetAuthToken(token)
		}
	}
}

// New constructs an Engine for baseURL.
func New(baseURL string, opts ...Option) (*Engine, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("httpengine: base URL is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("httpengine: invalid base URL %q: %w", baseURL, err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return &Engine{client: client}, nil
}

type errorBody struct {
	Message string `json:"message"`
}

// Start posts req to the remote engine.
func (e *Engine) Start(ctx context.Context, req workflow.Request) (workflow.Result, error) {
	if req.ProcessDefinitionID == "" {
		return workflow.Result{}, errors.New("httpengine: process definition id is required")
	}

	var (
		result  workflow.Result
		failure errorBody
	)
	resp, err := e.client.R().
		SetContext(ctx).
		SetPathParam("processDefinitionId", req.ProcessDefinitionID).
		SetBody(req).
		SetResult(&result).
		SetError(&failure).
		Post("/processes/{processDefinitionId}/start")
	if err != nil {
		return workflow.Result{}, fmt.Errorf("httpengine: start %s: %w", req.ProcessDefinitionID, err)
	}
	if resp.IsError() {
		msg := failure.Message
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return workflow.Result{}, fmt.Errorf("httpengine: start %s: status %d: %s", req.ProcessDefinitionID, resp.StatusCode(), msg)
	}
	if result.ProcessID == "" {
		return workflow.Result{}, workflow.ErrMissingProcess
	}
	return result, nil
}
