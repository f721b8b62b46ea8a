// Package dispatch routes request bodies to the processor registered for a
// service and maps the outcome onto a response.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goliatone/go-formintake/pkg/execctx"
	"github.com/goliatone/go-formintake/pkg/logger"
	"github.com/goliatone/go-formintake/pkg/processing"
)

// GenericMessage replaces the message of every server-side failure.
const GenericMessage = "An unexpected error occurred"

// UnknownService is reported to the Observer in place of service ids that are
// not registered, so callers cannot mint new metric series.
const UnknownService = "unknown"

// Response is the status and JSON body returned to the caller.
type Response struct {
	StatusCode int
	Body       []byte
}

// ErrorBody is the JSON shape of failed responses.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the external error type and message.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Observer is notified once per handled request.
type Observer interface {
	ObserveDispatch(serviceID string, status int, errorType string, elapsed time.Duration)
}

// Dispatcher handles requests for registered services.
type Dispatcher struct {
	registry *Registry
	identity execctx.Provider
	observer Observer
	now      func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithObserver installs a request observer.
func WithObserver(observer Observer) Option {
	return func(d *Dispatcher) {
		d.observer = observer
	}
}

// New constructs a Dispatcher. Every request runs under a scope acquired from
// identity.
func New(registry *Registry, identity execctx.Provider, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		identity: identity,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Handle processes raw for serviceID. It never panics and always returns a
// complete response.
func (d *Dispatcher) Handle(ctx context.Context, serviceID string, raw []byte) Response {
	start := d.now()
	log := logger.FromContext(ctx).With("service", serviceID)

	payload, err := d.dispatch(ctx, serviceID, raw)
	var resp Response
	errorType := ""
	if err == nil {
		resp, err = successResponse(payload)
	}
	if err != nil {
		perr := processing.AsError(err)
		errorType = perr.Type()
		resp = errorResponse(log, perr)
	}

	if d.observer != nil {
		d.observer.ObserveDispatch(d.observedService(serviceID), resp.StatusCode, errorType, d.now().Sub(start))
	}
	return resp
}

func (d *Dispatcher) observedService(serviceID string) string {
	if d.registry == nil || !d.registry.Has(serviceID) {
		return UnknownService
	}
	return normalizeServiceID(serviceID)
}

func (d *Dispatcher) dispatch(ctx context.Context, serviceID string, raw []byte) (payload any, err error) {
	if d.registry == nil {
		return nil, processing.NewError(processing.KindConfiguration, "service registry is not configured", nil)
	}

	entered := false
	runErr := execctx.RunAs(ctx, d.identity, func(scoped context.Context) (fnErr error) {
		entered = true
		defer func() {
			if r := recover(); r != nil {
				fnErr = processing.NewError(processing.KindInternal, "processor panicked", fmt.Errorf("panic: %v", r))
			}
		}()

		factory, err := d.registry.Get(serviceID)
		if err != nil {
			return processing.NewError(processing.KindNotFound, fmt.Sprintf("Service %q not found", serviceID), err)
		}
		processor, err := factory()
		if err != nil {
			return processing.NewError(processing.KindConfiguration, fmt.Sprintf("processor for service %q unavailable", serviceID), err)
		}
		payload, fnErr = processor.Process(scoped, raw)
		return fnErr
	})
	if runErr != nil {
		var perr *processing.Error
		if errors.As(runErr, &perr) {
			return nil, perr
		}
		if entered {
			return nil, processing.NewError(processing.KindInternal, fmt.Sprintf("processor for service %q failed", serviceID), runErr)
		}
		return nil, processing.NewError(processing.KindInternal, "execution context unavailable", runErr)
	}
	return payload, nil
}

func successResponse(payload any) (Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, processing.NewError(processing.KindInternal, "encoding response failed", err)
	}
	return Response{StatusCode: http.StatusOK, Body: body}, nil
}

func errorResponse(log logger.Logger, perr *processing.Error) Response {
	status := perr.Status()
	message := perr.Message
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "status", status, "type", perr.Type(), "message", perr.Message, "error", perr.Cause)
		message = GenericMessage
	} else {
		log.Warn("Request rejected", "status", status, "type", perr.Type(), "message", perr.Message)
	}

	body, err := json.Marshal(ErrorBody{Error: ErrorDetail{Type: perr.Type(), Message: message}})
	if err != nil {
		body = []byte(`{"error":{"type":"Internal server error","message":"` + GenericMessage + `"}}`)
		status = http.StatusInternalServerError
	}
	return Response{StatusCode: status, Body: body}
}
