// Package app assembles the intake service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-formintake/internal/config"
	"github.com/goliatone/go-formintake/internal/loader"
	"github.com/goliatone/go-formintake/internal/metrics"
	"github.com/goliatone/go-formintake/internal/server"
	"github.com/goliatone/go-formintake/pkg/adapters/catalogyaml"
	"github.com/goliatone/go-formintake/pkg/adapters/formdef"
	"github.com/goliatone/go-formintake/pkg/adapters/openapi"
	"github.com/goliatone/go-formintake/pkg/catalog"
	"github.com/goliatone/go-formintake/pkg/dispatch"
	"github.com/goliatone/go-formintake/pkg/execctx"
	"github.com/goliatone/go-formintake/pkg/logger"
	"github.com/goliatone/go-formintake/pkg/processing"
	"github.com/goliatone/go-formintake/pkg/schema"
	"github.com/goliatone/go-formintake/pkg/workflow"
	"github.com/goliatone/go-formintake/pkg/workflow/httpengine"
	"github.com/goliatone/go-formintake/pkg/workflow/temporalengine"
)

// App holds the assembled service graph.
type App struct {
	Config     *config.Config
	Catalog    *catalog.Catalog
	Engine     workflow.Engine
	Identity   *execctx.SystemProvider
	Registry   *dispatch.Registry
	Dispatcher *dispatch.Dispatcher
	Metrics    *metrics.Observer
	Router     *gin.Engine

	log     logger.Logger
	closers []io.Closer
}

// Option customises Build.
type Option func(*buildOptions)

type buildOptions struct {
	loaderOptions []schema.LoaderOption
	engine        workflow.Engine
}

// WithLoaderOptions forwards options to the schema loader.
func WithLoaderOptions(opts ...schema.LoaderOption) Option {
	return func(o *buildOptions) {
		o.loaderOptions = append(o.loaderOptions, opts...)
	}
}

// WithEngine overrides the configured workflow backend.
func WithEngine(engine workflow.Engine) Option {
	return func(o *buildOptions) {
		o.engine = engine
	}
}

// Build wires the catalog, workflow engine, dispatcher and router described
// by cfg. The catalog is loaded eagerly so broken sources fail at startup.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: configuration is required")
	}
	if log == nil {
		log = logger.GetDefault()
	}
	options := buildOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	a := &App{Config: cfg, log: log}
	ctx = logger.ContextWithLogger(ctx, log)

	schemas, err := buildCatalog(cfg.Catalog, options.loaderOptions)
	if err != nil {
		return nil, err
	}
	if err := schemas.Load(ctx); err != nil {
		return nil, fmt.Errorf("app: load catalog: %w", err)
	}
	a.Catalog = schemas

	engine := options.engine
	if engine == nil {
		engine, err = a.buildEngine(cfg.Workflow)
		if err != nil {
			return nil, err
		}
	}
	a.Engine = engine

	a.Identity, err = execctx.NewSystemProvider(cfg.Identity.SystemUser)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	a.Registry = dispatch.NewRegistry()
	for _, svc := range cfg.Services {
		if err := a.registerService(ctx, svc); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Metrics, err = metrics.NewObserver()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	a.Dispatcher = dispatch.New(a.Registry, a.Identity, dispatch.WithObserver(a.Metrics))
	a.Router = server.NewRouter(a.Dispatcher, log, a.serverOptions())

	log.Info("Intake service assembled",
		"services", a.Registry.List(),
		"backend", cfg.Workflow.Backend,
	)
	return a, nil
}

// Server returns an http server for the assembled router.
func (a *App) Server() *server.Server {
	return server.New(a.Router, a.log, a.serverOptions())
}

// Close releases backend connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn("Failed to close resource", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) serverOptions() server.Options {
	opts := server.Options{
		Addr:            a.Config.Server.Addr,
		ReadTimeout:     a.Config.Server.ReadTimeout,
		ShutdownTimeout: a.Config.Server.ShutdownTimeout,
		MaxBodyBytes:    a.Config.Server.MaxBodyBytes,
	}
	if a.Metrics != nil {
		opts.Metrics = a.Metrics.Handler()
	}
	return opts
}

func (a *App) registerService(ctx context.Context, svc config.ServiceConfig) error {
	for _, formID := range svc.Forms {
		if _, err := a.Catalog.Schema(ctx, formID); err != nil {
			a.log.Warn("Service accepts a form missing from the catalog",
				"service", svc.ID,
				"form", formID,
			)
		}
	}

	proc, err := processing.NewFormProcessor(
		svc.ID,
		svc.ProcessDefinitionID,
		a.Catalog,
		a.Engine,
		processing.WithAllowedForms(svc.Forms...),
	)
	if err != nil {
		return fmt.Errorf("app: service %q: %w", svc.ID, err)
	}
	if err := a.Registry.Register(svc.ID, proc.Factory()); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return nil
}

func (a *App) buildEngine(cfg config.WorkflowConfig) (workflow.Engine, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return workflow.NewMemoryEngine(), nil
	case "http":
		engine, err := httpengine.New(cfg.BaseURL,
			httpengine.WithTimeout(cfg.Timeout),
			httpengine.WithBearerToken(cfg.Token),
		)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		return engine, nil
	case "temporal":
		c, err := temporalengine.Dial(cfg.HostPort, cfg.Namespace)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		engine, err := temporalengine.New(c, cfg.TaskQueue)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("app: %w", err)
		}
		a.closers = append(a.closers, closerFunc(c.Close))
		return engine, nil
	default:
		return nil, fmt.Errorf("app: unknown workflow backend %q", cfg.Backend)
	}
}

func buildCatalog(cfg config.CatalogConfig, extra []schema.LoaderOption) (*catalog.Catalog, error) {
	adapters, err := catalog.NewAdapterRegistry(
		catalogyaml.New(),
		formdef.New(),
		openapi.New(openapi.WithReferenceResolution(cfg.ResolveReferences)),
	)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	loaderOpts := make([]schema.LoaderOption, 0, len(extra)+2)
	loaderOpts = append(loaderOpts, schema.WithMaxDocumentBytes(cfg.MaxDocumentBytes))
	if cfg.AllowHTTP {
		loaderOpts = append(loaderOpts, schema.WithHTTPFallback(cfg.HTTPTimeout))
	}
	loaderOpts = append(loaderOpts, extra...)

	sources := make([]schema.Source, 0, len(cfg.Sources))
	for _, location := range cfg.Sources {
		src, err := schema.ParseSource(location)
		if err != nil {
			return nil, fmt.Errorf("app: catalog source: %w", err)
		}
		sources = append(sources, src)
	}

	return catalog.New(
		loader.New(schema.NewLoaderOptions(loaderOpts...)),
		adapters,
		catalog.WithSources(sources...),
	), nil
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
