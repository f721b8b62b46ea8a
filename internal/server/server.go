// Package server exposes the dispatcher over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-formintake/pkg/dispatch"
	"github.com/goliatone/go-formintake/pkg/logger"
)

// Options configures the router and listener.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

// NewRouter builds the gin engine serving the intake API.
func NewRouter(d *dispatch.Dispatcher, log logger.Logger, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}
	router.POST("/services/:serviceId/applications", submitHandler(d, opts.MaxBodyBytes))
	return router
}

func submitHandler(d *dispatch.Dispatcher, maxBody int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := c.Request.Body
		if maxBody > 0 {
			body = http.MaxBytesReader(c.Writer, body, maxBody)
		}
		raw, err := io.ReadAll(body)
		if err != nil {
			status := http.StatusBadRequest
			message := "request body could not be read"
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				status = http.StatusRequestEntityTooLarge
				message = fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)
			}
			c.JSON(status, dispatch.ErrorBody{Error: dispatch.ErrorDetail{Type: "Invalid request", Message: message}})
			return
		}

		resp := d.Handle(c.Request.Context(), c.Param("serviceId"), raw)
		c.Data(resp.StatusCode, "application/json; charset=utf-8", resp.Body)
	}
}

// Server runs the router until its context is canceled.
type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
	log             logger.Logger
}

// New wraps router in an http.Server listening on opts.Addr.
func New(router http.Handler, log logger.Logger, opts Options) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	return &Server{
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           router,
			ReadHeaderTimeout: opts.ReadTimeout,
			ReadTimeout:       opts.ReadTimeout,
		},
		shutdownTimeout: opts.ShutdownTimeout,
		log:             log,
	}
}

// Run listens until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.http.Addr, err)
	}
	s.log.Info("Intake server listening", "addr", listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.log.Info("Shutting down intake server")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
