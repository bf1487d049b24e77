// Package server wraps net/http with the engine's timeouts and lifecycle.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/application/container"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/presentation/http/routes"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/pkg/config"
)

// Server owns the http.Server hosting the telemetry routes.
type Server struct {
	httpServer *http.Server
	logger     *logging.ChanneledLogger
}

// New builds the route tree from the container and binds it on the given port.
func New(port string, container *container.Container) *Server {
	router := routes.SetupRoutes(container)

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + port,
			Handler:      router,
			ReadTimeout:  config.ServerReadTimeout,
			WriteTimeout: config.ServerWriteTimeout,
			IdleTimeout:  config.ServerIdleTimeout,
		},
		logger: container.Logger,
	}
}

// Start blocks serving requests until Stop is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Startup().Info("HTTP server listening", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}

	return nil
}

// Stop drains in-flight requests within the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Shutdown().Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
