// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/application/container"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/persistence/identity"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/presentation/http/server"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/pkg/config"
)

// Initialize performs the complete startup sequence and blocks until
// shutdown completes.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	log.Println("telemetryd starting...")

	// Step 1: Structured logging
	logger, err := logging.NewChanneledLogger(nil)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.Startup().Info("Channeled logging initialized")

	// Step 2: Identity store. A failure here is not fatal; the engine
	// runs degraded on in-memory state only.
	logger.Startup().Info("Opening identity store...")
	identityStore, err := identity.Open(identity.ConfigFromEnv(), logger)
	if err != nil {
		logger.Startup().Error("Identity store unavailable, running degraded", "error", err.Error())
		identityStore = nil
	} else {
		logger.Startup().Info("Identity store ready")
	}

	// Step 3: Dependency injection container with singleton services
	logger.Startup().Info("Initializing dependency injection container...")
	appContainer := container.NewContainer(identityStore, logger)
	logger.Startup().Info("Container initialization complete",
		"sinks", appContainer.Dispatcher.SinkCount(),
		"funnels", len(appContainer.FunnelRegistry.FunnelIDs()),
		"disabled", config.TelemetryDisabled)

	// Step 4: HTTP server
	logger.Startup().Info("Starting HTTP server...")
	port := config.Port
	httpServer := server.New(port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"environment", config.Environment,
		"port", port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	// Drains the sink queues before closing the store so buffered
	// events still reach the event log.
	logger.Shutdown().Info("Draining telemetry sinks...")
	appContainer.Close()

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
