// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/application/container"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/presentation/http/handlers"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	telemetryHandlers := handlers.NewTelemetryHandlers(
		container.StateService,
		container.EmitterService,
		container.DropoffService,
		container.FunnelService,
		container.Logger,
		container.PerfTracker,
	)
	formHandlers := handlers.NewFormHandlers(container.DropoffService, container.Logger)
	funnelHandlers := handlers.NewFunnelHandlers(container.FunnelService, container.Logger)
	debugHandlers := handlers.NewDebugHandlers(container.StateService, container.DebugBroadcaster, container.IdentityStore, container.SummaryCache, container.Logger, container.PerfTracker)

	api := r.Group("/api/v1")

	telemetryAPI := api.Group("/telemetry")
	telemetryAPI.Use(middleware.ClientIDMiddleware())
	{
		telemetryAPI.POST("/navigate", telemetryHandlers.PostNavigate)
		telemetryAPI.POST("/events/:kind", telemetryHandlers.PostEvent)
		telemetryAPI.POST("/identify", telemetryHandlers.PostIdentify)
		telemetryAPI.POST("/reset", telemetryHandlers.PostReset)
		telemetryAPI.POST("/unload", telemetryHandlers.PostUnload)
		telemetryAPI.POST("/forms/:action", formHandlers.PostFormAction)
	}

	funnelAPI := api.Group("/funnels")
	{
		funnelAPI.GET("/:id/step", funnelHandlers.GetStep)
		funnelAPI.GET("/:id/progress", funnelHandlers.GetProgress)
		funnelAPI.GET("/:id/neighbors", funnelHandlers.GetNeighbors)
	}

	debugAPI := api.Group("/debug")
	debugAPI.Use(debugHandlers.AuthMiddleware())
	{
		debugAPI.GET("/state", middleware.ClientIDMiddleware(), debugHandlers.GetState)
		debugAPI.GET("/summary", debugHandlers.GetSummary)
		debugAPI.GET("/stream", debugHandlers.GetStream)
	}

	return r
}
