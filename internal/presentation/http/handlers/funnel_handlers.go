package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/application/services"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
)

// FunnelHandlers exposes read-only funnel placement and progress
// queries to UI code (progress bars, step navigation).
type FunnelHandlers struct {
	funnelService *services.FunnelService
	logger        *logging.ChanneledLogger
}

// NewFunnelHandlers creates funnel query handlers.
func NewFunnelHandlers(funnelService *services.FunnelService, logger *logging.ChanneledLogger) *FunnelHandlers {
	return &FunnelHandlers{funnelService: funnelService, logger: logger}
}

// GetStep handles GET /api/v1/funnels/:id/step?path=... and returns the
// matched step, or an empty body with 404 when nothing matches.
func (h *FunnelHandlers) GetStep(c *gin.Context) {
	funnelID := c.Param("id")
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter required"})
		return
	}

	step := h.funnelService.GetCurrentFunnelStep(funnelID, path)
	if step == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no step matches path"})
		return
	}
	c.JSON(http.StatusOK, step)
}

// GetProgress handles GET /api/v1/funnels/:id/progress?stepId=...
func (h *FunnelHandlers) GetProgress(c *gin.Context) {
	funnelID := c.Param("id")
	stepID := c.Query("stepId")
	if stepID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stepId query parameter required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"funnelId": funnelID,
		"stepId":   stepID,
		"progress": h.funnelService.GetFunnelProgress(funnelID, stepID),
	})
}

// GetNeighbors handles GET /api/v1/funnels/:id/neighbors?stepId=... and
// returns the next step plus every previous step in declared order.
func (h *FunnelHandlers) GetNeighbors(c *gin.Context) {
	funnelID := c.Param("id")
	stepID := c.Query("stepId")
	if stepID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stepId query parameter required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"next":     h.funnelService.GetNextStep(funnelID, stepID),
		"previous": h.funnelService.GetPreviousSteps(funnelID, stepID),
	})
}
