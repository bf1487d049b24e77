// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/application/services"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/buckets"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/performance"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/security"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/presentation/http/middleware"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/pkg/config"
)

// TelemetryHandlers contains the inbound instrumentation endpoints:
// route-change notifications, the typed event facade, lifecycle
// signals, and authentication transitions.
type TelemetryHandlers struct {
	stateService   *services.StateService
	emitterService *services.EmitterService
	dropoffService *services.DropoffService
	funnelService  *services.FunnelService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewTelemetryHandlers creates telemetry handlers with injected dependencies.
func NewTelemetryHandlers(stateService *services.StateService, emitterService *services.EmitterService, dropoffService *services.DropoffService, funnelService *services.FunnelService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *TelemetryHandlers {
	return &TelemetryHandlers{
		stateService:   stateService,
		emitterService: emitterService,
		dropoffService: dropoffService,
		funnelService:  funnelService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// NavigateRequest is a route-change notification from the host
// application's navigation layer.
type NavigateRequest struct {
	Path          string `json:"path" binding:"required"`
	ViewportWidth int    `json:"viewportWidth"`
}

// PostNavigate handles POST /api/v1/telemetry/navigate. The raw path is
// sanitized before it touches any state; active form units are torn
// down because navigating away abandons them.
func (h *TelemetryHandlers) PostNavigate(c *gin.Context) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client id not found"})
		return
	}

	marker := h.perfTracker.StartOperation("telemetry:navigate", clientID)
	defer h.perfTracker.CompleteOperation(marker)

	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	sanitized := buckets.SanitizePath(req.Path)

	h.dropoffService.TeardownAll(clientID)
	h.stateService.SetCurrentPage(clientID, sanitized, req.ViewportWidth)

	if _, step := h.funnelService.MatchPath(sanitized); step != nil && step.FlowStage != "" {
		h.stateService.SetFlowStage(clientID, step.FlowStage)
	}

	h.emitterService.PageView(clientID)
	c.JSON(http.StatusOK, gin.H{"path": sanitized})
}

// EventRequest covers the payload fields of every typed event kind.
// Each kind reads only the fields it needs; raw values are bucketed by
// the pipeline before leaving the process.
type EventRequest struct {
	TimeToCompleteMs  int64   `json:"timeToCompleteMs"`
	CompletionPct     int     `json:"completionPct"`
	Seats             int     `json:"seats"`
	DistanceKm        float64 `json:"distanceKm"`
	TimeToAcceptMs    int64   `json:"timeToAcceptMs"`
	AcceptanceRatePct int     `json:"acceptanceRatePct"`
	FunnelID          string  `json:"funnelId"`
	StepID            string  `json:"stepId"`
	Reason            string  `json:"reason"`
	Metric            string  `json:"metric"`
	ValueMs           float64 `json:"valueMs"`
	Rating            string  `json:"rating"`
	Surface           string  `json:"surface"`
	ResultCount       int     `json:"resultCount"`
	RadiusKm          float64 `json:"radiusKm"`
}

// PostEvent handles POST /api/v1/telemetry/events/:kind and routes the
// payload to the matching typed emitter. Emission is fire-and-forget,
// so this always answers 202 for known kinds.
func (h *TelemetryHandlers) PostEvent(c *gin.Context) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client id not found"})
		return
	}

	kind := c.Param("kind")
	marker := h.perfTracker.StartOperation("telemetry:event:"+kind, clientID)
	defer h.perfTracker.CompleteOperation(marker)

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	switch kind {
	case telemetry.EventSignUpStarted:
		h.emitterService.SignUpStarted(clientID)
	case telemetry.EventSignUpComplete:
		h.emitterService.SignUpComplete(clientID, time.Duration(req.TimeToCompleteMs)*time.Millisecond)
	case telemetry.EventProfileCompleted:
		h.emitterService.ProfileCompleted(clientID, req.CompletionPct)
	case telemetry.EventRideCreated:
		h.emitterService.RideCreated(clientID, req.Seats, req.DistanceKm)
	case telemetry.EventRideRequested:
		h.emitterService.RideRequested(clientID, req.Seats, req.DistanceKm)
	case telemetry.EventRideAccepted:
		h.emitterService.RideAccepted(clientID, time.Duration(req.TimeToAcceptMs)*time.Millisecond, req.AcceptanceRatePct)
	case telemetry.EventFunnelStep:
		h.emitterService.FunnelStep(clientID, req.FunnelID, req.StepID)
	case telemetry.EventFunnelDropOff:
		h.emitterService.FunnelDropOff(clientID, req.FunnelID, req.StepID, req.Reason)
	case telemetry.EventWebVital:
		h.emitterService.WebVital(clientID, req.Metric, req.ValueMs, req.Rating)
	case telemetry.EventEmptyStateViewed:
		h.emitterService.EmptyStateViewed(clientID, req.Surface)
	case telemetry.EventSearchPerformed:
		h.emitterService.SearchPerformed(clientID, req.ResultCount, req.RadiusKm)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event kind"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

// PostIdentify handles POST /api/v1/telemetry/identify. The auth
// subsystem passes its bearer token; only the hashed identity and a
// coarse profile summary survive past this handler.
func (h *TelemetryHandlers) PostIdentify(c *gin.Context) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client id not found"})
		return
	}

	marker := h.perfTracker.StartOperation("telemetry:identify", clientID)
	defer h.perfTracker.CompleteOperation(marker)

	authHeader := c.GetHeader("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" || token == authHeader {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	claims, err := security.ValidateIdentityToken(token, config.JWTSecret)
	if err != nil {
		h.logger.Session().Warn("Identify token rejected", "clientId", clientID, "error", err.Error())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	h.stateService.Identify(clientID, claims.UserID, claims.Role, claims.ProfileCompletion)
	c.JSON(http.StatusOK, gin.H{"identified": true})
}

// PostReset handles POST /api/v1/telemetry/reset, called on sign-out.
func (h *TelemetryHandlers) PostReset(c *gin.Context) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client id not found"})
		return
	}

	h.dropoffService.TeardownAll(clientID)
	h.stateService.Reset(clientID)
	c.JSON(http.StatusOK, gin.H{"reset": true})
}

// PostUnload handles POST /api/v1/telemetry/unload, the page-unload
// lifecycle signal (typically a beacon).
func (h *TelemetryHandlers) PostUnload(c *gin.Context) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client id not found"})
		return
	}

	h.dropoffService.TeardownAll(clientID)
	c.Status(http.StatusNoContent)
}
