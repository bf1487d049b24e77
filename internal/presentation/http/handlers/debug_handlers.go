package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/application/services"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/caching/memo"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/messaging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/performance"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/persistence/identity"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/security"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/presentation/http/middleware"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/pkg/config"
)

var debugUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS already constrains browser callers; the stream itself
		// is password-guarded.
		return true
	},
}

// DebugHandlers exposes the manual-verification surface: a state
// snapshot and a live stream of emissions. Both require the operator
// password; the stream additionally requires debug mode.
type DebugHandlers struct {
	stateService *services.StateService
	broadcaster  *messaging.DebugBroadcaster
	store        *identity.Store
	summaryCache *memo.Cache[map[string]int]
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewDebugHandlers creates the debug inspection handlers. store may be
// nil when persistence is degraded; the summary endpoint reports 503.
func NewDebugHandlers(stateService *services.StateService, broadcaster *messaging.DebugBroadcaster, store *identity.Store, summaryCache *memo.Cache[map[string]int], logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *DebugHandlers {
	return &DebugHandlers{
		stateService: stateService,
		broadcaster:  broadcaster,
		store:        store,
		summaryCache: summaryCache,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// AuthMiddleware checks the operator password against the configured
// bcrypt hash. An empty hash disables the whole debug surface.
func (h *DebugHandlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !security.CheckDebugPassword(c.GetHeader("X-Debug-Password"), config.DebugPasswordHash) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// GetState handles GET /api/v1/debug/state: the current session, user
// context, and flow stage for the calling client, plus handler timing
// rollups.
func (h *DebugHandlers) GetState(c *gin.Context) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client id not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshot":   h.stateService.Snapshot(clientID),
		"operations": h.perfTracker.Stats(),
		"uptime":     h.perfTracker.Uptime().String(),
	})
}

// GetSummary handles GET /api/v1/debug/summary: per-event totals from
// the event log, memoized so repeated polling does not hammer the
// database.
func (h *DebugHandlers) GetSummary(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event log unavailable"})
		return
	}

	counts, err := h.summaryCache.Get(c.Request.Context(), "event-counts", time.Minute,
		func(ctx context.Context) (map[string]int, error) {
			return h.store.EventCounts(ctx)
		},
		nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load event counts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": counts})
}

// GetStream handles GET /api/v1/debug/stream: upgrades to a websocket
// mirroring every emission while debug mode is on.
func (h *DebugHandlers) GetStream(c *gin.Context) {
	if !config.TelemetryDebug {
		c.JSON(http.StatusNotFound, gin.H{"error": "debug mode disabled"})
		return
	}

	conn, err := debugUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug().Error("Debug stream upgrade failed", "error", err.Error())
		return
	}

	client := &messaging.DebugClient{
		Conn: conn,
		Send: make(chan []byte, 64),
	}
	h.broadcaster.Register(client)

	// Read pump: we ignore inbound messages but need the loop to
	// detect the close handshake.
	go func() {
		defer h.broadcaster.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
