package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/application/services"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/presentation/http/middleware"
)

// FormHandlers exposes the drop-off tracker's lifecycle signals.
type FormHandlers struct {
	dropoffService *services.DropoffService
	logger         *logging.ChanneledLogger
}

// NewFormHandlers creates form tracking handlers.
func NewFormHandlers(dropoffService *services.DropoffService, logger *logging.ChanneledLogger) *FormHandlers {
	return &FormHandlers{dropoffService: dropoffService, logger: logger}
}

// FormActionRequest identifies the tracked unit and, for field-level
// actions, the field involved. Field names are form-schema names, never
// field values.
type FormActionRequest struct {
	FormID string `json:"formId" binding:"required"`
	Field  string `json:"field"`
}

// PostFormAction handles POST /api/v1/telemetry/forms/:action where
// action is start, field, error, submit, or teardown.
func (h *FormHandlers) PostFormAction(c *gin.Context) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client id not found"})
		return
	}

	var req FormActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	switch c.Param("action") {
	case "start":
		h.dropoffService.Start(clientID, req.FormID)
	case "field":
		if req.Field == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "field required"})
			return
		}
		h.dropoffService.FieldInteracted(clientID, req.FormID, req.Field)
	case "error":
		if req.Field == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "field required"})
			return
		}
		h.dropoffService.FieldError(clientID, req.FormID, req.Field)
	case "submit":
		h.dropoffService.Submit(clientID, req.FormID)
	case "teardown":
		h.dropoffService.Teardown(clientID, req.FormID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown form action"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}
