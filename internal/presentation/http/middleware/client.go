package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// ClientIDHeader carries the caller's opaque device/browser id.
	ClientIDHeader = "X-Telemetry-Client-ID"

	clientIDKey = "telemetryClientId"
)

// ClientIDMiddleware requires the client id header on every telemetry
// route and stashes it in the request context.
func ClientIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetHeader(ClientIDHeader)
		if clientID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing client id header"})
			return
		}
		c.Set(clientIDKey, clientID)
		c.Next()
	}
}

// GetClientID retrieves the client id stored by ClientIDMiddleware.
func GetClientID(c *gin.Context) (string, bool) {
	clientID, exists := c.Get(clientIDKey)
	if !exists {
		return "", false
	}
	id, ok := clientID.(string)
	return id, ok && id != ""
}
