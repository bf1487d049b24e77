// Package messaging provides the websocket broadcaster that mirrors
// every emission to connected debug clients while debug mode is on.
package messaging

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
)

// DebugClient represents a single connected debug stream client.
type DebugClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// DebugBroadcaster manages connected debug clients and fans emitted
// events out to them. When nobody is connected, Broadcast is a cheap
// no-op.
type DebugBroadcaster struct {
	clients map[*DebugClient]bool
	mu      sync.RWMutex
	logger  *logging.ChanneledLogger
}

// NewDebugBroadcaster creates a broadcaster instance.
func NewDebugBroadcaster(logger *logging.ChanneledLogger) *DebugBroadcaster {
	return &DebugBroadcaster{
		clients: make(map[*DebugClient]bool),
		logger:  logger,
	}
}

// Register adds a connected client and starts its write pump.
func (b *DebugBroadcaster) Register(client *DebugClient) {
	b.mu.Lock()
	b.clients[client] = true
	count := len(b.clients)
	b.mu.Unlock()

	b.logger.Debug().Info("Debug stream client connected", "clients", count)
	go b.writePump(client)
}

// Unregister removes a client and closes its send channel.
func (b *DebugBroadcaster) Unregister(client *DebugClient) {
	b.mu.Lock()
	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		close(client.Send)
	}
	count := len(b.clients)
	b.mu.Unlock()

	b.logger.Debug().Info("Debug stream client disconnected", "clients", count)
}

// Broadcast mirrors an emitted event to every connected client. Slow
// clients are skipped rather than blocking the pipeline.
func (b *DebugBroadcaster) Broadcast(event *telemetry.Event) {
	b.mu.RLock()
	if len(b.clients) == 0 {
		b.mu.RUnlock()
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		b.mu.RUnlock()
		b.logger.Debug().Error("Failed to marshal event for debug stream", "error", err.Error())
		return
	}
	for client := range b.clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
	b.mu.RUnlock()
}

func (b *DebugBroadcaster) writePump(client *DebugClient) {
	defer client.Conn.Close()
	for message := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			b.Unregister(client)
			return
		}
	}
}
