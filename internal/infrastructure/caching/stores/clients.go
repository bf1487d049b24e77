// Package stores provides the in-memory state store backing the
// telemetry engine: sessions, per-client context/stage state, and the
// session-scoped identity fallback used when persistent storage is
// unavailable. Expiry is checked lazily at read time; there is no
// background sweeper.
package stores

import (
	"sync"
	"time"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
)

// ClientStore implements session and client-state caching operations.
// Values cross the store boundary as copies; all mutation of stored
// state happens under the store's lock, so readers never observe a
// half-written session or client state.
type ClientStore struct {
	sessions     map[string]telemetry.Session     // clientId -> session
	clientStates map[string]telemetry.ClientState // clientId -> state
	anonymousIDs map[string]string                // clientId -> fallback anonymous id
	mu           sync.RWMutex
	logger       *logging.ChanneledLogger
}

// NewClientStore creates a new client state store.
func NewClientStore(logger *logging.ChanneledLogger) *ClientStore {
	if logger != nil {
		logger.Cache().Info("Initializing client state store")
	}
	return &ClientStore{
		sessions:     make(map[string]telemetry.Session),
		clientStates: make(map[string]telemetry.ClientState),
		anonymousIDs: make(map[string]string),
		logger:       logger,
	}
}

// GetSession returns a copy of the cached session for a client if it
// has not idled out. Expired sessions are evicted on read.
func (cs *ClientStore) GetSession(clientID string, now time.Time, ttl time.Duration) (telemetry.Session, bool) {
	cs.mu.RLock()
	sess, exists := cs.sessions[clientID]
	cs.mu.RUnlock()

	if !exists {
		return telemetry.Session{}, false
	}
	if now.Sub(sess.LastActivity) >= ttl {
		cs.mu.Lock()
		// Re-check under the write lock; another reader may have
		// already replaced the session.
		if cur, ok := cs.sessions[clientID]; ok && cur.ID == sess.ID {
			delete(cs.sessions, clientID)
		}
		cs.mu.Unlock()
		if cs.logger != nil {
			cs.logger.Cache().Debug("Session expired on read", "clientId", clientID, "sessionId", sess.ID)
		}
		return telemetry.Session{}, false
	}
	return sess, true
}

// SetSession stores a session for a client.
func (cs *ClientStore) SetSession(clientID string, sess telemetry.Session) {
	cs.mu.Lock()
	cs.sessions[clientID] = sess
	cs.mu.Unlock()
}

// DeleteSession drops a client's cached session.
func (cs *ClientStore) DeleteSession(clientID string) {
	cs.mu.Lock()
	delete(cs.sessions, clientID)
	cs.mu.Unlock()
}

// GetClientState returns a copy of the per-client state, if present.
func (cs *ClientStore) GetClientState(clientID string) (telemetry.ClientState, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	state, exists := cs.clientStates[clientID]
	return state, exists
}

// SetClientState stores per-client state.
func (cs *ClientStore) SetClientState(state telemetry.ClientState) {
	cs.mu.Lock()
	cs.clientStates[state.ClientID] = state
	cs.mu.Unlock()
}

// UpdateClientState applies fn to the stored state under the write
// lock, so concurrent readers see either the old or the new value,
// never a partial write. Returns false when the client has no state.
func (cs *ClientStore) UpdateClientState(clientID string, fn func(*telemetry.ClientState)) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	state, exists := cs.clientStates[clientID]
	if !exists {
		return false
	}
	fn(&state)
	cs.clientStates[clientID] = state
	return true
}

// DeleteClientState drops a client's state. Used on identity reset.
func (cs *ClientStore) DeleteClientState(clientID string) {
	cs.mu.Lock()
	delete(cs.clientStates, clientID)
	cs.mu.Unlock()
}

// GetFallbackAnonymousID returns the session-scoped anonymous id used
// when persistent storage is degraded.
func (cs *ClientStore) GetFallbackAnonymousID(clientID string) (string, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	id, exists := cs.anonymousIDs[clientID]
	return id, exists
}

// SetFallbackAnonymousID stores a session-scoped anonymous id.
func (cs *ClientStore) SetFallbackAnonymousID(clientID, anonymousID string) {
	cs.mu.Lock()
	cs.anonymousIDs[clientID] = anonymousID
	cs.mu.Unlock()
}

// LoadOrStoreFallbackAnonymousID returns the existing fallback id or
// stores the candidate, atomically, so two concurrent first contacts
// for the same client agree on one id.
func (cs *ClientStore) LoadOrStoreFallbackAnonymousID(clientID, candidate string) string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if id, exists := cs.anonymousIDs[clientID]; exists {
		return id
	}
	cs.anonymousIDs[clientID] = candidate
	return candidate
}

// DeleteFallbackAnonymousID drops the fallback id for a client.
func (cs *ClientStore) DeleteFallbackAnonymousID(clientID string) {
	cs.mu.Lock()
	delete(cs.anonymousIDs, clientID)
	cs.mu.Unlock()
}

// ActiveClientCount reports how many clients currently have state.
func (cs *ClientStore) ActiveClientCount() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.clientStates)
}
