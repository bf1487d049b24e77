// Package services provides application-level orchestration services
package services

import (
	"time"

	"github.com/coder/quartz"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/caching/stores"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/persistence/identity"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/security"
)

// SessionService owns the rotating session identifier and the stable
// anonymous identifier for each client. Both operations degrade to
// session-scoped in-memory values when persistent storage is
// unavailable; neither ever returns an error to its caller.
type SessionService struct {
	store      *identity.Store // nil when persistence is degraded
	cache      *stores.ClientStore
	clock      quartz.Clock
	sessionTTL time.Duration
	logger     *logging.ChanneledLogger
}

// NewSessionService creates a new session service. A nil store puts the
// service in degraded (in-memory only) mode from the start.
func NewSessionService(store *identity.Store, cache *stores.ClientStore, clock quartz.Clock, sessionTTL time.Duration, logger *logging.ChanneledLogger) *SessionService {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &SessionService{
		store:      store,
		cache:      cache,
		clock:      clock,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// GetSessionID returns a valid session id for the client, minting a new
// session transparently when none exists or the previous one idled out.
// Reading a valid session refreshes its activity clock (sliding expiry).
func (s *SessionService) GetSessionID(clientID string) string {
	now := s.clock.Now().UTC()

	if sess, ok := s.cache.GetSession(clientID, now, s.sessionTTL); ok {
		sess.LastActivity = now
		s.cache.SetSession(clientID, sess)
		s.persistSession(sess)
		return sess.ID
	}

	// Cache miss: the session may still live in persistent storage
	// (process restart within the idle window).
	if s.store != nil {
		if stored, ok := s.store.LoadSession(clientID); ok && now.Sub(stored.LastActivity) < s.sessionTTL {
			sess := *stored
			sess.LastActivity = now
			s.cache.SetSession(clientID, sess)
			s.persistSession(sess)
			return sess.ID
		}
	}

	sess := telemetry.Session{
		ID:           security.GenerateSessionID(),
		ClientID:     clientID,
		CreatedAt:    now,
		LastActivity: now,
	}
	s.cache.SetSession(clientID, sess)
	s.persistSession(sess)
	s.logger.Session().Debug("Minted new session", "clientId", clientID, "sessionId", sess.ID)
	return sess.ID
}

// CreateAnonymousID returns the anonymous identifier for a client. With
// an empty knownID it creates (once) and reuses a random prefixed id;
// with a knownID it applies a deterministic one-way hash. The result
// never contains the input and no reverse mapping is stored.
func (s *SessionService) CreateAnonymousID(clientID, knownID string) string {
	if knownID != "" {
		return security.HashKnownID(knownID)
	}

	if s.store != nil {
		if anonymousID, ok := s.store.GetAnonymousID(clientID); ok {
			return anonymousID
		}
		anonymousID := security.GenerateAnonymousID()
		if err := s.store.SaveAnonymousID(clientID, anonymousID); err != nil {
			s.logger.Session().Warn("Storage degraded, anonymous id is session-scoped",
				"clientId", clientID, "error", err.Error())
			s.cache.SetFallbackAnonymousID(clientID, anonymousID)
		}
		return anonymousID
	}

	return s.cache.LoadOrStoreFallbackAnonymousID(clientID, security.GenerateAnonymousID())
}

// SetAnonymousID persists a (derived) anonymous id as the client's
// stable identifier. Used after identify() so the hashed id survives
// page loads.
func (s *SessionService) SetAnonymousID(clientID, anonymousID string) {
	if s.store != nil {
		if err := s.store.SaveAnonymousID(clientID, anonymousID); err != nil {
			s.logger.Session().Warn("Failed to persist anonymous id", "clientId", clientID, "error", err.Error())
		}
	}
	s.cache.SetFallbackAnonymousID(clientID, anonymousID)
}

// ResetIdentity drops the client's sessions and stored anonymous id so
// the next read mints fresh, unlinkable values.
func (s *SessionService) ResetIdentity(clientID string) {
	s.cache.DeleteSession(clientID)
	s.cache.DeleteFallbackAnonymousID(clientID)
	if s.store != nil {
		if err := s.store.DeleteSessions(clientID); err != nil {
			s.logger.Session().Warn("Failed to delete persisted sessions", "clientId", clientID, "error", err.Error())
		}
		anonymousID := security.GenerateAnonymousID()
		if err := s.store.SaveAnonymousID(clientID, anonymousID); err != nil {
			s.logger.Session().Warn("Failed to rotate anonymous id", "clientId", clientID, "error", err.Error())
		}
	}
	s.logger.Session().Debug("Identity reset", "clientId", clientID)
}

func (s *SessionService) persistSession(sess telemetry.Session) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveSession(&sess); err != nil {
		s.logger.Session().Warn("Failed to persist session", "sessionId", sess.ID, "error", err.Error())
	}
}
