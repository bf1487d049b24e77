package services

import (
	"github.com/coder/quartz"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/buckets"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/caching/stores"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
)

// StateService owns each client's UserContext and current FlowStage.
// It is the single writer path for both; emitters and handlers go
// through it rather than mutating state directly.
type StateService struct {
	sessions *SessionService
	cache    *stores.ClientStore
	clock    quartz.Clock
	logger   *logging.ChanneledLogger
}

// StateSnapshot is the debug inspection view of one client.
type StateSnapshot struct {
	SessionID string                `json:"sessionId"`
	State     telemetry.ClientState `json:"state"`
}

// NewStateService creates a new state service.
func NewStateService(sessions *SessionService, cache *stores.ClientStore, clock quartz.Clock, logger *logging.ChanneledLogger) *StateService {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &StateService{
		sessions: sessions,
		cache:    cache,
		clock:    clock,
		logger:   logger,
	}
}

// GetOrCreateState returns a snapshot of the client's state, creating
// a fresh unauthenticated context on first contact. Mutation goes
// through the Set* methods, which update the stored state under the
// store's lock; the returned copy is safe to read without one.
func (s *StateService) GetOrCreateState(clientID string) telemetry.ClientState {
	if state, ok := s.cache.GetClientState(clientID); ok {
		return state
	}

	state := telemetry.ClientState{
		ClientID: clientID,
		Context: telemetry.UserContext{
			AnonymousID:             s.sessions.CreateAnonymousID(clientID, ""),
			UserRole:                telemetry.RoleUnknown,
			IsAuthenticated:         false,
			ProfileCompletionBucket: 0,
		},
		Stage:        telemetry.StageVisit,
		CurrentPage:  "/",
		LastActivity: s.clock.Now().UTC(),
	}
	s.cache.SetClientState(state)
	return state
}

// Identify transitions the client to an authenticated context. The raw
// user id is hashed one-way immediately and discarded; role and profile
// completion arrive as a coarse summary from the auth subsystem.
func (s *StateService) Identify(clientID, userID, role string, profileCompletion int) {
	s.GetOrCreateState(clientID)

	anonymousID := s.sessions.CreateAnonymousID(clientID, userID)
	s.sessions.SetAnonymousID(clientID, anonymousID)

	now := s.clock.Now().UTC()
	s.cache.UpdateClientState(clientID, func(state *telemetry.ClientState) {
		state.Context = telemetry.UserContext{
			AnonymousID:             anonymousID,
			UserRole:                telemetry.ParseUserRole(role),
			IsAuthenticated:         true,
			ProfileCompletionBucket: buckets.Percentage(profileCompletion),
		}
		state.LastActivity = now
	})

	s.logger.Session().Debug("Client identified", "clientId", clientID, "role", role)
}

// Reset re-creates the client's context on sign-out: sessions dropped,
// anonymous id rotated, stage back to visit.
func (s *StateService) Reset(clientID string) {
	s.cache.DeleteClientState(clientID)
	s.sessions.ResetIdentity(clientID)
	// Next GetOrCreateState picks up the rotated anonymous id.
	s.GetOrCreateState(clientID)
}

// SetFlowStage updates the client's current flow stage.
func (s *StateService) SetFlowStage(clientID string, stage telemetry.FlowStage) {
	s.GetOrCreateState(clientID)

	now := s.clock.Now().UTC()
	changed := false
	s.cache.UpdateClientState(clientID, func(state *telemetry.ClientState) {
		if state.Stage == stage {
			return
		}
		state.Stage = stage
		state.LastActivity = now
		changed = true
	})
	if changed {
		s.logger.Session().Debug("Flow stage changed", "clientId", clientID, "stage", string(stage))
	}
}

// SetCurrentPage records the sanitized current page and the viewport
// width the client reported with the navigation.
func (s *StateService) SetCurrentPage(clientID, sanitizedPath string, viewportWidth int) {
	s.GetOrCreateState(clientID)

	now := s.clock.Now().UTC()
	s.cache.UpdateClientState(clientID, func(state *telemetry.ClientState) {
		state.CurrentPage = sanitizedPath
		if viewportWidth > 0 {
			state.ViewportWidth = viewportWidth
		}
		state.LastActivity = now
	})
}

// Snapshot returns the debug inspection view: current session id, user
// context, and flow stage.
func (s *StateService) Snapshot(clientID string) StateSnapshot {
	state := s.GetOrCreateState(clientID)
	return StateSnapshot{
		SessionID: s.sessions.GetSessionID(clientID),
		State:     state,
	}
}
