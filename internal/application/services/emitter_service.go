package services

import (
	"time"

	"github.com/coder/quartz"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/buckets"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/funnels"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/messaging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/security"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/sinks"
)

// EmitterOptions carries the process-wide pipeline flags.
type EmitterOptions struct {
	Disabled    bool
	Debug       bool
	Environment string
}

// EmitterService is the event-emission pipeline: the typed facade that
// composes base properties with event-specific bucketed fields and
// fans the result out to the configured sinks. Every emitter is
// fire-and-forget; nothing here can raise back into the caller.
type EmitterService struct {
	state       *StateService
	sessions    *SessionService
	registry    *funnels.Registry
	dispatcher  *sinks.Dispatcher
	broadcaster *messaging.DebugBroadcaster
	clock       quartz.Clock
	opts        EmitterOptions
	logger      *logging.ChanneledLogger
}

// NewEmitterService creates the pipeline with its dependencies.
func NewEmitterService(state *StateService, sessions *SessionService, registry *funnels.Registry, dispatcher *sinks.Dispatcher, broadcaster *messaging.DebugBroadcaster, clock quartz.Clock, opts EmitterOptions, logger *logging.ChanneledLogger) *EmitterService {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &EmitterService{
		state:       state,
		sessions:    sessions,
		registry:    registry,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		clock:       clock,
		opts:        opts,
		logger:      logger,
	}
}

// emit performs the shared pipeline steps: optional flow-stage
// mutation, base-property composition, and sink dispatch. The stage
// mutation happens before the state read so base properties never
// carry a stale stage. When the pipeline is disabled this returns
// before doing any work at all.
func (e *EmitterService) emit(clientID, name string, stage telemetry.FlowStage, properties map[string]any) {
	if e.opts.Disabled {
		return
	}

	if stage != "" {
		e.state.SetFlowStage(clientID, stage)
	}
	state := e.state.GetOrCreateState(clientID)

	event := &telemetry.Event{
		ID:          security.GenerateULID(),
		Event:       name,
		Properties:  properties,
		PagePath:    state.CurrentPage,
		FlowStage:   state.Stage,
		UserRole:    state.Context.UserRole,
		DeviceType:  buckets.DeviceType(state.ViewportWidth),
		Environment: e.opts.Environment,
		Timestamp:   e.clock.Now().UTC().Format(time.RFC3339),
		SessionID:   e.sessions.GetSessionID(clientID),
		AnonymousID: state.Context.AnonymousID,
	}

	e.dispatcher.Publish(event)

	if e.opts.Debug {
		e.logger.Debug().Info("Event emitted", "event", name, "clientId", clientID, "properties", properties)
		e.broadcaster.Broadcast(event)
	}
}

// PageView emits a page view for the client's current page, annotated
// with funnel placement when the path maps onto a registered funnel.
func (e *EmitterService) PageView(clientID string) {
	if e.opts.Disabled {
		return
	}
	state := e.state.GetOrCreateState(clientID)

	properties := map[string]any{}
	if funnelID, step := e.registry.MatchPath(state.CurrentPage); step != nil {
		properties["funnel_id"] = funnelID
		properties["funnel_step"] = step.ID
		properties["funnel_progress"] = e.registry.GetFunnelProgress(funnelID, step.ID)
	}
	e.emit(clientID, telemetry.EventPageView, "", properties)
}

// SignUpStarted marks the beginning of account creation.
func (e *EmitterService) SignUpStarted(clientID string) {
	e.emit(clientID, telemetry.EventSignUpStarted, telemetry.StageSignupStarted, map[string]any{})
}

// SignUpComplete always moves the flow stage to signup_complete before
// the event is composed.
func (e *EmitterService) SignUpComplete(clientID string, timeToComplete time.Duration) {
	e.emit(clientID, telemetry.EventSignUpComplete, telemetry.StageSignupComplete, map[string]any{
		"time_to_complete": buckets.Duration(timeToComplete),
	})
}

// ProfileCompleted reports profile setup progress in 25-point buckets.
func (e *EmitterService) ProfileCompleted(clientID string, completionPct int) {
	e.emit(clientID, telemetry.EventProfileCompleted, telemetry.StageProfileComplete, map[string]any{
		"profile_completion": buckets.Percentage(completionPct),
	})
}

// RideCreated reports a driver publishing a ride offer.
func (e *EmitterService) RideCreated(clientID string, seats int, distanceKm float64) {
	e.emit(clientID, telemetry.EventRideCreated, telemetry.StageRideCreated, map[string]any{
		"seats":    buckets.Seats(seats),
		"distance": buckets.DistanceKm(distanceKm),
	})
}

// RideRequested reports a rider asking for a seat.
func (e *EmitterService) RideRequested(clientID string, seats int, distanceKm float64) {
	e.emit(clientID, telemetry.EventRideRequested, telemetry.StageRideRequested, map[string]any{
		"seats":    buckets.Seats(seats),
		"distance": buckets.DistanceKm(distanceKm),
	})
}

// RideAccepted reports a driver accepting a rider. Time-to-accept and
// the driver's acceptance rate are bucketed, never exact.
func (e *EmitterService) RideAccepted(clientID string, timeToAccept time.Duration, acceptanceRatePct int) {
	e.emit(clientID, telemetry.EventRideAccepted, telemetry.StageMatched, map[string]any{
		"time_to_accept":  buckets.Duration(timeToAccept),
		"acceptance_rate": buckets.Percentage(acceptanceRatePct),
	})
}

// FunnelStep reports explicit funnel progress. The step's flow stage
// becomes the client's current stage before base properties are read.
func (e *EmitterService) FunnelStep(clientID, funnelID, stepID string) {
	if e.opts.Disabled {
		return
	}
	funnel, ok := e.registry.GetFunnel(funnelID)
	if !ok {
		e.logger.Funnel().Warn("Funnel step for unknown funnel", "funnelId", funnelID, "stepId", stepID)
		return
	}

	var stage telemetry.FlowStage
	for i := range funnel.Steps {
		if funnel.Steps[i].ID == stepID {
			stage = funnel.Steps[i].FlowStage
			break
		}
	}

	progress := e.registry.GetFunnelProgress(funnelID, stepID)
	if progress == 100 {
		stage = telemetry.StageConversion
	}
	e.emit(clientID, telemetry.EventFunnelStep, stage, map[string]any{
		"funnel_id":       funnelID,
		"funnel_step":     stepID,
		"funnel_progress": progress,
	})
}

// FunnelDropOff reports a client leaving a funnel at a known step.
func (e *EmitterService) FunnelDropOff(clientID, funnelID, stepID, reason string) {
	e.emit(clientID, telemetry.EventFunnelDropOff, "", map[string]any{
		"funnel_id":   funnelID,
		"funnel_step": stepID,
		"reason":      reason,
	})
}

// FormAbandoned is emitted by the drop-off tracker when a started unit
// is torn down uncompleted. Field name lists arrive pre-sorted.
func (e *EmitterService) FormAbandoned(clientID, formID string, fieldsFilled, fieldsWithErrors []string, timeSpent time.Duration) {
	e.emit(clientID, telemetry.EventFormAbandoned, "", map[string]any{
		"form_id":            formID,
		"fields_filled":      fieldsFilled,
		"fields_with_errors": fieldsWithErrors,
		"time_spent":         buckets.Duration(timeSpent),
	})
}

// WebVital reports a performance metric with its vendor rating; the raw
// value is bucketed as a duration.
func (e *EmitterService) WebVital(clientID, metric string, valueMs float64, rating string) {
	e.emit(clientID, telemetry.EventWebVital, "", map[string]any{
		"metric": metric,
		"value":  buckets.Duration(time.Duration(valueMs) * time.Millisecond),
		"rating": rating,
	})
}

// EmptyStateViewed reports an empty-state surface being shown.
func (e *EmitterService) EmptyStateViewed(clientID, surface string) {
	e.emit(clientID, telemetry.EventEmptyStateViewed, "", map[string]any{
		"surface": surface,
	})
}

// SearchPerformed reports a ride search with a bucketed result count.
func (e *EmitterService) SearchPerformed(clientID string, resultCount int, radiusKm float64) {
	e.emit(clientID, telemetry.EventSearchPerformed, telemetry.StageBrowsing, map[string]any{
		"result_count": buckets.Count(resultCount),
		"radius":       buckets.DistanceKm(radiusKm),
	})
}
