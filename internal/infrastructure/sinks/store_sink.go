package sinks

import (
	"encoding/json"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/persistence/identity"
)

// EventStoreSink records emitted events into the events table for
// offline analysis. Every column is already anonymized by the pipeline.
type EventStoreSink struct {
	store  *identity.Store
	logger *logging.ChanneledLogger
}

// NewEventStoreSink builds the store sink. A nil store (degraded
// persistence) yields a nil sink, which the caller omits.
func NewEventStoreSink(store *identity.Store, logger *logging.ChanneledLogger) *EventStoreSink {
	if store == nil {
		if logger != nil {
			logger.Debug().Debug("Event store sink disabled: persistence unavailable")
		}
		return nil
	}
	return &EventStoreSink{store: store, logger: logger}
}

func (s *EventStoreSink) Name() string { return "event_store" }

// Deliver inserts the event row. Failures are logged and swallowed.
func (s *EventStoreSink) Deliver(event *telemetry.Event) {
	properties := ""
	if len(event.Properties) > 0 {
		if raw, err := json.Marshal(event.Properties); err == nil {
			properties = string(raw)
		}
	}

	err := s.store.InsertEvent(
		event.ID,
		event.Event,
		event.AnonymousID,
		event.SessionID,
		event.PagePath,
		string(event.FlowStage),
		string(event.UserRole),
		event.DeviceType,
		event.Environment,
		properties,
	)
	if err != nil {
		s.logger.Sink().Warn("Failed to record event", "event", event.Event, "error", err.Error())
	}
}
