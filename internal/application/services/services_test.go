package services

import (
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/funnels"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/caching/stores"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/messaging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/sinks"
)

// captureSink records delivered events for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []*telemetry.Event
}

func (s *captureSink) Name() string { return "capture" }

func (s *captureSink) Deliver(event *telemetry.Event) {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
}

func (s *captureSink) Events() []*telemetry.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*telemetry.Event, len(s.events))
	copy(out, s.events)
	return out
}

// testEngine wires the full in-memory pipeline around a mock clock and
// a capture sink. drain flushes the sink workers; call it before
// asserting on captured events.
type testEngine struct {
	clock    *quartz.Mock
	sink     *captureSink
	sessions *SessionService
	state    *StateService
	emitter  *EmitterService
	dropoff  *DropoffService
	drain    func()
}

func newTestEngine(t *testing.T, opts EmitterOptions) *testEngine {
	t.Helper()

	logger := logging.NewTestLogger()
	mClock := quartz.NewMock(t)
	clientStore := stores.NewClientStore(logger)
	sink := &captureSink{}
	dispatcher := sinks.NewDispatcher(64, logger, sink)
	t.Cleanup(dispatcher.Close)

	sessions := NewSessionService(nil, clientStore, mClock, 30*time.Minute, logger)
	state := NewStateService(sessions, clientStore, mClock, logger)
	emitter := NewEmitterService(state, sessions, funnels.DefaultRegistry(), dispatcher, messaging.NewDebugBroadcaster(logger), mClock, opts, logger)
	dropoff := NewDropoffService(emitter, mClock, logger)

	return &testEngine{
		clock:    mClock,
		sink:     sink,
		sessions: sessions,
		state:    state,
		emitter:  emitter,
		dropoff:  dropoff,
		drain:    dispatcher.Close,
	}
}
