package sinks

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
)

type recordingSink struct {
	name   string
	mu     sync.Mutex
	events []string
	panics bool
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(event *telemetry.Event) {
	if s.panics {
		panic("sink exploded")
	}
	s.mu.Lock()
	s.events = append(s.events, event.Event)
	s.mu.Unlock()
}

func (s *recordingSink) delivered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	copy(out, s.events)
	return out
}

func TestDispatcherPreservesOrderPerSink(t *testing.T) {
	sink := &recordingSink{name: "recording"}
	d := NewDispatcher(64, logging.NewTestLogger(), sink)

	var want []string
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("event_%d", i)
		want = append(want, name)
		d.Publish(&telemetry.Event{Event: name})
	}
	d.Close()

	assert.Equal(t, want, sink.delivered())
}

func TestDispatcherFansOutToAllSinks(t *testing.T) {
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b"}
	d := NewDispatcher(64, logging.NewTestLogger(), a, b)
	require.Equal(t, 2, d.SinkCount())

	d.Publish(&telemetry.Event{Event: "page_view"})
	d.Close()

	assert.Equal(t, []string{"page_view"}, a.delivered())
	assert.Equal(t, []string{"page_view"}, b.delivered())
}

func TestDispatcherIsolatesPanickingSink(t *testing.T) {
	bad := &recordingSink{name: "bad", panics: true}
	good := &recordingSink{name: "good"}
	d := NewDispatcher(64, logging.NewTestLogger(), bad, good)

	d.Publish(&telemetry.Event{Event: "one"})
	d.Publish(&telemetry.Event{Event: "two"})
	d.Close()

	// The healthy sink keeps receiving after its neighbor panics.
	assert.Equal(t, []string{"one", "two"}, good.delivered())
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(64, logging.NewTestLogger(), &recordingSink{name: "only"})
	d.Close()
	assert.NotPanics(t, d.Close)
}
