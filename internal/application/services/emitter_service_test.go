package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/buckets"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"
)

func TestEmitInjectsBaseProperties(t *testing.T) {
	eng := newTestEngine(t, EmitterOptions{Environment: "test"})

	eng.state.SetCurrentPage("client-1", "/rides/new", 375)
	eng.emitter.RideCreated("client-1", 3, 12.5)
	eng.drain()

	events := eng.sink.Events()
	require.Len(t, events, 1)
	event := events[0]

	assert.Equal(t, telemetry.EventRideCreated, event.Event)
	assert.Equal(t, "/rides/new", event.PagePath)
	assert.Equal(t, telemetry.StageRideCreated, event.FlowStage)
	assert.Equal(t, telemetry.RoleUnknown, event.UserRole)
	assert.Equal(t, "mobile", event.DeviceType)
	assert.Equal(t, "test", event.Environment)
	assert.NotEmpty(t, event.ID)
	assert.NotEmpty(t, event.Timestamp)
	assert.Contains(t, event.SessionID, "sess-")
	assert.Contains(t, event.AnonymousID, "anon-")

	// Event-specific fields arrive bucketed, never raw.
	assert.Equal(t, "3-4", event.Properties["seats"])
	assert.Equal(t, "5-15km", event.Properties["distance"])
}

func TestEmitDisabledShortCircuits(t *testing.T) {
	eng := newTestEngine(t, EmitterOptions{Disabled: true})

	eng.emitter.PageView("client-1")
	eng.emitter.SignUpStarted("client-1")
	eng.emitter.FunnelStep("client-1", "rider_journey", "browse")
	eng.drain()

	assert.Empty(t, eng.sink.Events())
}

func TestEmitMutatesStageBeforeComposing(t *testing.T) {
	eng := newTestEngine(t, EmitterOptions{})

	// The stage transition must be visible on the very event that
	// caused it, not only on the next one.
	eng.emitter.SignUpComplete("client-1", 42*time.Second)
	eng.drain()

	events := eng.sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, telemetry.StageSignupComplete, events[0].FlowStage)
	assert.Equal(t, "15-60s", events[0].Properties["time_to_complete"])

	state := eng.state.GetOrCreateState("client-1")
	assert.Equal(t, telemetry.StageSignupComplete, state.Stage)
}

func TestPageViewAnnotatesFunnelPlacement(t *testing.T) {
	eng := newTestEngine(t, EmitterOptions{})

	eng.state.SetCurrentPage("client-1", buckets.SanitizePath("/rides/98765"), 1440)
	eng.emitter.PageView("client-1")

	eng.state.SetCurrentPage("client-2", "/about", 1440)
	eng.emitter.PageView("client-2")
	eng.drain()

	events := eng.sink.Events()
	require.Len(t, events, 2)

	placed := events[0]
	assert.Equal(t, telemetry.EventPageView, placed.Event)
	assert.Equal(t, "/rides/:id", placed.PagePath)
	assert.Equal(t, "rider_journey", placed.Properties["funnel_id"])
	assert.Equal(t, "ride_detail", placed.Properties["funnel_step"])
	assert.Equal(t, 43, placed.Properties["funnel_progress"])

	// Off-funnel pages carry no placement fields.
	unplaced := events[1]
	assert.NotContains(t, unplaced.Properties, "funnel_id")
}

func TestFunnelStepFinalStepIsConversion(t *testing.T) {
	eng := newTestEngine(t, EmitterOptions{})

	eng.emitter.FunnelStep("client-1", "rider_journey", "handoff")
	eng.emitter.FunnelStep("client-1", "rider_journey", "unknown-step")
	eng.emitter.FunnelStep("client-1", "unknown-funnel", "handoff")
	eng.drain()

	events := eng.sink.Events()
	require.Len(t, events, 2)

	final := events[0]
	assert.Equal(t, telemetry.StageConversion, final.FlowStage)
	assert.Equal(t, 100, final.Properties["funnel_progress"])

	// Unknown step in a known funnel still reports, with zero progress.
	assert.Equal(t, 0, events[1].Properties["funnel_progress"])
}

func TestIdentifyChangesEventIdentity(t *testing.T) {
	eng := newTestEngine(t, EmitterOptions{})

	eng.emitter.PageView("client-1")
	eng.state.Identify("client-1", "rider-42", "rider", 80)
	eng.emitter.SearchPerformed("client-1", 7, 3.0)
	eng.drain()

	events := eng.sink.Events()
	require.Len(t, events, 2)

	assert.Contains(t, events[0].AnonymousID, "anon-")
	assert.Contains(t, events[1].AnonymousID, "u-")
	assert.Equal(t, telemetry.RoleRider, events[1].UserRole)
	assert.Equal(t, "6-10", events[1].Properties["result_count"])
	assert.Equal(t, "1-5km", events[1].Properties["radius"])
}

func TestConcurrentNavigationAndEmission(t *testing.T) {
	// A navigate beacon racing an event beacon for the same client is
	// routine browser behavior; state reads must see whole snapshots.
	// Run with -race.
	eng := newTestEngine(t, EmitterOptions{})

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			eng.state.SetCurrentPage("client-1", "/rides/:id", 375)
			eng.state.SetFlowStage("client-1", telemetry.StageBrowsing)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			eng.emitter.PageView("client-1")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			eng.sessions.GetSessionID("client-1")
		}
	}()
	wg.Wait()
	eng.drain()

	for _, event := range eng.sink.Events() {
		assert.Equal(t, telemetry.EventPageView, event.Event)
		assert.NotEmpty(t, event.SessionID)
	}
}

func TestRecordFlattensToDataLayerShape(t *testing.T) {
	eng := newTestEngine(t, EmitterOptions{Environment: "test"})

	eng.emitter.RideAccepted("client-1", 3*time.Minute, 92)
	eng.drain()

	events := eng.sink.Events()
	require.Len(t, events, 1)
	rec := events[0].Record()

	assert.Equal(t, telemetry.EventRideAccepted, rec["event"])
	assert.Equal(t, "1-5m", rec["time_to_accept"])
	assert.Equal(t, 75, rec["acceptance_rate"])
	assert.Equal(t, string(telemetry.StageMatched), rec["flow_stage"])
	assert.Equal(t, "test", rec["environment"])
	assert.NotEmpty(t, rec["session_id"])
	assert.NotEmpty(t, rec["anonymous_id"])
}
