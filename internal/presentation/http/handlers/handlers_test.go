package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/application/services"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/funnels"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/caching/stores"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/messaging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/performance"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/sinks"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/presentation/http/middleware"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/pkg/config"
)

type memorySink struct {
	mu     sync.Mutex
	events []*telemetry.Event
}

func (s *memorySink) Name() string { return "memory" }

func (s *memorySink) Deliver(event *telemetry.Event) {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
}

func (s *memorySink) Events() []*telemetry.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*telemetry.Event, len(s.events))
	copy(out, s.events)
	return out
}

type testRig struct {
	router *gin.Engine
	sink   *memorySink
	drain  func()
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.NewTestLogger()
	mClock := quartz.NewMock(t)
	clientStore := stores.NewClientStore(logger)
	sink := &memorySink{}
	dispatcher := sinks.NewDispatcher(64, logger, sink)
	t.Cleanup(dispatcher.Close)

	registry := funnels.DefaultRegistry()
	sessionService := services.NewSessionService(nil, clientStore, mClock, 30*time.Minute, logger)
	stateService := services.NewStateService(sessionService, clientStore, mClock, logger)
	funnelService := services.NewFunnelService(registry, logger)
	emitterService := services.NewEmitterService(stateService, sessionService, registry, dispatcher, messaging.NewDebugBroadcaster(logger), mClock, services.EmitterOptions{Environment: "test"}, logger)
	dropoffService := services.NewDropoffService(emitterService, mClock, logger)

	perfTracker := performance.NewTracker(0)
	telemetryHandlers := NewTelemetryHandlers(stateService, emitterService, dropoffService, funnelService, logger, perfTracker)
	formHandlers := NewFormHandlers(dropoffService, logger)
	funnelHandlers := NewFunnelHandlers(funnelService, logger)

	r := gin.New()
	api := r.Group("/api/v1")

	telemetryAPI := api.Group("/telemetry")
	telemetryAPI.Use(middleware.ClientIDMiddleware())
	telemetryAPI.POST("/navigate", telemetryHandlers.PostNavigate)
	telemetryAPI.POST("/events/:kind", telemetryHandlers.PostEvent)
	telemetryAPI.POST("/identify", telemetryHandlers.PostIdentify)
	telemetryAPI.POST("/reset", telemetryHandlers.PostReset)
	telemetryAPI.POST("/unload", telemetryHandlers.PostUnload)
	telemetryAPI.POST("/forms/:action", formHandlers.PostFormAction)

	funnelAPI := api.Group("/funnels")
	funnelAPI.GET("/:id/step", funnelHandlers.GetStep)
	funnelAPI.GET("/:id/progress", funnelHandlers.GetProgress)
	funnelAPI.GET("/:id/neighbors", funnelHandlers.GetNeighbors)

	return &testRig{router: r, sink: sink, drain: dispatcher.Close}
}

func (rig *testRig) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	rig.router.ServeHTTP(w, req)
	return w
}

func clientHeader() map[string]string {
	return map[string]string{middleware.ClientIDHeader: "client-1"}
}

func TestClientIDHeaderRequired(t *testing.T) {
	rig := newTestRig(t)

	w := rig.do(http.MethodPost, "/api/v1/telemetry/navigate", `{"path":"/rides"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostNavigateSanitizesAndEmits(t *testing.T) {
	rig := newTestRig(t)

	w := rig.do(http.MethodPost, "/api/v1/telemetry/navigate",
		`{"path":"/rides/550e8400-e29b-41d4-a716-446655440000?seat=2","viewportWidth":375}`, clientHeader())
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/rides/:id", resp["path"])

	rig.drain()
	events := rig.sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, telemetry.EventPageView, events[0].Event)
	assert.Equal(t, "/rides/:id", events[0].PagePath)
	assert.Equal(t, "mobile", events[0].DeviceType)
	assert.Equal(t, "rider_journey", events[0].Properties["funnel_id"])
}

func TestPostNavigateTearsDownForms(t *testing.T) {
	rig := newTestRig(t)

	rig.do(http.MethodPost, "/api/v1/telemetry/forms/start", `{"formId":"request_form"}`, clientHeader())
	rig.do(http.MethodPost, "/api/v1/telemetry/forms/field", `{"formId":"request_form","field":"email"}`, clientHeader())
	rig.do(http.MethodPost, "/api/v1/telemetry/navigate", `{"path":"/search"}`, clientHeader())
	rig.drain()

	events := rig.sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, telemetry.EventFormAbandoned, events[0].Event)
	assert.Equal(t, telemetry.EventPageView, events[1].Event)
}

func TestPostEvent(t *testing.T) {
	rig := newTestRig(t)

	// A body-less beacon is acceptable for kinds with no payload.
	w := rig.do(http.MethodPost, "/api/v1/telemetry/events/sign_up_started", "", clientHeader())
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = rig.do(http.MethodPost, "/api/v1/telemetry/events/ride_requested", `{"seats":1,"distanceKm":0.5}`, clientHeader())
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = rig.do(http.MethodPost, "/api/v1/telemetry/events/made_up_kind", "", clientHeader())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	rig.drain()
	events := rig.sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "1-2", events[1].Properties["seats"])
	assert.Equal(t, "<1km", events[1].Properties["distance"])
}

func TestPostIdentify(t *testing.T) {
	rig := newTestRig(t)
	config.JWTSecret = "test-secret"

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":               "rider-42",
		"role":              "rider",
		"profileCompletion": 80,
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	headers := clientHeader()
	headers["Authorization"] = "Bearer " + token
	w := rig.do(http.MethodPost, "/api/v1/telemetry/identify", "", headers)
	assert.Equal(t, http.StatusOK, w.Code)

	rig.do(http.MethodPost, "/api/v1/telemetry/events/search_performed", `{"resultCount":3,"radiusKm":2}`, clientHeader())
	rig.drain()

	events := rig.sink.Events()
	require.Len(t, events, 1)
	assert.True(t, strings.HasPrefix(events[0].AnonymousID, "u-"))
	assert.NotContains(t, events[0].AnonymousID, "rider-42")
	assert.Equal(t, telemetry.RoleRider, events[0].UserRole)
}

func TestPostIdentifyRejectsBadToken(t *testing.T) {
	rig := newTestRig(t)
	config.JWTSecret = "test-secret"

	w := rig.do(http.MethodPost, "/api/v1/telemetry/identify", "", clientHeader())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	headers := clientHeader()
	headers["Authorization"] = "Bearer not-a-token"
	w = rig.do(http.MethodPost, "/api/v1/telemetry/identify", "", headers)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPostFormActionValidation(t *testing.T) {
	rig := newTestRig(t)

	w := rig.do(http.MethodPost, "/api/v1/telemetry/forms/start", `{}`, clientHeader())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = rig.do(http.MethodPost, "/api/v1/telemetry/forms/field", `{"formId":"f"}`, clientHeader())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = rig.do(http.MethodPost, "/api/v1/telemetry/forms/jiggle", `{"formId":"f"}`, clientHeader())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = rig.do(http.MethodPost, "/api/v1/telemetry/forms/submit", `{"formId":"f"}`, clientHeader())
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestPostUnload(t *testing.T) {
	rig := newTestRig(t)

	rig.do(http.MethodPost, "/api/v1/telemetry/forms/start", `{"formId":"f"}`, clientHeader())
	rig.do(http.MethodPost, "/api/v1/telemetry/forms/field", `{"formId":"f","field":"email"}`, clientHeader())

	w := rig.do(http.MethodPost, "/api/v1/telemetry/unload", "", clientHeader())
	assert.Equal(t, http.StatusNoContent, w.Code)

	rig.drain()
	events := rig.sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, telemetry.EventFormAbandoned, events[0].Event)
}

func TestFunnelQueries(t *testing.T) {
	rig := newTestRig(t)

	w := rig.do(http.MethodGet, "/api/v1/funnels/rider_journey/step?path=/rides/42", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var step funnels.FunnelStep
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &step))
	assert.Equal(t, "ride_detail", step.ID)

	w = rig.do(http.MethodGet, "/api/v1/funnels/rider_journey/step?path=/about", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = rig.do(http.MethodGet, "/api/v1/funnels/rider_journey/step", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = rig.do(http.MethodGet, "/api/v1/funnels/rider_journey/progress?stepId=handoff", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var progress map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &progress))
	assert.Equal(t, float64(100), progress["progress"])

	w = rig.do(http.MethodGet, "/api/v1/funnels/rider_journey/neighbors?stepId=browse", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var neighbors struct {
		Next     *funnels.FunnelStep  `json:"next"`
		Previous []funnels.FunnelStep `json:"previous"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &neighbors))
	require.NotNil(t, neighbors.Next)
	assert.Equal(t, "ride_detail", neighbors.Next.ID)
	require.Len(t, neighbors.Previous, 1)
	assert.Equal(t, "landing", neighbors.Previous[0].ID)
}
