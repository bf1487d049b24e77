package telemetry

// Event names emitted by the pipeline. Sinks receive these as the
// "event" field of the dataLayer-shaped record.
const (
	EventPageView         = "page_view"
	EventSignUpStarted    = "sign_up_started"
	EventSignUpComplete   = "sign_up_complete"
	EventProfileCompleted = "profile_completed"
	EventRideCreated      = "ride_created"
	EventRideRequested    = "ride_requested"
	EventRideAccepted     = "ride_accepted"
	EventFunnelStep       = "funnel_step"
	EventFunnelDropOff    = "funnel_drop_off"
	EventFormAbandoned    = "form_abandoned"
	EventWebVital         = "web_vital"
	EventEmptyStateViewed = "empty_state_viewed"
	EventSearchPerformed  = "search_performed"
)

// Event is the composed record forwarded to every configured sink. Base
// properties are injected by the pipeline on every emission; Properties
// carries the event-specific, already-bucketed fields.
type Event struct {
	ID         string         `json:"id"`
	Event      string         `json:"event"`
	Properties map[string]any `json:"properties"`

	// Base properties, mandatory on every event.
	PagePath    string    `json:"pagePath"`
	FlowStage   FlowStage `json:"flowStage"`
	UserRole    UserRole  `json:"userRole"`
	DeviceType  string    `json:"deviceType"`
	Environment string    `json:"environment"`
	Timestamp   string    `json:"timestamp"`
	SessionID   string    `json:"sessionId"`
	AnonymousID string    `json:"anonymousId"`
}

// Record flattens the event into the generic dataLayer push shape.
func (e *Event) Record() map[string]any {
	rec := map[string]any{
		"event":        e.Event,
		"event_id":     e.ID,
		"page_path":    e.PagePath,
		"flow_stage":   string(e.FlowStage),
		"user_role":    string(e.UserRole),
		"device_type":  e.DeviceType,
		"environment":  e.Environment,
		"timestamp":    e.Timestamp,
		"session_id":   e.SessionID,
		"anonymous_id": e.AnonymousID,
	}
	for k, v := range e.Properties {
		rec[k] = v
	}
	return rec
}
