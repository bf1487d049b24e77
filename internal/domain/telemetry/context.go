// Package telemetry provides the domain types for the instrumentation
// engine: anonymized user context, journey flow stages, and the event
// envelope delivered to sinks.
package telemetry

import "time"

// UserRole describes which side of the carpool marketplace a user is on.
type UserRole string

const (
	RoleDriver  UserRole = "driver"
	RoleRider   UserRole = "rider"
	RoleBoth    UserRole = "both"
	RoleUnknown UserRole = "unknown"
)

// ParseUserRole maps an arbitrary string onto a known role, defaulting
// to RoleUnknown.
func ParseUserRole(s string) UserRole {
	switch UserRole(s) {
	case RoleDriver, RoleRider, RoleBoth:
		return UserRole(s)
	default:
		return RoleUnknown
	}
}

// FlowStage is a single coarse label for where in the overall journey a
// client currently is. Exactly one stage is current per client.
type FlowStage string

const (
	StageVisit           FlowStage = "visit"
	StageSignupStarted   FlowStage = "signup_started"
	StageSignupComplete  FlowStage = "signup_complete"
	StageProfileComplete FlowStage = "profile_complete"
	StageBrowsing        FlowStage = "browsing"
	StageRideCreated     FlowStage = "ride_created"
	StageRideRequested   FlowStage = "ride_requested"
	StageMatched         FlowStage = "matched"
	StageHandoff         FlowStage = "handoff"
	StageConversion      FlowStage = "conversion"
)

// UserContext is the anonymized identity snapshot attached to every
// emitted event. It must never contain an email, phone number, name, or
// raw database identifier; AnonymousID is the only identity field and is
// a one-way transform of whatever the auth subsystem knows.
type UserContext struct {
	AnonymousID             string   `json:"anonymousId"`
	UserRole                UserRole `json:"userRole"`
	IsAuthenticated         bool     `json:"isAuthenticated"`
	ProfileCompletionBucket int      `json:"profileCompletionBucket"`
}

// ClientState is the per-client mutable state owned by the engine:
// identity context, current flow stage, current (sanitized) page, and
// the viewport width the client last reported.
type ClientState struct {
	ClientID      string      `json:"clientId"`
	Context       UserContext `json:"context"`
	Stage         FlowStage   `json:"stage"`
	CurrentPage   string      `json:"currentPage"`
	ViewportWidth int         `json:"viewportWidth"`
	LastActivity  time.Time   `json:"lastActivity"`
}

// Session is the rotating short-lived session record. A session is valid
// only while now-LastActivity stays under the configured idle window;
// every read of a valid session refreshes LastActivity (sliding expiry).
type Session struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"clientId"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}
