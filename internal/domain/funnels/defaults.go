package funnels

import "github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"

// DefaultDefinitions returns the build-time funnel table for the
// carpool application. Pattern order inside a step matters: more
// specific patterns are declared first because the matcher stops at the
// first full match.
func DefaultDefinitions() []FunnelDefinition {
	return []FunnelDefinition{
		{
			ID:                   "rider_journey",
			Name:                 "Rider Journey",
			Description:          "From landing to completed pickup handoff for riders",
			TargetConversionRate: 0.12,
			Steps: []FunnelStep{
				{
					ID:               "landing",
					Name:             "Landing",
					Position:         1,
					Routes:           []string{"/", "/welcome"},
					CompletionEvents: []string{telemetry.EventPageView},
					DropOffReasons:   []string{"bounce"},
					FlowStage:        telemetry.StageVisit,
				},
				{
					ID:               "browse",
					Name:             "Browse Rides",
					Position:         2,
					Routes:           []string{"/rides", "/search"},
					CompletionEvents: []string{telemetry.EventSearchPerformed},
					DropOffReasons:   []string{"no_results", "left_page"},
					FlowStage:        telemetry.StageBrowsing,
				},
				{
					ID:               "ride_detail",
					Name:             "Ride Detail",
					Position:         3,
					Routes:           []string{"/rides/:id"},
					CompletionEvents: []string{telemetry.EventPageView},
					DropOffReasons:   []string{"price", "schedule_mismatch", "left_page"},
					FlowStage:        telemetry.StageBrowsing,
				},
				{
					ID:               "request",
					Name:             "Request Seat",
					Position:         4,
					Routes:           []string{"/rides/:id/request"},
					CompletionEvents: []string{telemetry.EventRideRequested},
					DropOffReasons:   []string{"form_abandoned", "left_page"},
					FlowStage:        telemetry.StageRideRequested,
				},
				{
					ID:               "matched",
					Name:             "Matched",
					Position:         5,
					Routes:           []string{"/rides/:id/match"},
					CompletionEvents: []string{telemetry.EventRideAccepted},
					DropOffReasons:   []string{"driver_declined", "timeout"},
					FlowStage:        telemetry.StageMatched,
				},
				{
					ID:               "coordination",
					Name:             "Coordination",
					Position:         6,
					Routes:           []string{"/rides/:id/chat", "/messages/:id"},
					CompletionEvents: []string{telemetry.EventPageView},
					DropOffReasons:   []string{"no_reply", "cancelled"},
					FlowStage:        telemetry.StageMatched,
				},
				{
					ID:               "handoff",
					Name:             "Pickup Handoff",
					Position:         7,
					Routes:           []string{"/rides/:id/handoff"},
					CompletionEvents: []string{telemetry.EventFunnelStep},
					DropOffReasons:   []string{"no_show"},
					FlowStage:        telemetry.StageHandoff,
				},
			},
		},
		{
			ID:                   "driver_journey",
			Name:                 "Driver Journey",
			Description:          "From landing to an accepted rider for drivers",
			TargetConversionRate: 0.2,
			Steps: []FunnelStep{
				{
					ID:               "landing",
					Name:             "Driver Landing",
					Position:         1,
					Routes:           []string{"/drive"},
					CompletionEvents: []string{telemetry.EventPageView},
					DropOffReasons:   []string{"bounce"},
					FlowStage:        telemetry.StageVisit,
				},
				{
					ID:               "offer_form",
					Name:             "Offer a Ride",
					Position:         2,
					Routes:           []string{"/rides/new"},
					CompletionEvents: []string{telemetry.EventRideCreated},
					DropOffReasons:   []string{"form_abandoned"},
					FlowStage:        telemetry.StageRideCreated,
				},
				{
					ID:               "manage",
					Name:             "Manage Offer",
					Position:         3,
					Routes:           []string{"/rides/:id/manage"},
					CompletionEvents: []string{telemetry.EventPageView},
					DropOffReasons:   []string{"no_requests"},
					FlowStage:        telemetry.StageRideCreated,
				},
				{
					ID:               "requests",
					Name:             "Review Requests",
					Position:         4,
					Routes:           []string{"/rides/:id/requests"},
					CompletionEvents: []string{telemetry.EventPageView},
					DropOffReasons:   []string{"no_suitable_rider"},
					FlowStage:        telemetry.StageRideRequested,
				},
				{
					ID:               "accept",
					Name:             "Accept Rider",
					Position:         5,
					Routes:           []string{"/rides/:id/requests/:requestId"},
					CompletionEvents: []string{telemetry.EventRideAccepted},
					DropOffReasons:   []string{"declined_all"},
					FlowStage:        telemetry.StageMatched,
				},
			},
		},
		{
			ID:          "signup",
			Name:        "Sign Up",
			Description: "Account creation and profile completion",
			Steps: []FunnelStep{
				{
					ID:               "form",
					Name:             "Sign Up Form",
					Position:         1,
					Routes:           []string{"/signup"},
					CompletionEvents: []string{telemetry.EventSignUpStarted},
					DropOffReasons:   []string{"form_abandoned"},
					FlowStage:        telemetry.StageSignupStarted,
				},
				{
					ID:               "verify",
					Name:             "Verify",
					Position:         2,
					Routes:           []string{"/signup/verify"},
					CompletionEvents: []string{telemetry.EventSignUpComplete},
					DropOffReasons:   []string{"code_not_received"},
					FlowStage:        telemetry.StageSignupStarted,
				},
				{
					ID:               "profile",
					Name:             "Profile Setup",
					Position:         3,
					Routes:           []string{"/profile/setup"},
					CompletionEvents: []string{telemetry.EventProfileCompleted},
					DropOffReasons:   []string{"form_abandoned", "skipped"},
					FlowStage:        telemetry.StageSignupComplete,
				},
			},
		},
	}
}

// DefaultRegistry compiles the built-in funnel table.
func DefaultRegistry() *Registry {
	return MustNewRegistry(DefaultDefinitions()...)
}
