package services

import (
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/funnels"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
)

// FunnelService exposes the funnel registry to the presentation layer
// with lookup logging. The registry itself is immutable and does the
// real work.
type FunnelService struct {
	registry *funnels.Registry
	logger   *logging.ChanneledLogger
}

// NewFunnelService creates a funnel service over a compiled registry.
func NewFunnelService(registry *funnels.Registry, logger *logging.ChanneledLogger) *FunnelService {
	return &FunnelService{registry: registry, logger: logger}
}

// Registry returns the underlying compiled registry.
func (f *FunnelService) Registry() *funnels.Registry {
	return f.registry
}

// GetCurrentFunnelStep resolves a path to a funnel step, or nil.
func (f *FunnelService) GetCurrentFunnelStep(funnelID, path string) *funnels.FunnelStep {
	step := f.registry.GetCurrentFunnelStep(funnelID, path)
	f.logger.Funnel().Debug("Step lookup", "funnelId", funnelID, "path", path, "matched", step != nil)
	return step
}

// GetFunnelProgress returns completion percent for a step.
func (f *FunnelService) GetFunnelProgress(funnelID, stepID string) int {
	return f.registry.GetFunnelProgress(funnelID, stepID)
}

// GetNextStep returns the step after stepID, or nil.
func (f *FunnelService) GetNextStep(funnelID, stepID string) *funnels.FunnelStep {
	return f.registry.GetNextStep(funnelID, stepID)
}

// GetPreviousSteps returns every step before stepID in declared order.
func (f *FunnelService) GetPreviousSteps(funnelID, stepID string) []funnels.FunnelStep {
	return f.registry.GetPreviousSteps(funnelID, stepID)
}

// MatchPath places a path in the first matching funnel, in
// registration order.
func (f *FunnelService) MatchPath(path string) (string, *funnels.FunnelStep) {
	return f.registry.MatchPath(path)
}
