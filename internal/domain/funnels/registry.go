package funnels

import (
	"fmt"
	"math"
	"regexp"
)

// compiledStep pairs a step with its precompiled route matchers, in
// declared pattern order.
type compiledStep struct {
	step     *FunnelStep
	matchers []*regexp.Regexp
}

type compiledFunnel struct {
	def   *FunnelDefinition
	steps []compiledStep
	byID  map[string]int // step id -> index into steps
}

// Registry holds the validated funnel table with every route pattern
// compiled once at construction. Matching semantics are strictly
// first-step, first-pattern, in declared order; callers must declare
// more specific patterns before more general ones.
type Registry struct {
	funnels map[string]*compiledFunnel
	order   []string // funnel ids in registration order
}

// NewRegistry validates and compiles the given funnel definitions.
func NewRegistry(defs ...FunnelDefinition) (*Registry, error) {
	r := &Registry{funnels: make(map[string]*compiledFunnel, len(defs))}
	for i := range defs {
		def := defs[i]
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.funnels[def.ID]; dup {
			return nil, fmt.Errorf("duplicate funnel id %s", def.ID)
		}
		cf := &compiledFunnel{
			def:  &def,
			byID: make(map[string]int, len(def.Steps)),
		}
		for j := range def.Steps {
			step := &def.Steps[j]
			cs := compiledStep{step: step}
			for _, pattern := range step.Routes {
				re, err := compilePattern(pattern)
				if err != nil {
					return nil, fmt.Errorf("funnel %s step %s pattern %q: %w", def.ID, step.ID, pattern, err)
				}
				cs.matchers = append(cs.matchers, re)
			}
			cf.steps = append(cf.steps, cs)
			cf.byID[step.ID] = j
		}
		r.funnels[def.ID] = cf
		r.order = append(r.order, def.ID)
	}
	return r, nil
}

// MustNewRegistry panics on an invalid funnel table. Used for the
// build-time defaults, which are covered by tests.
func MustNewRegistry(defs ...FunnelDefinition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

// GetFunnel returns a funnel definition by id.
func (r *Registry) GetFunnel(funnelID string) (*FunnelDefinition, bool) {
	cf, ok := r.funnels[funnelID]
	if !ok {
		return nil, false
	}
	return cf.def, true
}

// GetCurrentFunnelStep returns the first step of the funnel whose any
// route pattern fully matches the normalized path, or nil.
func (r *Registry) GetCurrentFunnelStep(funnelID, path string) *FunnelStep {
	cf, ok := r.funnels[funnelID]
	if !ok {
		return nil
	}
	normalized := NormalizePath(path)
	for _, cs := range cf.steps {
		for _, re := range cs.matchers {
			if re.MatchString(normalized) {
				return cs.step
			}
		}
	}
	return nil
}

// MatchPath scans every registered funnel in registration order and
// returns the first funnel id and step matching the path. Used to place
// a navigation inside a journey when the caller has no funnel in mind.
func (r *Registry) MatchPath(path string) (string, *FunnelStep) {
	for _, id := range r.order {
		if step := r.GetCurrentFunnelStep(id, path); step != nil {
			return id, step
		}
	}
	return "", nil
}

// GetFunnelProgress returns the percentage of the funnel completed at
// the given step, rounded to the nearest integer. Unknown funnel or
// step ids yield 0.
func (r *Registry) GetFunnelProgress(funnelID, stepID string) int {
	cf, ok := r.funnels[funnelID]
	if !ok {
		return 0
	}
	idx, ok := cf.byID[stepID]
	if !ok {
		return 0
	}
	total := len(cf.steps)
	return int(math.Round(100 * float64(cf.steps[idx].step.Position) / float64(total)))
}

// GetNextStep returns the step after stepID in declared order, or nil
// when stepID is unknown or last.
func (r *Registry) GetNextStep(funnelID, stepID string) *FunnelStep {
	cf, ok := r.funnels[funnelID]
	if !ok {
		return nil
	}
	idx, ok := cf.byID[stepID]
	if !ok || idx+1 >= len(cf.steps) {
		return nil
	}
	return cf.steps[idx+1].step
}

// GetPreviousSteps returns every step before stepID in declared order.
// Unknown ids yield an empty slice.
func (r *Registry) GetPreviousSteps(funnelID, stepID string) []FunnelStep {
	cf, ok := r.funnels[funnelID]
	if !ok {
		return nil
	}
	idx, ok := cf.byID[stepID]
	if !ok {
		return nil
	}
	prev := make([]FunnelStep, 0, idx)
	for i := 0; i < idx; i++ {
		prev = append(prev, *cf.steps[i].step)
	}
	return prev
}

// FunnelIDs returns the registered funnel ids in registration order.
func (r *Registry) FunnelIDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}
