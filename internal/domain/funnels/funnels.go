// Package funnels provides the immutable funnel-definition registry and
// the route-to-step matcher used to place a client inside a journey.
package funnels

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"
)

// FunnelStep is a single named step inside a funnel. Position is
// 1-indexed, dense, and must match the step's index in the declared
// order. Routes may contain single-segment wildcards (":param") which
// match exactly one non-slash path segment.
type FunnelStep struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	Position         int                 `json:"position"`
	Routes           []string            `json:"routes"`
	CompletionEvents []string            `json:"completionEvents"`
	DropOffReasons   []string            `json:"dropOffReasons"`
	FlowStage        telemetry.FlowStage `json:"flowStage"`
}

// FunnelDefinition is an immutable, build-time-configured journey.
type FunnelDefinition struct {
	ID                   string       `json:"id"`
	Name                 string       `json:"name"`
	Description          string       `json:"description"`
	TargetConversionRate float64      `json:"targetConversionRate,omitempty"`
	Steps                []FunnelStep `json:"steps"`
}

// Validate checks the declared-order invariants: positions are
// 1-indexed, strictly increasing, dense, and aligned with array order.
func (f *FunnelDefinition) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("funnel missing id")
	}
	if len(f.Steps) == 0 {
		return fmt.Errorf("funnel %s has no steps", f.ID)
	}
	seen := make(map[string]bool, len(f.Steps))
	for i, step := range f.Steps {
		if step.ID == "" {
			return fmt.Errorf("funnel %s step %d missing id", f.ID, i)
		}
		if seen[step.ID] {
			return fmt.Errorf("funnel %s has duplicate step id %s", f.ID, step.ID)
		}
		seen[step.ID] = true
		if step.Position != i+1 {
			return fmt.Errorf("funnel %s step %s has position %d, want %d", f.ID, step.ID, step.Position, i+1)
		}
		if len(step.Routes) == 0 {
			return fmt.Errorf("funnel %s step %s has no routes", f.ID, step.ID)
		}
	}
	return nil
}

// compilePattern turns a route pattern into an anchored regexp. Literal
// segments are quoted; each ":param" token becomes a non-slash-matching
// group, so a wildcard covers exactly one segment.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			segments[i] = "[^/]+"
		} else {
			segments[i] = regexp.QuoteMeta(seg)
		}
	}
	return regexp.Compile("^" + strings.Join(segments, "/") + "$")
}

// NormalizePath strips the query string and a trailing slash before
// matching. The bare root path stays "/".
func NormalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "" {
		path = "/"
	}
	return path
}
