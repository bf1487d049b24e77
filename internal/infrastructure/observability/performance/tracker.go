package performance

import (
	"sync"
	"time"
)

// Tracker aggregates completed operation markers and keeps per-operation
// rollups for the debug surface. Retention is bounded; oldest markers
// are dropped first.
type Tracker struct {
	markers    []*Marker
	maxMarkers int
	totals     map[string]*OperationStats
	mu         sync.RWMutex
	started    time.Time
}

// OperationStats is the rolled-up view of a single operation name.
type OperationStats struct {
	Operation string        `json:"operation"`
	Count     int           `json:"count"`
	Failures  int           `json:"failures"`
	Total     time.Duration `json:"total"`
	Max       time.Duration `json:"max"`
}

// NewTracker creates a performance tracker retaining at most maxMarkers
// completed markers. Zero or negative means the default of 1000.
func NewTracker(maxMarkers int) *Tracker {
	if maxMarkers <= 0 {
		maxMarkers = 1000
	}
	return &Tracker{
		maxMarkers: maxMarkers,
		totals:     make(map[string]*OperationStats),
		started:    time.Now(),
	}
}

// StartOperation creates a marker for an operation in flight.
func (t *Tracker) StartOperation(operation, clientID string) *Marker {
	return &Marker{
		Operation: operation,
		ClientID:  clientID,
		StartTime: time.Now(),
		Success:   true, // Assume success until proven otherwise
	}
}

// CompleteOperation completes a marker and folds it into the rollups.
func (t *Tracker) CompleteOperation(marker *Marker) {
	if marker == nil {
		return
	}
	marker.Complete()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.markers = append(t.markers, marker)
	if len(t.markers) > t.maxMarkers {
		t.markers = t.markers[len(t.markers)-t.maxMarkers:]
	}

	stats, ok := t.totals[marker.Operation]
	if !ok {
		stats = &OperationStats{Operation: marker.Operation}
		t.totals[marker.Operation] = stats
	}
	stats.Count++
	if !marker.Success {
		stats.Failures++
	}
	stats.Total += marker.Duration
	if marker.Duration > stats.Max {
		stats.Max = marker.Duration
	}
}

// Stats returns a snapshot of all operation rollups.
func (t *Tracker) Stats() map[string]OperationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]OperationStats, len(t.totals))
	for op, stats := range t.totals {
		out[op] = *stats
	}
	return out
}

// Uptime reports how long the tracker has been running.
func (t *Tracker) Uptime() time.Duration {
	return time.Since(t.started)
}
