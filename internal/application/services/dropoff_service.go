package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
)

// formUnit is the ephemeral per-form tracking state. A zero startedAt
// is the sentinel that suppresses abandonment reporting.
type formUnit struct {
	startedAt        time.Time
	fieldsInteracted map[string]struct{}
	fieldsWithErrors map[string]struct{}
}

// DropoffService runs one small state machine per tracked unit (form,
// wizard step, empty-state view): idle -> started -> (submitted |
// torn_down). It guarantees at most one form_abandoned event per
// started unit no matter how many teardown triggers race.
type DropoffService struct {
	units   map[string]*formUnit // clientId + "::" + unitId
	mu      sync.Mutex
	emitter *EmitterService
	clock   quartz.Clock
	logger  *logging.ChanneledLogger
}

// NewDropoffService creates a drop-off tracker.
func NewDropoffService(emitter *EmitterService, clock quartz.Clock, logger *logging.ChanneledLogger) *DropoffService {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &DropoffService{
		units:   make(map[string]*formUnit),
		emitter: emitter,
		clock:   clock,
		logger:  logger,
	}
}

func unitKey(clientID, unitID string) string {
	return clientID + "::" + unitID
}

// Start enters the started state, resetting the field sets and
// recording the start time. Restarting an active unit starts it over.
func (d *DropoffService) Start(clientID, unitID string) {
	d.mu.Lock()
	d.units[unitKey(clientID, unitID)] = &formUnit{
		startedAt:        d.clock.Now(),
		fieldsInteracted: make(map[string]struct{}),
		fieldsWithErrors: make(map[string]struct{}),
	}
	d.mu.Unlock()
	d.logger.Dropoff().Debug("Tracking started", "clientId", clientID, "unitId", unitID)
}

// FieldInteracted records interaction with a field. Unknown units are
// ignored: tracking must have been started.
func (d *DropoffService) FieldInteracted(clientID, unitID, field string) {
	d.mu.Lock()
	if unit, ok := d.units[unitKey(clientID, unitID)]; ok {
		unit.fieldsInteracted[field] = struct{}{}
	}
	d.mu.Unlock()
}

// FieldError records a validation error on a field.
func (d *DropoffService) FieldError(clientID, unitID, field string) {
	d.mu.Lock()
	if unit, ok := d.units[unitKey(clientID, unitID)]; ok {
		unit.fieldsWithErrors[field] = struct{}{}
	}
	d.mu.Unlock()
}

// Submit enters the submitted state: the unit is dropped so any later
// teardown trigger finds nothing and stays silent.
func (d *DropoffService) Submit(clientID, unitID string) {
	d.mu.Lock()
	delete(d.units, unitKey(clientID, unitID))
	d.mu.Unlock()
	d.logger.Dropoff().Debug("Tracking completed", "clientId", clientID, "unitId", unitID)
}

// Teardown is called on unmount, route change, or page unload,
// whichever fires first. It emits exactly one form_abandoned event if
// the unit was started and at least one field was touched. The unit is
// removed under the lock before emission, so a racing second trigger
// observes empty state and no-ops.
func (d *DropoffService) Teardown(clientID, unitID string) {
	key := unitKey(clientID, unitID)

	d.mu.Lock()
	unit, ok := d.units[key]
	if ok {
		delete(d.units, key)
	}
	d.mu.Unlock()

	if !ok || unit.startedAt.IsZero() || len(unit.fieldsInteracted) == 0 {
		return
	}

	d.emitter.FormAbandoned(clientID, unitID,
		sortedKeys(unit.fieldsInteracted),
		sortedKeys(unit.fieldsWithErrors),
		d.clock.Now().Sub(unit.startedAt))
	d.logger.Dropoff().Debug("Abandonment reported", "clientId", clientID, "unitId", unitID)
}

// TeardownAll tears down every active unit for a client. Used on route
// changes and page unload.
func (d *DropoffService) TeardownAll(clientID string) {
	prefix := clientID + "::"

	d.mu.Lock()
	var unitIDs []string
	for key := range d.units {
		if strings.HasPrefix(key, prefix) {
			unitIDs = append(unitIDs, strings.TrimPrefix(key, prefix))
		}
	}
	d.mu.Unlock()

	for _, unitID := range unitIDs {
		d.Teardown(clientID, unitID)
	}
}

// ActiveUnitCount reports how many units are currently being tracked.
func (d *DropoffService) ActiveUnitCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.units)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
