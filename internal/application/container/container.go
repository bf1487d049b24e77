// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/coder/quartz"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/application/services"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/funnels"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/caching/memo"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/caching/stores"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/messaging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/performance"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/persistence/identity"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/sinks"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Infrastructure
	Logger           *logging.ChanneledLogger
	PerfTracker      *performance.Tracker
	ClientStore      *stores.ClientStore
	IdentityStore    *identity.Store // nil when persistence is degraded
	FunnelRegistry   *funnels.Registry
	Dispatcher       *sinks.Dispatcher
	DebugBroadcaster *messaging.DebugBroadcaster
	SummaryCache     *memo.Cache[map[string]int]

	// Engine services (singletons)
	SessionService *services.SessionService
	StateService   *services.StateService
	FunnelService  *services.FunnelService
	EmitterService *services.EmitterService
	DropoffService *services.DropoffService
}

// NewContainer creates and wires all singleton services. identityStore
// may be nil; every consumer degrades to in-memory behavior.
func NewContainer(identityStore *identity.Store, logger *logging.ChanneledLogger) *Container {
	clock := quartz.NewReal()
	perfTracker := performance.NewTracker(0)
	clientStore := stores.NewClientStore(logger)
	registry := funnels.DefaultRegistry()
	broadcaster := messaging.NewDebugBroadcaster(logger)

	var sinkList []sinks.Sink
	if dataLayer := sinks.NewDataLayerSink(config.DataLayerEndpoint, config.MeasurementID, config.ContainerID, config.SinkTimeout, logger); dataLayer != nil {
		sinkList = append(sinkList, dataLayer)
	}
	if eventStore := sinks.NewEventStoreSink(identityStore, logger); eventStore != nil {
		sinkList = append(sinkList, eventStore)
	}
	dispatcher := sinks.NewDispatcher(config.SinkQueueSize, logger, sinkList...)

	sessionService := services.NewSessionService(identityStore, clientStore, clock, config.SessionTTL, logger)
	stateService := services.NewStateService(sessionService, clientStore, clock, logger)
	funnelService := services.NewFunnelService(registry, logger)
	emitterService := services.NewEmitterService(stateService, sessionService, registry, dispatcher, broadcaster, clock, services.EmitterOptions{
		Disabled:    config.TelemetryDisabled,
		Debug:       config.TelemetryDebug,
		Environment: config.Environment,
	}, logger)
	dropoffService := services.NewDropoffService(emitterService, clock, logger)

	return &Container{
		Logger:           logger,
		PerfTracker:      perfTracker,
		ClientStore:      clientStore,
		IdentityStore:    identityStore,
		FunnelRegistry:   registry,
		Dispatcher:       dispatcher,
		DebugBroadcaster: broadcaster,
		SummaryCache:     memo.New[map[string]int](config.DegradedCacheTTL, clock, logger),

		SessionService: sessionService,
		StateService:   stateService,
		FunnelService:  funnelService,
		EmitterService: emitterService,
		DropoffService: dropoffService,
	}
}

// Close flushes and stops background workers.
func (c *Container) Close() {
	c.Dispatcher.Close()
	if c.IdentityStore != nil {
		c.IdentityStore.Close()
	}
}
