// Package sinks provides the outbound side of the event pipeline: the
// Sink interface, the fan-out dispatcher, and the concrete sink
// implementations. Delivery is fire-and-forget; a sink failure must
// never surface to the code that emitted the event.
package sinks

import (
	"sync"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
)

// Sink receives composed telemetry events. Deliver runs on the sink's
// own worker goroutine; implementations handle their errors internally.
type Sink interface {
	Name() string
	Deliver(event *telemetry.Event)
}

// sinkWorker gives each sink a bounded queue and a single goroutine, so
// events from one logical call sequence reach the sink in call order
// while a slow sink cannot block the emitter or its neighbors.
type sinkWorker struct {
	sink   Sink
	queue  chan *telemetry.Event
	done   chan struct{}
	logger *logging.ChanneledLogger
}

func (w *sinkWorker) run() {
	defer close(w.done)
	for event := range w.queue {
		w.deliver(event)
	}
}

func (w *sinkWorker) deliver(event *telemetry.Event) {
	defer func() {
		if r := recover(); r != nil {
			if w.logger != nil {
				w.logger.Sink().Error("Sink panicked during delivery",
					"sink", w.sink.Name(), "event", event.Event, "panic", r)
			}
		}
	}()
	w.sink.Deliver(event)
}

// Dispatcher fans emitted events out to every registered sink.
type Dispatcher struct {
	workers   []*sinkWorker
	logger    *logging.ChanneledLogger
	closeOnce sync.Once
}

// NewDispatcher wraps each sink in a worker with the given queue size.
func NewDispatcher(queueSize int, logger *logging.ChanneledLogger, sinkList ...Sink) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	d := &Dispatcher{logger: logger}
	for _, s := range sinkList {
		w := &sinkWorker{
			sink:   s,
			queue:  make(chan *telemetry.Event, queueSize),
			done:   make(chan struct{}),
			logger: logger,
		}
		d.workers = append(d.workers, w)
		go w.run()
	}
	return d
}

// Publish enqueues the event for every sink without blocking. When a
// sink's queue is full the event is dropped for that sink only.
func (d *Dispatcher) Publish(event *telemetry.Event) {
	for _, w := range d.workers {
		select {
		case w.queue <- event:
		default:
			if d.logger != nil {
				d.logger.Sink().Warn("Sink queue full, dropping event",
					"sink", w.sink.Name(), "event", event.Event)
			}
		}
	}
}

// SinkCount reports how many sinks are registered.
func (d *Dispatcher) SinkCount() int {
	return len(d.workers)
}

// Close drains the queues and stops the workers.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		for _, w := range d.workers {
			close(w.queue)
		}
		for _, w := range d.workers {
			<-w.done
		}
	})
}
