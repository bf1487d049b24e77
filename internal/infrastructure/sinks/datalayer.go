package sinks

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
)

// DataLayerSink pushes the generic dataLayer-shaped record to the
// configured vendor collection endpoint. Transport is best effort; any
// network failure is swallowed after a log line.
type DataLayerSink struct {
	endpoint      string
	measurementID string
	containerID   string
	client        *http.Client
	logger        *logging.ChanneledLogger
}

// NewDataLayerSink builds the vendor sink. A missing measurement id or
// endpoint is a configuration error: the sink is omitted (nil return)
// and noted only on the debug channel, never treated as fatal.
func NewDataLayerSink(endpoint, measurementID, containerID string, timeout time.Duration, logger *logging.ChanneledLogger) *DataLayerSink {
	if endpoint == "" || measurementID == "" {
		if logger != nil {
			logger.Debug().Debug("DataLayer sink disabled: missing measurement id or endpoint")
		}
		return nil
	}
	return &DataLayerSink{
		endpoint:      endpoint,
		measurementID: measurementID,
		containerID:   containerID,
		client:        &http.Client{Timeout: timeout},
		logger:        logger,
	}
}

func (s *DataLayerSink) Name() string { return "datalayer" }

// Deliver posts the flattened record. Runs on the dispatcher's worker
// goroutine for this sink.
func (s *DataLayerSink) Deliver(event *telemetry.Event) {
	record := event.Record()
	record["measurement_id"] = s.measurementID
	if s.containerID != "" {
		record["container_id"] = s.containerID
	}

	body, err := json.Marshal(record)
	if err != nil {
		s.logger.Sink().Error("Failed to marshal dataLayer record", "event", event.Event, "error", err.Error())
		return
	}

	resp, err := s.client.Post(s.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		s.logger.Sink().Warn("DataLayer push failed", "event", event.Event, "error", err.Error())
		return
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		s.logger.Sink().Warn("DataLayer push rejected", "event", event.Event, "status", resp.StatusCode)
	}
}
