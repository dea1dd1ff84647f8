package dashboard

import (
	"context"

	"github.com/apex/log"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// LogTelemetry writes telemetry events as debug log entries.
type LogTelemetry struct {
	Logger log.Interface
}

// Record logs the event with its payload as fields.
func (t LogTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	logger := t.Logger
	if logger == nil {
		logger = log.Log
	}
	logger.WithFields(log.Fields(payload)).Debug(event)
}
