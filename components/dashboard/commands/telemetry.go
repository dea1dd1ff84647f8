package commands

import (
	"context"

	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
)

// Telemetry allows commands to emit structured events.
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

func recordResult(ctx context.Context, t Telemetry, event string, res dashboard.ActionResult, err error, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["status"] = res.Status
	if err != nil {
		payload["error"] = err.Error()
	}
	t.Record(ctx, event, payload)
}
