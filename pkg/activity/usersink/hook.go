package usersink

import (
	"context"
	"fmt"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
	"github.com/saludarte/go-master-dashboard/pkg/activity"
)

// Sink persists activity records; go-users activity repositories satisfy it.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook writes dashboard activity into a go-users activity sink.
type Hook struct {
	Sink Sink
}

var _ activity.Hook = Hook{}

// Notify maps the event onto an ActivityRecord. Identifiers that are not
// UUIDs are kept in the record data instead of being dropped.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = activity.NormalizeEvent(event)
	if event.Verb == "" {
		return nil
	}
	data := make(map[string]any, len(event.Metadata)+4)
	for k, v := range event.Metadata {
		data[k] = v
	}
	if event.DefinitionCode != "" {
		data["definition_code"] = event.DefinitionCode
	}
	if len(event.Recipients) > 0 {
		data["recipients"] = event.Recipients
	}
	record := types.ActivityRecord{
		ActorID:    parseID(event.ActorID, "actor_ref", data),
		UserID:     parseID(event.UserID, "user_ref", data),
		TenantID:   parseID(event.TenantID, "tenant_ref", data),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.OccurredAt,
	}
	if err := h.Sink.Log(ctx, record); err != nil {
		return fmt.Errorf("usersink: log %s: %w", event.Verb, err)
	}
	return nil
}

func parseID(value, key string, data map[string]any) uuid.UUID {
	if value == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		data[key] = value
		return uuid.Nil
	}
	return id
}
