package activity

import (
	"context"
	"strings"

	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
)

// Config toggles emission.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter stamps the channel on events and forwards them to hooks.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
}

var _ dashboard.ActivityHook = (*Emitter)(nil)

// NewEmitter builds an emitter. It is disabled when no hooks are configured.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	return &Emitter{
		hooks:   hooks,
		enabled: cfg.Enabled && len(hooks) > 0,
		channel: channel,
	}
}

// Enabled reports whether Emit delivers anything.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit delivers one event.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	return e.hooks.Notify(ctx, event)
}

// Notify adapts controller activity to an Event so the emitter can be passed
// as dashboard.ControllerOptions.Activity.
func (e *Emitter) Notify(ctx context.Context, event dashboard.ActivityEvent) error {
	return e.Emit(ctx, Event{
		Verb:           event.Verb,
		ActorID:        event.Actor.ActorID,
		UserID:         event.Actor.UserID,
		TenantID:       event.Actor.TenantID,
		ObjectType:     event.ObjectType,
		ObjectID:       event.ObjectID,
		DefinitionCode: definitionCode(event),
		Metadata:       event.Metadata,
		OccurredAt:     event.OccurredAt,
	})
}

func definitionCode(event dashboard.ActivityEvent) string {
	if event.ObjectType == "" {
		return "master:" + event.Verb
	}
	return "master:" + event.ObjectType + ":" + event.Verb
}
