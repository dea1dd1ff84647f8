package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
)

type recordingHook struct {
	events []Event
	err    error
}

func (h *recordingHook) Notify(_ context.Context, evt Event) error {
	h.events = append(h.events, evt)
	return h.err
}

func TestEmitterDefaultsChannelAndEmits(t *testing.T) {
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{Enabled: true})
	if !em.Enabled() {
		t.Fatalf("expected emitter enabled")
	}
	err := em.Emit(context.Background(), Event{
		Verb:       dashboard.VerbCaseResolve,
		ObjectType: "case",
		ObjectID:   "abc123",
	})
	if err != nil {
		t.Fatalf("emit returned error: %v", err)
	}
	if len(hook.events) != 1 {
		t.Fatalf("expected event emitted, got %d", len(hook.events))
	}
	if hook.events[0].Channel != DefaultChannel {
		t.Fatalf("expected default channel %s, got %q", DefaultChannel, hook.events[0].Channel)
	}
}

func TestEmitterDisabled(t *testing.T) {
	if NewEmitter(nil, Config{Enabled: true}).Enabled() {
		t.Fatalf("expected emitter disabled without hooks")
	}
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{})
	_ = em.Emit(context.Background(), Event{Verb: "product.add"})
	if len(hook.events) != 0 {
		t.Fatalf("expected disabled emitter to drop events")
	}
}

func TestEmitterAdaptsControllerActivity(t *testing.T) {
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{Enabled: true, Channel: "master"})
	at := time.Date(2025, 6, 27, 20, 54, 27, 0, time.UTC)

	err := em.Notify(context.Background(), dashboard.ActivityEvent{
		Verb:       dashboard.VerbProductDelete,
		ObjectType: "product",
		ObjectID:   "p-1",
		Actor:      dashboard.ActivityContext{ActorID: "op-7"},
		Metadata:   map[string]any{"name": "Árnica"},
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(hook.events) != 1 {
		t.Fatalf("expected one event, got %d", len(hook.events))
	}
	evt := hook.events[0]
	if evt.ActorID != "op-7" || evt.Channel != "master" || !evt.OccurredAt.Equal(at) {
		t.Fatalf("unexpected event %+v", evt)
	}
	if evt.DefinitionCode != "master:product:product.delete" {
		t.Fatalf("unexpected definition code %q", evt.DefinitionCode)
	}
	if evt.Metadata["name"] != "Árnica" {
		t.Fatalf("expected metadata forwarded, got %v", evt.Metadata)
	}
}

func TestEmitterReportsHookErrors(t *testing.T) {
	boom := errors.New("sink down")
	failing := &recordingHook{err: boom}
	ok := &recordingHook{}
	em := NewEmitter(Hooks{failing, ok}, Config{Enabled: true})
	err := em.Emit(context.Background(), Event{Verb: "catalog.upload"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if len(ok.events) != 1 {
		t.Fatalf("expected remaining hooks to run")
	}
}
