package dashboard

import (
	"context"
	"testing"
	"time"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := DashboardEvent{Type: EventViewReplaced, View: ViewMovements}
	if err := hook.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e.View != ViewMovements {
			t.Fatalf("expected view %s, got %s", ViewMovements, e.View)
		}
		if e.OccurredAt.IsZero() {
			t.Fatalf("expected timestamp to be stamped")
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookSubscribeSessionFilters(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.SubscribeSession("s1")
	defer cancel()

	_ = hook.Publish(context.Background(), DashboardEvent{Type: EventViewReplaced, Session: "s2", View: ViewCatalog})
	_ = hook.Publish(context.Background(), DashboardEvent{Type: EventViewReplaced, Session: "s1", View: ViewAnalytics})

	select {
	case e := <-ch:
		if e.Session != "s1" || e.View != ViewAnalytics {
			t.Fatalf("expected only s1 event, got %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected session event to be delivered")
	}
}

func TestBroadcastHookCancelClosesChannel(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after cancel")
	}
	if err := hook.Publish(context.Background(), DashboardEvent{Type: EventViewReplaced}); err != nil {
		t.Fatalf("publish after cancel: %v", err)
	}
}
