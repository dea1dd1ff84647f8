package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types published by controllers.
const (
	EventViewReplaced = "view.replaced"
	EventAlertPosted  = AlertPosted
	EventAlertRemoved = AlertRemoved
)

// DashboardEvent tells a session's browser that part of the page changed.
type DashboardEvent struct {
	Type       string    `json:"type"`
	Session    string    `json:"session,omitempty"`
	View       View      `json:"view,omitempty"`
	Alert      *Alert    `json:"alert,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher receives dashboard events.
type EventPublisher interface {
	Publish(ctx context.Context, event DashboardEvent) error
}

// BroadcastHook fans out dashboard events to in-process subscribers.
type BroadcastHook struct {
	mu   sync.RWMutex
	subs map[int]chan DashboardEvent
	next int
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs: make(map[int]chan DashboardEvent),
	}
}

var _ EventPublisher = (*BroadcastHook)(nil)

// Publish delivers the event to every subscriber without blocking; slow
// subscribers miss events.
func (h *BroadcastHook) Publish(_ context.Context, event DashboardEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of events and a cancel func.
func (h *BroadcastHook) Subscribe() (<-chan DashboardEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan DashboardEvent, 16)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// SubscribeSession is Subscribe filtered to one session; an empty session
// receives every event.
func (h *BroadcastHook) SubscribeSession(session string) (<-chan DashboardEvent, func()) {
	events, cancel := h.Subscribe()
	if session == "" {
		return events, cancel
	}
	out := make(chan DashboardEvent, 16)
	go func() {
		defer close(out)
		for event := range events {
			if event.Session != "" && event.Session != session {
				continue
			}
			select {
			case out <- event:
			default:
			}
		}
	}()
	return out, cancel
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams the session's events as JSON.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	events, cancel := h.SubscribeSession(r.URL.Query().Get("session"))
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE provides a Server-Sent Events endpoint for the session's events.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.SubscribeSession(r.URL.Query().Get("session"))
	defer cancel()

	encoder := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			_, _ = w.Write([]byte("event: " + event.Type + "\ndata: "))
			if err := encoder.Encode(event); err != nil {
				return
			}
			_, _ = w.Write([]byte("\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
