package dashboard

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultAlertTTL is how long a banner stays visible.
const DefaultAlertTTL = 5 * time.Second

// AlertKind selects the banner style.
type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertError   AlertKind = "error"
	AlertInfo    AlertKind = "info"
	AlertWarning AlertKind = "warning"
)

// Class returns the banner CSS class; errors render as danger.
func (k AlertKind) Class() string {
	if k == AlertError {
		return "alert-danger"
	}
	return "alert-" + string(k)
}

// Alert is a transient banner.
type Alert struct {
	ID       string    `json:"id"`
	Kind     AlertKind `json:"kind"`
	Class    string    `json:"class"`
	Message  string    `json:"message"`
	PostedAt time.Time `json:"posted_at"`
}

// Stopper cancels a scheduled callback.
type Stopper interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// AlertListener observes alerts being posted and removed.
type AlertListener func(event AlertEvent)

// AlertEvent reports a change in the visible alert list.
type AlertEvent struct {
	Type  string `json:"type"`
	Alert Alert  `json:"alert"`
}

const (
	AlertPosted  = "alert.posted"
	AlertRemoved = "alert.removed"
)

// AlertCenter keeps the ordered list of visible banners. Every alert owns its
// removal timer, so expiring one never removes another.
type AlertCenter struct {
	mu        sync.Mutex
	ttl       time.Duration
	scheduler Scheduler
	now       func() time.Time
	alerts    []Alert
	timers    map[string]Stopper
	listeners []AlertListener
	closed    bool
}

// AlertOption customizes an AlertCenter.
type AlertOption func(*AlertCenter)

// WithAlertTTL overrides the display duration.
func WithAlertTTL(ttl time.Duration) AlertOption {
	return func(c *AlertCenter) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithAlertScheduler injects the timer implementation.
func WithAlertScheduler(s Scheduler) AlertOption {
	return func(c *AlertCenter) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithAlertClock injects the clock used for PostedAt.
func WithAlertClock(now func() time.Time) AlertOption {
	return func(c *AlertCenter) {
		if now != nil {
			c.now = now
		}
	}
}

// WithAlertListener registers a change listener.
func WithAlertListener(l AlertListener) AlertOption {
	return func(c *AlertCenter) {
		if l != nil {
			c.listeners = append(c.listeners, l)
		}
	}
}

// NewAlertCenter builds an alert center.
func NewAlertCenter(opts ...AlertOption) *AlertCenter {
	c := &AlertCenter{
		ttl:       DefaultAlertTTL,
		scheduler: timeScheduler{},
		now:       time.Now,
		timers:    make(map[string]Stopper),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post appends a banner and schedules its own removal.
func (c *AlertCenter) Post(kind AlertKind, message string) Alert {
	alert := Alert{
		ID:       uuid.NewString(),
		Kind:     kind,
		Class:    kind.Class(),
		Message:  message,
		PostedAt: c.now(),
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return alert
	}
	c.alerts = append(c.alerts, alert)
	id := alert.ID
	c.timers[id] = c.scheduler.AfterFunc(c.ttl, func() { c.expire(id) })
	listeners := c.listeners
	c.mu.Unlock()

	notify(listeners, AlertEvent{Type: AlertPosted, Alert: alert})
	return alert
}

// PostLater posts a banner after delay; the returned Stopper cancels it.
// Close also cancels it.
func (c *AlertCenter) PostLater(delay time.Duration, kind AlertKind, message string) Stopper {
	key := pendingPrefix + uuid.NewString()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return stoppedTimer{}
	}
	timer := c.scheduler.AfterFunc(delay, func() {
		c.mu.Lock()
		_, pending := c.timers[key]
		delete(c.timers, key)
		c.mu.Unlock()
		if pending {
			c.Post(kind, message)
		}
	})
	c.timers[key] = timer
	return pendingTimer{center: c, key: key, timer: timer}
}

// Pending reports how many removal and delayed-post timers are still armed.
func (c *AlertCenter) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Dismiss removes an alert before it expires.
func (c *AlertCenter) Dismiss(id string) bool {
	if strings.HasPrefix(id, pendingPrefix) {
		return false
	}
	c.mu.Lock()
	if timer, ok := c.timers[id]; ok && timer != nil {
		timer.Stop()
	}
	removed, ok := c.removeLocked(id)
	listeners := c.listeners
	c.mu.Unlock()
	if ok {
		notify(listeners, AlertEvent{Type: AlertRemoved, Alert: removed})
	}
	return ok
}

// Active returns a copy of the visible alerts, oldest first.
func (c *AlertCenter) Active() []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Alert, len(c.alerts))
	copy(out, c.alerts)
	return out
}

// Close stops all pending removal and delayed-post timers. Posts after Close
// are dropped.
func (c *AlertCenter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, timer := range c.timers {
		if timer != nil {
			timer.Stop()
		}
		delete(c.timers, id)
	}
}

func (c *AlertCenter) expire(id string) {
	c.mu.Lock()
	removed, ok := c.removeLocked(id)
	listeners := c.listeners
	c.mu.Unlock()
	if ok {
		notify(listeners, AlertEvent{Type: AlertRemoved, Alert: removed})
	}
}

func (c *AlertCenter) removeLocked(id string) (Alert, bool) {
	delete(c.timers, id)
	for i, alert := range c.alerts {
		if alert.ID == id {
			c.alerts = append(c.alerts[:i:i], c.alerts[i+1:]...)
			return alert, true
		}
	}
	return Alert{}, false
}

// pendingPrefix keys delayed posts in the timer map; alert IDs are bare UUIDs.
const pendingPrefix = "pending:"

type pendingTimer struct {
	center *AlertCenter
	key    string
	timer  Stopper
}

func (t pendingTimer) Stop() bool {
	t.center.mu.Lock()
	delete(t.center.timers, t.key)
	t.center.mu.Unlock()
	return t.timer.Stop()
}

type stoppedTimer struct{}

func (stoppedTimer) Stop() bool { return false }

func notify(listeners []AlertListener, event AlertEvent) {
	for _, l := range listeners {
		l(event)
	}
}
