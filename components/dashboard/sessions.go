package dashboard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// DefaultSession is used when a request carries no session identifier.
const DefaultSession = "default"

const (
	// DefaultSessionIdleTTL is how long an unused session is kept.
	DefaultSessionIdleTTL = 30 * time.Minute
	// DefaultMaxSessions caps the pool; the least recently used session is
	// evicted when a new one would exceed it.
	DefaultMaxSessions = 1000
)

// ControllerFactory builds the controller for a new session.
type ControllerFactory func(session, locale string) (*Controller, error)

// SessionOption customizes a Sessions pool.
type SessionOption func(*Sessions)

// WithSessionIdleTTL overrides the idle timeout; a non-positive value keeps
// sessions until the cap evicts them.
func WithSessionIdleTTL(ttl time.Duration) SessionOption {
	return func(s *Sessions) {
		s.idleTTL = ttl
	}
}

// WithMaxSessions overrides the pool cap; a non-positive value removes it.
func WithMaxSessions(n int) SessionOption {
	return func(s *Sessions) {
		s.max = n
	}
}

// WithSessionClock injects the clock used for idle tracking.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Sessions) {
		if now != nil {
			s.now = now
		}
	}
}

// Sessions keeps one Controller per dashboard session. A session starts with
// the initial catalog load, mirroring a fresh page load. Idle sessions are
// swept whenever a new one is created.
type Sessions struct {
	mu       sync.Mutex
	factory  ControllerFactory
	logger   log.Interface
	idleTTL  time.Duration
	max      int
	now      func() time.Time
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	ctl      *Controller
	lastSeen time.Time
}

// NewSessions builds a session pool.
func NewSessions(factory ControllerFactory, logger log.Interface, opts ...SessionOption) *Sessions {
	if logger == nil {
		logger = log.Log
	}
	s := &Sessions{
		factory:  factory,
		logger:   logger,
		idleTTL:  DefaultSessionIdleTTL,
		max:      DefaultMaxSessions,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the session controller, creating and initializing it on first use.
// A failed initial load is surfaced as a banner, not as an error.
func (s *Sessions) Get(ctx context.Context, session, locale string) (*Controller, error) {
	session = strings.TrimSpace(session)
	if session == "" {
		session = DefaultSession
	}
	now := s.now()
	s.mu.Lock()
	if entry, ok := s.sessions[session]; ok && !s.idleLocked(entry, now) {
		entry.lastSeen = now
		s.mu.Unlock()
		return entry.ctl, nil
	}
	c, err := s.factory(session, locale)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	evicted := s.sweepLocked(now)
	evicted = append(evicted, s.trimLocked(session)...)
	s.sessions[session] = &sessionEntry{ctl: c, lastSeen: now}
	s.mu.Unlock()

	s.close(evicted)
	if err := c.Init(ctx); err != nil {
		s.logger.WithField("session", session).WithError(err).Warn("initial catalog load failed")
	}
	return c, nil
}

// Sweep closes sessions idle for longer than the TTL and reports how many
// were evicted.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	evicted := s.sweepLocked(s.now())
	s.mu.Unlock()
	s.close(evicted)
	return len(evicted)
}

// Drop closes and forgets a session.
func (s *Sessions) Drop(session string) bool {
	s.mu.Lock()
	entry, ok := s.sessions[session]
	delete(s.sessions, session)
	s.mu.Unlock()
	if ok {
		entry.ctl.Close()
	}
	return ok
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) idleLocked(entry *sessionEntry, now time.Time) bool {
	return s.idleTTL > 0 && now.Sub(entry.lastSeen) >= s.idleTTL
}

func (s *Sessions) sweepLocked(now time.Time) []evictedSession {
	var evicted []evictedSession
	for id, entry := range s.sessions {
		if s.idleLocked(entry, now) {
			evicted = append(evicted, evictedSession{id: id, ctl: entry.ctl})
			delete(s.sessions, id)
		}
	}
	return evicted
}

// trimLocked makes room for one more session by evicting the least recently
// used ones. A stale entry under the incoming key is always replaced.
func (s *Sessions) trimLocked(incoming string) []evictedSession {
	var evicted []evictedSession
	if entry, ok := s.sessions[incoming]; ok {
		evicted = append(evicted, evictedSession{id: incoming, ctl: entry.ctl})
		delete(s.sessions, incoming)
	}
	if s.max <= 0 {
		return evicted
	}
	for len(s.sessions) >= s.max {
		var oldestID string
		var oldest *sessionEntry
		for id, entry := range s.sessions {
			if oldest == nil || entry.lastSeen.Before(oldest.lastSeen) {
				oldestID, oldest = id, entry
			}
		}
		evicted = append(evicted, evictedSession{id: oldestID, ctl: oldest.ctl})
		delete(s.sessions, oldestID)
	}
	return evicted
}

type evictedSession struct {
	id  string
	ctl *Controller
}

func (s *Sessions) close(evicted []evictedSession) {
	for _, e := range evicted {
		e.ctl.Close()
		s.logger.WithField("session", e.id).Debug("session evicted")
	}
}
