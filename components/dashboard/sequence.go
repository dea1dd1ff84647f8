package dashboard

import "sync"

// requestSequencer hands out per-view request numbers so a response can tell
// whether a newer request for the same view was dispatched after it.
type requestSequencer struct {
	mu     sync.Mutex
	latest map[View]uint64
}

func newRequestSequencer() *requestSequencer {
	return &requestSequencer{latest: make(map[View]uint64)}
}

// Begin records a new request for view and returns its number.
func (s *requestSequencer) Begin(view View) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[view]++
	return s.latest[view]
}

// IsLatest reports whether seq is still the newest request for view.
func (s *requestSequencer) IsLatest(view View, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[view] == seq
}

// Commit runs apply only if seq is still the newest request for view. The
// check and apply happen under one lock so an older response can never land
// after a newer one.
func (s *requestSequencer) Commit(view View, seq uint64, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest[view] != seq {
		return false
	}
	apply()
	return true
}
