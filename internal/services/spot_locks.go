package services

import "sync"

// SpotLocks serializes read-modify-write sequences per spot identity.
// Operations on different spots proceed fully in parallel; the repository's
// version check covers other processes. A single instance is shared across
// every service touching spots so same-spot work queues instead of
// retrying on version conflicts.
type SpotLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSpotLocks() *SpotLocks {
	return &SpotLocks{locks: make(map[string]*sync.Mutex)}
}

func (s *SpotLocks) lock(spotID string) func() {
	s.mu.Lock()
	l, ok := s.locks[spotID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[spotID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
