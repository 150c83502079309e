package state

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot is the synchronization status of one aggregate as seen by the UI.
type Snapshot struct {
	Loading             bool   // a refresh or mutation cycle is running
	Op                  string // name of the running or last finished cycle
	LastUpdated         time.Time
	LastSuccess         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the backend has failed several cycles in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the status.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	now      func() time.Time
}

// Begin marks op as running. The flag is advisory and Begin never blocks.
func (s *Store) Begin(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Loading = true
	s.snapshot.Op = op
}

// Abandon clears Loading for a cycle whose outcome was discarded. Timestamps,
// LastError and the failure counter keep describing the last real outcome.
func (s *Store) Abandon(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Loading = false
	s.snapshot.Op = op
}

// Finish records the outcome of op. When err is non-nil the error is kept
// for display and the failure counter grows; success clears both.
func (s *Store) Finish(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	s.snapshot.Loading = false
	s.snapshot.Op = op
	s.snapshot.LastUpdated = now
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastError = nil
	s.snapshot.LastSuccess = now
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current status.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
