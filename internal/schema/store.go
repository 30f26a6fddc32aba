package schema

import (
	"errors"
	"sync/atomic"
	"time"
)

// ErrNotReady is returned by Current before the first snapshot is installed.
var ErrNotReady = errors.New("schema not loaded yet")

// Store provides thread-safe access to the current Snapshot.
type Store struct {
	snapshot atomic.Pointer[Snapshot]
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{}
}

// Current returns the active snapshot. It never blocks; a refresh in
// progress keeps readers on the previous snapshot until Install.
func (s *Store) Current() (*Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	return snap, nil
}

// Ready reports whether a snapshot has been installed.
func (s *Store) Ready() bool {
	return s.snapshot.Load() != nil
}

// Install atomically replaces the active snapshot. A nil snapshot is
// ignored so a store never goes back to not-ready.
func (s *Store) Install(snap *Snapshot) {
	if snap == nil {
		return
	}
	s.snapshot.Store(snap)
}

// AgeSeconds returns the age of the active snapshot in seconds.
// Returns -1 if no snapshot is installed.
func (s *Store) AgeSeconds() float64 {
	snap := s.snapshot.Load()
	if snap == nil {
		return -1
	}
	return time.Since(snap.FetchedAt).Seconds()
}
