// Package snapshot keeps the Pomodoro engine's state across restarts.
//
// The Store never reports failures to its caller: a snapshot that cannot be
// read is treated as absent and a snapshot that cannot be written is dropped,
// with a warning logged in both cases. The in-memory engine state remains
// authoritative for the running process.
package snapshot

import (
	"errors"
	"log"
	"time"

	"focussync/internal/model"
)

// ErrNotFound is returned by a Backend when no snapshot exists for a key.
var ErrNotFound = errors.New("snapshot not found")

// Backend reads and writes raw snapshots by key.
type Backend interface {
	Read(key string) (*model.PomodoroState, error)
	Write(key string, state model.PomodoroState) error
}

type Store struct {
	backend Backend
	key     string
	logger  *log.Logger
}

func NewStore(backend Backend, key string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{backend: backend, key: key, logger: logger}
}

// Load returns the saved state, or nil when it is missing or unreadable.
func (s *Store) Load() *model.PomodoroState {
	state, err := s.backend.Read(s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Printf("warning: load pomodoro snapshot %q: %v", s.key, err)
		}
		return nil
	}
	return state
}

// Save persists state.
func (s *Store) Save(state model.PomodoroState) {
	if err := s.backend.Write(s.key, state); err != nil {
		s.logger.Printf("warning: save pomodoro snapshot %q: %v", s.key, err)
	}
}

// Restore loads the saved state and corrects it for the time that passed
// since it was written. expired is true when a running phase ran out while
// the process was not observing it.
func (s *Store) Restore(now time.Time, defaults model.PomodoroSettings) (model.PomodoroState, bool) {
	return Reconstruct(s.Load(), now, defaults)
}
