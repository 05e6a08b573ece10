package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"focussync/internal/model"
	"focussync/internal/repository"
)

// SQLiteBackend stores snapshots as JSON rows in the pomodoro_snapshots table.
type SQLiteBackend struct {
	repo *repository.SnapshotRepository
}

func NewSQLiteBackend(repo *repository.SnapshotRepository) *SQLiteBackend {
	return &SQLiteBackend{repo: repo}
}

func (b *SQLiteBackend) Read(key string) (*model.PomodoroState, error) {
	payload, err := b.repo.Get(context.Background(), key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var state model.PomodoroState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("parse snapshot json: %w", err)
	}
	return &state, nil
}

func (b *SQLiteBackend) Write(key string, state model.PomodoroState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal snapshot json: %w", err)
	}
	return b.repo.Put(context.Background(), key, payload)
}
