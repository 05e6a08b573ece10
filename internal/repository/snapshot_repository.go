package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := r.db.QueryRowContext(
		ctx,
		`SELECT payload FROM pomodoro_snapshots WHERE key = ?`,
		key,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return []byte(payload), nil
}

func (r *SnapshotRepository) Put(ctx context.Context, key string, payload []byte) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO pomodoro_snapshots (key, payload, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key,
		string(payload),
		formatTime(nowUTC()),
	)
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}
