// Package timetracking is the client side of the time-tracking backend
// contract. Every failure is an *apperrors.APIError so callers can classify
// it with the apperrors.Is* helpers.
package timetracking

import (
	"context"

	"focussync/internal/model"
)

type Client interface {
	Start(ctx context.Context, params model.TimeTrackingStart) (*model.TimeTrackingLog, error)
	Stop(ctx context.Context) (*model.TimeTrackingLog, error)
	Pause(ctx context.Context) (*model.TimeTrackingLog, error)
	Resume(ctx context.Context) (*model.TimeTrackingLog, error)
	Cancel(ctx context.Context) error
	// GetActive returns nil, nil when no log is open.
	GetActive(ctx context.Context) (*model.TimeTrackingLog, error)
	GetStats(ctx context.Context) (*model.TimeTrackingStats, error)
}
