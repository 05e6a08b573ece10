package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "focussync/internal/errors"
	"focussync/internal/model"
	"focussync/internal/repository"
)

type TimeTrackingService struct {
	repo *repository.TimeLogRepository
	now  func() time.Time
}

func NewTimeTrackingService(repo *repository.TimeLogRepository) *TimeTrackingService {
	return &TimeTrackingService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *TimeTrackingService) Start(ctx context.Context, userID string, input model.TimeTrackingStart) (*model.TimeTrackingLog, *apperrors.APIError) {
	sessionType := input.SessionType
	if sessionType == "" {
		sessionType = model.SessionTypeWork
	}
	if !model.IsValidSessionType(sessionType) {
		return nil, apperrors.BadRequest("invalid_session_type", "session_type must be one of work, break, meeting, planning")
	}

	now := s.now()
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	open, apiErr := s.getOpen(ctx, tx, userID)
	if apiErr != nil {
		return nil, apiErr
	}
	if open != nil {
		return nil, apperrors.Conflict("time_log_active", "a time tracking session is already running", map[string]interface{}{
			"log": open,
		})
	}

	log := model.TimeTrackingLog{
		ID:          uuid.NewString(),
		UserID:      userID,
		Status:      model.LogStatusActive,
		StartTime:   now,
		TaskID:      trimmed(input.TaskID),
		EventID:     trimmed(input.EventID),
		ProjectID:   trimmed(input.ProjectID),
		Description: trimmed(input.Description),
		SessionType: sessionType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.InsertTx(ctx, tx, &log); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, apperrors.Conflict("time_log_active", "a time tracking session is already running", nil)
		}
		return nil, apperrors.Internal("failed to create time log")
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}
	return &log, nil
}

func (s *TimeTrackingService) Stop(ctx context.Context, userID string) (*model.TimeTrackingLog, *apperrors.APIError) {
	return s.transition(ctx, userID, func(log *model.TimeTrackingLog, now time.Time) *apperrors.APIError {
		duration := int(now.Sub(log.StartTime) / time.Second)
		if duration < 0 {
			duration = 0
		}
		log.Status = model.LogStatusCompleted
		log.EndTime = &now
		log.DurationSeconds = &duration
		return nil
	})
}

func (s *TimeTrackingService) Pause(ctx context.Context, userID string) (*model.TimeTrackingLog, *apperrors.APIError) {
	return s.transition(ctx, userID, func(log *model.TimeTrackingLog, now time.Time) *apperrors.APIError {
		if log.Status != model.LogStatusActive {
			return apperrors.Conflict("time_log_not_active", "time tracking session is not active", map[string]interface{}{
				"log": *log,
			})
		}
		log.Status = model.LogStatusPaused
		return nil
	})
}

func (s *TimeTrackingService) Resume(ctx context.Context, userID string) (*model.TimeTrackingLog, *apperrors.APIError) {
	return s.transition(ctx, userID, func(log *model.TimeTrackingLog, now time.Time) *apperrors.APIError {
		if log.Status != model.LogStatusPaused {
			return apperrors.Conflict("time_log_not_paused", "time tracking session is not paused", map[string]interface{}{
				"log": *log,
			})
		}
		log.Status = model.LogStatusActive
		return nil
	})
}

func (s *TimeTrackingService) Cancel(ctx context.Context, userID string) *apperrors.APIError {
	_, apiErr := s.transition(ctx, userID, func(log *model.TimeTrackingLog, now time.Time) *apperrors.APIError {
		log.Status = model.LogStatusCancelled
		log.EndTime = &now
		log.DurationSeconds = nil
		return nil
	})
	return apiErr
}

func (s *TimeTrackingService) GetActive(ctx context.Context, userID string) (*model.TimeTrackingLog, *apperrors.APIError) {
	log, err := s.repo.GetOpen(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get active time log")
	}
	return log, nil
}

func (s *TimeTrackingService) GetStats(ctx context.Context, userID string) (*model.TimeTrackingStats, *apperrors.APIError) {
	dayStart, weekStart := statsWindows(s.now())
	stats, err := s.repo.Stats(ctx, userID, dayStart, weekStart)
	if err != nil {
		return nil, apperrors.Internal("failed to get time tracking stats")
	}
	return stats, nil
}

func (s *TimeTrackingService) GetHistory(ctx context.Context, userID string, limit int) ([]model.TimeTrackingLog, *apperrors.APIError) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	logs, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to get history")
	}
	return logs, nil
}

func (s *TimeTrackingService) transition(
	ctx context.Context,
	userID string,
	apply func(log *model.TimeTrackingLog, now time.Time) *apperrors.APIError,
) (*model.TimeTrackingLog, *apperrors.APIError) {
	now := s.now()
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	log, apiErr := s.getOpen(ctx, tx, userID)
	if apiErr != nil {
		return nil, apiErr
	}
	if log == nil {
		return nil, apperrors.NotFound("no_active_time_log", "no time tracking session is running")
	}

	if apiErr := apply(log, now); apiErr != nil {
		return nil, apiErr
	}
	log.UpdatedAt = now

	if err := s.repo.UpdateTx(ctx, tx, log); err != nil {
		return nil, apperrors.Internal("failed to update time log")
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}
	return log, nil
}

func (s *TimeTrackingService) getOpen(ctx context.Context, tx *sql.Tx, userID string) (*model.TimeTrackingLog, *apperrors.APIError) {
	log, err := s.repo.GetOpenTx(ctx, tx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get active time log")
	}
	return log, nil
}

func statsWindows(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(dayStart.Weekday()) + 6) % 7
	weekStart := dayStart.AddDate(0, 0, -offset)
	return dayStart, weekStart
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	result := strings.TrimSpace(*value)
	if result == "" {
		return nil
	}
	return &result
}
