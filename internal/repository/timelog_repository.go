package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"focussync/internal/model"
)

const timeLogColumns = `id, user_id, status, start_time, end_time, duration_seconds,
		        task_id, event_id, project_id, description, session_type,
		        created_at, updated_at`

type TimeLogRepository struct {
	db *sql.DB
}

func NewTimeLogRepository(db *sql.DB) *TimeLogRepository {
	return &TimeLogRepository{db: db}
}

func (r *TimeLogRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

func (r *TimeLogRepository) GetOpenTx(ctx context.Context, tx *sql.Tx, userID string) (*model.TimeTrackingLog, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT `+timeLogColumns+`
		 FROM time_logs
		 WHERE user_id = ? AND status IN ('active', 'paused')
		 ORDER BY start_time DESC
		 LIMIT 1`,
		userID,
	)
	return scanTimeLog(row)
}

func (r *TimeLogRepository) GetOpen(ctx context.Context, userID string) (*model.TimeTrackingLog, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+timeLogColumns+`
		 FROM time_logs
		 WHERE user_id = ? AND status IN ('active', 'paused')
		 ORDER BY start_time DESC
		 LIMIT 1`,
		userID,
	)
	return scanTimeLog(row)
}

func (r *TimeLogRepository) InsertTx(ctx context.Context, tx *sql.Tx, log *model.TimeTrackingLog) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO time_logs (
			id, user_id, status, start_time, end_time, duration_seconds,
			task_id, event_id, project_id, description, session_type,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		log.UserID,
		log.Status,
		formatTime(log.StartTime),
		nullableTime(log.EndTime),
		nullableInt(log.DurationSeconds),
		nullableString(log.TaskID),
		nullableString(log.EventID),
		nullableString(log.ProjectID),
		nullableString(log.Description),
		log.SessionType,
		formatTime(log.CreatedAt),
		formatTime(log.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert time log: %w", err)
	}
	return nil
}

func (r *TimeLogRepository) UpdateTx(ctx context.Context, tx *sql.Tx, log *model.TimeTrackingLog) error {
	_, err := tx.ExecContext(
		ctx,
		`UPDATE time_logs
		 SET status = ?,
		     end_time = ?,
		     duration_seconds = ?,
		     updated_at = ?
		 WHERE id = ?`,
		log.Status,
		nullableTime(log.EndTime),
		nullableInt(log.DurationSeconds),
		formatTime(log.UpdatedAt),
		log.ID,
	)
	if err != nil {
		return fmt.Errorf("update time log: %w", err)
	}
	return nil
}

func (r *TimeLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.TimeTrackingLog, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+timeLogColumns+`
		 FROM time_logs
		 WHERE user_id = ?
		 ORDER BY start_time DESC, rowid DESC
		 LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list time logs: %w", err)
	}
	defer rows.Close()

	logs := make([]model.TimeTrackingLog, 0, limit)
	for rows.Next() {
		log, scanErr := scanTimeLog(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		logs = append(logs, *log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time logs: %w", err)
	}
	return logs, nil
}

func (r *TimeLogRepository) Stats(ctx context.Context, userID string, dayStart, weekStart time.Time) (*model.TimeTrackingStats, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT session_type,
		        COUNT(1),
		        COALESCE(SUM(duration_seconds), 0),
		        COALESCE(SUM(CASE WHEN start_time >= ? THEN duration_seconds ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN start_time >= ? THEN duration_seconds ELSE 0 END), 0)
		 FROM time_logs
		 WHERE user_id = ? AND status = 'completed'
		 GROUP BY session_type`,
		formatTime(dayStart),
		formatTime(weekStart),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query time log stats: %w", err)
	}
	defer rows.Close()

	stats := &model.TimeTrackingStats{
		BySessionType: make(map[model.SessionType]int64),
	}
	for rows.Next() {
		var sessionType string
		var count int
		var total, today, week int64
		if err := rows.Scan(&sessionType, &count, &total, &today, &week); err != nil {
			return nil, fmt.Errorf("scan time log stats: %w", err)
		}
		stats.CompletedSessions += count
		stats.TotalSeconds += total
		stats.TodaySeconds += today
		stats.WeekSeconds += week
		stats.BySessionType[model.SessionType(sessionType)] = total
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time log stats: %w", err)
	}
	return stats, nil
}

func scanTimeLog(s scanner) (*model.TimeTrackingLog, error) {
	log := model.TimeTrackingLog{}
	var status, sessionType string
	var startTime, createdAt, updatedAt string
	var endTime sql.NullString
	var duration sql.NullInt64
	var taskID, eventID, projectID, description sql.NullString
	err := s.Scan(
		&log.ID,
		&log.UserID,
		&status,
		&startTime,
		&endTime,
		&duration,
		&taskID,
		&eventID,
		&projectID,
		&description,
		&sessionType,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan time log: %w", err)
	}
	log.Status = model.LogStatus(status)
	log.SessionType = model.SessionType(sessionType)

	if log.StartTime, err = parseTime(startTime); err != nil {
		return nil, fmt.Errorf("parse time log start_time: %w", err)
	}
	if log.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse time log created_at: %w", err)
	}
	if log.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse time log updated_at: %w", err)
	}
	if endTime.Valid {
		parsedEndTime, parseErr := parseTime(endTime.String)
		if parseErr != nil {
			return nil, fmt.Errorf("parse time log end_time: %w", parseErr)
		}
		log.EndTime = &parsedEndTime
	}
	if duration.Valid {
		value := int(duration.Int64)
		log.DurationSeconds = &value
	}
	log.TaskID = stringPtr(taskID)
	log.EventID = stringPtr(eventID)
	log.ProjectID = stringPtr(projectID)
	log.Description = stringPtr(description)

	return &log, nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	value := v.String
	return &value
}
