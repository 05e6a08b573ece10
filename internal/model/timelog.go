package model

import "time"

type LogStatus string

const (
	LogStatusActive    LogStatus = "active"
	LogStatusPaused    LogStatus = "paused"
	LogStatusCompleted LogStatus = "completed"
	LogStatusCancelled LogStatus = "cancelled"
)

type SessionType string

const (
	SessionTypeWork     SessionType = "work"
	SessionTypeBreak    SessionType = "break"
	SessionTypeMeeting  SessionType = "meeting"
	SessionTypePlanning SessionType = "planning"
)

// TimeTrackingLog is the backend-owned record of one time-tracking session.
// Pause and resume only flip Status; Stop fills EndTime and DurationSeconds.
type TimeTrackingLog struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Status          LogStatus   `json:"status"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         *time.Time  `json:"end_time,omitempty"`
	DurationSeconds *int        `json:"duration_seconds,omitempty"`
	TaskID          *string     `json:"task_id,omitempty"`
	EventID         *string     `json:"event_id,omitempty"`
	ProjectID       *string     `json:"project_id,omitempty"`
	Description     *string     `json:"description,omitempty"`
	SessionType     SessionType `json:"session_type"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TimeTrackingStart holds the parameters of a new time-tracking session.
type TimeTrackingStart struct {
	TaskID      *string     `json:"task_id,omitempty"`
	EventID     *string     `json:"event_id,omitempty"`
	ProjectID   *string     `json:"project_id,omitempty"`
	Description *string     `json:"description,omitempty"`
	SessionType SessionType `json:"session_type,omitempty"`
}

type TimeTrackingStats struct {
	TotalSeconds      int64                 `json:"total_seconds"`
	TodaySeconds      int64                 `json:"today_seconds"`
	WeekSeconds       int64                 `json:"week_seconds"`
	CompletedSessions int                   `json:"completed_sessions"`
	BySessionType     map[SessionType]int64 `json:"by_session_type"`
}

// IsOpen reports whether the log is active or paused.
func (l *TimeTrackingLog) IsOpen() bool {
	return l != nil && (l.Status == LogStatusActive || l.Status == LogStatusPaused)
}

func (l *TimeTrackingLog) IsActive() bool {
	return l != nil && l.Status == LogStatusActive
}

func (l *TimeTrackingLog) IsPaused() bool {
	return l != nil && l.Status == LogStatusPaused
}

// ElapsedSeconds derives the elapsed time from StartTime and the wall clock.
// A paused log is frozen at its last update and a finished log reports its
// recorded duration.
func (l *TimeTrackingLog) ElapsedSeconds(now time.Time) int {
	if l == nil {
		return 0
	}
	if l.DurationSeconds != nil {
		return *l.DurationSeconds
	}

	until := now
	switch {
	case l.Status == LogStatusPaused:
		until = l.UpdatedAt
	case l.EndTime != nil:
		until = *l.EndTime
	}

	elapsed := int(until.Sub(l.StartTime) / time.Second)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (l *TimeTrackingLog) DescriptionText() string {
	if l == nil || l.Description == nil {
		return ""
	}
	return *l.Description
}

func IsValidSessionType(sessionType SessionType) bool {
	switch sessionType {
	case SessionTypeWork, SessionTypeBreak, SessionTypeMeeting, SessionTypePlanning:
		return true
	default:
		return false
	}
}
