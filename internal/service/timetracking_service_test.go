package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"focussync/internal/db"
	apperrors "focussync/internal/errors"
	"focussync/internal/model"
	"focussync/internal/repository"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func setupTimeTracking(t *testing.T, userIDs ...string) (*TimeTrackingService, *fakeClock) {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})
	if err := db.RunMigrations(database, db.Migrations("")); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	users := repository.NewUserRepository(database)
	for _, id := range userIDs {
		if err := users.EnsureLocal(context.Background(), id); err != nil {
			t.Fatalf("ensure user %s: %v", id, err)
		}
	}

	clock := &fakeClock{now: time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)}
	svc := NewTimeTrackingService(repository.NewTimeLogRepository(database))
	svc.now = clock.Now
	return svc, clock
}

func strPtr(value string) *string {
	return &value
}

func TestStartRejectsSecondOpenLog(t *testing.T) {
	svc, _ := setupTimeTracking(t, "alice", "bob")
	ctx := context.Background()

	first, apiErr := svc.Start(ctx, "alice", model.TimeTrackingStart{TaskID: strPtr("task-1")})
	if apiErr != nil {
		t.Fatalf("start: %v", apiErr)
	}
	if first.Status != model.LogStatusActive || first.SessionType != model.SessionTypeWork {
		t.Fatalf("unexpected log %+v", first)
	}

	_, apiErr = svc.Start(ctx, "alice", model.TimeTrackingStart{})
	if apiErr == nil || !apperrors.IsConflict(apiErr) {
		t.Fatalf("expected conflict, got %v", apiErr)
	}

	if _, apiErr := svc.Pause(ctx, "alice"); apiErr != nil {
		t.Fatalf("pause: %v", apiErr)
	}
	_, apiErr = svc.Start(ctx, "alice", model.TimeTrackingStart{})
	if apiErr == nil || apiErr.Code != "time_log_active" {
		t.Fatalf("expected paused log to block a new start, got %v", apiErr)
	}

	if _, apiErr := svc.Start(ctx, "bob", model.TimeTrackingStart{}); apiErr != nil {
		t.Fatalf("other users must not be blocked: %v", apiErr)
	}
}

func TestPauseResumeOnlyFlipStatus(t *testing.T) {
	svc, clock := setupTimeTracking(t, "alice")
	ctx := context.Background()

	started, apiErr := svc.Start(ctx, "alice", model.TimeTrackingStart{Description: strPtr("  writing  ")})
	if apiErr != nil {
		t.Fatalf("start: %v", apiErr)
	}
	if started.DescriptionText() != "writing" {
		t.Fatalf("expected trimmed description, got %q", started.DescriptionText())
	}

	clock.Advance(time.Minute)
	paused, apiErr := svc.Pause(ctx, "alice")
	if apiErr != nil {
		t.Fatalf("pause: %v", apiErr)
	}
	if paused.Status != model.LogStatusPaused {
		t.Fatalf("expected paused, got %s", paused.Status)
	}
	if !paused.StartTime.Equal(started.StartTime) || paused.EndTime != nil || paused.DurationSeconds != nil {
		t.Fatalf("pause must not touch time fields: %+v", paused)
	}

	if _, apiErr := svc.Pause(ctx, "alice"); apiErr == nil || apiErr.Code != "time_log_not_active" {
		t.Fatalf("expected not-active conflict, got %v", apiErr)
	}

	resumed, apiErr := svc.Resume(ctx, "alice")
	if apiErr != nil {
		t.Fatalf("resume: %v", apiErr)
	}
	if resumed.Status != model.LogStatusActive {
		t.Fatalf("expected active, got %s", resumed.Status)
	}
	if _, apiErr := svc.Resume(ctx, "alice"); apiErr == nil || apiErr.Code != "time_log_not_paused" {
		t.Fatalf("expected not-paused conflict, got %v", apiErr)
	}
}

func TestStopComputesDurationAndStats(t *testing.T) {
	svc, clock := setupTimeTracking(t, "alice")
	ctx := context.Background()

	if _, apiErr := svc.Stop(ctx, "alice"); apiErr == nil || !apperrors.IsNotFound(apiErr) {
		t.Fatalf("expected not found without an open log, got %v", apiErr)
	}

	if _, apiErr := svc.Start(ctx, "alice", model.TimeTrackingStart{SessionType: model.SessionTypeMeeting, EventID: strPtr("ev-9")}); apiErr != nil {
		t.Fatalf("start: %v", apiErr)
	}
	clock.Advance(25*time.Minute + 900*time.Millisecond)

	stopped, apiErr := svc.Stop(ctx, "alice")
	if apiErr != nil {
		t.Fatalf("stop: %v", apiErr)
	}
	if stopped.Status != model.LogStatusCompleted || stopped.EndTime == nil {
		t.Fatalf("unexpected stopped log %+v", stopped)
	}
	if stopped.DurationSeconds == nil || *stopped.DurationSeconds != 1500 {
		t.Fatalf("expected 1500 seconds, got %v", stopped.DurationSeconds)
	}

	active, apiErr := svc.GetActive(ctx, "alice")
	if apiErr != nil || active != nil {
		t.Fatalf("expected no active log, got %+v (%v)", active, apiErr)
	}

	if _, apiErr := svc.Start(ctx, "alice", model.TimeTrackingStart{}); apiErr != nil {
		t.Fatalf("start again: %v", apiErr)
	}
	clock.Advance(time.Hour)
	if apiErr := svc.Cancel(ctx, "alice"); apiErr != nil {
		t.Fatalf("cancel: %v", apiErr)
	}

	stats, apiErr := svc.GetStats(ctx, "alice")
	if apiErr != nil {
		t.Fatalf("stats: %v", apiErr)
	}
	if stats.CompletedSessions != 1 || stats.TotalSeconds != 1500 || stats.TodaySeconds != 1500 || stats.WeekSeconds != 1500 {
		t.Fatalf("cancelled logs must not count: %+v", stats)
	}
	if stats.BySessionType[model.SessionTypeMeeting] != 1500 {
		t.Fatalf("unexpected per-type totals %+v", stats.BySessionType)
	}

	history, apiErr := svc.GetHistory(ctx, "alice", 0)
	if apiErr != nil {
		t.Fatalf("history: %v", apiErr)
	}
	if len(history) != 2 || history[0].Status != model.LogStatusCancelled {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestStartRejectsUnknownSessionType(t *testing.T) {
	svc, _ := setupTimeTracking(t, "alice")

	_, apiErr := svc.Start(context.Background(), "alice", model.TimeTrackingStart{SessionType: "nap"})
	if apiErr == nil || apiErr.Code != "invalid_session_type" {
		t.Fatalf("expected invalid_session_type, got %v", apiErr)
	}
}

func TestStatsWindowsStartOnMonday(t *testing.T) {
	// 2026-03-08 is a Sunday.
	day, week := statsWindows(time.Date(2026, 3, 8, 18, 30, 0, 0, time.UTC))

	if !day.Equal(time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day start %v", day)
	}
	if !week.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected week start %v", week)
	}
}
