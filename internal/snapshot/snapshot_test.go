package snapshot

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"focussync/internal/db"
	"focussync/internal/model"
	"focussync/internal/repository"
)

var savedAt = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func runningFocus(left int) *model.PomodoroState {
	anchor := savedAt
	return &model.PomodoroState{
		Mode:              model.ModeFocus,
		TimeLeftSeconds:   left,
		IsRunning:         true,
		SessionCount:      2,
		Settings:          model.DefaultPomodoroSettings(),
		RunStartTimestamp: &anchor,
	}
}

func TestReconstructRunningSubtractsElapsed(t *testing.T) {
	state, expired := Reconstruct(runningFocus(600), savedAt.Add(200*time.Second+400*time.Millisecond), model.DefaultPomodoroSettings())

	if expired {
		t.Fatal("did not expect expiry")
	}
	if !state.IsRunning || state.TimeLeftSeconds != 400 {
		t.Fatalf("expected running with 400s left, got %+v", state)
	}
	if !state.RunStartTimestamp.Equal(savedAt.Add(200 * time.Second)) {
		t.Fatalf("expected anchor to advance by whole seconds, got %v", state.RunStartTimestamp)
	}
}

func TestReconstructExpiredPhaseComesBackIdle(t *testing.T) {
	state, expired := Reconstruct(runningFocus(600), savedAt.Add(700*time.Second), model.DefaultPomodoroSettings())

	if !expired {
		t.Fatal("expected expiry")
	}
	if state.IsRunning || state.TimeLeftSeconds != 0 || state.RunStartTimestamp != nil {
		t.Fatalf("expected idle with nothing left, got %+v", state)
	}
	if state.Mode != model.ModeFocus || state.SessionCount != 2 {
		t.Fatalf("completion must not be replayed, got mode %s count %d", state.Mode, state.SessionCount)
	}
}

func TestReconstructClockMovedBackwards(t *testing.T) {
	state, expired := Reconstruct(runningFocus(600), savedAt.Add(-time.Hour), model.DefaultPomodoroSettings())

	if expired || state.TimeLeftSeconds != 600 || !state.IsRunning {
		t.Fatalf("expected untouched countdown, got %+v expired=%v", state, expired)
	}
}

func TestReconstructIdleSnapshotUnchanged(t *testing.T) {
	saved := runningFocus(321)
	saved.IsRunning = false
	saved.Context = &model.SessionContext{Kind: model.ContextTask, ID: "t1", Title: "Write report"}

	state, expired := Reconstruct(saved, savedAt.Add(24*time.Hour), model.DefaultPomodoroSettings())

	if expired || state.IsRunning || state.TimeLeftSeconds != 321 {
		t.Fatalf("unexpected state %+v", state)
	}
	if state.RunStartTimestamp != nil {
		t.Fatal("idle state must not carry an anchor")
	}
	if state.Context == nil || state.Context.Title != "Write report" {
		t.Fatalf("expected context preserved, got %+v", state.Context)
	}
}

func TestReconstructFallsBackToDefaults(t *testing.T) {
	custom := model.PomodoroSettings{FocusDuration: 3000, ShortBreakDuration: 600, LongBreakDuration: 1200, SessionsBeforeLongBreak: 3}
	broken := runningFocus(100)
	broken.Mode = "nap"

	for name, saved := range map[string]*model.PomodoroState{"missing": nil, "bad mode": broken} {
		state, expired := Reconstruct(saved, savedAt, custom)
		if expired || state.IsRunning || state.Mode != model.ModeFocus {
			t.Fatalf("%s: unexpected state %+v", name, state)
		}
		if state.TimeLeftSeconds != 3000 || state.Settings != custom {
			t.Fatalf("%s: expected defaults from settings, got %+v", name, state)
		}
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	backend := NewFileBackend(filepath.Join(t.TempDir(), "nested", "snapshots.yaml"))

	if _, err := backend.Read("pomodoro:a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on empty file, got %v", err)
	}

	first := runningFocus(500)
	first.Context = &model.SessionContext{Kind: model.ContextEvent, ID: "e1", Title: "Standup"}
	if err := backend.Write("pomodoro:a", *first); err != nil {
		t.Fatalf("write a: %v", err)
	}
	second := model.DefaultPomodoroState(model.DefaultPomodoroSettings())
	second.TimeLeftSeconds = 1200
	second.Suspended = true
	if err := backend.Write("pomodoro:b", second); err != nil {
		t.Fatalf("write b: %v", err)
	}

	loaded, err := backend.Read("pomodoro:a")
	if err != nil {
		t.Fatalf("read a: %v", err)
	}
	if loaded.TimeLeftSeconds != 500 || !loaded.IsRunning || loaded.SessionCount != 2 {
		t.Fatalf("unexpected snapshot %+v", loaded)
	}
	if loaded.RunStartTimestamp == nil || !loaded.RunStartTimestamp.Equal(savedAt) {
		t.Fatalf("anchor lost: %v", loaded.RunStartTimestamp)
	}
	if loaded.Context == nil || loaded.Context.Kind != model.ContextEvent || loaded.Context.ID != "e1" {
		t.Fatalf("context lost: %+v", loaded.Context)
	}

	other, err := backend.Read("pomodoro:b")
	if err != nil {
		t.Fatalf("read b: %v", err)
	}
	if other.IsRunning || other.TimeLeftSeconds != 1200 || !other.Suspended {
		t.Fatalf("unexpected snapshot %+v", other)
	}
}

func TestStoreRecoversFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.yaml")
	if err := os.WriteFile(path, []byte("snapshots: [not, a, map"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	var logs bytes.Buffer
	store := NewStore(NewFileBackend(path), "pomodoro:default", log.New(&logs, "", 0))

	state, expired := store.Restore(savedAt, model.DefaultPomodoroSettings())
	if expired || state.TimeLeftSeconds != model.DefaultFocusDurationSeconds {
		t.Fatalf("expected defaults, got %+v", state)
	}
	if !strings.Contains(logs.String(), "warning") {
		t.Fatalf("expected a warning, got %q", logs.String())
	}

	store.Save(*runningFocus(42))
	if loaded := store.Load(); loaded == nil || loaded.TimeLeftSeconds != 42 {
		t.Fatalf("expected save to replace the corrupt file, got %+v", loaded)
	}
}

type failingBackend struct{}

func (failingBackend) Read(string) (*model.PomodoroState, error) {
	return nil, errors.New("disk unplugged")
}

func (failingBackend) Write(string, model.PomodoroState) error {
	return errors.New("disk unplugged")
}

func TestStoreNeverFails(t *testing.T) {
	var logs bytes.Buffer
	store := NewStore(failingBackend{}, "k", log.New(&logs, "", 0))

	store.Save(model.DefaultPomodoroState(model.DefaultPomodoroSettings()))
	if store.Load() != nil {
		t.Fatal("expected nil from failing backend")
	}
	if strings.Count(logs.String(), "warning") != 2 {
		t.Fatalf("expected two warnings, got %q", logs.String())
	}
}

func TestSQLiteBackendRoundTrip(t *testing.T) {
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if err := db.RunMigrations(database, db.Migrations("")); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := repository.NewSnapshotRepository(database)
	backend := NewSQLiteBackend(repo)

	if _, err := backend.Read("pomodoro:a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	saved := runningFocus(90)
	if err := backend.Write("pomodoro:a", *saved); err != nil {
		t.Fatalf("write: %v", err)
	}
	saved.TimeLeftSeconds = 80
	if err := backend.Write("pomodoro:a", *saved); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	loaded, err := backend.Read("pomodoro:a")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if loaded.TimeLeftSeconds != 80 || !loaded.RunStartTimestamp.Equal(savedAt) {
		t.Fatalf("unexpected snapshot %+v", loaded)
	}

	if _, err := repo.Get(context.Background(), "pomodoro:missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected repository not found, got %v", err)
	}
}
