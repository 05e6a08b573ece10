package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadServerReadsEnvironment(t *testing.T) {
	t.Setenv("HOST", "")
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL_HOURS", "not-a-number")
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")

	cfg := LoadServer()

	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.TokenTTL != 72*time.Hour {
		t.Fatalf("expected fallback ttl, got %v", cfg.TokenTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.MigrationsDir != "" {
		t.Fatalf("expected embedded migrations by default, got %q", cfg.MigrationsDir)
	}
	if cfg.Addr() != ":9090" {
		t.Fatalf("unexpected addr %s", cfg.Addr())
	}
}

func TestServerValidate(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_SECRET", "")

	cfg := LoadServer()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected release mode to require a real secret")
	}

	cfg.JWTSecret = "a-real-secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.TokenTTL = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for a zero token ttl")
	}
}

func TestLoadClientDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focus.yaml")

	cfg, err := LoadClient(path)
	if err != nil {
		t.Fatalf("load client: %v", err)
	}

	if cfg.ServerURL != "http://localhost:8080" {
		t.Fatalf("unexpected server url %s", cfg.ServerURL)
	}
	if cfg.SnapshotBackend != SnapshotBackendFile {
		t.Fatalf("unexpected snapshot backend %s", cfg.SnapshotBackend)
	}
	if cfg.SnapshotPath != filepath.Join(filepath.Dir(path), "snapshots.yaml") {
		t.Fatalf("unexpected snapshot path %s", cfg.SnapshotPath)
	}
	settings := cfg.Pomodoro.Settings()
	if settings.FocusDuration != 1500 || settings.SessionsBeforeLongBreak != 4 {
		t.Fatalf("unexpected default settings %+v", settings)
	}
	if cfg.ProfileKey() != "pomodoro:default" {
		t.Fatalf("unexpected profile key %s", cfg.ProfileKey())
	}
}

func TestLoadClientFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focus.yaml")
	content := []byte(`server_url: http://tracker.test
offline: true
local_user_id: me
pomodoro:
  focus_minutes: 50
  short_break_minutes: 10
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FOCUS_POMODORO_SHORT_BREAK_MINUTES", "7")

	cfg, err := LoadClient(path)
	if err != nil {
		t.Fatalf("load client: %v", err)
	}

	if cfg.ServerURL != "http://tracker.test" || !cfg.Offline {
		t.Fatalf("unexpected config %+v", cfg)
	}
	settings := cfg.Pomodoro.Settings()
	if settings.FocusDuration != 3000 {
		t.Fatalf("expected 50 minute focus, got %d", settings.FocusDuration)
	}
	if settings.ShortBreakDuration != 420 {
		t.Fatalf("expected env override of short break, got %d", settings.ShortBreakDuration)
	}
	if cfg.ProfileKey() != "pomodoro:me" {
		t.Fatalf("unexpected profile key %s", cfg.ProfileKey())
	}
}

func TestLoadClientRejectsUnknownSnapshotBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focus.yaml")
	if err := os.WriteFile(path, []byte("snapshot_backend: redis\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadClient(path); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestSaveCredentialsPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "focus.yaml")

	cfg, err := LoadClient(path)
	if err != nil {
		t.Fatalf("load client: %v", err)
	}
	if err := cfg.SaveCredentials("ada@example.com", "token-123"); err != nil {
		t.Fatalf("save credentials: %v", err)
	}

	reloaded, err := LoadClient(path)
	if err != nil {
		t.Fatalf("reload client: %v", err)
	}
	if reloaded.Token != "token-123" || reloaded.Email != "ada@example.com" {
		t.Fatalf("credentials not persisted: %+v", reloaded)
	}
	if reloaded.ProfileKey() != "pomodoro:ada@example.com" {
		t.Fatalf("unexpected profile key %s", reloaded.ProfileKey())
	}

	if err := reloaded.ClearCredentials(); err != nil {
		t.Fatalf("clear credentials: %v", err)
	}
	cleared, err := LoadClient(path)
	if err != nil {
		t.Fatalf("reload client: %v", err)
	}
	if cleared.Token != "" {
		t.Fatalf("expected token cleared, got %q", cleared.Token)
	}
}
