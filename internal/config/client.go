package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"focussync/internal/model"
)

const (
	SnapshotBackendFile   = "file"
	SnapshotBackendSQLite = "sqlite"
)

// ClientConfig is the focus CLI configuration. It is read from a YAML file and
// FOCUS_* environment variables override individual keys
// (FOCUS_SERVER_URL, FOCUS_POMODORO_FOCUS_MINUTES, ...).
type ClientConfig struct {
	ServerURL       string         `mapstructure:"server_url"`
	Token           string         `mapstructure:"token"`
	Email           string         `mapstructure:"email"`
	Offline         bool           `mapstructure:"offline"`
	LocalDBPath     string         `mapstructure:"local_db_path"`
	LocalUserID     string         `mapstructure:"local_user_id"`
	SnapshotBackend string         `mapstructure:"snapshot_backend"`
	SnapshotPath    string         `mapstructure:"snapshot_path"`
	Pomodoro        PomodoroConfig `mapstructure:"pomodoro"`

	path string
	v    *viper.Viper
}

type PomodoroConfig struct {
	FocusMinutes            int `mapstructure:"focus_minutes"`
	ShortBreakMinutes       int `mapstructure:"short_break_minutes"`
	LongBreakMinutes        int `mapstructure:"long_break_minutes"`
	SessionsBeforeLongBreak int `mapstructure:"sessions_before_long_break"`
}

// DefaultClientPath returns focus.yaml under the user config directory.
func DefaultClientPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, "focussync", "focus.yaml"), nil
}

// LoadClient reads the client configuration at path. A missing file yields
// the defaults.
func LoadClient(path string) (*ClientConfig, error) {
	dataDir := filepath.Dir(path)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("FOCUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("token", "")
	v.SetDefault("email", "")
	v.SetDefault("offline", false)
	v.SetDefault("local_db_path", filepath.Join(dataDir, "focussync.db"))
	v.SetDefault("local_user_id", "local")
	v.SetDefault("snapshot_backend", SnapshotBackendFile)
	v.SetDefault("snapshot_path", filepath.Join(dataDir, "snapshots.yaml"))
	v.SetDefault("pomodoro.focus_minutes", model.DefaultFocusDurationSeconds/60)
	v.SetDefault("pomodoro.short_break_minutes", model.DefaultShortBreakDurationSeconds/60)
	v.SetDefault("pomodoro.long_break_minutes", model.DefaultLongBreakDurationSeconds/60)
	v.SetDefault("pomodoro.sessions_before_long_break", model.DefaultSessionsBeforeLongBreak)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read client config: %w", err)
		}
	}

	cfg := &ClientConfig{path: path, v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse client config: %w", err)
	}

	switch cfg.SnapshotBackend {
	case SnapshotBackendFile, SnapshotBackendSQLite:
	default:
		return nil, fmt.Errorf("unknown snapshot_backend %q", cfg.SnapshotBackend)
	}
	return cfg, nil
}

func (c *ClientConfig) Path() string {
	return c.path
}

// SaveCredentials stores the login result in the config file.
func (c *ClientConfig) SaveCredentials(email, token string) error {
	c.Email = email
	c.Token = token
	c.v.Set("email", email)
	c.v.Set("token", token)
	return c.write()
}

// ClearCredentials forgets the stored token.
func (c *ClientConfig) ClearCredentials() error {
	c.Token = ""
	c.v.Set("token", "")
	return c.write()
}

// ProfileKey identifies whose timer snapshot is stored.
func (c *ClientConfig) ProfileKey() string {
	if c.Offline {
		return "pomodoro:" + c.LocalUserID
	}
	if c.Email != "" {
		return "pomodoro:" + c.Email
	}
	return "pomodoro:default"
}

func (c *ClientConfig) write() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := c.v.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("write client config: %w", err)
	}
	return nil
}

// Settings converts the configured minutes into engine settings, falling back
// to the defaults for non-positive values.
func (p PomodoroConfig) Settings() model.PomodoroSettings {
	settings := model.DefaultPomodoroSettings()
	return settings.Merge(model.SettingsPatch{
		FocusDuration:           minutesToSeconds(p.FocusMinutes),
		ShortBreakDuration:      minutesToSeconds(p.ShortBreakMinutes),
		LongBreakDuration:       minutesToSeconds(p.LongBreakMinutes),
		SessionsBeforeLongBreak: p.SessionsBeforeLongBreak,
	})
}

func minutesToSeconds(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return int(time.Duration(minutes) * time.Minute / time.Second)
}
