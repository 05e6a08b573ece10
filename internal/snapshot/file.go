package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"focussync/internal/model"
)

type yamlFile struct {
	Snapshots map[string]yamlSnapshot `yaml:"snapshots"`
}

type yamlSnapshot struct {
	Mode                    string       `yaml:"mode"`
	TimeLeftSeconds         int          `yaml:"time_left_seconds"`
	IsRunning               bool         `yaml:"is_running"`
	Suspended               bool         `yaml:"suspended,omitempty"`
	SessionCount            int          `yaml:"session_count"`
	FocusDuration           int          `yaml:"focus_duration"`
	ShortBreakDuration      int          `yaml:"short_break_duration"`
	LongBreakDuration       int          `yaml:"long_break_duration"`
	SessionsBeforeLongBreak int          `yaml:"sessions_before_long_break"`
	Context                 *yamlContext `yaml:"context,omitempty"`
	RunStartTimestamp       *time.Time   `yaml:"run_start_timestamp,omitempty"`
}

type yamlContext struct {
	Kind        string `yaml:"kind"`
	ID          string `yaml:"id,omitempty"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
}

// FileBackend keeps every snapshot in a single YAML document.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Read(key string) (*model.PomodoroState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	file, err := b.readFile()
	if err != nil {
		return nil, err
	}
	saved, ok := file.Snapshots[key]
	if !ok {
		return nil, ErrNotFound
	}
	state := fromYAML(saved)
	return &state, nil
}

func (b *FileBackend) Write(key string, state model.PomodoroState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	file, err := b.readFile()
	if err != nil && !errors.Is(err, ErrNotFound) {
		// An unreadable file is replaced rather than blocking every later save.
		file = yamlFile{}
	}
	if file.Snapshots == nil {
		file.Snapshots = make(map[string]yamlSnapshot)
	}
	file.Snapshots[key] = toYAML(state)

	serialized, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshal snapshot yaml: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, serialized, 0o600); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}

func (b *FileBackend) readFile() (yamlFile, error) {
	var file yamlFile
	rawData, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return file, ErrNotFound
		}
		return file, fmt.Errorf("read snapshot file: %w", err)
	}
	if err := yaml.Unmarshal(rawData, &file); err != nil {
		return file, fmt.Errorf("parse snapshot yaml: %w", err)
	}
	return file, nil
}

func toYAML(state model.PomodoroState) yamlSnapshot {
	saved := yamlSnapshot{
		Mode:                    string(state.Mode),
		TimeLeftSeconds:         state.TimeLeftSeconds,
		IsRunning:               state.IsRunning,
		Suspended:               state.Suspended,
		SessionCount:            state.SessionCount,
		FocusDuration:           state.Settings.FocusDuration,
		ShortBreakDuration:      state.Settings.ShortBreakDuration,
		LongBreakDuration:       state.Settings.LongBreakDuration,
		SessionsBeforeLongBreak: state.Settings.SessionsBeforeLongBreak,
	}
	if state.Context != nil {
		saved.Context = &yamlContext{
			Kind:        string(state.Context.Kind),
			ID:          state.Context.ID,
			Title:       state.Context.Title,
			Description: state.Context.Description,
		}
	}
	if state.RunStartTimestamp != nil {
		ts := state.RunStartTimestamp.UTC()
		saved.RunStartTimestamp = &ts
	}
	return saved
}

func fromYAML(saved yamlSnapshot) model.PomodoroState {
	state := model.PomodoroState{
		Mode:            model.Mode(saved.Mode),
		TimeLeftSeconds: saved.TimeLeftSeconds,
		IsRunning:       saved.IsRunning,
		Suspended:       saved.Suspended,
		SessionCount:    saved.SessionCount,
		Settings: model.PomodoroSettings{
			FocusDuration:           saved.FocusDuration,
			ShortBreakDuration:      saved.ShortBreakDuration,
			LongBreakDuration:       saved.LongBreakDuration,
			SessionsBeforeLongBreak: saved.SessionsBeforeLongBreak,
		},
		RunStartTimestamp: saved.RunStartTimestamp,
	}
	if saved.Context != nil {
		state.Context = &model.SessionContext{
			Kind:        model.ContextKind(saved.Context.Kind),
			ID:          saved.Context.ID,
			Title:       saved.Context.Title,
			Description: saved.Context.Description,
		}
	}
	return state
}
