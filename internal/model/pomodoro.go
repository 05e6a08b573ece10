package model

import "time"

type Mode string

const (
	ModeFocus      Mode = "focus"
	ModeShortBreak Mode = "shortBreak"
	ModeLongBreak  Mode = "longBreak"
)

const (
	DefaultFocusDurationSeconds      = 25 * 60
	DefaultShortBreakDurationSeconds = 5 * 60
	DefaultLongBreakDurationSeconds  = 15 * 60
	DefaultSessionsBeforeLongBreak   = 4
)

type ContextKind string

const (
	ContextTask    ContextKind = "task"
	ContextEvent   ContextKind = "event"
	ContextProject ContextKind = "project"
	ContextCustom  ContextKind = "custom"
	ContextNone    ContextKind = "none"
)

type PomodoroSettings struct {
	FocusDuration           int `json:"focusDuration"`
	ShortBreakDuration      int `json:"shortBreakDuration"`
	LongBreakDuration       int `json:"longBreakDuration"`
	SessionsBeforeLongBreak int `json:"sessionsBeforeLongBreak"`
}

// SettingsPatch carries a partial settings update. Zero fields keep the
// current value.
type SettingsPatch struct {
	FocusDuration           int
	ShortBreakDuration      int
	LongBreakDuration       int
	SessionsBeforeLongBreak int
}

// SessionContext describes what a session is about. It is opaque data and is
// never checked against the task, event or project stores.
type SessionContext struct {
	Kind        ContextKind `json:"kind"`
	ID          string      `json:"id,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
}

type PomodoroState struct {
	Mode              Mode             `json:"mode"`
	TimeLeftSeconds   int              `json:"timeLeftSeconds"`
	IsRunning         bool             `json:"isRunning"`
	Suspended         bool             `json:"suspended,omitempty"`
	SessionCount      int              `json:"sessionCount"`
	Settings          PomodoroSettings `json:"settings"`
	Context           *SessionContext  `json:"context,omitempty"`
	RunStartTimestamp *time.Time       `json:"runStartTimestamp,omitempty"`
}

func DefaultPomodoroSettings() PomodoroSettings {
	return PomodoroSettings{
		FocusDuration:           DefaultFocusDurationSeconds,
		ShortBreakDuration:      DefaultShortBreakDurationSeconds,
		LongBreakDuration:       DefaultLongBreakDurationSeconds,
		SessionsBeforeLongBreak: DefaultSessionsBeforeLongBreak,
	}
}

// Valid reports whether every duration and the long break interval are positive.
func (s PomodoroSettings) Valid() bool {
	return s.FocusDuration > 0 &&
		s.ShortBreakDuration > 0 &&
		s.LongBreakDuration > 0 &&
		s.SessionsBeforeLongBreak > 0
}

func (s PomodoroSettings) DurationFor(mode Mode) int {
	switch mode {
	case ModeShortBreak:
		return s.ShortBreakDuration
	case ModeLongBreak:
		return s.LongBreakDuration
	default:
		return s.FocusDuration
	}
}

func (s PomodoroSettings) Merge(patch SettingsPatch) PomodoroSettings {
	if patch.FocusDuration > 0 {
		s.FocusDuration = patch.FocusDuration
	}
	if patch.ShortBreakDuration > 0 {
		s.ShortBreakDuration = patch.ShortBreakDuration
	}
	if patch.LongBreakDuration > 0 {
		s.LongBreakDuration = patch.LongBreakDuration
	}
	if patch.SessionsBeforeLongBreak > 0 {
		s.SessionsBeforeLongBreak = patch.SessionsBeforeLongBreak
	}
	return s
}

func IsValidMode(mode Mode) bool {
	return mode == ModeFocus || mode == ModeShortBreak || mode == ModeLongBreak
}

func DefaultPomodoroState(settings PomodoroSettings) PomodoroState {
	return PomodoroState{
		Mode:            ModeFocus,
		TimeLeftSeconds: settings.FocusDuration,
		Settings:        settings,
	}
}

// Clone returns a copy that shares no pointers with s.
func (s PomodoroState) Clone() PomodoroState {
	clone := s
	if s.Context != nil {
		ctx := *s.Context
		clone.Context = &ctx
	}
	if s.RunStartTimestamp != nil {
		ts := *s.RunStartTimestamp
		clone.RunStartTimestamp = &ts
	}
	return clone
}

func ModeLabel(mode Mode) string {
	switch mode {
	case ModeShortBreak:
		return "Short break"
	case ModeLongBreak:
		return "Long break"
	default:
		return "Focus"
	}
}
