// Package pomodoro implements the focus/short-break/long-break cycle as a
// pure state machine. It has no clock of its own and performs no I/O; callers
// pass the current time where an operation needs it.
package pomodoro

import (
	"errors"
	"time"

	"focussync/internal/model"
)

// ErrInvalidSettings is returned when a settings update carries a negative value.
var ErrInvalidSettings = errors.New("pomodoro durations and session count must be positive")

// Completion describes a phase boundary reached by Tick or CompletePhase.
type Completion struct {
	Ended        model.Mode
	Next         model.Mode
	SessionCount int
}

// Engine owns PomodoroState transitions. It is not safe for concurrent use.
type Engine struct {
	state model.PomodoroState
}

// New creates an engine from state, repairing any broken invariant.
func New(state model.PomodoroState) *Engine {
	engine := &Engine{state: state.Clone()}
	engine.normalize()
	return engine
}

// State returns a copy of the current state.
func (e *Engine) State() model.PomodoroState {
	return e.state.Clone()
}

func (e *Engine) Mode() model.Mode {
	return e.state.Mode
}

func (e *Engine) Running() bool {
	return e.state.IsRunning
}

func (e *Engine) TimeLeft() int {
	return e.state.TimeLeftSeconds
}

// Start begins counting down from the current time left. It returns false and
// changes nothing when the engine is already running or the phase has no time
// left; an expired phase moves on only through CompletePhase.
func (e *Engine) Start(now time.Time) bool {
	if e.state.IsRunning || e.state.TimeLeftSeconds <= 0 {
		return false
	}
	anchor := now
	e.state.IsRunning = true
	e.state.Suspended = false
	e.state.RunStartTimestamp = &anchor
	return true
}

// Pause freezes the countdown. It returns false when the engine is idle.
func (e *Engine) Pause() bool {
	if !e.state.IsRunning {
		return false
	}
	e.state.IsRunning = false
	e.state.RunStartTimestamp = nil
	return true
}

// Suspend pauses the countdown and marks it for ResumeSuspended.
func (e *Engine) Suspend() bool {
	if !e.Pause() {
		return false
	}
	e.state.Suspended = true
	return true
}

// ResumeSuspended restarts a countdown stopped by Suspend. Any other
// transition since then clears the mark.
func (e *Engine) ResumeSuspended(now time.Time) bool {
	if !e.state.Suspended {
		return false
	}
	return e.Start(now)
}

func (e *Engine) Suspended() bool {
	return e.state.Suspended
}

// Reset returns to an idle focus phase. The session count is kept.
func (e *Engine) Reset() {
	e.state.IsRunning = false
	e.state.Suspended = false
	e.state.Mode = model.ModeFocus
	e.state.TimeLeftSeconds = e.state.Settings.FocusDuration
	e.state.RunStartTimestamp = nil
}

// DueSeconds returns the whole seconds elapsed since the countdown anchor.
func (e *Engine) DueSeconds(now time.Time) int {
	if !e.state.IsRunning || e.state.RunStartTimestamp == nil {
		return 0
	}
	elapsed := now.Sub(*e.state.RunStartTimestamp)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / time.Second)
}

// Tick subtracts deltaSeconds from the countdown. Reaching zero completes the
// phase exactly once; any delta beyond zero is dropped.
func (e *Engine) Tick(deltaSeconds int) *Completion {
	if !e.state.IsRunning || deltaSeconds <= 0 {
		return nil
	}

	applied := deltaSeconds
	if applied > e.state.TimeLeftSeconds {
		applied = e.state.TimeLeftSeconds
	}
	e.state.TimeLeftSeconds -= applied
	if e.state.RunStartTimestamp != nil {
		anchor := e.state.RunStartTimestamp.Add(time.Duration(applied) * time.Second)
		e.state.RunStartTimestamp = &anchor
	}

	if e.state.TimeLeftSeconds > 0 {
		return nil
	}
	return e.complete()
}

// CompletePhase runs the completion algorithm for a phase that ran out while
// nobody was watching. It only applies to an idle engine with no time left.
func (e *Engine) CompletePhase() (*Completion, bool) {
	if e.state.IsRunning || e.state.TimeLeftSeconds > 0 {
		return nil, false
	}
	return e.complete(), true
}

// UpdateSettings merges patch into the settings. An idle focus phase picks up
// the new focus duration right away.
func (e *Engine) UpdateSettings(patch model.SettingsPatch) error {
	if patch.FocusDuration < 0 || patch.ShortBreakDuration < 0 ||
		patch.LongBreakDuration < 0 || patch.SessionsBeforeLongBreak < 0 {
		return ErrInvalidSettings
	}

	e.state.Settings = e.state.Settings.Merge(patch)
	if !e.state.IsRunning && e.state.Mode == model.ModeFocus {
		e.state.TimeLeftSeconds = e.state.Settings.FocusDuration
	}
	if limit := e.state.Settings.DurationFor(e.state.Mode); e.state.TimeLeftSeconds > limit {
		e.state.TimeLeftSeconds = limit
	}
	return nil
}

// SetContext replaces the session context. A nil context clears it.
func (e *Engine) SetContext(ctx *model.SessionContext) {
	if ctx == nil {
		e.state.Context = nil
		return
	}
	copied := *ctx
	e.state.Context = &copied
}

func (e *Engine) complete() *Completion {
	ended := e.state.Mode
	if ended == model.ModeFocus {
		e.state.SessionCount++
		if e.state.SessionCount%e.state.Settings.SessionsBeforeLongBreak == 0 {
			e.state.Mode = model.ModeLongBreak
		} else {
			e.state.Mode = model.ModeShortBreak
		}
	} else {
		e.state.Mode = model.ModeFocus
	}

	e.state.TimeLeftSeconds = e.state.Settings.DurationFor(e.state.Mode)
	e.state.IsRunning = false
	e.state.Suspended = false
	e.state.RunStartTimestamp = nil

	return &Completion{
		Ended:        ended,
		Next:         e.state.Mode,
		SessionCount: e.state.SessionCount,
	}
}

func (e *Engine) normalize() {
	if !e.state.Settings.Valid() {
		e.state.Settings = model.DefaultPomodoroSettings()
	}
	if !model.IsValidMode(e.state.Mode) {
		e.state.Mode = model.ModeFocus
	}
	if e.state.SessionCount < 0 {
		e.state.SessionCount = 0
	}

	limit := e.state.Settings.DurationFor(e.state.Mode)
	if e.state.TimeLeftSeconds < 0 {
		e.state.TimeLeftSeconds = 0
	}
	if e.state.TimeLeftSeconds > limit {
		e.state.TimeLeftSeconds = limit
	}

	if e.state.IsRunning && e.state.RunStartTimestamp == nil {
		e.state.IsRunning = false
	}
	if !e.state.IsRunning {
		e.state.RunStartTimestamp = nil
	}
	if e.state.IsRunning || e.state.TimeLeftSeconds == 0 {
		e.state.Suspended = false
	}
}
