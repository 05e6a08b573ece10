package timer

import (
	"fmt"
	"time"

	"focussync/internal/model"
)

type Color string

const (
	ColorPurple Color = "purple"
	ColorBlue   Color = "blue"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorGray   Color = "gray"
)

const (
	labelIdle     = "No active timer"
	labelTracking = "Time tracking"
)

// SynchronizedView is the combined status of both timers at one instant. It is
// derived on demand and never stored.
type SynchronizedView struct {
	HasActiveTimer      bool
	IsSynchronized      bool
	CurrentContextLabel string
	StatusColor         Color
	DisplaySeconds      int
	DisplayTimeText     string
	Pomodoro            model.PomodoroState
	ActiveLog           *model.TimeTrackingLog
}

// BuildView derives the view from the engine state and the last known log.
//
// Precedence, highest first: synchronized session, active log, running
// Pomodoro, paused log, idle.
func BuildView(state model.PomodoroState, log *model.TimeTrackingLog, now time.Time) SynchronizedView {
	if !log.IsOpen() {
		log = nil
	}

	view := SynchronizedView{
		HasActiveTimer: log != nil || state.IsRunning,
		IsSynchronized: log.IsActive() && state.IsRunning && state.Mode == model.ModeFocus,
		Pomodoro:       state,
		ActiveLog:      log,
	}

	switch {
	case view.IsSynchronized:
		view.CurrentContextLabel = "Synchronized: " + sessionTitle(state, log)
		view.StatusColor = ColorPurple
		view.DisplaySeconds = log.ElapsedSeconds(now)
	case log.IsActive():
		view.CurrentContextLabel = logLabel(log)
		view.StatusColor = ColorBlue
		view.DisplaySeconds = log.ElapsedSeconds(now)
	case state.IsRunning:
		view.CurrentContextLabel = pomodoroLabel(state)
		view.StatusColor = ColorGreen
		if state.Mode == model.ModeFocus {
			view.StatusColor = ColorRed
		}
		view.DisplaySeconds = state.TimeLeftSeconds
	case log.IsPaused():
		view.CurrentContextLabel = logLabel(log) + " (paused)"
		view.StatusColor = ColorYellow
		view.DisplaySeconds = log.ElapsedSeconds(now)
	default:
		view.CurrentContextLabel = labelIdle
		view.StatusColor = ColorGray
	}

	view.DisplayTimeText = FormatDuration(view.DisplaySeconds)
	return view
}

// FormatDuration renders seconds as MM:SS, or H:MM:SS from one hour up.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

func sessionTitle(state model.PomodoroState, log *model.TimeTrackingLog) string {
	if state.Context != nil && state.Context.Title != "" {
		return state.Context.Title
	}
	if text := log.DescriptionText(); text != "" {
		return text
	}
	return model.ModeLabel(model.ModeFocus)
}

func logLabel(log *model.TimeTrackingLog) string {
	if text := log.DescriptionText(); text != "" {
		return text
	}
	return labelTracking
}

func pomodoroLabel(state model.PomodoroState) string {
	if state.Mode == model.ModeFocus && state.Context != nil && state.Context.Title != "" {
		return "Focus: " + state.Context.Title
	}
	return model.ModeLabel(state.Mode)
}
