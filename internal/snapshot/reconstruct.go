package snapshot

import (
	"time"

	"focussync/internal/model"
)

// Reconstruct derives the current PomodoroState from a saved snapshot. It has
// no side effects.
//
// A running snapshot loses the whole seconds elapsed since its anchor, floored
// at zero. The completion algorithm is not replayed: a phase that finished
// while unobserved comes back idle, in its original mode, with no time left,
// and expired reports it so the caller can prompt the user.
func Reconstruct(saved *model.PomodoroState, now time.Time, defaults model.PomodoroSettings) (model.PomodoroState, bool) {
	if !defaults.Valid() {
		defaults = model.DefaultPomodoroSettings()
	}
	if !usable(saved) {
		return model.DefaultPomodoroState(defaults), false
	}

	state := saved.Clone()
	if limit := state.Settings.DurationFor(state.Mode); state.TimeLeftSeconds > limit {
		state.TimeLeftSeconds = limit
	}

	if !state.IsRunning {
		state.RunStartTimestamp = nil
		return state, false
	}
	if state.RunStartTimestamp == nil {
		state.IsRunning = false
		return state, false
	}

	elapsed := int(now.Sub(*state.RunStartTimestamp) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}

	remaining := state.TimeLeftSeconds - elapsed
	if remaining <= 0 {
		state.TimeLeftSeconds = 0
		state.IsRunning = false
		state.RunStartTimestamp = nil
		return state, true
	}

	anchor := state.RunStartTimestamp.Add(time.Duration(elapsed) * time.Second)
	state.TimeLeftSeconds = remaining
	state.RunStartTimestamp = &anchor
	return state, false
}

func usable(state *model.PomodoroState) bool {
	return state != nil &&
		state.Settings.Valid() &&
		model.IsValidMode(state.Mode) &&
		state.TimeLeftSeconds >= 0 &&
		state.SessionCount >= 0
}
