package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"focussync/internal/timer"
)

type (
	// refreshMsg re-renders the elapsed time between coordinator events.
	refreshMsg time.Time

	eventMsg timer.Event

	eventsClosedMsg struct{}

	// actionDoneMsg carries the result of a remote action.
	actionDoneMsg struct {
		view timer.SynchronizedView
		err  error
	}
)

func refreshCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func waitForEvent(events <-chan timer.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(event)
	}
}

func remoteCmd(ctx context.Context, action func(context.Context) (timer.SynchronizedView, error)) tea.Cmd {
	return func() tea.Msg {
		view, err := action(ctx)
		return actionDoneMsg{view: view, err: err}
	}
}
