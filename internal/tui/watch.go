// Package tui renders a live status view of both timers.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"focussync/internal/model"
	"focussync/internal/timer"
)

var statusColors = map[timer.Color]lipgloss.Color{
	timer.ColorPurple: lipgloss.Color("135"),
	timer.ColorBlue:   lipgloss.Color("39"),
	timer.ColorYellow: lipgloss.Color("220"),
	timer.ColorRed:    lipgloss.Color("196"),
	timer.ColorGreen:  lipgloss.Color("42"),
	timer.ColorGray:   lipgloss.Color("245"),
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
)

type Model struct {
	ctx         context.Context
	coordinator *timer.Coordinator
	events      <-chan timer.Event
	view        timer.SynchronizedView
	keys        keyMap
	help        help.Model
	notice      string
	err         error
	busy        bool
}

func New(ctx context.Context, coordinator *timer.Coordinator) Model {
	return Model{
		ctx:         ctx,
		coordinator: coordinator,
		events:      coordinator.Subscribe(16),
		view:        coordinator.View(),
		keys:        defaultKeyMap(),
		help:        help.New(),
	}
}

// Run shows the view until the user quits.
func Run(ctx context.Context, coordinator *timer.Coordinator) error {
	_, err := tea.NewProgram(New(ctx, coordinator)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(refreshCmd(), waitForEvent(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case refreshMsg:
		m.view = m.coordinator.View()
		return m, refreshCmd()

	case eventMsg:
		m.view = msg.View
		if msg.Type == timer.EventPhaseCompleted && msg.Completion != nil {
			m.notice = fmt.Sprintf("%s finished. Next: %s",
				model.ModeLabel(msg.Completion.Ended), model.ModeLabel(msg.Completion.Next))
		}
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		return m, tea.Quit

	case actionDoneMsg:
		m.busy = false
		m.view = msg.view
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Start):
		m.view = m.coordinator.StartPomodoro()
	case key.Matches(msg, m.keys.Pause):
		m.view = m.coordinator.PausePomodoro()
	case key.Matches(msg, m.keys.Reset):
		m.view = m.coordinator.ResetPomodoro()
	case key.Matches(msg, m.keys.Complete):
		view, ok := m.coordinator.CompletePhase()
		m.view = view
		if !ok {
			m.notice = "The current phase has not finished yet"
		}
	case key.Matches(msg, m.keys.PauseAll):
		return m.startRemote(m.coordinator.PauseAllTimers)
	case key.Matches(msg, m.keys.ResumeAll):
		return m.startRemote(m.coordinator.ResumeAllTimers)
	case key.Matches(msg, m.keys.StopAll):
		return m.startRemote(m.coordinator.StopAllTimers)
	}
	return m, nil
}

func (m Model) startRemote(action func(context.Context) (timer.SynchronizedView, error)) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.err = nil
	m.notice = ""
	return m, remoteCmd(m.ctx, action)
}

func (m Model) View() string {
	view := m.view
	color, ok := statusColors[view.StatusColor]
	if !ok {
		color = statusColors[timer.ColorGray]
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("focussync"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(color).Render(view.DisplayTimeText))
	b.WriteString("  ")
	b.WriteString(lipgloss.NewStyle().Foreground(color).Render(view.CurrentContextLabel))
	b.WriteString("\n\n")
	b.WriteString(detailStyle.Render(pomodoroLine(view.Pomodoro)))
	b.WriteString("\n")
	b.WriteString(detailStyle.Render(trackingLine(view)))

	if m.busy {
		b.WriteString("\n\n")
		b.WriteString(detailStyle.Render("Waiting for the time tracking server..."))
	}
	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(noticeStyle.Render(m.notice))
	}
	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	}

	return boxStyle.BorderForeground(color).Render(b.String()) + "\n" + m.help.View(m.keys) + "\n"
}

func pomodoroLine(state model.PomodoroState) string {
	status := "idle"
	if state.IsRunning {
		status = "running"
	} else if state.TimeLeftSeconds == 0 {
		status = "finished, press n to continue"
	}
	return fmt.Sprintf("Pomodoro: %s %s (%s) · sessions %d",
		model.ModeLabel(state.Mode), timer.FormatDuration(state.TimeLeftSeconds), status, state.SessionCount)
}

func trackingLine(view timer.SynchronizedView) string {
	if view.ActiveLog == nil {
		return "Time tracking: off"
	}
	return fmt.Sprintf("Time tracking: %s (%s)", view.ActiveLog.Status, view.ActiveLog.SessionType)
}
