package cli

import (
	"fmt"
	"io"
	"time"

	"focussync/internal/model"
	"focussync/internal/timer"
)

var timeNow = time.Now

func printView(w io.Writer, view timer.SynchronizedView) {
	fmt.Fprintf(w, "%s  %s\n", view.DisplayTimeText, view.CurrentContextLabel)

	state := view.Pomodoro
	status := "idle"
	if state.IsRunning {
		status = "running"
	}
	fmt.Fprintf(w, "Pomodoro: %s %s %s, %d sessions completed\n",
		model.ModeLabel(state.Mode), timer.FormatDuration(state.TimeLeftSeconds), status, state.SessionCount)

	if view.ActiveLog == nil {
		fmt.Fprintln(w, "Time tracking: off")
		return
	}
	fmt.Fprintf(w, "Time tracking: %s %s since %s\n",
		view.ActiveLog.Status, view.ActiveLog.SessionType, view.ActiveLog.StartTime.Local().Format("15:04"))
}

func printStats(w io.Writer, stats *model.TimeTrackingStats) {
	fmt.Fprintf(w, "Today:     %s\n", timer.FormatDuration(int(stats.TodaySeconds)))
	fmt.Fprintf(w, "This week: %s\n", timer.FormatDuration(int(stats.WeekSeconds)))
	fmt.Fprintf(w, "Total:     %s over %d sessions\n", timer.FormatDuration(int(stats.TotalSeconds)), stats.CompletedSessions)
	for _, sessionType := range []model.SessionType{
		model.SessionTypeWork,
		model.SessionTypeMeeting,
		model.SessionTypePlanning,
		model.SessionTypeBreak,
	} {
		if seconds, ok := stats.BySessionType[sessionType]; ok {
			fmt.Fprintf(w, "  %-9s %s\n", sessionType, timer.FormatDuration(int(seconds)))
		}
	}
}

func printHistory(w io.Writer, logs []model.TimeTrackingLog) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No time tracking sessions yet")
		return
	}
	now := timeNow()
	for _, entry := range logs {
		description := entry.DescriptionText()
		if description == "" {
			description = "-"
		}
		fmt.Fprintf(w, "%s  %-9s %-8s %8s  %s\n",
			entry.StartTime.Local().Format("2006-01-02 15:04"),
			entry.Status,
			entry.SessionType,
			timer.FormatDuration(entry.ElapsedSeconds(now)),
			description)
	}
}
