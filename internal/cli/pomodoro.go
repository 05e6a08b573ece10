package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"focussync/internal/model"
	"focussync/internal/timer"
)

var errPhaseEnded = errors.New("the current phase has ended: run `focus pomodoro complete` first")

func newPomodoroCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pomodoro",
		Short: "Control the Pomodoro timer on its own",
	}

	cmd.AddCommand(
		newPomodoroStartCommand(opts),
		pomodoroAction(opts, "pause", "Pause the countdown", func(c *timer.Coordinator) timer.SynchronizedView {
			return c.PausePomodoro()
		}),
		pomodoroAction(opts, "reset", "Return to an idle focus phase", func(c *timer.Coordinator) timer.SynchronizedView {
			return c.ResetPomodoro()
		}),
		newPomodoroCompleteCommand(opts),
		newPomodoroSettingsCommand(opts),
	)
	return cmd
}

func pomodoroAction(opts *globalOptions, use, short string, action func(*timer.Coordinator) timer.SynchronizedView) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			printView(cmd.OutOrStdout(), action(s.coordinator))
			return nil
		}),
	}
}

func newPomodoroStartCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start or continue the current phase",
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			view := s.coordinator.StartPomodoro()
			printView(cmd.OutOrStdout(), view)
			if !view.Pomodoro.IsRunning && view.Pomodoro.TimeLeftSeconds == 0 {
				return errPhaseEnded
			}
			return nil
		}),
	}
}

func newPomodoroCompleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete",
		Short: "Move on from a phase that ended while focus was not running",
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			view, ok := s.coordinator.CompletePhase()
			if !ok {
				return errors.New("the current phase has not finished")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Next up: %s\n", model.ModeLabel(view.Pomodoro.Mode))
			printView(cmd.OutOrStdout(), view)
			return nil
		}),
	}
}

func newPomodoroSettingsCommand(opts *globalOptions) *cobra.Command {
	var (
		focus      int
		shortBreak int
		longBreak  int
		sessions   int
	)
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change durations (minutes) and the long break interval",
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			view := s.coordinator.View()
			if anyChanged(cmd, "focus", "short-break", "long-break", "sessions") {
				var err error
				view, err = s.coordinator.UpdatePomodoroSettings(model.SettingsPatch{
					FocusDuration:           focus * 60,
					ShortBreakDuration:      shortBreak * 60,
					LongBreakDuration:       longBreak * 60,
					SessionsBeforeLongBreak: sessions,
				})
				if err != nil {
					return err
				}
			}

			settings := view.Pomodoro.Settings
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Focus:       %s\n", timer.FormatDuration(settings.FocusDuration))
			fmt.Fprintf(out, "Short break: %s\n", timer.FormatDuration(settings.ShortBreakDuration))
			fmt.Fprintf(out, "Long break:  %s\n", timer.FormatDuration(settings.LongBreakDuration))
			fmt.Fprintf(out, "Long break every %d focus sessions\n", settings.SessionsBeforeLongBreak)
			return nil
		}),
	}
	cmd.Flags().IntVar(&focus, "focus", 0, "focus duration in minutes")
	cmd.Flags().IntVar(&shortBreak, "short-break", 0, "short break duration in minutes")
	cmd.Flags().IntVar(&longBreak, "long-break", 0, "long break duration in minutes")
	cmd.Flags().IntVar(&sessions, "sessions", 0, "focus sessions before a long break")
	return cmd
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}
