package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"focussync/internal/model"
	"focussync/internal/timer"
)

type startFlags struct {
	task    string
	event   string
	project string
	custom  bool
}

// sessionContext builds the context for `focus start`. At most one
// association may be given.
func (f startFlags) sessionContext(args []string) (model.SessionContext, error) {
	sessionCtx := model.SessionContext{
		Kind:  model.ContextCustom,
		Title: strings.TrimSpace(strings.Join(args, " ")),
	}

	associations := 0
	for _, candidate := range []struct {
		kind model.ContextKind
		id   string
	}{
		{model.ContextTask, f.task},
		{model.ContextEvent, f.event},
		{model.ContextProject, f.project},
	} {
		if candidate.id == "" {
			continue
		}
		associations++
		sessionCtx.Kind = candidate.kind
		sessionCtx.ID = candidate.id
	}

	switch {
	case associations > 1:
		return sessionCtx, errors.New("use only one of --task, --event or --project")
	case associations == 1 && f.custom:
		return sessionCtx, errors.New("--custom cannot be combined with --task, --event or --project")
	case sessionCtx.Title == "" && sessionCtx.ID == "":
		return sessionCtx, errors.New("a title is required")
	case sessionCtx.Title == "":
		sessionCtx.Title = fmt.Sprintf("%s %s", sessionCtx.Kind, sessionCtx.ID)
	}
	return sessionCtx, nil
}

func newStartCommand(opts *globalOptions) *cobra.Command {
	flags := &startFlags{}
	cmd := &cobra.Command{
		Use:   "start [title]",
		Short: "Start a synchronized focus session",
		Long: `Start time tracking for the given context and, when the Pomodoro is in focus
mode, start the focus countdown as well.`,
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			sessionCtx, err := flags.sessionContext(args)
			if err != nil {
				return err
			}
			view, err := s.coordinator.StartSynchronizedSession(cmd.Context(), sessionCtx)
			printView(cmd.OutOrStdout(), view)
			return err
		}),
	}
	cmd.Flags().StringVar(&flags.task, "task", "", "task id to associate")
	cmd.Flags().StringVar(&flags.event, "event", "", "calendar event id to associate")
	cmd.Flags().StringVar(&flags.project, "project", "", "project id to associate")
	cmd.Flags().BoolVar(&flags.custom, "custom", false, "free text session without an association")
	return cmd
}

func newTrackCommand(opts *globalOptions) *cobra.Command {
	var sessionType string
	cmd := &cobra.Command{
		Use:   "track [description]",
		Short: "Start time tracking without the Pomodoro",
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			params := model.TimeTrackingStart{SessionType: model.SessionType(sessionType)}
			if description := strings.TrimSpace(strings.Join(args, " ")); description != "" {
				params.Description = &description
			}
			view, err := s.coordinator.StartTimeTracking(cmd.Context(), params)
			printView(cmd.OutOrStdout(), view)
			return err
		}),
	}
	cmd.Flags().StringVar(&sessionType, "type", string(model.SessionTypeWork), "session type: work, break, meeting or planning")
	return cmd
}

func newStopCommand(opts *globalOptions) *cobra.Command {
	var trackingOnly bool
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop time tracking and reset the Pomodoro",
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			var (
				view timer.SynchronizedView
				err  error
			)
			if trackingOnly {
				view, err = s.coordinator.StopTimeTracking(cmd.Context())
			} else {
				view, err = s.coordinator.StopAllTimers(cmd.Context())
			}
			printView(cmd.OutOrStdout(), view)
			return err
		}),
	}
	cmd.Flags().BoolVar(&trackingOnly, "tracking-only", false, "leave the Pomodoro untouched")
	return cmd
}

func newPauseCommand(opts *globalOptions) *cobra.Command {
	var trackingOnly bool
	cmd := &cobra.Command{
		Use:   "pause",
		Short: "Pause every running timer",
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			var (
				view timer.SynchronizedView
				err  error
			)
			if trackingOnly {
				view, err = s.coordinator.PauseTimeTracking(cmd.Context())
			} else {
				view, err = s.coordinator.PauseAllTimers(cmd.Context())
			}
			printView(cmd.OutOrStdout(), view)
			return err
		}),
	}
	cmd.Flags().BoolVar(&trackingOnly, "tracking-only", false, "leave the Pomodoro untouched")
	return cmd
}

func newResumeCommand(opts *globalOptions) *cobra.Command {
	var trackingOnly bool
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume paused timers",
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			var (
				view timer.SynchronizedView
				err  error
			)
			if trackingOnly {
				view, err = s.coordinator.ResumeTimeTracking(cmd.Context())
			} else {
				view, err = s.coordinator.ResumeAllTimers(cmd.Context())
			}
			printView(cmd.OutOrStdout(), view)
			return err
		}),
	}
	cmd.Flags().BoolVar(&trackingOnly, "tracking-only", false, "leave the Pomodoro untouched")
	return cmd
}

func newCancelCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Discard the time tracking session without recording it",
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			view, err := s.coordinator.CancelTimeTracking(cmd.Context())
			printView(cmd.OutOrStdout(), view)
			return err
		}),
	}
}

func newStatusCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show both timers",
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			printView(cmd.OutOrStdout(), s.coordinator.View())
			return nil
		}),
	}
}

func newStatsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show tracked time totals",
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			stats, err := s.coordinator.Stats(cmd.Context())
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		}),
	}
}

func newHistoryCommand(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent time tracking sessions",
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			logs, err := s.history.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), logs)
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of sessions to show")
	return cmd
}
