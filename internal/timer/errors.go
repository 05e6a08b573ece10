package timer

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a time-tracking request is made while another
	// one is still in flight.
	ErrBusy = errors.New("another time tracking request is in progress")
	// ErrClosed is returned by remote operations after Close.
	ErrClosed = errors.New("timer coordinator is closed")
)

type Action string

const (
	ActionRefresh        Action = "refresh"
	ActionStartTracking  Action = "start_time_tracking"
	ActionStopTracking   Action = "stop_time_tracking"
	ActionPauseTracking  Action = "pause_time_tracking"
	ActionResumeTracking Action = "resume_time_tracking"
	ActionCancelTracking Action = "cancel_time_tracking"
	ActionStats          Action = "time_tracking_stats"
)

// ActionError names the sub-action that failed. Composite operations join one
// ActionError per failed sub-action.
type ActionError struct {
	Action Action
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// FailedActions lists every action that failed in err, in order.
func FailedActions(err error) []Action {
	var actions []Action
	collectActions(err, &actions)
	return actions
}

func collectActions(err error, actions *[]Action) {
	switch typed := err.(type) {
	case nil:
		return
	case *ActionError:
		*actions = append(*actions, typed.Action)
	case interface{ Unwrap() []error }:
		for _, inner := range typed.Unwrap() {
			collectActions(inner, actions)
		}
	case interface{ Unwrap() error }:
		collectActions(typed.Unwrap(), actions)
	}
}

func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Join(errs...)
	}
}
