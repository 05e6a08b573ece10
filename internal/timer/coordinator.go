// Package timer composes the Pomodoro engine and the time-tracking session
// into one facade. A Coordinator is created once per signed-in session and
// closed on sign-out or exit.
package timer

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	apperrors "focussync/internal/errors"
	"focussync/internal/model"
	"focussync/internal/pomodoro"
	"focussync/internal/ticker"
	"focussync/internal/timetracking"
)

type EventType string

const (
	EventTick           EventType = "tick"
	EventPhaseCompleted EventType = "phase_completed"
	EventStateChanged   EventType = "state_changed"
)

type Event struct {
	Type       EventType
	At         time.Time
	View       SynchronizedView
	Completion *pomodoro.Completion
}

// StateSaver persists the engine state after every change. Implementations
// must not fail.
type StateSaver interface {
	Save(state model.PomodoroState)
}

type discardSaver struct{}

func (discardSaver) Save(model.PomodoroState) {}

type Options struct {
	Clock        func() time.Time
	TickInterval time.Duration
	Logger       *log.Logger
}

// Coordinator owns the engine and the local mirror of the open log.
//
// Engine operations run under mu in call order. Remote calls never hold mu;
// mutating ones are serialized by inflight and a second one is rejected with
// ErrBusy instead of queued.
type Coordinator struct {
	mu          sync.Mutex
	engine      *pomodoro.Engine
	activeLog   *model.TimeTrackingLog
	logKnown    bool
	subscribers []chan Event
	closed      bool

	inflight sync.Mutex

	schedMu   sync.Mutex
	scheduler *ticker.Scheduler

	saver  StateSaver
	client timetracking.Client
	now    func() time.Time
	logger *log.Logger
}

func New(state model.PomodoroState, saver StateSaver, client timetracking.Client, options Options) *Coordinator {
	if options.Clock == nil {
		options.Clock = time.Now
	}
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Logger == nil {
		options.Logger = log.Default()
	}
	if saver == nil {
		saver = discardSaver{}
	}

	c := &Coordinator{
		engine: pomodoro.New(state),
		saver:  saver,
		client: client,
		now:    options.Clock,
		logger: options.Logger,
	}
	c.scheduler = ticker.New(options.TickInterval, func(time.Time) {
		c.tick(c.now())
	})
	c.syncScheduler()
	return c
}

// Refresh reloads the open log from the backend.
func (c *Coordinator) Refresh(ctx context.Context) (SynchronizedView, error) {
	current, err := c.client.GetActive(ctx)
	if err != nil {
		return c.View(), &ActionError{Action: ActionRefresh, Err: err}
	}
	return c.commitLog(current), nil
}

// Subscribe returns a channel of coordinator events. Slow readers miss events
// rather than block the timers. The channel is closed by Close.
func (c *Coordinator) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(ch)
		return ch
	}
	c.subscribers = append(c.subscribers, ch)
	return ch
}

// Close stops the scheduler and closes all subscriptions. It is safe to call
// more than once.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subscribers := c.subscribers
	c.subscribers = nil
	c.mu.Unlock()

	for _, ch := range subscribers {
		close(ch)
	}

	c.schedMu.Lock()
	c.scheduler.Stop()
	c.schedMu.Unlock()
}

func (c *Coordinator) StartTimeTracking(ctx context.Context, params model.TimeTrackingStart) (SynchronizedView, error) {
	if err := c.checkCanStart(); err != nil {
		return c.View(), err
	}

	started, err := c.remote(ActionStartTracking, func() (*model.TimeTrackingLog, error) {
		return c.client.Start(ctx, params)
	})
	if err != nil {
		return c.View(), err
	}
	return c.commitLog(started), nil
}

func (c *Coordinator) StopTimeTracking(ctx context.Context) (SynchronizedView, error) {
	stopped, err := c.remote(ActionStopTracking, func() (*model.TimeTrackingLog, error) {
		return c.client.Stop(ctx)
	})
	if err != nil {
		return c.View(), err
	}
	return c.commitLog(stopped), nil
}

func (c *Coordinator) PauseTimeTracking(ctx context.Context) (SynchronizedView, error) {
	paused, err := c.remote(ActionPauseTracking, func() (*model.TimeTrackingLog, error) {
		return c.client.Pause(ctx)
	})
	if err != nil {
		return c.View(), err
	}
	return c.commitLog(paused), nil
}

func (c *Coordinator) ResumeTimeTracking(ctx context.Context) (SynchronizedView, error) {
	resumed, err := c.remote(ActionResumeTracking, func() (*model.TimeTrackingLog, error) {
		return c.client.Resume(ctx)
	})
	if err != nil {
		return c.View(), err
	}
	return c.commitLog(resumed), nil
}

func (c *Coordinator) CancelTimeTracking(ctx context.Context) (SynchronizedView, error) {
	_, err := c.remote(ActionCancelTracking, func() (*model.TimeTrackingLog, error) {
		return nil, c.client.Cancel(ctx)
	})
	if err != nil {
		return c.View(), err
	}
	return c.commitLog(nil), nil
}

func (c *Coordinator) StartPomodoro() SynchronizedView {
	return c.local(func(engine *pomodoro.Engine, now time.Time) bool {
		return engine.Start(now)
	})
}

func (c *Coordinator) PausePomodoro() SynchronizedView {
	return c.local(func(engine *pomodoro.Engine, _ time.Time) bool {
		return engine.Pause()
	})
}

func (c *Coordinator) ResetPomodoro() SynchronizedView {
	return c.local(func(engine *pomodoro.Engine, _ time.Time) bool {
		engine.Reset()
		return true
	})
}

func (c *Coordinator) SetContext(sessionCtx *model.SessionContext) SynchronizedView {
	return c.local(func(engine *pomodoro.Engine, _ time.Time) bool {
		engine.SetContext(sessionCtx)
		return true
	})
}

func (c *Coordinator) UpdatePomodoroSettings(patch model.SettingsPatch) (SynchronizedView, error) {
	var updateErr error
	view := c.local(func(engine *pomodoro.Engine, _ time.Time) bool {
		updateErr = engine.UpdateSettings(patch)
		return updateErr == nil
	})
	return view, updateErr
}

// CompletePhase acknowledges a phase that ran out while nothing was watching
// and moves the engine on to the next phase.
func (c *Coordinator) CompletePhase() (SynchronizedView, bool) {
	now := c.now()

	c.mu.Lock()
	completion, ok := c.engine.CompletePhase()
	if ok {
		c.saver.Save(c.engine.State())
	}
	view := c.viewLocked(now)
	if ok {
		c.emitLocked(Event{Type: EventPhaseCompleted, At: now, View: view, Completion: completion})
		c.emitLocked(Event{Type: EventStateChanged, At: now, View: view})
	}
	c.mu.Unlock()

	return view, ok
}

// StartSynchronizedSession sets the context, starts time tracking for it and
// then starts the Pomodoro when it is in focus mode. When tracking fails the
// previous context is restored and the engine is not started.
func (c *Coordinator) StartSynchronizedSession(ctx context.Context, sessionCtx model.SessionContext) (SynchronizedView, error) {
	if err := c.checkCanStart(); err != nil {
		return c.View(), err
	}

	c.mu.Lock()
	previous := c.engine.State().Context
	c.engine.SetContext(&sessionCtx)
	c.saver.Save(c.engine.State())
	c.mu.Unlock()

	started, err := c.remote(ActionStartTracking, func() (*model.TimeTrackingLog, error) {
		return c.client.Start(ctx, TrackingParams(sessionCtx))
	})

	now := c.now()
	c.mu.Lock()
	if err != nil {
		c.engine.SetContext(previous)
	} else {
		c.activeLog = copyLog(started)
		c.logKnown = true
		if c.engine.Mode() == model.ModeFocus && !c.engine.Start(now) && c.engine.TimeLeft() == 0 {
			c.logger.Printf("warning: focus phase already ended, pomodoro not started until it is completed")
		}
	}
	c.saver.Save(c.engine.State())
	view := c.viewLocked(now)
	c.emitLocked(Event{Type: EventStateChanged, At: now, View: view})
	c.mu.Unlock()

	c.syncScheduler()
	return view, err
}

// StopAllTimers stops time tracking and always resets the Pomodoro. The stop
// is sent when a log is open or when the backend was never reached, in which
// case "nothing running" is not an error. A failed stop is returned after the
// reset.
func (c *Coordinator) StopAllTimers(ctx context.Context) (SynchronizedView, error) {
	open, known := c.logState()

	var stopErr error
	if open || !known {
		stopped, err := c.remote(ActionStopTracking, func() (*model.TimeTrackingLog, error) {
			return c.client.Stop(ctx)
		})
		switch {
		case err == nil:
			c.commitLog(stopped)
		case !known && apperrors.IsNotFound(err):
			c.commitLog(nil)
		default:
			c.logger.Printf("warning: stop time tracking failed, resetting pomodoro anyway: %v", err)
			stopErr = err
		}
	}

	view := c.ResetPomodoro()
	return view, stopErr
}

// PauseAllTimers pauses whichever timers are running. Each is attempted even
// if the other fails.
func (c *Coordinator) PauseAllTimers(ctx context.Context) (SynchronizedView, error) {
	var errs []error

	c.mu.Lock()
	logActive := c.activeLog.IsActive()
	c.mu.Unlock()

	view := c.local(func(engine *pomodoro.Engine, _ time.Time) bool {
		return engine.Suspend()
	})
	if logActive {
		paused, err := c.remote(ActionPauseTracking, func() (*model.TimeTrackingLog, error) {
			return c.client.Pause(ctx)
		})
		if err != nil {
			errs = append(errs, err)
		} else {
			view = c.commitLog(paused)
		}
	}
	return view, joinErrors(errs)
}

// ResumeAllTimers resumes a paused log and restarts the Pomodoro only when
// PauseAllTimers stopped it and nothing has touched it since.
func (c *Coordinator) ResumeAllTimers(ctx context.Context) (SynchronizedView, error) {
	var errs []error

	c.mu.Lock()
	logPaused := c.activeLog.IsPaused()
	c.mu.Unlock()

	view := c.local(func(engine *pomodoro.Engine, now time.Time) bool {
		return engine.ResumeSuspended(now)
	})
	if logPaused {
		resumed, err := c.remote(ActionResumeTracking, func() (*model.TimeTrackingLog, error) {
			return c.client.Resume(ctx)
		})
		if err != nil {
			errs = append(errs, err)
		} else {
			view = c.commitLog(resumed)
		}
	}
	return view, joinErrors(errs)
}

func (c *Coordinator) Stats(ctx context.Context) (*model.TimeTrackingStats, error) {
	stats, err := c.client.GetStats(ctx)
	if err != nil {
		return nil, &ActionError{Action: ActionStats, Err: err}
	}
	return stats, nil
}

func (c *Coordinator) View() SynchronizedView {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked(now)
}

func (c *Coordinator) CurrentContextLabel() string {
	return c.View().CurrentContextLabel
}

func (c *Coordinator) StatusColor() Color {
	return c.View().StatusColor
}

func (c *Coordinator) DisplayTime() string {
	return c.View().DisplayTimeText
}

func (c *Coordinator) HasActiveTimer() bool {
	return c.View().HasActiveTimer
}

func (c *Coordinator) PomodoroState() model.PomodoroState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.State()
}

// ActiveLog returns a copy of the last known open log, or nil.
func (c *Coordinator) ActiveLog() *model.TimeTrackingLog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyLog(c.activeLog)
}

// TrackingParams maps a session context to time-tracking start parameters.
func TrackingParams(sessionCtx model.SessionContext) model.TimeTrackingStart {
	params := model.TimeTrackingStart{SessionType: model.SessionTypeWork}

	description := strings.TrimSpace(sessionCtx.Title)
	if description == "" {
		description = strings.TrimSpace(sessionCtx.Description)
	}
	if description != "" {
		params.Description = &description
	}

	id := strings.TrimSpace(sessionCtx.ID)
	if id == "" {
		return params
	}
	switch sessionCtx.Kind {
	case model.ContextTask:
		params.TaskID = &id
	case model.ContextEvent:
		params.SessionType = model.SessionTypeMeeting
		params.EventID = &id
	case model.ContextProject:
		params.ProjectID = &id
	}
	return params
}

func (c *Coordinator) tick(now time.Time) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	var completion *pomodoro.Completion
	if due := c.engine.DueSeconds(now); due > 0 {
		completion = c.engine.Tick(due)
		c.saver.Save(c.engine.State())
	}
	view := c.viewLocked(now)
	c.emitLocked(Event{Type: EventTick, At: now, View: view})
	if completion != nil {
		c.emitLocked(Event{Type: EventPhaseCompleted, At: now, View: view, Completion: completion})
	}
	idle := !c.needsTicksLocked()
	c.mu.Unlock()

	// The scheduler cannot be stopped from its own callback.
	if idle {
		go c.syncScheduler()
	}
}

func (c *Coordinator) local(apply func(engine *pomodoro.Engine, now time.Time) bool) SynchronizedView {
	now := c.now()

	c.mu.Lock()
	changed := apply(c.engine, now)
	if changed {
		c.saver.Save(c.engine.State())
	}
	view := c.viewLocked(now)
	if changed {
		c.emitLocked(Event{Type: EventStateChanged, At: now, View: view})
	}
	c.mu.Unlock()

	if changed {
		c.syncScheduler()
	}
	return view
}

func (c *Coordinator) remote(action Action, call func() (*model.TimeTrackingLog, error)) (*model.TimeTrackingLog, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, &ActionError{Action: action, Err: ErrClosed}
	}

	if !c.inflight.TryLock() {
		return nil, &ActionError{Action: action, Err: ErrBusy}
	}
	defer c.inflight.Unlock()

	result, err := call()
	if err != nil {
		return nil, &ActionError{Action: action, Err: err}
	}
	return result, nil
}

// commitLog replaces the mirror with current, dropping it when the log is no
// longer open.
func (c *Coordinator) commitLog(current *model.TimeTrackingLog) SynchronizedView {
	now := c.now()

	c.mu.Lock()
	c.logKnown = true
	if current.IsOpen() {
		c.activeLog = copyLog(current)
	} else {
		c.activeLog = nil
	}
	view := c.viewLocked(now)
	c.emitLocked(Event{Type: EventStateChanged, At: now, View: view})
	c.mu.Unlock()

	c.syncScheduler()
	return view
}

func (c *Coordinator) checkCanStart() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeLog.IsOpen() {
		return &ActionError{
			Action: ActionStartTracking,
			Err: apperrors.Conflict("time_log_active", "a time tracking session is already running", map[string]interface{}{
				"log": copyLog(c.activeLog),
			}),
		}
	}
	return nil
}

// logState reports whether the mirror holds an open log and whether the
// mirror has ever been filled from the backend.
func (c *Coordinator) logState() (open, known bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeLog.IsOpen(), c.logKnown
}

func (c *Coordinator) viewLocked(now time.Time) SynchronizedView {
	return BuildView(c.engine.State(), copyLog(c.activeLog), now)
}

func (c *Coordinator) needsTicksLocked() bool {
	return !c.closed && (c.engine.Running() || c.activeLog.IsActive())
}

// syncScheduler runs the scheduler exactly while a timer is counting.
func (c *Coordinator) syncScheduler() {
	c.schedMu.Lock()
	defer c.schedMu.Unlock()

	c.mu.Lock()
	needed := c.needsTicksLocked()
	c.mu.Unlock()

	if needed {
		c.scheduler.Start()
	} else {
		c.scheduler.Stop()
	}
}

func (c *Coordinator) emitLocked(event Event) {
	for _, ch := range c.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func copyLog(current *model.TimeTrackingLog) *model.TimeTrackingLog {
	if current == nil {
		return nil
	}
	copied := *current
	return &copied
}
