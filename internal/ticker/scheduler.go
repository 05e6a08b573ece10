// Package ticker drives periodic work from a single background goroutine.
package ticker

import (
	"sync"
	"time"
)

// Scheduler calls fn once per interval while started. Calls never overlap: a
// tick that comes due while fn is still running is merged into the next one by
// the underlying time.Ticker.
type Scheduler struct {
	interval time.Duration
	fn       func(now time.Time)

	mu     sync.Mutex
	stopCh chan struct{}
	done   chan struct{}
}

func New(interval time.Duration, fn func(now time.Time)) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{interval: interval, fn: fn}
}

// Start launches the loop. It returns false when the loop is already running.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		return false
	}

	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stopCh, s.done)
	return true
}

// Stop ends the loop and waits for an in-progress fn call to return. It must
// not be called from fn.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	stopCh, done := s.stopCh, s.done
	s.stopCh, s.done = nil, nil
	s.mu.Unlock()

	if stopCh == nil {
		return false
	}
	close(stopCh)
	<-done
	return true
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopCh != nil
}

func (s *Scheduler) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			select {
			case <-stopCh:
				return
			default:
			}
			s.fn(now)
		}
	}
}
