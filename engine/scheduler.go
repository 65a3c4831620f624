package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Updatable is advanced once per tick by a Scheduler
type Updatable interface {
	Update(dt time.Duration)
}

// UpdateFunc adapts a function to Updatable
type UpdateFunc func(dt time.Duration)

func (f UpdateFunc) Update(dt time.Duration) { f(dt) }

// Scheduler owns the explicit per-frame update list
// Items are updated in registration order on a single goroutine
type Scheduler struct {
	items    []Updatable
	interval time.Duration
	clock    *PausableClock
	last     time.Duration // Clock reading at the previous Advance

	// Work posted from other goroutines, drained at the start of each Step
	postMu sync.Mutex
	posted []func()

	tickCount atomic.Uint64
}

// NewScheduler creates a scheduler ticking at interval on the given clock
// A nil clock uses system time
func NewScheduler(interval time.Duration, clock *PausableClock) *Scheduler {
	if clock == nil {
		clock = NewPausableClock()
	}
	return &Scheduler{
		interval: interval,
		clock:    clock,
		last:     clock.Elapsed(),
	}
}

// Add registers u at the end of the update list, must be called before Run
func (s *Scheduler) Add(u Updatable) {
	s.items = append(s.items, u)
}

// Post queues fn to run on the loop goroutine before the next update pass
func (s *Scheduler) Post(fn func()) {
	s.postMu.Lock()
	s.posted = append(s.posted, fn)
	s.postMu.Unlock()
}

// Step runs posted work, then updates every item once in order
func (s *Scheduler) Step(dt time.Duration) {
	s.postMu.Lock()
	posted := s.posted
	s.posted = nil
	s.postMu.Unlock()

	for _, fn := range posted {
		fn()
	}

	for _, u := range s.items {
		u.Update(dt)
	}
	s.tickCount.Add(1)
}

// Advance steps by the game time elapsed since the previous Advance, clamped to four intervals
// Paused time never reaches the items; false means nothing was stepped
func (s *Scheduler) Advance() bool {
	if s.clock.IsPaused() {
		return false
	}
	now := s.clock.Elapsed()
	dt := now - s.last
	s.last = now
	if dt <= 0 {
		return false
	}
	// Clamp after stalls so timers do not jump
	s.Step(min(dt, s.interval*4))
	return true
}

// Run drives Advance at the configured interval until ctx is done
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.last = s.clock.Elapsed()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Advance()
		}
	}
}

// Pause stops game time; Run skips ticks until Resume
func (s *Scheduler) Pause() { s.clock.Pause() }

// Resume continues game time
func (s *Scheduler) Resume() { s.clock.Resume() }

// Paused reports the clock pause state
func (s *Scheduler) Paused() bool { return s.clock.IsPaused() }

// Ticks returns the number of completed steps
func (s *Scheduler) Ticks() uint64 { return s.tickCount.Load() }

// Interval returns the configured tick interval
func (s *Scheduler) Interval() time.Duration { return s.interval }
