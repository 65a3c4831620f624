package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// PausableClock provides game time that stops advancing while paused
type PausableClock struct {
	mu sync.RWMutex

	provider TimeProvider

	realStartTime time.Time // Provider time at creation

	isPaused        atomic.Bool
	pauseStartTime  time.Time     // When current pause started (provider time)
	totalPausedTime time.Duration // Cumulative pause duration
}

// NewPausableClock creates a clock on system time
func NewPausableClock() *PausableClock {
	return NewPausableClockWith(SystemTime{})
}

// NewPausableClockWith creates a clock on the given provider
func NewPausableClockWith(provider TimeProvider) *PausableClock {
	return &PausableClock{
		provider:      provider,
		realStartTime: provider.Now(),
	}
}

// Elapsed returns game time since creation, excluding pauses
func (pc *PausableClock) Elapsed() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.isPaused.Load() {
		// Frozen at pause point
		return pc.pauseStartTime.Sub(pc.realStartTime) - pc.totalPausedTime
	}
	return pc.provider.Now().Sub(pc.realStartTime) - pc.totalPausedTime
}

// Pause stops game time advancement
func (pc *PausableClock) Pause() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.isPaused.CompareAndSwap(false, true) {
		pc.pauseStartTime = pc.provider.Now()
	}
}

// Resume continues game time advancement
func (pc *PausableClock) Resume() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.isPaused.CompareAndSwap(true, false) {
		pc.totalPausedTime += pc.provider.Now().Sub(pc.pauseStartTime)
		pc.pauseStartTime = time.Time{}
	}
}

// IsPaused returns current pause state
func (pc *PausableClock) IsPaused() bool {
	return pc.isPaused.Load()
}

// TotalPauseDuration returns cumulative pause time including an ongoing pause
func (pc *PausableClock) TotalPauseDuration() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	total := pc.totalPausedTime
	if pc.isPaused.Load() && !pc.pauseStartTime.IsZero() {
		total += pc.provider.Now().Sub(pc.pauseStartTime)
	}
	return total
}
