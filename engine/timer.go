package engine

import "time"

// Timer is a pausable one-shot countdown advanced by explicit ticks
// A firing is an edge: HasFired reports it once and the next Tick clears it if unobserved
type Timer struct {
	limit   time.Duration
	elapsed time.Duration
	running bool
	paused  bool
	edge    bool // Fired this tick and not yet observed
}

// NewTimer creates a stopped timer
func NewTimer(limit time.Duration) *Timer {
	return &Timer{limit: limit}
}

// Start zeroes elapsed time and runs the timer unpaused
func (t *Timer) Start() {
	t.elapsed = 0
	t.running = true
	t.paused = false
	t.edge = false
}

// Tick advances elapsed time while running and unpaused
func (t *Timer) Tick(dt time.Duration) {
	t.edge = false

	if !t.running || t.paused {
		return
	}

	t.elapsed += dt
	if t.elapsed >= t.limit {
		t.elapsed = t.limit
		t.running = false
		t.edge = true
	}
}

// HasFired returns true exactly once per firing, on the tick the limit was reached
func (t *Timer) HasFired() bool {
	if !t.edge {
		return false
	}
	t.edge = false
	return true
}

// Pause freezes elapsed time
func (t *Timer) Pause() { t.paused = true }

// Resume continues a paused timer
func (t *Timer) Resume() { t.paused = false }

// Reset stops the timer and clears elapsed time and any pending edge
func (t *Timer) Reset() {
	t.elapsed = 0
	t.running = false
	t.paused = false
	t.edge = false
}

func (t *Timer) Running() bool            { return t.running }
func (t *Timer) Paused() bool             { return t.paused }
func (t *Timer) Limit() time.Duration     { return t.limit }
func (t *Timer) Elapsed() time.Duration   { return t.elapsed }
func (t *Timer) Remaining() time.Duration { return t.limit - t.elapsed }
