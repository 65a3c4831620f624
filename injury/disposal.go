package injury

import "sync"

// Disposal reports whether a held object was dropped into the disposal container
type Disposal interface {
	DropObjectIn() bool
}

type resetter interface {
	Reset()
}

// DisposalFlag is a latched Disposal set by the host when an object lands in the container
type DisposalFlag struct {
	mu      sync.Mutex
	dropped bool
}

// Drop latches the flag
func (d *DisposalFlag) Drop() {
	d.mu.Lock()
	d.dropped = true
	d.mu.Unlock()
}

// Reset clears the flag
func (d *DisposalFlag) Reset() {
	d.mu.Lock()
	d.dropped = false
	d.mu.Unlock()
}

func (d *DisposalFlag) DropObjectIn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}
