package engine

// TapeCounter is a gate that completes after N confirmations received while armed
type TapeCounter struct {
	required   int
	count      int
	armed      bool
	fired      bool
	onComplete func()
}

// NewTapeCounter creates an unarmed counter; required below 1 is treated as 1
func NewTapeCounter(required int, onComplete func()) *TapeCounter {
	if required < 1 {
		required = 1
	}
	return &TapeCounter{required: required, onComplete: onComplete}
}

// Arm enables confirmations; no-op once fired
func (c *TapeCounter) Arm() {
	if c.fired {
		return
	}
	c.armed = true
}

// Confirm counts one confirmation and reports whether it completed the gate
// Unarmed confirmations are discarded, not buffered
func (c *TapeCounter) Confirm() bool {
	if !c.armed || c.fired {
		return false
	}

	c.count++
	if c.count < c.required {
		return false
	}

	c.count = c.required
	c.fired = true
	c.armed = false
	if c.onComplete != nil {
		c.onComplete()
	}
	return true
}

// SetOnComplete replaces the completion callback
func (c *TapeCounter) SetOnComplete(fn func()) { c.onComplete = fn }

func (c *TapeCounter) Count() int    { return c.count }
func (c *TapeCounter) Required() int { return c.required }
func (c *TapeCounter) Armed() bool   { return c.armed }
func (c *TapeCounter) Fired() bool   { return c.fired }
