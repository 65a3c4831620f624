package engine

// DragProgress accumulates signed drag input toward zero from a required offset
// Progress persists across Begin calls so an interrupted drag resumes where it stopped
type DragProgress struct {
	required    float64
	scale       float64
	accumulated float64
	started     bool
	complete    bool
}

// NewDragProgress creates progress for a required offset; drag deltas are multiplied by scale
func NewDragProgress(required, scale float64) *DragProgress {
	return &DragProgress{required: required, scale: scale}
}

// Begin initializes accumulated to required on the first call only
// Returns true on the first call
func (d *DragProgress) Begin() bool {
	if d.started {
		return false
	}
	d.started = true
	d.accumulated = d.required
	if d.required == 0 {
		d.complete = true
	}
	return true
}

// Direction is the drag sign that advances progress: -1, 1, or 0 for zero required
func (d *DragProgress) Direction() float64 {
	switch {
	case d.required > 0:
		return -1
	case d.required < 0:
		return 1
	default:
		return 0
	}
}

// Apply consumes one tick of drag input
// Zero or wrong-direction deltas are discarded; done is true exactly once, on the completing call
func (d *DragProgress) Apply(delta float64) (step float64, done bool) {
	if !d.started || d.complete || delta == 0 {
		return 0, false
	}
	if (delta < 0) != (d.Direction() < 0) {
		return 0, false
	}

	step = delta * d.scale
	d.accumulated += step

	if (d.required > 0 && d.accumulated <= 0) || (d.required < 0 && d.accumulated >= 0) {
		d.accumulated = 0
		d.complete = true
		return step, true
	}
	return step, false
}

func (d *DragProgress) Accumulated() float64 { return d.accumulated }
func (d *DragProgress) Required() float64    { return d.required }
func (d *DragProgress) Started() bool        { return d.started }
func (d *DragProgress) Complete() bool       { return d.complete }
