package injury

import (
	"errors"

	"github.com/lixenwraith/field-medic/clothing"
	"github.com/lixenwraith/field-medic/input"
	"github.com/lixenwraith/field-medic/render"
)

var (
	// ErrUnknownKind is returned for scenario kinds with no implementation
	ErrUnknownKind = errors.New("unknown injury kind")

	// ErrMissingCollaborator is returned when a required external collaborator is absent
	ErrMissingCollaborator = errors.New("missing collaborator")
)

// Sound clips shared by every injury graph
const (
	SoundStepComplete     = "step_complete"
	SoundCompletelyHealed = "completely_healed"
)

// Context is the per-call view of the world handed to an injury
type Context struct {
	Tool    input.Tool  // Active tool
	Exposed bool        // Exposure flag of the injury's region
	Frame   input.Frame // Continuous input for this tick
}

// Injury is a treatable wound driven by a state machine
type Injury interface {
	clothing.Member

	ID() string
	Kind() string
	Exposed() bool
	Severity() float64
	Objects() []string
	Origin() input.Vec2 // Anchor in patient space
	State() string
	Healed() bool

	// Init runs graph setup and enters the initial state
	Init() ([]render.Command, error)

	// Handle processes a discrete event addressed to one of the injury's objects
	// Ignored attempts return nil
	Handle(ev input.Event, ctx Context) []render.Command

	// Update advances continuous state by ctx.Frame.DT
	Update(ctx Context) []render.Command

	// OnTransition registers the state change observer
	OnTransition(fn func(from, to, trigger string))

	// OnHealed registers the completion observer, called exactly once
	OnHealed(fn func())

	Snapshot() Snapshot
}

// GateStatus is the observable state of a confirmation gate
type GateStatus struct {
	Name     string
	Object   string
	Tool     input.Tool
	Count    int
	Required int
	Armed    bool
}

// Snapshot is a read-only view for front-ends and journals
type Snapshot struct {
	ID       string
	Kind     string
	Region   clothing.Region
	State    string
	Severity float64
	Exposed  bool
	Healed   bool
	Gates    []GateStatus
	Progress map[string]float64 // Kind-specific gauges (drag remaining, timer remaining, ...)
}

// GraphSource resolves a graph file name to an override path and embedded fallback
// An empty path selects the embedded bytes
type GraphSource interface {
	Graph(name string) (path string, embedded []byte)
}
