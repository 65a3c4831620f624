package fsm

import (
	"errors"
	"time"

	"github.com/lixenwraith/field-medic/input"
)

// StateID is a unique identifier for a node
type StateID int

const StateNone StateID = 0

// ErrUnknownState is wrapped by load errors referencing undeclared states
var ErrUnknownState = errors.New("unknown state")

// Machine is a flat guarded finite state machine with a one-shot terminal state
// T is the context type passed to actions and guards (the owning injury)
type Machine[T any] struct {
	// Graph data, immutable after load
	nodes      map[StateID]*Node[T]
	names      map[string]StateID
	initialID  StateID
	terminalID StateID
	objects    []string
	gates      []Gate
	setup      []Action[T]

	// Runtime state
	currentID   StateID
	timeInState time.Duration
	completed   bool

	hook TransitionHook

	// Dependency injection
	guardReg        map[string]GuardFunc[T]
	guardFactoryReg map[string]GuardFactoryFunc[T]
	actionReg       map[string]actionEntry[T]
}

// Node represents a state
type Node[T any] struct {
	ID   StateID
	Name string

	// Lifecycle actions
	OnEnter  []Action[T]
	OnUpdate []Action[T]
	OnExit   []Action[T]

	// Transitions in declaration order, first match wins
	Transitions []Transition[T]
}

// Transition defines a guarded edge
type Transition[T any] struct {
	TargetID StateID
	Event    input.Kind
	Object   string       // Local object or timer name, empty matches any
	Tool     input.Tool   // input.ToolAny matches every tool
	Guard    GuardFunc[T] // nil = always true
	Actions  []Action[T]  // Run between source OnExit and target OnEnter
}

// Gate is a confirmation gate declared by the graph
type Gate struct {
	Name     string
	Object   string
	Tool     input.Tool
	Required int
}

// Action represents a side-effect with pre-compiled arguments
type Action[T any] struct {
	Name string
	Func ActionFunc[T]
	Args Args
}

// TransitionHook observes state changes; internal transitions are not reported
type TransitionHook func(from, to StateID, ev input.Event)

// GuardFunc returns true if the transition should occur
type GuardFunc[T any] func(ctx T) bool

// ActionFunc executes a side effect
type ActionFunc[T any] func(ctx T, args Args)

// GuardFactoryFunc creates a parameterized guard from guard_args
type GuardFactoryFunc[T any] func(m *Machine[T], args Args) (GuardFunc[T], error)

type actionEntry[T any] struct {
	fn       ActionFunc[T]
	required []string
}
