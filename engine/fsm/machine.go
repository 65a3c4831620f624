package fsm

import (
	"fmt"
	"time"

	"github.com/lixenwraith/field-medic/input"
)

// maxAutoChain bounds consecutive Auto transitions taken from one entry
const maxAutoChain = 32

// NewMachine creates a new FSM instance
func NewMachine[T any]() *Machine[T] {
	return &Machine[T]{
		nodes:           make(map[StateID]*Node[T]),
		names:           make(map[string]StateID),
		guardReg:        make(map[string]GuardFunc[T]),
		guardFactoryReg: make(map[string]GuardFactoryFunc[T]),
		actionReg:       make(map[string]actionEntry[T]),
	}
}

// RegisterGuard adds a predicate function to the registry
func (m *Machine[T]) RegisterGuard(name string, fn GuardFunc[T]) {
	m.guardReg[name] = fn
}

// RegisterGuardFactory adds a parameterized guard factory to the registry
func (m *Machine[T]) RegisterGuardFactory(name string, factory GuardFactoryFunc[T]) {
	m.guardFactoryReg[name] = factory
}

// RegisterAction adds a side-effect function to the registry
// Loading fails when a use of the action omits any of the required argument keys
func (m *Machine[T]) RegisterAction(name string, fn ActionFunc[T], required ...string) {
	m.actionReg[name] = actionEntry[T]{fn: fn, required: required}
}

// SetTransitionHook installs the state change observer
func (m *Machine[T]) SetTransitionHook(h TransitionHook) {
	m.hook = h
}

// Init runs setup actions and enters the initial state
func (m *Machine[T]) Init(ctx T) error {
	if m.initialID == StateNone {
		return fmt.Errorf("FSM has no graph loaded")
	}

	m.completed = false
	runActions(ctx, m.setup)

	m.currentID = m.initialID
	m.timeInState = 0
	runActions(ctx, m.nodes[m.currentID].OnEnter)
	m.runAuto(ctx)
	return nil
}

// HandleEvent evaluates the current state's transitions for ev
// ev.Target must be the local object name or timer name
// Returns true when an edge matched; unmatched events have no side effect
func (m *Machine[T]) HandleEvent(ctx T, ev input.Event) bool {
	node := m.active()
	if node == nil {
		return false
	}

	for i := range node.Transitions {
		trans := &node.Transitions[i]
		if trans.Event != ev.Kind {
			continue
		}
		if trans.Object != "" && trans.Object != ev.Target {
			continue
		}
		if !trans.Tool.Matches(ev.Tool) {
			continue
		}
		if trans.Guard != nil && !trans.Guard(ctx) {
			continue
		}
		m.fire(ctx, trans, ev)
		return true
	}
	return false
}

// Update advances time in state, runs OnUpdate actions, then evaluates Tick transitions
func (m *Machine[T]) Update(ctx T, dt time.Duration) {
	node := m.active()
	if node == nil {
		return
	}

	m.timeInState += dt
	runActions(ctx, node.OnUpdate)

	// An OnUpdate action may have moved the machine
	if m.currentID != node.ID {
		return
	}
	m.HandleEvent(ctx, input.Event{Kind: input.KindTick})
}

// Complete moves the machine into the terminal state
// One-shot: returns false when already terminal or no terminal is declared
func (m *Machine[T]) Complete(ctx T) bool {
	if m.completed || m.terminalID == StateNone || m.currentID == StateNone {
		return false
	}
	m.completed = true

	from := m.currentID
	runActions(ctx, m.nodes[from].OnExit)
	m.currentID = m.terminalID
	m.timeInState = 0
	if m.hook != nil {
		m.hook(from, m.terminalID, input.Event{})
	}
	runActions(ctx, m.nodes[m.terminalID].OnEnter)
	return true
}

// fire takes a matched transition
func (m *Machine[T]) fire(ctx T, trans *Transition[T], ev input.Event) {
	from := m.currentID

	// Internal transition: edge actions only
	if trans.TargetID == from {
		runActions(ctx, trans.Actions)
		return
	}

	runActions(ctx, m.nodes[from].OnExit)
	runActions(ctx, trans.Actions)

	m.currentID = trans.TargetID
	m.timeInState = 0
	if m.hook != nil {
		m.hook(from, trans.TargetID, ev)
	}

	runActions(ctx, m.nodes[trans.TargetID].OnEnter)
	m.runAuto(ctx)
}

// runAuto takes Auto transitions from the freshly entered state
func (m *Machine[T]) runAuto(ctx T) {
	for i := 0; i < maxAutoChain; i++ {
		if !m.HandleEvent(ctx, input.Event{Kind: input.KindAuto, Tool: input.ToolAny}) {
			return
		}
	}
	panic(fmt.Sprintf("FSM: auto transition loop at state '%s'", m.CurrentName()))
}

// active returns the current node, nil before Init or after completion
func (m *Machine[T]) active() *Node[T] {
	if m.currentID == StateNone || m.completed {
		return nil
	}
	return m.nodes[m.currentID]
}

func runActions[T any](ctx T, actions []Action[T]) {
	for _, a := range actions {
		a.Func(ctx, a.Args)
	}
}

// Current returns the active state id
func (m *Machine[T]) Current() StateID { return m.currentID }

// CurrentName returns the active state name
func (m *Machine[T]) CurrentName() string { return m.StateName(m.currentID) }

// TimeInState returns time accumulated by Update in the current state
func (m *Machine[T]) TimeInState() time.Duration { return m.timeInState }

// Terminal returns the terminal state id
func (m *Machine[T]) Terminal() StateID { return m.terminalID }

// IsTerminal reports whether the terminal state has been entered
func (m *Machine[T]) IsTerminal() bool { return m.completed }

// Initial returns the initial state id
func (m *Machine[T]) Initial() StateID { return m.initialID }

// Objects returns the object names declared by the graph
func (m *Machine[T]) Objects() []string { return m.objects }

// Gates returns the confirmation gates declared by the graph
func (m *Machine[T]) Gates() []Gate { return m.gates }

// StateID resolves a state name
func (m *Machine[T]) StateID(name string) (StateID, bool) {
	id, ok := m.names[name]
	return id, ok
}

// StateName resolves a state id, empty when unknown
func (m *Machine[T]) StateName(id StateID) string {
	if node, ok := m.nodes[id]; ok {
		return node.Name
	}
	return ""
}

// Nodes returns every node ordered by id
func (m *Machine[T]) Nodes() []*Node[T] {
	out := make([]*Node[T], 0, len(m.nodes))
	for id := StateID(1); int(id) <= len(m.nodes); id++ {
		if n, ok := m.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Setup returns the actions run once by Init
func (m *Machine[T]) Setup() []Action[T] { return m.setup }

// Node returns the node for id
func (m *Machine[T]) Node(id StateID) (*Node[T], bool) {
	n, ok := m.nodes[id]
	return n, ok
}
