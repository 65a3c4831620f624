package fsm

import "fmt"

// AddState adds a node to the machine manually
// Useful for constructing the graph programmatically; LoadConfig uses it as well
func (m *Machine[T]) AddState(name string) *Node[T] {
	if id, ok := m.names[name]; ok {
		return m.nodes[id]
	}
	id := StateID(len(m.nodes) + 1)
	node := &Node[T]{
		ID:   id,
		Name: name,
	}
	m.nodes[id] = node
	m.names[name] = id
	return node
}

// AddTransition adds a transition to a specific node
func (m *Machine[T]) AddTransition(sourceID StateID, t Transition[T]) {
	if node, ok := m.nodes[sourceID]; ok {
		node.Transitions = append(node.Transitions, t)
	}
}

// SetInitial marks the state entered by Init
func (m *Machine[T]) SetInitial(name string) error {
	id, ok := m.names[name]
	if !ok {
		return fmt.Errorf("initial %w '%s'", ErrUnknownState, name)
	}
	m.initialID = id
	return nil
}

// SetTerminal marks the state entered by Complete
func (m *Machine[T]) SetTerminal(name string) error {
	id, ok := m.names[name]
	if !ok {
		return fmt.Errorf("terminal %w '%s'", ErrUnknownState, name)
	}
	m.terminalID = id
	return nil
}

// Validate checks terminal-state invariants of a manually built graph
func (m *Machine[T]) Validate() error {
	if m.initialID == StateNone {
		return fmt.Errorf("no initial state")
	}
	if m.terminalID == StateNone {
		return nil
	}
	if m.initialID == m.terminalID {
		return fmt.Errorf("initial state cannot be terminal")
	}
	for _, node := range m.nodes {
		if node.ID == m.terminalID && len(node.Transitions) > 0 {
			return fmt.Errorf("terminal state '%s' must not declare transitions", node.Name)
		}
		for _, t := range node.Transitions {
			if t.TargetID == m.terminalID {
				return fmt.Errorf("state '%s': terminal state '%s' is reachable only through completion", node.Name, m.nodes[m.terminalID].Name)
			}
		}
	}
	return nil
}
