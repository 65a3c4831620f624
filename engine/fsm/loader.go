package fsm

import (
	"fmt"
	"slices"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/field-medic/input"
)

// LoadConfig parses a TOML graph and populates the Machine
// Validates all references (states, guards, actions, kinds, tools, objects)
// Clears existing graph data before loading
func (m *Machine[T]) LoadConfig(data []byte) error {
	var config RootConfig
	md, err := toml.Decode(string(data), &config)
	if err != nil {
		return fmt.Errorf("failed to unmarshal FSM config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		// Inline action tables decode into maps, anything else left over is a typo
		for _, key := range undecoded {
			if !isActionKey(key) {
				return fmt.Errorf("unknown key '%s'", key.String())
			}
		}
	}
	return m.loadRoot(&config)
}

func (m *Machine[T]) loadRoot(config *RootConfig) error {
	// Clear existing graph
	m.nodes = make(map[StateID]*Node[T])
	m.names = make(map[string]StateID)
	m.initialID, m.terminalID, m.currentID = StateNone, StateNone, StateNone
	m.completed = false
	m.timeInState = 0
	m.objects = slices.Clone(config.Objects)
	m.gates = nil
	m.setup = nil

	if len(config.States) == 0 {
		return fmt.Errorf("graph declares no states")
	}

	// First pass: sorted names for deterministic ids
	stateNames := make([]string, 0, len(config.States))
	for name := range config.States {
		stateNames = append(stateNames, name)
	}
	sort.Strings(stateNames)
	for _, name := range stateNames {
		m.AddState(name)
	}

	if err := m.SetInitial(config.InitialState); err != nil {
		return err
	}
	if config.TerminalState != "" {
		if err := m.SetTerminal(config.TerminalState); err != nil {
			return err
		}
	}

	var err error
	if m.setup, err = m.compileActions(config.Setup); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	// Second pass: actions and transitions
	for _, name := range stateNames {
		cfg := config.States[name]
		if cfg == nil {
			continue
		}
		node := m.nodes[m.names[name]]

		if node.OnEnter, err = m.compileActions(cfg.OnEnter); err != nil {
			return fmt.Errorf("state '%s' on_enter: %w", name, err)
		}
		if node.OnUpdate, err = m.compileActions(cfg.OnUpdate); err != nil {
			return fmt.Errorf("state '%s' on_update: %w", name, err)
		}
		if node.OnExit, err = m.compileActions(cfg.OnExit); err != nil {
			return fmt.Errorf("state '%s' on_exit: %w", name, err)
		}
		if err := m.compileTransitions(node, cfg.Transitions); err != nil {
			return fmt.Errorf("state '%s' transitions: %w", name, err)
		}
	}

	if err := m.compileGates(config.Gates); err != nil {
		return err
	}

	return m.Validate()
}

func (m *Machine[T]) compileActions(configs []ActionConfig) ([]Action[T], error) {
	actions := make([]Action[T], 0, len(configs))
	for _, cfg := range configs {
		name, _ := cfg["action"].(string)
		if name == "" {
			return nil, fmt.Errorf("action entry without 'action' name")
		}
		entry, ok := m.actionReg[name]
		if !ok {
			return nil, fmt.Errorf("unknown action function '%s'", name)
		}

		args := make(Args, len(cfg))
		for k, v := range cfg {
			if k != "action" {
				args[k] = v
			}
		}
		if err := args.require(entry.required); err != nil {
			return nil, fmt.Errorf("action '%s': %w", name, err)
		}
		if err := m.checkObjectArg(args); err != nil {
			return nil, fmt.Errorf("action '%s': %w", name, err)
		}

		actions = append(actions, Action[T]{
			Name: name,
			Func: entry.fn,
			Args: args,
		})
	}
	return actions, nil
}

func (m *Machine[T]) compileTransitions(node *Node[T], configs []TransitionConfig) error {
	for _, cfg := range configs {
		targetID, ok := m.names[cfg.Target]
		if !ok {
			return fmt.Errorf("transition references %w '%s'", ErrUnknownState, cfg.Target)
		}

		kind, err := input.ParseKind(cfg.On)
		if err != nil {
			return err
		}
		if kind == input.KindAuto && targetID == node.ID {
			return fmt.Errorf("auto transition to itself")
		}

		tool, err := input.ParseTool(cfg.Tool)
		if err != nil {
			return err
		}

		if kind.Player() && cfg.Object != "" && len(m.objects) > 0 && !slices.Contains(m.objects, cfg.Object) {
			return fmt.Errorf("transition on undeclared object '%s'", cfg.Object)
		}

		var guard GuardFunc[T]
		if cfg.Guard != "" {
			// Check factory first
			if factory, ok := m.guardFactoryReg[cfg.Guard]; ok {
				if guard, err = factory(m, Args(cfg.GuardArgs)); err != nil {
					return fmt.Errorf("guard '%s': %w", cfg.Guard, err)
				}
			} else if g, ok := m.guardReg[cfg.Guard]; ok {
				guard = g
			} else {
				return fmt.Errorf("unknown guard '%s'", cfg.Guard)
			}
		}

		actions, err := m.compileActions(cfg.Actions)
		if err != nil {
			return fmt.Errorf("-> %s: %w", cfg.Target, err)
		}

		node.Transitions = append(node.Transitions, Transition[T]{
			TargetID: targetID,
			Event:    kind,
			Object:   cfg.Object,
			Tool:     tool,
			Guard:    guard,
			Actions:  actions,
		})
	}
	return nil
}

func (m *Machine[T]) compileGates(configs map[string]GateConfig) error {
	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg := configs[name]
		tool, err := input.ParseTool(cfg.Tool)
		if err != nil {
			return fmt.Errorf("gate '%s': %w", name, err)
		}
		if cfg.Required < 1 {
			return fmt.Errorf("gate '%s': required must be positive", name)
		}
		if cfg.Object == "" || (len(m.objects) > 0 && !slices.Contains(m.objects, cfg.Object)) {
			return fmt.Errorf("gate '%s': undeclared object '%s'", name, cfg.Object)
		}
		m.gates = append(m.gates, Gate{
			Name:     name,
			Object:   cfg.Object,
			Tool:     tool,
			Required: cfg.Required,
		})
	}
	return nil
}

// checkObjectArg rejects object arguments outside the declared object list
func (m *Machine[T]) checkObjectArg(args Args) error {
	obj := args.String("object")
	if obj == "" || len(m.objects) == 0 || slices.Contains(m.objects, obj) {
		return nil
	}
	return fmt.Errorf("undeclared object '%s'", obj)
}

// isActionKey reports whether an undecoded key lives inside an action table
func isActionKey(key toml.Key) bool {
	for _, part := range key {
		switch part {
		case "setup", "on_enter", "on_update", "on_exit", "actions", "guard_args":
			return true
		}
	}
	return false
}
