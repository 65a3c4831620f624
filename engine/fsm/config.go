package fsm

// RootConfig represents the top-level graph file
type RootConfig struct {
	InitialState  string                  `toml:"initial"`
	TerminalState string                  `toml:"terminal"`
	Objects       []string                `toml:"objects"`
	Setup         []ActionConfig          `toml:"setup"`
	Gates         map[string]GateConfig   `toml:"gates"`
	States        map[string]*StateConfig `toml:"states"`
}

// StateConfig represents a single state definition
type StateConfig struct {
	OnEnter     []ActionConfig     `toml:"on_enter"`
	OnUpdate    []ActionConfig     `toml:"on_update"`
	OnExit      []ActionConfig     `toml:"on_exit"`
	Transitions []TransitionConfig `toml:"transitions"`
}

// TransitionConfig represents a transition definition
type TransitionConfig struct {
	On        string         `toml:"on"`         // Event kind name
	Object    string         `toml:"object"`     // Local object or timer name
	Tool      string         `toml:"tool"`       // Tool name, empty = ANY
	Target    string         `toml:"target"`     // Target state name
	Guard     string         `toml:"guard"`      // Guard function name
	GuardArgs map[string]any `toml:"guard_args"` // Parameters for factory guards
	Actions   []ActionConfig `toml:"actions"`
}

// GateConfig represents a confirmation gate
type GateConfig struct {
	Object   string `toml:"object"`
	Tool     string `toml:"tool"`
	Required int    `toml:"required"`
}

// ActionConfig is an inline table: the "action" key names the function, other keys are arguments
type ActionConfig map[string]any
