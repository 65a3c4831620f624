package injury

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/lixenwraith/field-medic/clothing"
	"github.com/lixenwraith/field-medic/engine"
	"github.com/lixenwraith/field-medic/engine/fsm"
	"github.com/lixenwraith/field-medic/input"
	"github.com/lixenwraith/field-medic/render"
)

// Base holds state shared by every injury kind
type Base struct {
	id       string
	kind     string
	region   clothing.Region
	severity float64
	exposed  bool
	healed   bool
	origin   input.Vec2

	objects  []string
	gateDefs []fsm.Gate
	gates    map[string]*engine.TapeCounter

	// Context of the call in progress, read by actions
	ctx Context

	out []render.Command
	log *slog.Logger

	onTransition func(from, to, trigger string)
	onHealed     func()
}

func newBase(id, kind string, region clothing.Region, origin input.Vec2, log *slog.Logger) Base {
	if log == nil {
		log = slog.Default()
	}
	return Base{
		id:     id,
		kind:   kind,
		region: region,
		origin: origin,
		gates:  make(map[string]*engine.TapeCounter),
		log:    log.With("injury", id, "kind", kind),
	}
}

func (b *Base) ID() string              { return b.id }
func (b *Base) Kind() string            { return b.kind }
func (b *Base) Region() clothing.Region { return b.region }
func (b *Base) Severity() float64       { return b.severity }
func (b *Base) Exposed() bool           { return b.exposed }
func (b *Base) Healed() bool            { return b.healed }
func (b *Base) Objects() []string       { return b.objects }
func (b *Base) Origin() input.Vec2      { return b.origin }
func (b *Base) SetExposed(exposed bool) { b.exposed = exposed }
func (b *Base) OnHealed(fn func())      { b.onHealed = fn }
func (b *Base) OnTransition(fn func(from, to, trigger string)) {
	b.onTransition = fn
}

// target qualifies a local object name
func (b *Base) target(object string) string {
	return input.Qualify(b.id, object)
}

func (b *Base) emit(cmds ...render.Command) {
	b.out = append(b.out, cmds...)
}

// flush hands buffered commands to the caller
func (b *Base) flush() []render.Command {
	if len(b.out) == 0 {
		return nil
	}
	out := b.out
	b.out = nil
	return out
}

// setupGates creates one counter per declared gate, each completing the injury
func (b *Base) setupGates(defs []fsm.Gate, complete func()) {
	b.gateDefs = defs
	for _, g := range defs {
		b.gates[g.Name] = engine.NewTapeCounter(g.Required, complete)
	}
}

// confirmGate routes a click to an armed gate on the clicked object
func (b *Base) confirmGate(ev input.Event) bool {
	if ev.Kind != input.KindClickDown {
		return false
	}
	for _, g := range b.gateDefs {
		counter := b.gates[g.Name]
		if g.Object != ev.Target || !g.Tool.Matches(ev.Tool) || !counter.Armed() {
			continue
		}
		counter.Confirm()
		b.log.Debug("gate confirmation", "gate", g.Name, "count", counter.Count(), "required", counter.Required())
		return true
	}
	return false
}

func (b *Base) gateStatus() []GateStatus {
	out := make([]GateStatus, 0, len(b.gateDefs))
	for _, g := range b.gateDefs {
		c := b.gates[g.Name]
		out = append(out, GateStatus{
			Name:     g.Name,
			Object:   g.Object,
			Tool:     g.Tool,
			Count:    c.Count(),
			Required: c.Required(),
			Armed:    c.Armed(),
		})
	}
	return out
}

// core binds Base to a machine typed on the concrete injury
type core[T any] struct {
	Base
	machine *fsm.Machine[T]
	self    T

	// Runs after the machine update each tick
	afterUpdate func()
	// Fills kind-specific snapshot gauges
	progress func(map[string]float64)
}

// load registers shared actions, loads the graph and validates it against the instance
func (c *core[T]) load(graphs GraphSource, name string) error {
	registerCommon(c.machine, &c.Base)

	path, embedded := graphs.Graph(name)
	if err := fsm.LoadConfigAuto(c.machine, path, embedded); err != nil {
		return fmt.Errorf("injury %q graph %q: %w", c.id, name, err)
	}
	if c.machine.Terminal() == fsm.StateNone {
		return fmt.Errorf("injury %q graph %q: no terminal state", c.id, name)
	}

	c.objects = c.machine.Objects()
	c.setupGates(c.machine.Gates(), c.complete)

	if err := c.checkGateRefs(); err != nil {
		return fmt.Errorf("injury %q graph %q: %w", c.id, name, err)
	}

	c.machine.SetTransitionHook(func(from, to fsm.StateID, ev input.Event) {
		trigger := "Complete"
		if ev.Kind != input.KindNone {
			trigger = ev.Kind.String()
			if ev.Target != "" {
				trigger += "(" + ev.Target + ")"
			}
		}
		fromName, toName := c.machine.StateName(from), c.machine.StateName(to)
		c.log.Debug("transition", "from", fromName, "to", toName, "trigger", trigger)
		if c.onTransition != nil {
			c.onTransition(fromName, toName, trigger)
		}
	})
	return nil
}

// checkGateRefs rejects ArmGate actions naming undeclared gates
func (c *core[T]) checkGateRefs() error {
	check := func(actions []fsm.Action[T]) error {
		for _, a := range actions {
			if a.Name != actionArmGate {
				continue
			}
			if name := a.Args.String("gate"); c.gates[name] == nil {
				return fmt.Errorf("ArmGate references undeclared gate '%s'", name)
			}
		}
		return nil
	}

	if err := check(c.machine.Setup()); err != nil {
		return err
	}
	for _, n := range c.machine.Nodes() {
		for _, list := range [][]fsm.Action[T]{n.OnEnter, n.OnUpdate, n.OnExit} {
			if err := check(list); err != nil {
				return fmt.Errorf("state '%s': %w", n.Name, err)
			}
		}
		for _, t := range n.Transitions {
			if err := check(t.Actions); err != nil {
				return fmt.Errorf("state '%s': %w", n.Name, err)
			}
		}
	}
	return nil
}

func (c *core[T]) Init() ([]render.Command, error) {
	if err := c.machine.Init(c.self); err != nil {
		return nil, fmt.Errorf("injury %q: %w", c.id, err)
	}
	return c.flush(), nil
}

func (c *core[T]) Handle(ev input.Event, ctx Context) []render.Command {
	if c.machine.IsTerminal() {
		return nil
	}
	// Covered injuries ignore the player
	if ev.Kind.Player() && !ctx.Exposed {
		return nil
	}

	c.ctx = ctx
	local := ev.Local()
	local.Tool = ctx.Tool

	if local.Kind.Player() && !slices.Contains(c.objects, local.Target) {
		return nil
	}

	if !c.confirmGate(local) {
		c.machine.HandleEvent(c.self, local)
	}
	return c.flush()
}

func (c *core[T]) Update(ctx Context) []render.Command {
	if c.machine.IsTerminal() {
		return nil
	}
	c.ctx = ctx
	c.machine.Update(c.self, ctx.Frame.DT)
	if c.afterUpdate != nil && !c.machine.IsTerminal() {
		c.afterUpdate()
	}
	return c.flush()
}

// routeTimer feeds a timer edge to the machine; edges no state listens for are stale
func (c *core[T]) routeTimer(name string) {
	ev := input.Event{Kind: input.KindTimer, Target: name, Tool: input.ToolAny}
	if !c.machine.HandleEvent(c.self, ev) {
		c.log.Debug("stale timer edge discarded", "timer", name, "state", c.machine.CurrentName())
	}
}

// complete is the only path into the terminal state
func (c *core[T]) complete() {
	if !c.machine.Complete(c.self) {
		return
	}
	c.healed = true
	c.log.Info("injury healed")
	if c.onHealed != nil {
		c.onHealed()
	}
}

func (c *core[T]) State() string { return c.machine.CurrentName() }

func (c *core[T]) Snapshot() Snapshot {
	s := Snapshot{
		ID:       c.id,
		Kind:     c.kind,
		Region:   c.region,
		State:    c.machine.CurrentName(),
		Severity: c.severity,
		Exposed:  c.exposed,
		Healed:   c.healed,
		Gates:    c.gateStatus(),
		Progress: make(map[string]float64),
	}
	if c.progress != nil {
		c.progress(s.Progress)
	}
	return s
}
