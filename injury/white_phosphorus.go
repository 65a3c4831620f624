package injury

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/lixenwraith/field-medic/clothing"
	"github.com/lixenwraith/field-medic/config"
	"github.com/lixenwraith/field-medic/engine"
	"github.com/lixenwraith/field-medic/engine/fsm"
	"github.com/lixenwraith/field-medic/input"
	"github.com/lixenwraith/field-medic/render"
)

const (
	// GraphWhitePhosphorus is the default graph file for white phosphorus burns
	GraphWhitePhosphorus = "white_phosphorus.toml"

	timerReignite = "reignite"
	timerEscalate = "escalate"

	gateDressing = "dressing"

	stateRemoval = "REMOVAL"

	objWP           = "wp"
	objSecondDegree = "second_degree"
	objThirdDegree  = "third_degree"
)

// WhitePhosphorus is a burn with a burning fragment that must be extinguished, removed and disposed of
// before ointment and dressing
type WhitePhosphorus struct {
	core[*WhitePhosphorus]

	params   config.WhitePhosphorusParams
	disposal Disposal

	reignite *engine.Timer
	escalate *engine.Timer
	timers   map[string]*engine.Timer

	// Fragment offset from origin in injury-local units
	wpPos input.Vec2

	// Visual currently standing for the burn and its severity
	activeBurn     string
	burnSeverity   float64
	escalated      bool
	applying       bool
	ointmentTime   time.Duration
	ointmentFilled bool
}

// NewWhitePhosphorus builds a white phosphorus burn from its graph
func NewWhitePhosphorus(id string, region clothing.Region, origin input.Vec2, params config.WhitePhosphorusParams, disposal Disposal, graphs GraphSource, graph string, log *slog.Logger) (*WhitePhosphorus, error) {
	if disposal == nil {
		return nil, fmt.Errorf("injury %q: disposal: %w", id, ErrMissingCollaborator)
	}
	if graphs == nil {
		return nil, fmt.Errorf("injury %q: graph source: %w", id, ErrMissingCollaborator)
	}
	if params.Reignite <= 0 || params.Escalate <= 0 || params.Ointment <= 0 {
		return nil, fmt.Errorf("injury %q: reignite, escalate and ointment durations must be positive", id)
	}
	if params.Proximity < 0 {
		return nil, fmt.Errorf("injury %q: proximity must not be negative", id)
	}
	if graph == "" {
		graph = GraphWhitePhosphorus
	}

	w := &WhitePhosphorus{
		params:       params,
		disposal:     disposal,
		reignite:     engine.NewTimer(params.Reignite),
		escalate:     engine.NewTimer(params.Escalate),
		activeBurn:   objSecondDegree,
		burnSeverity: params.SecondDegreeSeverity,
	}
	w.timers = map[string]*engine.Timer{timerReignite: w.reignite, timerEscalate: w.escalate}

	w.Base = newBase(id, config.KindWhitePhosphorus, region, origin, log)
	w.self = w
	w.machine = fsm.NewMachine[*WhitePhosphorus]()
	w.register()
	w.afterUpdate = w.tickTimers
	w.progress = w.fillProgress

	if err := w.load(graphs, graph); err != nil {
		return nil, err
	}
	for _, obj := range []string{objWP, objSecondDegree, objThirdDegree} {
		if !slices.Contains(w.objects, obj) {
			return nil, fmt.Errorf("injury %q: graph does not declare object %q: %w", id, obj, ErrMissingCollaborator)
		}
	}
	if params.Dressings > 0 && w.gates[gateDressing] != nil {
		w.gates[gateDressing] = engine.NewTapeCounter(params.Dressings, w.complete)
	}
	return w, nil
}

func (w *WhitePhosphorus) register() {
	m := w.machine

	timerGet := func(args fsm.Args) *engine.Timer { return w.timers[args.String("timer")] }

	m.RegisterAction("StartTimer", func(w *WhitePhosphorus, args fsm.Args) {
		if t := timerGet(args); t != nil {
			t.Start()
		}
	}, "timer")
	m.RegisterAction("PauseTimer", func(w *WhitePhosphorus, args fsm.Args) {
		if t := timerGet(args); t != nil {
			t.Pause()
		}
	}, "timer")
	m.RegisterAction("ResumeTimer", func(w *WhitePhosphorus, args fsm.Args) {
		if t := timerGet(args); t != nil {
			t.Resume()
		}
	}, "timer")

	// Severity follows the burning fragment or the burn underneath
	m.RegisterAction("ApplySeverity", func(w *WhitePhosphorus, args fsm.Args) {
		switch args.String("source") {
		case objWP:
			w.severity = w.params.WPSeverity
		default:
			w.severity = w.burnSeverity
		}
	}, "source")

	// Swap second for third degree, once
	m.RegisterAction("Escalate", func(w *WhitePhosphorus, _ fsm.Args) {
		if w.escalated {
			return
		}
		w.escalated = true
		w.activeBurn = objThirdDegree
		w.burnSeverity = w.params.ThirdDegreeSeverity
		w.emit(
			render.SetActive(w.target(objSecondDegree), false),
			render.SetActive(w.target(objThirdDegree), true),
		)
		w.log.Info("burn escalated", "severity", w.burnSeverity)
	})

	m.RegisterAction("AnimateBurn", func(w *WhitePhosphorus, args fsm.Args) {
		w.emit(render.PlayAnimation(w.target(w.activeBurn), args.String("clip")))
	}, "clip")

	m.RegisterAction("FollowPointer", func(w *WhitePhosphorus, _ fsm.Args) {
		pos := w.ctx.Frame.Pointer.Sub(w.origin)
		if pos == w.wpPos {
			return
		}
		w.wpPos = pos
		w.emit(render.SetPosition(w.target(objWP), pos.X, pos.Y))
	})

	// Drops only count once the fragment is held
	m.RegisterAction("ResetDisposal", func(w *WhitePhosphorus, _ fsm.Args) {
		if r, ok := w.disposal.(resetter); ok {
			r.Reset()
		}
	})

	m.RegisterAction("SetApplying", func(w *WhitePhosphorus, args fsm.Args) {
		w.applying = args.Bool("enabled")
	}, "enabled")

	m.RegisterAction("AccumulateOintment", func(w *WhitePhosphorus, _ fsm.Args) {
		if !w.applying || w.ointmentFilled {
			return
		}
		w.ointmentTime += w.ctx.Frame.DT
		if w.ointmentTime >= w.params.Ointment {
			w.ointmentTime = w.params.Ointment
			w.ointmentFilled = true
		}
	})

	m.RegisterGuard("Disposed", func(w *WhitePhosphorus) bool { return w.disposal.DropObjectIn() })
	m.RegisterGuard("OintmentDone", func(w *WhitePhosphorus) bool { return w.ointmentFilled })
	m.RegisterGuard("WPNearOrigin", func(w *WhitePhosphorus) bool { return w.wpPos.Len() < w.params.Proximity })
}

// tickTimers advances both timers and routes fired edges to the machine
func (w *WhitePhosphorus) tickTimers() {
	dt := w.ctx.Frame.DT
	w.reignite.Tick(dt)
	w.escalate.Tick(dt)

	if w.reignite.HasFired() {
		w.routeTimer(timerReignite)
	}
	if w.escalate.HasFired() {
		w.routeTimer(timerEscalate)
	}
}

func (w *WhitePhosphorus) fillProgress(p map[string]float64) {
	p["reignite_remaining"] = w.reignite.Remaining().Seconds()
	p["escalate_remaining"] = w.escalate.Remaining().Seconds()
	p["ointment"] = w.ointmentTime.Seconds()
	p["ointment_required"] = w.params.Ointment.Seconds()
	p["wp_x"] = w.wpPos.X
	p["wp_y"] = w.wpPos.Y
	p["burn_severity"] = w.burnSeverity
}

// Timer returns the reignite or escalate timer
func (w *WhitePhosphorus) Timer(name string) *engine.Timer { return w.timers[name] }

// Holds reports whether object is the fragment currently held in forceps
func (w *WhitePhosphorus) Holds(object string) bool {
	return object == objWP && w.State() == stateRemoval
}

func (w *WhitePhosphorus) Escalated() bool            { return w.escalated }
func (w *WhitePhosphorus) BurnSeverity() float64      { return w.burnSeverity }
func (w *WhitePhosphorus) FragmentOffset() input.Vec2 { return w.wpPos }
func (w *WhitePhosphorus) Ointment() time.Duration    { return w.ointmentTime }
