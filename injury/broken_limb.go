package injury

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/lixenwraith/field-medic/clothing"
	"github.com/lixenwraith/field-medic/config"
	"github.com/lixenwraith/field-medic/engine"
	"github.com/lixenwraith/field-medic/engine/fsm"
	"github.com/lixenwraith/field-medic/input"
	"github.com/lixenwraith/field-medic/render"
)

const (
	// GraphBrokenLimb is the default graph file for broken limbs
	GraphBrokenLimb = "broken_limb.toml"

	gateBandage = "bandage"
)

// segment is one drag-aligned part of the limb; its object carries the same name
type segment struct {
	name     string
	params   config.DragParams
	progress *engine.DragProgress
}

// angle maps remaining progress to the segment's rotation
func (s *segment) angle() float64 {
	return s.params.Final + s.params.RotationSign*s.progress.Accumulated()
}

// brokenAngle is the rotation before any alignment
func (s *segment) brokenAngle() float64 {
	return s.params.Final + s.params.RotationSign*s.params.Required
}

// BrokenLimb is aligned segment by segment with drags, splinted, then taped
type BrokenLimb struct {
	core[*BrokenLimb]
	segments map[string]*segment
}

// NewBrokenLimb builds a broken limb from its graph
func NewBrokenLimb(id string, region clothing.Region, severity float64, params config.BrokenLimbParams, graphs GraphSource, graph string, log *slog.Logger) (*BrokenLimb, error) {
	if graphs == nil {
		return nil, fmt.Errorf("injury %q: graph source: %w", id, ErrMissingCollaborator)
	}
	if graph == "" {
		graph = GraphBrokenLimb
	}

	b := &BrokenLimb{segments: make(map[string]*segment)}
	for name, p := range map[string]config.DragParams{"upper": params.Upper, "lower": params.Lower, "splint": params.Splint} {
		if p.Required == 0 {
			return nil, fmt.Errorf("injury %q: segment %s: required rotation must be non-zero", id, name)
		}
		if p.Scale <= 0 {
			return nil, fmt.Errorf("injury %q: segment %s: scale must be positive", id, name)
		}
		if p.RotationSign != 1 && p.RotationSign != -1 {
			return nil, fmt.Errorf("injury %q: segment %s: rotation sign must be 1 or -1", id, name)
		}
		b.segments[name] = &segment{name: name, params: p, progress: engine.NewDragProgress(p.Required, p.Scale)}
	}

	b.Base = newBase(id, config.KindBrokenLimb, region, input.Vec2{}, log)
	b.severity = severity
	b.self = b
	b.machine = fsm.NewMachine[*BrokenLimb]()
	b.register()
	b.progress = b.fillProgress

	if err := b.load(graphs, graph); err != nil {
		return nil, err
	}
	for name := range b.segments {
		if !slices.Contains(b.objects, name) {
			return nil, fmt.Errorf("injury %q: graph does not declare object %q: %w", id, name, ErrMissingCollaborator)
		}
	}
	// Tape count is tuned per scenario, the graph only declares the gate
	if params.Tapes > 0 && b.gates[gateBandage] != nil {
		b.gates[gateBandage] = engine.NewTapeCounter(params.Tapes, b.complete)
	}
	return b, nil
}

func (b *BrokenLimb) register() {
	m := b.machine

	segmentArg := func(args fsm.Args) (*segment, error) {
		s := b.segments[args.String("segment")]
		if s == nil {
			return nil, fmt.Errorf("unknown segment '%s'", args.String("segment"))
		}
		return s, nil
	}

	// Pose a segment at its broken angle
	m.RegisterAction("PoseBroken", func(b *BrokenLimb, args fsm.Args) {
		if s := b.segments[args.String("segment")]; s != nil {
			b.emit(render.SetRotation(b.target(s.name), s.brokenAngle()))
		}
	}, "segment")

	// Start or resume a drag, progress is kept across reverts
	m.RegisterAction("BeginDrag", func(b *BrokenLimb, args fsm.Args) {
		if s := b.segments[args.String("segment")]; s != nil {
			s.progress.Begin()
		}
	}, "segment")

	// Consume this tick's drag delta
	m.RegisterAction("ApplyDrag", func(b *BrokenLimb, args fsm.Args) {
		s := b.segments[args.String("segment")]
		if s == nil {
			return
		}
		step, done := s.progress.Apply(b.ctx.Frame.DragDelta)
		if step != 0 && !done {
			b.emit(render.SetRotation(b.target(s.name), s.angle()))
		}
	}, "segment")

	// Snap to the final angle
	m.RegisterAction("SnapRotation", func(b *BrokenLimb, args fsm.Args) {
		if s := b.segments[args.String("segment")]; s != nil {
			b.emit(render.SetRotation(b.target(s.name), s.params.Final))
		}
	}, "segment")

	m.RegisterGuardFactory("DragComplete", func(_ *fsm.Machine[*BrokenLimb], args fsm.Args) (fsm.GuardFunc[*BrokenLimb], error) {
		s, err := segmentArg(args)
		if err != nil {
			return nil, err
		}
		return func(*BrokenLimb) bool { return s.progress.Complete() }, nil
	})
}

// fillProgress reports remaining rotation per segment
func (b *BrokenLimb) fillProgress(p map[string]float64) {
	for name, s := range b.segments {
		if s.progress.Started() {
			p[name] = s.progress.Accumulated()
		} else {
			p[name] = s.params.Required
		}
	}
}

// Progress returns the drag progress of a segment: upper, lower or splint
func (b *BrokenLimb) Progress(segment string) *engine.DragProgress {
	if s := b.segments[segment]; s != nil {
		return s.progress
	}
	return nil
}

// Angle returns the current rotation of a segment
func (b *BrokenLimb) Angle(segment string) float64 {
	s := b.segments[segment]
	if s == nil {
		return 0
	}
	if !s.progress.Started() {
		return s.brokenAngle()
	}
	return s.angle()
}
