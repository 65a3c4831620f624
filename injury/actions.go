package injury

import (
	"github.com/lixenwraith/field-medic/engine/fsm"
	"github.com/lixenwraith/field-medic/render"
)

// Action names shared by every injury graph
const (
	actionPlaySound     = "PlaySound"
	actionPlayAnimation = "PlayAnimation"
	actionSetActive     = "SetActive"
	actionSetCollider   = "SetCollider"
	actionSetRotation   = "SetRotation"
	actionArmGate       = "ArmGate"
	actionSetSeverity   = "SetSeverity"
)

// registerCommon installs the presentation and gate actions on a per-instance machine
func registerCommon[T any](m *fsm.Machine[T], b *Base) {
	m.RegisterAction(actionPlaySound, func(_ T, args fsm.Args) {
		b.emit(render.PlaySound(args.String("clip")))
	}, "clip")

	m.RegisterAction(actionPlayAnimation, func(_ T, args fsm.Args) {
		b.emit(render.PlayAnimation(b.target(args.String("object")), args.String("clip")))
	}, "object", "clip")

	m.RegisterAction(actionSetActive, func(_ T, args fsm.Args) {
		b.emit(render.SetActive(b.target(args.String("object")), args.Bool("active")))
	}, "object", "active")

	m.RegisterAction(actionSetCollider, func(_ T, args fsm.Args) {
		b.emit(render.SetColliderEnabled(b.target(args.String("object")), args.Bool("enabled")))
	}, "object", "enabled")

	m.RegisterAction(actionSetRotation, func(_ T, args fsm.Args) {
		b.emit(render.SetRotation(b.target(args.String("object")), args.Float("degrees")))
	}, "object", "degrees")

	m.RegisterAction(actionArmGate, func(_ T, args fsm.Args) {
		if g := b.gates[args.String("gate")]; g != nil {
			g.Arm()
		}
	}, "gate")

	m.RegisterAction(actionSetSeverity, func(_ T, args fsm.Args) {
		b.severity = args.Float("value")
	}, "value")
}
