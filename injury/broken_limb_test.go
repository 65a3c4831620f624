package injury

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/field-medic/asset"
	"github.com/lixenwraith/field-medic/clothing"
	"github.com/lixenwraith/field-medic/config"
	"github.com/lixenwraith/field-medic/input"
	"github.com/lixenwraith/field-medic/render"
)

func TestBrokenLimb_InitPosesSegments(t *testing.T) {
	b := newArm(t)
	cmds, err := b.Init()
	require.NoError(t, err)

	assert.Equal(t, "BROKEN", b.State())

	upper, ok := findCmd(cmds, render.OpSetRotation, "arm/upper")
	require.True(t, ok)
	assert.InDelta(t, -167.7+22.72, upper.Degrees, 1e-9)

	lower, ok := findCmd(cmds, render.OpSetRotation, "arm/lower")
	require.True(t, ok)
	assert.InDelta(t, 50.0, lower.Degrees, 1e-9)

	for _, obj := range []string{"arm/splint_hitbox", "arm/splint"} {
		c, ok := findCmd(cmds, render.OpSetActive, obj)
		require.True(t, ok, obj)
		assert.False(t, c.Enabled, obj)
	}
}

func TestBrokenLimb_WrongToolAndCoveredIgnored(t *testing.T) {
	b := newArm(t)
	_, err := b.Init()
	require.NoError(t, err)

	assert.Nil(t, click(b, input.KindClickDown, "upper", input.ToolSplint))
	assert.Equal(t, "BROKEN", b.State())

	covered := b.Handle(input.Event{Kind: input.KindClickDown, Target: "arm/upper"}, Context{Tool: input.ToolHand})
	assert.Nil(t, covered)
	assert.Equal(t, "BROKEN", b.State())

	assert.Nil(t, click(b, input.KindClickDown, "not_mine", input.ToolHand))
	assert.Equal(t, "BROKEN", b.State())
}

func TestBrokenLimb_DragResumesAfterRevert(t *testing.T) {
	b := newArm(t)
	_, err := b.Init()
	require.NoError(t, err)

	click(b, input.KindClickDown, "upper", input.ToolHand)
	require.Equal(t, "FIXING_UPPER", b.State())

	// Wrong direction is discarded
	assert.Empty(t, step(b, input.Frame{DragDelta: 0.2}))
	assert.InDelta(t, 22.72, b.Progress("upper").Accumulated(), 1e-9)

	cmds := step(b, input.Frame{DragDelta: -0.2})
	rot, ok := findCmd(cmds, render.OpSetRotation, "arm/upper")
	require.True(t, ok)
	assert.InDelta(t, -167.7+10.72, rot.Degrees, 1e-9)

	click(b, input.KindClickUp, "upper", input.ToolHand)
	assert.Equal(t, "BROKEN", b.State())
	// Second release after the revert matches nothing
	assert.Nil(t, click(b, input.KindClickUp, "upper", input.ToolHand))

	click(b, input.KindClickDown, "upper", input.ToolHand)
	require.Equal(t, "FIXING_UPPER", b.State())
	assert.InDelta(t, 10.72, b.Progress("upper").Accumulated(), 1e-9, "progress kept across revert")

	cmds = step(b, input.Frame{DragDelta: -0.2})
	assert.Equal(t, "UPPER_DONE", b.State())

	snap, ok := findCmd(cmds, render.OpSetRotation, "arm/upper")
	require.True(t, ok)
	assert.InDelta(t, -167.7, snap.Degrees, 1e-9)
	collider, ok := findCmd(cmds, render.OpSetCollider, "arm/upper")
	require.True(t, ok)
	assert.False(t, collider.Enabled)
	assert.Equal(t, []string{SoundStepComplete}, sounds(cmds))
}

func TestBrokenLimb_FullTreatment(t *testing.T) {
	b := newArm(t)
	_, err := b.Init()
	require.NoError(t, err)

	healed := 0
	b.OnHealed(func() { healed++ })
	var trail []string
	b.OnTransition(func(from, to, trigger string) { trail = append(trail, to) })

	click(b, input.KindClickDown, "upper", input.ToolHand)
	step(b, input.Frame{DragDelta: -1})
	require.Equal(t, "UPPER_DONE", b.State())

	click(b, input.KindClickDown, "lower", input.ToolHand)
	cmds := step(b, input.Frame{DragDelta: -1})
	require.Equal(t, "LOWER_DONE", b.State())
	hitbox, ok := findCmd(cmds, render.OpSetActive, "arm/splint_hitbox")
	require.True(t, ok)
	assert.True(t, hitbox.Enabled)

	cmds = click(b, input.KindClickDown, "splint_hitbox", input.ToolSplint)
	require.Equal(t, "ROTATE_SPLINT_1", b.State(), "splint placement chains into rotation")
	splint, ok := findCmd(cmds, render.OpSetActive, "arm/splint")
	require.True(t, ok)
	assert.True(t, splint.Enabled)

	// Tape before the splint is rotated is not buffered
	assert.Nil(t, click(b, input.KindClickDown, "splint", input.ToolTape))

	click(b, input.KindClickDown, "splint", input.ToolHand)
	require.Equal(t, "ROTATE_SPLINT_1_IN_PROGRESS", b.State())
	cmds = step(b, input.Frame{DragDelta: -0.3})
	rot, ok := findCmd(cmds, render.OpSetRotation, "arm/splint")
	require.True(t, ok)
	assert.InDelta(t, 9.0, rot.Degrees, 1e-9, "splint rotates with inverted sign")

	step(b, input.Frame{DragDelta: -1})
	require.Equal(t, "SPLINT_1_DONE", b.State())

	click(b, input.KindClickDown, "splint", input.ToolTape)
	assert.Equal(t, "SPLINT_1_DONE", b.State())
	assert.Zero(t, healed)

	cmds = click(b, input.KindClickDown, "splint", input.ToolTape)
	assert.Equal(t, "HEALED", b.State())
	assert.True(t, b.Healed())
	assert.Equal(t, []string{SoundCompletelyHealed}, sounds(cmds))

	// Third tape is a no-op
	assert.Nil(t, click(b, input.KindClickDown, "splint", input.ToolTape))
	assert.Nil(t, step(b, input.Frame{DragDelta: -1}))
	assert.Equal(t, 1, healed)

	assert.Equal(t, []string{
		"FIXING_UPPER", "UPPER_DONE", "FIXING_LOWER", "LOWER_DONE",
		"SPLINT_1", "ROTATE_SPLINT_1", "ROTATE_SPLINT_1_IN_PROGRESS", "SPLINT_1_DONE", "HEALED",
	}, trail)

	snap := b.Snapshot()
	require.Len(t, snap.Gates, 1)
	assert.Equal(t, 2, snap.Gates[0].Count)
	assert.False(t, snap.Gates[0].Armed)
	assert.Zero(t, snap.Progress["splint"])
}

func TestBrokenLimb_TapesFromParams(t *testing.T) {
	params := config.DefaultBrokenLimb()
	params.Tapes = 3
	b, err := NewBrokenLimb("arm", clothing.LeftArm, 1, params, asset.Graphs{}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Snapshot().Gates[0].Required)
}

func TestBrokenLimb_RejectsBadParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.BrokenLimbParams)
	}{
		{"zero required", func(p *config.BrokenLimbParams) { p.Upper.Required = 0 }},
		{"zero scale", func(p *config.BrokenLimbParams) { p.Lower.Scale = 0 }},
		{"bad sign", func(p *config.BrokenLimbParams) { p.Splint.RotationSign = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := config.DefaultBrokenLimb()
			tt.mutate(&params)
			_, err := NewBrokenLimb("arm", clothing.LeftArm, 1, params, asset.Graphs{}, "", nil)
			assert.Error(t, err)
		})
	}
}
