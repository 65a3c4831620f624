package injury

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/field-medic/asset"
	"github.com/lixenwraith/field-medic/clothing"
	"github.com/lixenwraith/field-medic/config"
	"github.com/lixenwraith/field-medic/input"
	"github.com/lixenwraith/field-medic/render"
)

const tick = 16 * time.Millisecond

func newArm(t *testing.T) *BrokenLimb {
	t.Helper()
	b, err := NewBrokenLimb("arm", clothing.LeftArm, 3, config.DefaultBrokenLimb(), asset.Graphs{}, "", nil)
	require.NoError(t, err)
	return b
}

func newBurn(t *testing.T, disposal Disposal) *WhitePhosphorus {
	t.Helper()
	w, err := NewWhitePhosphorus("burn", clothing.Chest, input.Vec2{X: 1, Y: 1}, config.DefaultWhitePhosphorus(), disposal, asset.Graphs{}, "", nil)
	require.NoError(t, err)
	return w
}

func click(inj Injury, kind input.Kind, object string, tool input.Tool) []render.Command {
	ev := input.Event{Kind: kind, Target: input.Qualify(inj.ID(), object)}
	return inj.Handle(ev, Context{Tool: tool, Exposed: true})
}

func step(inj Injury, frame input.Frame) []render.Command {
	if frame.DT == 0 {
		frame.DT = tick
	}
	return inj.Update(Context{Exposed: true, Frame: frame})
}

func findCmd(cmds []render.Command, op render.Op, target string) (render.Command, bool) {
	for _, c := range cmds {
		if c.Op == op && c.Target == target {
			return c, true
		}
	}
	return render.Command{}, false
}

func sounds(cmds []render.Command) []string {
	var out []string
	for _, c := range cmds {
		if c.Op == render.OpPlaySound {
			out = append(out, c.Clip)
		}
	}
	return out
}
