package audio

import (
	"github.com/lixenwraith/field-medic/render"
)

// Player plays a named clip
type Player interface {
	Play(clip string) bool
}

// Sink is a render.Sink that plays PlaySound commands and ignores the rest
type Sink struct {
	player Player
}

// NewSink wraps p as a presentation sink
func NewSink(p Player) *Sink {
	return &Sink{player: p}
}

func (s *Sink) Apply(cmds ...render.Command) {
	for _, c := range cmds {
		if c.Op == render.OpPlaySound && c.Clip != "" {
			s.player.Play(c.Clip)
		}
	}
}
