package bridge

import (
	"github.com/lixenwraith/field-medic/injury"
	"github.com/lixenwraith/field-medic/render"
)

// Inbound message types
const (
	MsgEvent    = "event"
	MsgTool     = "tool"
	MsgDrag     = "drag"
	MsgPointer  = "pointer"
	MsgClothing = "clothing"
	MsgDispose  = "dispose"
	MsgSnapshot = "snapshot"
	MsgPause    = "pause"
	MsgResume   = "resume"
)

// Outbound message types
const (
	MsgSession   = "session"
	MsgCommand   = "command"
	MsgHealed    = "healed"
	MsgAllHealed = "all_healed"
	MsgError     = "error"
)

// Inbound is a host-to-bridge message; fields are used according to Type
type Inbound struct {
	Type   string  `json:"type"`
	Kind   string  `json:"kind,omitempty"`   // event: ClickDown, ClickUp, HoverEnter, HoverExit
	Target string  `json:"target,omitempty"` // event: "<injury>/<object>"
	Tool   string  `json:"tool,omitempty"`   // tool
	Delta  float64 `json:"delta,omitempty"`  // drag
	X      float64 `json:"x,omitempty"`      // pointer
	Y      float64 `json:"y,omitempty"`      // pointer
	Action string  `json:"action,omitempty"` // clothing: cut, remove
	Region string  `json:"region,omitempty"` // clothing
	Injury string  `json:"injury,omitempty"` // dispose
}

// Outbound is a bridge-to-host message
type Outbound struct {
	Type     string        `json:"type"`
	Session  string        `json:"session,omitempty"`
	Command  *CommandMsg   `json:"command,omitempty"`
	Injury   string        `json:"injury,omitempty"`
	Injuries []SnapshotMsg `json:"injuries,omitempty"`
	Message  string        `json:"message,omitempty"`
}

// CommandMsg is the wire form of a presentation command
type CommandMsg struct {
	Op      string  `json:"op"`
	Target  string  `json:"target,omitempty"`
	Clip    string  `json:"clip,omitempty"`
	Enabled bool    `json:"enabled"`
	Degrees float64 `json:"degrees,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
}

// SnapshotMsg is the wire form of an injury snapshot
type SnapshotMsg struct {
	ID       string             `json:"id"`
	Kind     string             `json:"kind"`
	Region   string             `json:"region"`
	State    string             `json:"state"`
	Severity float64            `json:"severity"`
	Exposed  bool               `json:"exposed"`
	Healed   bool               `json:"healed"`
	Gates    []GateMsg          `json:"gates,omitempty"`
	Progress map[string]float64 `json:"progress,omitempty"`
}

type GateMsg struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Required int    `json:"required"`
	Armed    bool   `json:"armed"`
}

func commandMsg(c render.Command) *CommandMsg {
	return &CommandMsg{
		Op:      c.Op.String(),
		Target:  c.Target,
		Clip:    c.Clip,
		Enabled: c.Enabled,
		Degrees: c.Degrees,
		X:       c.X,
		Y:       c.Y,
	}
}

func snapshotMsgs(snaps []injury.Snapshot) []SnapshotMsg {
	out := make([]SnapshotMsg, 0, len(snaps))
	for _, s := range snaps {
		m := SnapshotMsg{
			ID:       s.ID,
			Kind:     s.Kind,
			Region:   s.Region.String(),
			State:    s.State,
			Severity: s.Severity,
			Exposed:  s.Exposed,
			Healed:   s.Healed,
			Progress: s.Progress,
		}
		for _, g := range s.Gates {
			m.Gates = append(m.Gates, GateMsg{Name: g.Name, Count: g.Count, Required: g.Required, Armed: g.Armed})
		}
		out = append(out, m)
	}
	return out
}
