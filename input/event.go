package input

import (
	"fmt"
	"strings"
	"time"
)

// Kind discriminates input events
type Kind uint8

const (
	KindNone Kind = iota

	// Player events raised by the host input layer
	KindClickDown  // Primary button pressed over a target
	KindClickUp    // Primary button released, or pointer left while pressed
	KindHoverEnter // Pointer entered a target
	KindHoverExit  // Pointer left a target

	// Internal kinds, never raised by the host
	KindTick  // Evaluated on every machine update
	KindAuto  // Evaluated immediately after entering a state
	KindTimer // Timer edge routed into the machine, Target names the timer
)

var kindNames = map[Kind]string{
	KindNone:       "None",
	KindClickDown:  "ClickDown",
	KindClickUp:    "ClickUp",
	KindHoverEnter: "HoverEnter",
	KindHoverExit:  "HoverExit",
	KindTick:       "Tick",
	KindAuto:       "Auto",
	KindTimer:      "Timer",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Player reports whether the kind originates from the host input layer
func (k Kind) Player() bool {
	return k >= KindClickDown && k <= KindHoverExit
}

// ParseKind resolves a kind name as written in graph files, case-insensitive
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if k != KindNone && strings.EqualFold(name, s) {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("unknown event kind %q", s)
}

// TargetSeparator joins injury id and object name in qualified targets
const TargetSeparator = "/"

// Event is a discrete input signal
type Event struct {
	Kind   Kind
	Target string // Qualified "<injury>/<object>", or timer name for KindTimer
	Tool   Tool   // Active tool when the event was pushed
}

// Qualify builds a qualified target id
func Qualify(injuryID, object string) string {
	return injuryID + TargetSeparator + object
}

// Split returns injury id and object name of the target
// A target without separator is returned as object with an empty injury id
func (e Event) Split() (injuryID, object string) {
	if i := strings.Index(e.Target, TargetSeparator); i >= 0 {
		return e.Target[:i], e.Target[i+len(TargetSeparator):]
	}
	return "", e.Target
}

// Local returns a copy addressed to the object name only
func (e Event) Local() Event {
	_, obj := e.Split()
	e.Target = obj
	return e
}

func (e Event) String() string {
	return fmt.Sprintf("%s(%s, %s)", e.Kind, e.Target, e.Tool)
}

// Vec2 is a pointer position in patient space
type Vec2 struct {
	X, Y float64
}

// Sub returns v - o
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Len returns the euclidean length
func (v Vec2) Len() float64 {
	return hypot(v.X, v.Y)
}

// Frame is the continuous input sampled once per tick
type Frame struct {
	DT        time.Duration
	DragDelta float64 // Horizontal drag axis accumulated since the previous frame
	Pointer   Vec2
	Tool      Tool
}
