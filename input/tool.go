package input

import (
	"fmt"
	"math"
	"strings"
)

// Tool is the single process-wide tool selection
type Tool uint8

const (
	ToolNone Tool = iota
	ToolHand
	ToolSplint
	ToolTape
	ToolForceps
	ToolThermalOintment
	ToolDressing
	ToolScissors

	// ToolAny matches every tool in transition declarations, never selected
	ToolAny Tool = 0xFF
)

var toolNames = map[Tool]string{
	ToolNone:            "NONE",
	ToolHand:            "HANDTOOL",
	ToolSplint:          "SPLINT",
	ToolTape:            "TAPE",
	ToolForceps:         "FORCEPS",
	ToolThermalOintment: "THERMAL_OINTMENT",
	ToolDressing:        "DRESSING",
	ToolScissors:        "SCISSORS",
	ToolAny:             "ANY",
}

// Tools lists selectable tools in tool-wheel order
var Tools = []Tool{
	ToolHand,
	ToolSplint,
	ToolTape,
	ToolForceps,
	ToolThermalOintment,
	ToolDressing,
	ToolScissors,
}

func (t Tool) String() string {
	if name, ok := toolNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tool(%d)", uint8(t))
}

// Matches reports whether the active tool satisfies a required tool
func (t Tool) Matches(active Tool) bool {
	return t == ToolAny || t == active
}

// ParseTool resolves a tool name as written in graph and scenario files
// Empty string resolves to ToolAny
func ParseTool(s string) (Tool, error) {
	if s == "" {
		return ToolAny, nil
	}
	for t, name := range toolNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return ToolNone, fmt.Errorf("unknown tool %q", s)
}

func hypot(x, y float64) float64 {
	return math.Hypot(x, y)
}
