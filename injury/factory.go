package injury

import (
	"fmt"
	"log/slog"

	"github.com/lixenwraith/field-medic/clothing"
	"github.com/lixenwraith/field-medic/config"
	"github.com/lixenwraith/field-medic/input"
)

// Collaborators are the host services injuries may require
type Collaborators struct {
	// Disposal per injury id; injuries that need one and find none fail to build
	Disposal func(injuryID string) Disposal
	Logger   *slog.Logger
}

// Build creates one injury from its scenario declaration
func Build(spec config.InjurySpec, graphs GraphSource, collab Collaborators) (Injury, error) {
	region, err := clothing.ParseRegion(spec.Region)
	if err != nil {
		return nil, fmt.Errorf("injury %q: %w", spec.ID, err)
	}
	if spec.ID == "" {
		return nil, fmt.Errorf("injury with kind %q: missing id", spec.Kind)
	}

	switch spec.Kind {
	case config.KindBrokenLimb:
		params := config.DefaultBrokenLimb()
		if spec.BrokenLimb != nil {
			params = *spec.BrokenLimb
		}
		return NewBrokenLimb(spec.ID, region, spec.Severity, params, graphs, spec.Graph, collab.Logger)

	case config.KindWhitePhosphorus:
		params := config.DefaultWhitePhosphorus()
		if spec.WhitePhosphorus != nil {
			params = *spec.WhitePhosphorus
		}
		var disposal Disposal
		if collab.Disposal != nil {
			disposal = collab.Disposal(spec.ID)
		}
		origin := input.Vec2{X: spec.Origin[0], Y: spec.Origin[1]}
		return NewWhitePhosphorus(spec.ID, region, origin, params, disposal, graphs, spec.Graph, collab.Logger)

	default:
		return nil, fmt.Errorf("injury %q: %w %q", spec.ID, ErrUnknownKind, spec.Kind)
	}
}

// BuildScenario creates every injury of a scenario in declaration order
func BuildScenario(s *config.Scenario, graphs GraphSource, collab Collaborators) ([]Injury, error) {
	out := make([]Injury, 0, len(s.Injuries))
	for _, spec := range s.Injuries {
		inj, err := Build(spec, graphs, collab)
		if err != nil {
			return nil, err
		}
		out = append(out, inj)
	}
	return out, nil
}
