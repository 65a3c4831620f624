package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/field-medic/clothing"
)

// Scenario is a patient and the injuries to treat in one session
type Scenario struct {
	Name     string       `yaml:"name"`
	Patient  Patient      `yaml:"patient"`
	Injuries []InjurySpec `yaml:"injuries"`
}

type Patient struct {
	Outfit OutfitSpec `yaml:"outfit"`
}

// OutfitSpec lists worn garments; omitted garments are not worn
type OutfitSpec struct {
	Top         *GarmentSpec `yaml:"top"`
	Bottom      *GarmentSpec `yaml:"bottom"`
	Accessories []string     `yaml:"accessories"` // Regions covered by gloves or shoes
}

type GarmentSpec struct {
	Worn bool     `yaml:"worn"`
	Open []string `yaml:"open"` // Regions already cut open
}

// InjurySpec declares one injury instance
type InjurySpec struct {
	ID       string     `yaml:"id"`
	Kind     string     `yaml:"kind"`
	Region   string     `yaml:"region"`
	Severity float64    `yaml:"severity"`
	Origin   [2]float64 `yaml:"origin"` // Injury anchor in patient space
	Graph    string     `yaml:"graph"`  // Optional graph file name overriding the kind's default

	BrokenLimb      *BrokenLimbParams      `yaml:"broken_limb"`
	WhitePhosphorus *WhitePhosphorusParams `yaml:"white_phosphorus"`
}

// DragParams configures one drag-aligned segment
type DragParams struct {
	Required     float64 `yaml:"required"`
	Scale        float64 `yaml:"scale"`
	Final        float64 `yaml:"final"`         // Angle once aligned
	RotationSign float64 `yaml:"rotation_sign"` // 1 or -1
}

type BrokenLimbParams struct {
	Upper  DragParams `yaml:"upper"`
	Lower  DragParams `yaml:"lower"`
	Splint DragParams `yaml:"splint"`
	Tapes  int        `yaml:"tapes"`
}

type WhitePhosphorusParams struct {
	Reignite             time.Duration `yaml:"reignite"`
	Escalate             time.Duration `yaml:"escalate"`
	Ointment             time.Duration `yaml:"ointment"`
	Proximity            float64       `yaml:"proximity"`
	WPSeverity           float64       `yaml:"wp_severity"`
	SecondDegreeSeverity float64       `yaml:"second_degree_severity"`
	ThirdDegreeSeverity  float64       `yaml:"third_degree_severity"`
	Dressings            int           `yaml:"dressings"`
}

// DefaultBrokenLimb returns the stock broken-arm tuning
func DefaultBrokenLimb() BrokenLimbParams {
	return BrokenLimbParams{
		Upper:  DragParams{Required: 22.72, Scale: 60, Final: -167.7, RotationSign: 1},
		Lower:  DragParams{Required: 50, Scale: 60, Final: 0, RotationSign: 1},
		Splint: DragParams{Required: 17, Scale: 30, Final: 17, RotationSign: -1},
		Tapes:  2,
	}
}

// DefaultWhitePhosphorus returns the stock white phosphorus tuning
func DefaultWhitePhosphorus() WhitePhosphorusParams {
	return WhitePhosphorusParams{
		Reignite:             5 * time.Second,
		Escalate:             10 * time.Second,
		Ointment:             2500 * time.Millisecond,
		Proximity:            0.2,
		WPSeverity:           3,
		SecondDegreeSeverity: 2,
		ThirdDegreeSeverity:  4,
		Dressings:            1,
	}
}

func (d *DragParams) applyDefaults(def DragParams) {
	if d.Required == 0 {
		d.Required = def.Required
	}
	if d.Scale == 0 {
		d.Scale = def.Scale
	}
	if d.RotationSign == 0 {
		d.RotationSign = def.RotationSign
		// Final is meaningful at zero, only inherit it with the rest of an untouched segment
		if d.Final == 0 {
			d.Final = def.Final
		}
	}
}

func (p *BrokenLimbParams) ApplyDefaults() {
	def := DefaultBrokenLimb()
	p.Upper.applyDefaults(def.Upper)
	p.Lower.applyDefaults(def.Lower)
	p.Splint.applyDefaults(def.Splint)
	if p.Tapes == 0 {
		p.Tapes = def.Tapes
	}
}

func (p *WhitePhosphorusParams) ApplyDefaults() {
	def := DefaultWhitePhosphorus()
	if p.Reignite == 0 {
		p.Reignite = def.Reignite
	}
	if p.Escalate == 0 {
		p.Escalate = def.Escalate
	}
	if p.Ointment == 0 {
		p.Ointment = def.Ointment
	}
	if p.Proximity == 0 {
		p.Proximity = def.Proximity
	}
	if p.WPSeverity == 0 {
		p.WPSeverity = def.WPSeverity
	}
	if p.SecondDegreeSeverity == 0 {
		p.SecondDegreeSeverity = def.SecondDegreeSeverity
	}
	if p.ThirdDegreeSeverity == 0 {
		p.ThirdDegreeSeverity = def.ThirdDegreeSeverity
	}
	if p.Dressings == 0 {
		p.Dressings = def.Dressings
	}
}

// ApplyDefaults fills per-kind parameters left unset
func (s *Scenario) ApplyDefaults() {
	for i := range s.Injuries {
		inj := &s.Injuries[i]
		switch inj.Kind {
		case KindBrokenLimb:
			if inj.BrokenLimb == nil {
				inj.BrokenLimb = &BrokenLimbParams{}
			}
			inj.BrokenLimb.ApplyDefaults()
		case KindWhitePhosphorus:
			if inj.WhitePhosphorus == nil {
				inj.WhitePhosphorus = &WhitePhosphorusParams{}
			}
			inj.WhitePhosphorus.ApplyDefaults()
		}
	}
}

// Injury kinds accepted in scenario files
const (
	KindBrokenLimb      = "broken_limb"
	KindWhitePhosphorus = "white_phosphorus"
)

// Validate checks structure; kind-specific checks happen when injuries are built
func (s *Scenario) Validate() error {
	if len(s.Injuries) == 0 {
		return errors.New("scenario declares no injuries")
	}
	seen := make(map[string]bool, len(s.Injuries))
	for i, inj := range s.Injuries {
		if inj.ID == "" {
			return fmt.Errorf("injury %d: missing id", i)
		}
		if seen[inj.ID] {
			return fmt.Errorf("injury %d: duplicate id %q", i, inj.ID)
		}
		seen[inj.ID] = true
		if _, err := clothing.ParseRegion(inj.Region); err != nil {
			return fmt.Errorf("injury %q: %w", inj.ID, err)
		}
	}
	return nil
}

// ParseScenario decodes, defaults and validates a scenario document
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScenario reads a scenario file
func LoadScenario(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := ParseScenario(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Build creates the outfit described by the declared garments
func (o OutfitSpec) Build() (*clothing.Outfit, error) {
	var top *clothing.Top
	if o.Top != nil {
		top = &clothing.Top{Active: o.Top.Worn}
		for _, name := range o.Top.Open {
			r, err := clothing.ParseRegion(name)
			if err != nil {
				return nil, fmt.Errorf("top: %w", err)
			}
			switch r {
			case clothing.Chest:
				top.ChestOpen = true
			case clothing.LeftArm:
				top.LeftArmOpen = true
			case clothing.RightArm:
				top.RightArmOpen = true
			default:
				return nil, fmt.Errorf("top does not cover %s", r)
			}
		}
	}

	var bottom *clothing.Bottom
	if o.Bottom != nil {
		bottom = &clothing.Bottom{Active: o.Bottom.Worn}
		for _, name := range o.Bottom.Open {
			r, err := clothing.ParseRegion(name)
			if err != nil {
				return nil, fmt.Errorf("bottom: %w", err)
			}
			switch r {
			case clothing.LeftLeg:
				bottom.LeftLegOpen = true
			case clothing.RightLeg:
				bottom.RightLegOpen = true
			default:
				return nil, fmt.Errorf("bottom does not cover %s", r)
			}
		}
	}

	acc := make(map[clothing.Region]*clothing.Accessory, len(o.Accessories))
	for _, name := range o.Accessories {
		r, err := clothing.ParseRegion(name)
		if err != nil {
			return nil, fmt.Errorf("accessory: %w", err)
		}
		acc[r] = &clothing.Accessory{Active: true}
	}
	return clothing.NewOutfit(top, bottom, acc)
}
