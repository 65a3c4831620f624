package clothing

import (
	"fmt"
	"strings"
)

// Region is a body area an injury is located on
type Region uint8

const (
	Chest Region = iota
	LeftArm
	RightArm
	LeftLeg
	RightLeg
	LeftHand
	RightHand
	LeftFoot
	RightFoot

	regionCount
)

// Regions lists every region in per-tick check priority
var Regions = [regionCount]Region{
	Chest, LeftArm, RightArm, LeftLeg, RightLeg, LeftHand, RightHand, LeftFoot, RightFoot,
}

var regionNames = [regionCount]string{
	Chest:     "Chest",
	LeftArm:   "LeftArm",
	RightArm:  "RightArm",
	LeftLeg:   "LeftLeg",
	RightLeg:  "RightLeg",
	LeftHand:  "LeftHand",
	RightHand: "RightHand",
	LeftFoot:  "LeftFoot",
	RightFoot: "RightFoot",
}

func (r Region) String() string {
	if r < regionCount {
		return regionNames[r]
	}
	return fmt.Sprintf("Region(%d)", uint8(r))
}

// Valid reports whether r names a body region
func (r Region) Valid() bool { return r < regionCount }

// ParseRegion accepts "LeftArm", "left_arm", "left-arm" or "LEFT_ARM"
func ParseRegion(s string) (Region, error) {
	norm := strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
	for i, name := range regionNames {
		if strings.EqualFold(name, norm) {
			return Region(i), nil
		}
	}
	return 0, fmt.Errorf("unknown body region %q", s)
}

// MarshalText encodes the region name
func (r Region) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid region %d", r)
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes any form accepted by ParseRegion
func (r *Region) UnmarshalText(b []byte) error {
	v, err := ParseRegion(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
