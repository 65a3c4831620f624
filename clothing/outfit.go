package clothing

import (
	"fmt"
	"sync"
)

// Query reports whether clothing leaves a region reachable
type Query interface {
	RegionAccessible(r Region) bool
}

// QueryFunc adapts a function to Query
type QueryFunc func(r Region) bool

func (f QueryFunc) RegionAccessible(r Region) bool { return f(r) }

// Top covers chest and arms; each zone can be cut open separately
type Top struct {
	Active       bool
	ChestOpen    bool
	LeftArmOpen  bool
	RightArmOpen bool
}

// Bottom covers the legs
type Bottom struct {
	Active       bool
	LeftLegOpen  bool
	RightLegOpen bool
}

// Accessory covers a single hand or foot
type Accessory struct {
	Active bool
}

// Outfit is the patient's clothing, written by the host and read each tick by the gate
// A nil garment means the patient is not wearing it
type Outfit struct {
	mu          sync.RWMutex
	top         *Top
	bottom      *Bottom
	accessories map[Region]*Accessory
}

// NewOutfit creates an outfit; accessories may only be placed on hands and feet
func NewOutfit(top *Top, bottom *Bottom, accessories map[Region]*Accessory) (*Outfit, error) {
	o := &Outfit{top: top, bottom: bottom, accessories: make(map[Region]*Accessory)}
	for r, a := range accessories {
		if !isExtremity(r) {
			return nil, fmt.Errorf("accessory on %s: only hands and feet take accessories", r)
		}
		if a != nil {
			o.accessories[r] = a
		}
	}
	return o, nil
}

// Naked returns an outfit with nothing worn
func Naked() *Outfit {
	o, _ := NewOutfit(nil, nil, nil)
	return o
}

// RegionAccessible reports whether the region's garment is absent, inactive, or open at that zone
func (o *Outfit) RegionAccessible(r Region) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	switch r {
	case Chest:
		return o.top == nil || !o.top.Active || o.top.ChestOpen
	case LeftArm:
		return o.top == nil || !o.top.Active || o.top.LeftArmOpen
	case RightArm:
		return o.top == nil || !o.top.Active || o.top.RightArmOpen
	case LeftLeg:
		return o.bottom == nil || !o.bottom.Active || o.bottom.LeftLegOpen
	case RightLeg:
		return o.bottom == nil || !o.bottom.Active || o.bottom.RightLegOpen
	case LeftHand, RightHand, LeftFoot, RightFoot:
		a := o.accessories[r]
		return a == nil || !a.Active
	}
	return false
}

// Cut opens the garment zone over r; accessories are taken off since they cannot be cut open
// Returns false when nothing covered the region
func (o *Outfit) Cut(r Region) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch r {
	case Chest, LeftArm, RightArm:
		if o.top == nil || !o.top.Active {
			return false
		}
		switch r {
		case Chest:
			o.top.ChestOpen = true
		case LeftArm:
			o.top.LeftArmOpen = true
		case RightArm:
			o.top.RightArmOpen = true
		}
		return true
	case LeftLeg, RightLeg:
		if o.bottom == nil || !o.bottom.Active {
			return false
		}
		if r == LeftLeg {
			o.bottom.LeftLegOpen = true
		} else {
			o.bottom.RightLegOpen = true
		}
		return true
	}
	return o.takeOff(r)
}

// Remove takes off the whole garment or accessory covering r
func (o *Outfit) Remove(r Region) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch r {
	case Chest, LeftArm, RightArm:
		if o.top == nil || !o.top.Active {
			return false
		}
		o.top.Active = false
		return true
	case LeftLeg, RightLeg:
		if o.bottom == nil || !o.bottom.Active {
			return false
		}
		o.bottom.Active = false
		return true
	}
	return o.takeOff(r)
}

func (o *Outfit) takeOff(r Region) bool {
	a := o.accessories[r]
	if a == nil || !a.Active {
		return false
	}
	a.Active = false
	return true
}

// Covering returns the regions sharing r's garment
func Covering(r Region) []Region {
	switch r {
	case Chest, LeftArm, RightArm:
		return []Region{Chest, LeftArm, RightArm}
	case LeftLeg, RightLeg:
		return []Region{LeftLeg, RightLeg}
	}
	return []Region{r}
}

func isExtremity(r Region) bool {
	return r == LeftHand || r == RightHand || r == LeftFoot || r == RightFoot
}
