package clothing

import (
	"slices"
	"testing"
)

type fakeMember struct {
	region  Region
	exposed bool
	changes []bool
}

func (f *fakeMember) Region() Region { return f.region }
func (f *fakeMember) SetExposed(e bool) {
	f.exposed = e
	f.changes = append(f.changes, e)
}

func fullOutfit(t *testing.T) *Outfit {
	t.Helper()
	o, err := NewOutfit(
		&Top{Active: true},
		&Bottom{Active: true},
		map[Region]*Accessory{
			LeftHand:  {Active: true},
			RightHand: {Active: true},
			LeftFoot:  {Active: true},
			RightFoot: {Active: true},
		},
	)
	if err != nil {
		t.Fatalf("NewOutfit: %v", err)
	}
	return o
}

func newGate(t *testing.T, o *Outfit, members []Member, fn func(Region, []Member)) *Gate {
	t.Helper()
	g, err := NewGate(o, members, fn)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	return g
}

func TestNewGate_NilQuery(t *testing.T) {
	if _, err := NewGate(nil, nil, nil); err == nil {
		t.Fatal("expected error for nil query")
	}
}

func TestNewGate_InitOpensAllAccessible(t *testing.T) {
	arm := &fakeMember{region: LeftArm}
	leg := &fakeMember{region: RightLeg}
	hand := &fakeMember{region: LeftHand}

	o, err := NewOutfit(nil, &Bottom{Active: true}, map[Region]*Accessory{LeftHand: {Active: true}})
	if err != nil {
		t.Fatalf("NewOutfit: %v", err)
	}

	var flipped []Region
	g := newGate(t, o, []Member{arm, leg, hand}, func(r Region, _ []Member) {
		flipped = append(flipped, r)
	})

	want := []Region{Chest, LeftArm, RightArm, RightHand, LeftFoot, RightFoot}
	if !slices.Equal(flipped, want) {
		t.Errorf("flipped: got %v, want %v", flipped, want)
	}
	if !arm.exposed || leg.exposed || hand.exposed {
		t.Errorf("exposure: arm=%v leg=%v hand=%v", arm.exposed, leg.exposed, hand.exposed)
	}
	// Covered first, then exposed once
	if !slices.Equal(arm.changes, []bool{false, true}) {
		t.Errorf("arm changes: %v", arm.changes)
	}
	if !g.IsExposed(Chest) || g.IsExposed(LeftLeg) {
		t.Error("gate flags disagree with outfit")
	}
}

func TestGate_TickFlipsOneRegionInPriorityOrder(t *testing.T) {
	o := fullOutfit(t)
	chest := &fakeMember{region: Chest}
	foot := &fakeMember{region: RightFoot}
	g := newGate(t, o, []Member{chest, foot}, nil)

	if _, ok := g.Tick(); ok {
		t.Fatal("nothing accessible yet")
	}

	o.Remove(RightFoot)
	o.Cut(Chest)

	r, ok := g.Tick()
	if !ok || r != Chest {
		t.Fatalf("first tick: got %v %v, want Chest", r, ok)
	}
	if !chest.exposed {
		t.Error("chest member not exposed")
	}
	if foot.exposed {
		t.Error("only one region flips per tick")
	}

	r, ok = g.Tick()
	if !ok || r != RightFoot {
		t.Fatalf("second tick: got %v %v, want RightFoot", r, ok)
	}
	if !foot.exposed {
		t.Error("foot member not exposed")
	}

	if _, ok := g.Tick(); ok {
		t.Error("third tick flipped a region")
	}
}

func TestGate_FlagsAreMonotone(t *testing.T) {
	top := &Top{Active: true}
	o, err := NewOutfit(top, nil, nil)
	if err != nil {
		t.Fatalf("NewOutfit: %v", err)
	}

	a := &fakeMember{region: Chest}
	b := &fakeMember{region: Chest}
	g := newGate(t, o, []Member{a, b}, nil)

	o.Remove(Chest)
	if !g.OnClothingStateChanged(Chest) {
		t.Fatal("chest did not flip after removal")
	}
	if !a.exposed || !b.exposed {
		t.Error("chest members not exposed")
	}

	// Garment put back on: flag never reverts
	top.Active = true
	if g.OnClothingStateChanged(Chest) {
		t.Error("chest flipped twice")
	}
	if _, ok := g.Tick(); ok {
		t.Error("arms stay covered by the garment")
	}
	if !g.IsExposed(Chest) {
		t.Error("chest flag reverted")
	}
	if !slices.Equal(a.changes, []bool{false, true}) {
		t.Errorf("member changes: %v", a.changes)
	}
	if n := len(g.Members(Chest)); n != 2 {
		t.Errorf("chest members: %d, want 2", n)
	}
}

func TestGate_OnClothingStateChangedChecksOnlyThatRegion(t *testing.T) {
	o := fullOutfit(t)
	g := newGate(t, o, nil, nil)

	o.Remove(LeftFoot)
	if g.OnClothingStateChanged(LeftHand) {
		t.Error("left hand flipped while its glove is on")
	}
	if !g.OnClothingStateChanged(LeftFoot) {
		t.Error("left foot did not flip")
	}
	if got := g.Exposed(); !slices.Equal(got, []Region{LeftFoot}) {
		t.Errorf("exposed: %v", got)
	}
}

func TestOutfit_Accessibility(t *testing.T) {
	o := fullOutfit(t)
	for _, r := range Regions {
		if o.RegionAccessible(r) {
			t.Errorf("%s accessible in full outfit", r)
		}
	}

	if !o.Cut(LeftArm) || !o.RegionAccessible(LeftArm) {
		t.Error("cut sleeve should open the left arm")
	}
	if o.RegionAccessible(RightArm) {
		t.Error("right arm opened by cutting the left sleeve")
	}

	if !o.Remove(LeftLeg) {
		t.Error("remove bottoms failed")
	}
	if !o.RegionAccessible(RightLeg) {
		t.Error("removing bottoms uncovers both legs")
	}
	if o.Remove(RightLeg) {
		t.Error("bottoms removed twice")
	}

	if !o.Cut(RightHand) || !o.RegionAccessible(RightHand) {
		t.Error("cutting a glove takes it off")
	}

	if _, err := NewOutfit(nil, nil, map[Region]*Accessory{Chest: {Active: true}}); err == nil {
		t.Error("accessory on chest accepted")
	}

	if n := len(Covering(RightArm)); n != 3 {
		t.Errorf("Covering(RightArm): %d regions, want 3", n)
	}
	if got := Covering(LeftFoot); !slices.Equal(got, []Region{LeftFoot}) {
		t.Errorf("Covering(LeftFoot): %v", got)
	}
}

func TestParseRegion(t *testing.T) {
	for _, s := range []string{"LeftArm", "left_arm", "left-arm", "LEFT_ARM"} {
		r, err := ParseRegion(s)
		if err != nil {
			t.Fatalf("ParseRegion(%q): %v", s, err)
		}
		if r != LeftArm {
			t.Errorf("ParseRegion(%q) = %v", s, r)
		}
	}
	if _, err := ParseRegion("tail"); err == nil {
		t.Error("expected error for unknown region")
	}

	var r Region
	if err := r.UnmarshalText([]byte("right_foot")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if r != RightFoot {
		t.Errorf("UnmarshalText: %v", r)
	}
}
