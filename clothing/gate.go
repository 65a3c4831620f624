package clothing

import "errors"

// Member is an injury registered under a body region
type Member interface {
	Region() Region
	SetExposed(exposed bool)
}

// ExposedFunc runs after every member of a newly exposed region has been updated
type ExposedFunc func(r Region, members []Member)

// Gate holds one monotone exposure flag per region
// Flags flip covered -> exposed at most once; every member of the region observes the flip together
type Gate struct {
	query     Query
	buckets   [regionCount][]Member
	exposed   [regionCount]bool
	onExposed ExposedFunc
}

// NewGate bins members by region, marks them covered, then opens every region already accessible
func NewGate(query Query, members []Member, onExposed ExposedFunc) (*Gate, error) {
	if query == nil {
		return nil, errors.New("clothing gate: nil clothing query")
	}

	g := &Gate{query: query, onExposed: onExposed}
	for _, m := range members {
		if m == nil {
			return nil, errors.New("clothing gate: nil member")
		}
		r := m.Region()
		if !r.Valid() {
			return nil, errors.New("clothing gate: member with invalid region " + r.String())
		}
		m.SetExposed(false)
		g.buckets[r] = append(g.buckets[r], m)
	}

	// Scene start: everything already uncovered opens at once
	for _, r := range Regions {
		if query.RegionAccessible(r) {
			g.flip(r)
		}
	}
	return g, nil
}

// IsExposed reports whether the region's flag has flipped
func (g *Gate) IsExposed(r Region) bool {
	return r.Valid() && g.exposed[r]
}

// Tick checks covered regions in priority order and flips at most one
func (g *Gate) Tick() (Region, bool) {
	for _, r := range Regions {
		if g.exposed[r] {
			continue
		}
		if g.query.RegionAccessible(r) {
			g.flip(r)
			return r, true
		}
	}
	return 0, false
}

// OnClothingStateChanged rechecks a single region; returns true when it flipped
func (g *Gate) OnClothingStateChanged(r Region) bool {
	if !r.Valid() || g.exposed[r] {
		return false
	}
	if !g.query.RegionAccessible(r) {
		return false
	}
	g.flip(r)
	return true
}

// Members returns the members registered under r
func (g *Gate) Members(r Region) []Member {
	if !r.Valid() {
		return nil
	}
	return g.buckets[r]
}

// Exposed returns every exposed region in priority order
func (g *Gate) Exposed() []Region {
	var out []Region
	for _, r := range Regions {
		if g.exposed[r] {
			out = append(out, r)
		}
	}
	return out
}

func (g *Gate) flip(r Region) {
	g.exposed[r] = true
	for _, m := range g.buckets[r] {
		m.SetExposed(true)
	}
	if g.onExposed != nil {
		g.onExposed(r, g.buckets[r])
	}
}
