package world

import "fmgvault/internal/logging"

// MarkerPassage is a marker on a traversed cell with its annotation, if any.
type MarkerPassage struct {
	Marker  *Marker
	Note    Note
	HasNote bool
}

// Passages is everything a route passes by, through or across. Each set is
// deduplicated by id and ordered by first encounter.
type Passages struct {
	Route *Route
	// Cells lists resolvable cells in first-visit order.
	Cells     []int
	Burgs     []*Burg
	Markers   []MarkerPassage
	Rivers    []*River
	States    []State
	Provinces []*Province
	Cultures  []Culture
	Religions []Religion
	Biomes    []*Biome
	Routes    []*Route
}

type seenSet map[int]struct{}

func (s seenSet) add(id int) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// TracePassages walks rt's points in order. Each cell is processed on its
// first visit only; cells that do not resolve (off-map points) are skipped.
// Owners with id 0 mean "no owner" and are not recorded. Biome 0 is a real
// biome and is recorded.
func TracePassages(rt *Route, res *Resolver, graph *RouteGraph, markers map[int]*Marker) *Passages {
	p := &Passages{Route: rt}
	if rt == nil {
		return p
	}

	visited := seenSet{}
	burgs, rivers, states, provinces := seenSet{}, seenSet{}, seenSet{}, seenSet{}
	cultures, religions, biomes, routes, marks := seenSet{}, seenSet{}, seenSet{}, seenSet{}, seenSet{}

	for _, cellID := range rt.PointCells() {
		if cellID < 0 || !visited.add(cellID) {
			continue
		}
		cell, ok := res.Cell(cellID)
		if !ok {
			continue
		}
		p.Cells = append(p.Cells, cellID)

		if cell.Burg > 0 {
			if b, ok := res.Burg(cell.Burg); ok && burgs.add(b.ID) {
				p.Burgs = append(p.Burgs, b)
			}
		}
		if m, ok := markers[cellID]; ok && marks.add(m.ID) {
			note, hasNote := res.MarkerNote(m)
			p.Markers = append(p.Markers, MarkerPassage{Marker: m, Note: note, HasNote: hasNote})
		}
		if cell.River > 0 {
			if rv, ok := res.River(cell.River); ok && rivers.add(rv.ID) {
				p.Rivers = append(p.Rivers, rv)
			}
		}
		if cell.State > 0 {
			if s, ok := res.State(cell.State); ok && states.add(cell.State) {
				p.States = append(p.States, s)
			}
		}
		if cell.Province > 0 {
			if pr, ok := res.Province(cell.Province); ok && provinces.add(pr.ID) {
				p.Provinces = append(p.Provinces, pr)
			}
		}
		if cell.Culture > 0 {
			if c, ok := res.Culture(cell.Culture); ok && cultures.add(cell.Culture) {
				p.Cultures = append(p.Cultures, c)
			}
		}
		if cell.Religion > 0 {
			if rel, ok := res.Religion(cell.Religion); ok && religions.add(cell.Religion) {
				p.Religions = append(p.Religions, rel)
			}
		}
		if b, ok := res.Biome(cell.Biome); ok && biomes.add(b.ID) {
			p.Biomes = append(p.Biomes, b)
		}
		if graph != nil {
			for _, e := range graph.Edges(cellID) {
				if e.Route == rt.ID {
					continue
				}
				if other, ok := res.Route(e.Route); ok && routes.add(other.ID) {
					p.Routes = append(p.Routes, other)
				}
			}
		}
	}
	logging.Route("route %d: cells=%d burgs=%d markers=%d crossings=%d",
		rt.ID, len(p.Cells), len(p.Burgs), len(p.Markers), len(p.Routes))
	return p
}
