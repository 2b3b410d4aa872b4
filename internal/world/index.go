package world

import "sort"

// BuildBiomeTable turns the columnar biome data into one row per id. Row i
// reads index i of every column; a short column leaves the zero value.
func BuildBiomeTable(ds *Dataset) []Biome {
	bd := ds.BiomesData
	out := make([]Biome, 0, len(bd.I))
	for _, id := range bd.I {
		b := Biome{ID: id}
		if id >= 0 {
			if id < len(bd.Name) {
				b.Name = bd.Name[id]
			}
			if id < len(bd.Color) {
				b.Color = bd.Color[id]
			}
			if id < len(bd.Cost) {
				b.Cost = bd.Cost[id]
			}
			if id < len(bd.Habitability) {
				b.Habitability = bd.Habitability[id]
			}
			if id < len(bd.Icons) {
				b.Icons = bd.Icons[id]
			}
			if id < len(bd.IconsDensity) {
				b.IconsDensity = bd.IconsDensity[id]
			}
		}
		out = append(out, b)
	}
	return out
}

// Edge is one adjacency entry: the neighbouring cell and the route linking it.
type Edge struct {
	Cell  int
	Route int
}

// RouteGraph maps a cell to its route-linked neighbours. It is symmetric and
// never modified after BuildRouteAdjacency returns.
type RouteGraph struct {
	links map[int]map[int]int
}

// BuildRouteAdjacency links every pair of consecutive distinct cells on each
// route in both directions. When two routes share a segment the later route wins.
func BuildRouteAdjacency(ds *Dataset) *RouteGraph {
	g := &RouteGraph{links: make(map[int]map[int]int)}
	for _, rt := range ds.Routes {
		cells := rt.PointCells()
		for i := 0; i+1 < len(cells); i++ {
			a, b := cells[i], cells[i+1]
			if a == b || a < 0 || b < 0 {
				continue
			}
			g.link(a, b, rt.ID)
			g.link(b, a, rt.ID)
		}
	}
	return g
}

func (g *RouteGraph) link(from, to, route int) {
	m, ok := g.links[from]
	if !ok {
		m = make(map[int]int)
		g.links[from] = m
	}
	m[to] = route
}

// Edges returns the neighbours of cell ordered by cell id.
func (g *RouteGraph) Edges(cell int) []Edge {
	m := g.links[cell]
	if len(m) == 0 {
		return nil
	}
	out := make([]Edge, 0, len(m))
	for to, route := range m {
		out = append(out, Edge{Cell: to, Route: route})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cell < out[j].Cell })
	return out
}

// Route returns the route linking a and b.
func (g *RouteGraph) Route(a, b int) (int, bool) {
	route, ok := g.links[a][b]
	return route, ok
}

// Cells returns every cell with at least one edge, ascending.
func (g *RouteGraph) Cells() []int {
	out := make([]int, 0, len(g.links))
	for c := range g.links {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// Len returns the number of directed edges.
func (g *RouteGraph) Len() int {
	n := 0
	for _, m := range g.links {
		n += len(m)
	}
	return n
}

// BuildMarkerIndex maps each cell to the first marker placed on it.
func BuildMarkerIndex(ds *Dataset) map[int]*Marker {
	idx := make(map[int]*Marker, len(ds.Markers))
	for _, m := range ds.Markers {
		if _, taken := idx[m.Cell]; !taken {
			idx[m.Cell] = m
		}
	}
	return idx
}
