package world

import (
	"fmt"
	"strconv"

	"fmgvault/internal/logging"
)

// Default names used when a dataset omits an id-0 placeholder record.
const (
	defaultWildCultureName  = "Wildlands"
	defaultNeutralStateName = "Neutrals"
	defaultNoReligionName   = "No religion"
)

// Resolver is a read-only id index over a Dataset. Every lookup returns an
// absence signal instead of failing; only the foundational helpers return errors.
type Resolver struct {
	ds *Dataset

	cultures  map[int]Culture
	burgs     map[int]*Burg
	states    map[int]State
	provinces map[int]*Province
	religions map[int]Religion
	rivers    map[int]*River
	routes    map[int]*Route
	markers   map[int]*Marker
	biomes    map[int]*Biome
	cells     map[int]*Cell
	features  map[int]*Feature
	notes     map[string]Note
	nameBases map[int]*NameBase

	graph *RouteGraph
}

// NewResolver indexes every collection of ds by id.
func NewResolver(ds *Dataset) *Resolver {
	return newResolver(ds, BuildBiomeTable(ds), BuildRouteAdjacency(ds))
}

func newResolver(ds *Dataset, biomes []Biome, graph *RouteGraph) *Resolver {
	r := &Resolver{
		ds:        ds,
		cultures:  make(map[int]Culture, len(ds.Cultures)),
		burgs:     make(map[int]*Burg, len(ds.Burgs)),
		states:    make(map[int]State, len(ds.States)),
		provinces: make(map[int]*Province, len(ds.Provinces)),
		religions: make(map[int]Religion, len(ds.Religions)),
		rivers:    make(map[int]*River, len(ds.Rivers)),
		routes:    make(map[int]*Route, len(ds.Routes)),
		markers:   make(map[int]*Marker, len(ds.Markers)),
		biomes:    make(map[int]*Biome, len(biomes)),
		cells:     make(map[int]*Cell, len(ds.Cells)),
		features:  make(map[int]*Feature, len(ds.Features)),
		notes:     make(map[string]Note, len(ds.Notes)),
		nameBases: make(map[int]*NameBase, len(ds.NameBases)),
		graph:     graph,
	}

	for i, c := range ds.Cultures {
		if _, isWild := c.(*WildCulture); isWild {
			if i == 0 {
				r.cultures[0] = c
			}
			continue
		}
		if c.Core().ID == 0 {
			continue
		}
		r.cultures[c.Core().ID] = c
	}
	if _, ok := r.cultures[0]; !ok {
		logging.Resolve("no wild culture placeholder, using %q", defaultWildCultureName)
		r.cultures[0] = &WildCulture{CultureCore{Name: defaultWildCultureName}}
	}

	for i, s := range ds.States {
		if _, isNeutral := s.(*NeutralState); isNeutral {
			if i == 0 {
				r.states[0] = s
			}
			continue
		}
		if s.Core().ID == 0 {
			continue
		}
		r.states[s.Core().ID] = s
	}
	if _, ok := r.states[0]; !ok {
		logging.Resolve("no neutral state placeholder, using %q", defaultNeutralStateName)
		r.states[0] = &NeutralState{StateCore{Name: defaultNeutralStateName}}
	}

	for i, rel := range ds.Religions {
		if _, isNone := rel.(*NoReligion); isNone {
			if i == 0 {
				r.religions[0] = rel
			}
			continue
		}
		if rel.Core().ID == 0 {
			continue
		}
		r.religions[rel.Core().ID] = rel
	}
	if _, ok := r.religions[0]; !ok {
		logging.Resolve("no religion placeholder, using %q", defaultNoReligionName)
		r.religions[0] = &NoReligion{ReligionCore{Name: defaultNoReligionName}}
	}

	for _, b := range ds.Burgs {
		if b != nil && b.ID > 0 {
			r.burgs[b.ID] = b
		}
	}
	for _, p := range ds.Provinces {
		if p != nil && p.ID > 0 {
			r.provinces[p.ID] = p
		}
	}
	for _, rv := range ds.Rivers {
		r.rivers[rv.ID] = rv
	}
	for _, rt := range ds.Routes {
		r.routes[rt.ID] = rt
	}
	for _, m := range ds.Markers {
		r.markers[m.ID] = m
	}
	for i := range biomes {
		r.biomes[biomes[i].ID] = &biomes[i]
	}
	for _, c := range ds.Cells {
		r.cells[c.ID] = c
	}
	for _, f := range ds.Features {
		if f != nil {
			r.features[f.ID] = f
		}
	}
	for _, n := range ds.Notes {
		if _, dup := r.notes[n.ID]; !dup {
			r.notes[n.ID] = n
		}
	}
	for i := range ds.NameBases {
		r.nameBases[i] = &ds.NameBases[i]
	}
	return r
}

// Dataset returns the indexed dataset.
func (r *Resolver) Dataset() *Dataset { return r.ds }

// Resolve looks up any integer-keyed kind. Notes are keyed by string and are
// reached through MarkerNote instead.
func (r *Resolver) Resolve(kind Kind, id int) (any, bool) {
	switch kind {
	case KindCulture:
		return found(r.Culture(id))
	case KindBurg:
		return found(r.Burg(id))
	case KindState:
		return found(r.State(id))
	case KindProvince:
		return found(r.Province(id))
	case KindReligion:
		return found(r.Religion(id))
	case KindRiver:
		return found(r.River(id))
	case KindRoute:
		return found(r.Route(id))
	case KindMarker:
		return found(r.Marker(id))
	case KindBiome:
		return found(r.Biome(id))
	case KindNameBase:
		return found(r.NameBase(id))
	case KindCell:
		return found(r.Cell(id))
	case KindFeature:
		return found(r.Feature(id))
	}
	return nil, false
}

// found drops typed nils so absent lookups compare equal to nil.
func found[T any](v T, ok bool) (any, bool) {
	if !ok {
		return nil, false
	}
	return v, true
}

// Culture returns the culture with id. Id 0 is always the wild placeholder.
func (r *Resolver) Culture(id int) (Culture, bool) {
	c, ok := r.cultures[id]
	return c, ok
}

func (r *Resolver) Burg(id int) (*Burg, bool) {
	b, ok := r.burgs[id]
	return b, ok
}

// State returns the state with id. Id 0 is always the neutral placeholder.
func (r *Resolver) State(id int) (State, bool) {
	s, ok := r.states[id]
	return s, ok
}

func (r *Resolver) Province(id int) (*Province, bool) {
	p, ok := r.provinces[id]
	return p, ok
}

// Religion returns the religion with id. Id 0 is always the no-religion placeholder.
func (r *Resolver) Religion(id int) (Religion, bool) {
	rel, ok := r.religions[id]
	return rel, ok
}

func (r *Resolver) River(id int) (*River, bool) {
	rv, ok := r.rivers[id]
	return rv, ok
}

func (r *Resolver) Route(id int) (*Route, bool) {
	rt, ok := r.routes[id]
	return rt, ok
}

func (r *Resolver) Marker(id int) (*Marker, bool) {
	m, ok := r.markers[id]
	return m, ok
}

func (r *Resolver) Biome(id int) (*Biome, bool) {
	b, ok := r.biomes[id]
	return b, ok
}

func (r *Resolver) NameBase(id int) (*NameBase, bool) {
	nb, ok := r.nameBases[id]
	return nb, ok
}

func (r *Resolver) Cell(id int) (*Cell, bool) {
	c, ok := r.cells[id]
	return c, ok
}

func (r *Resolver) Feature(id int) (*Feature, bool) {
	f, ok := r.features[id]
	return f, ok
}

// MarkerNoteID is the annotation id the generator assigns to a marker.
func MarkerNoteID(markerID int) string {
	return "marker" + strconv.Itoa(markerID)
}

// MarkerNote returns the annotation attached to m.
func (r *Resolver) MarkerNote(m *Marker) (Note, bool) {
	if m == nil {
		return Note{}, false
	}
	n, ok := r.notes[MarkerNoteID(m.ID)]
	return n, ok
}

// MarkerAnnotation is MarkerNote for callers that cannot render without it.
func (r *Resolver) MarkerAnnotation(m *Marker) (Note, error) {
	n, ok := r.MarkerNote(m)
	if !ok {
		id := -1
		if m != nil {
			id = m.ID
		}
		return Note{}, &ReferenceError{From: KindMarker, FromID: id, To: KindNote, ToID: MarkerNoteID(id)}
	}
	return n, nil
}

// BurgCell returns the cell a burg stands on. The pack cell and its grid
// climate cell must both exist.
func (r *Resolver) BurgCell(b *Burg) (*Cell, error) {
	if b == nil {
		return nil, fmt.Errorf("nil burg")
	}
	c, ok := r.cells[b.Cell]
	if !ok || !c.HasClimate {
		return nil, &ReferenceError{From: KindBurg, FromID: b.ID, To: KindCell, ToID: strconv.Itoa(b.Cell)}
	}
	return c, nil
}

// CultureOrigins returns the cultures c descends from, skipping null and
// unknown ids.
func (r *Resolver) CultureOrigins(c Culture) []Culture {
	if c == nil {
		return nil
	}
	var out []Culture
	for _, id := range c.Core().OriginIDs() {
		if origin, ok := r.cultures[id]; ok {
			out = append(out, origin)
		}
	}
	return out
}

// ReligionOrigins returns the religions rel descends from.
func (r *Resolver) ReligionOrigins(rel Religion) []Religion {
	if rel == nil {
		return nil
	}
	var out []Religion
	for _, id := range rel.Core().Origins {
		if origin, ok := r.religions[id]; ok {
			out = append(out, origin)
		}
	}
	return out
}

// RiverParent returns the river rv flows into. Top-level rivers reference
// themselves and report absent.
func (r *Resolver) RiverParent(rv *River) (*River, bool) {
	if rv == nil || rv.Parent == rv.ID {
		return nil, false
	}
	return r.River(rv.Parent)
}

// RiverBasin returns the main river of rv's basin, absent when rv is itself the main river.
func (r *Resolver) RiverBasin(rv *River) (*River, bool) {
	if rv == nil || rv.Basin == rv.ID {
		return nil, false
	}
	return r.River(rv.Basin)
}

// IsCrossroad reports whether a cell joins more than three route segments
// or more than two road segments.
func (r *Resolver) IsCrossroad(cellID int) bool {
	if r.graph == nil {
		return false
	}
	edges := r.graph.Edges(cellID)
	if len(edges) > 3 {
		return true
	}
	roads := 0
	for _, e := range edges {
		if rt, ok := r.routes[e.Route]; ok && rt.Group == "roads" {
			roads++
		}
	}
	return roads > 2
}

// LatLong converts map pixel coordinates to latitude and longitude.
func (r *Resolver) LatLong(x, y float64) (lat, lon float64) {
	return LatLong(r.ds, x, y)
}
