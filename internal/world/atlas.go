package world

import "fmgvault/internal/logging"

// Atlas bundles a dataset with everything derived from it. It is built once
// before fan-out and shared read-only by every task.
type Atlas struct {
	Dataset  *Dataset
	Resolver *Resolver
	Biomes   []Biome
	Graph    *RouteGraph
	Markers  map[int]*Marker
}

// NewAtlas derives the indices for ds.
func NewAtlas(ds *Dataset) *Atlas {
	timer := logging.StartTimer(logging.CategoryIndex, "build atlas")
	defer timer.Stop()

	biomes := BuildBiomeTable(ds)
	graph := BuildRouteAdjacency(ds)
	markers := BuildMarkerIndex(ds)
	logging.Index("biomes=%d route edges=%d marker cells=%d", len(biomes), graph.Len(), len(markers))

	return &Atlas{
		Dataset:  ds,
		Resolver: newResolver(ds, biomes, graph),
		Biomes:   biomes,
		Graph:    graph,
		Markers:  markers,
	}
}

// Trace runs TracePassages for rt against this atlas.
func (a *Atlas) Trace(rt *Route) *Passages {
	return TracePassages(rt, a.Resolver, a.Graph, a.Markers)
}
