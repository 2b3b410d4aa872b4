package world

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBiomeTable_RowFidelity(t *testing.T) {
	ds := loadTiny(t)
	bd := ds.BiomesData
	table := BuildBiomeTable(ds)
	require.Len(t, table, len(bd.I))

	for _, row := range table {
		i := row.ID
		assert.Equal(t, bd.Name[i], row.Name, "name[%d]", i)
		assert.Equal(t, bd.Color[i], row.Color, "color[%d]", i)
		assert.Equal(t, bd.Cost[i], row.Cost, "cost[%d]", i)
		assert.Equal(t, bd.Habitability[i], row.Habitability, "habitability[%d]", i)
		assert.Equal(t, bd.Icons[i], row.Icons, "icons[%d]", i)
		assert.Equal(t, bd.IconsDensity[i], row.IconsDensity, "iconsDensity[%d]", i)
	}
}

func TestBuildBiomeTable_SparseIDsAndShortColumns(t *testing.T) {
	ds := &Dataset{BiomesData: BiomesData{
		I:            []int{0, 2, 5},
		Name:         []string{"A", "B", "C"},
		Habitability: []float64{1, 2, 3},
	}}
	got := BuildBiomeTable(ds)
	want := []Biome{
		{ID: 0, Name: "A", Habitability: 1},
		{ID: 2, Name: "C", Habitability: 3},
		{ID: 5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildBiomeTable mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRouteAdjacency_Symmetric(t *testing.T) {
	g := BuildRouteAdjacency(loadTiny(t))
	require.NotZero(t, g.Len())

	for _, a := range g.Cells() {
		for _, e := range g.Edges(a) {
			back, ok := g.Route(e.Cell, a)
			require.True(t, ok, "missing reverse edge %d->%d", e.Cell, a)
			assert.Equal(t, e.Route, back)
		}
	}
}

func TestBuildRouteAdjacency_Edges(t *testing.T) {
	g := BuildRouteAdjacency(loadTiny(t))

	want := []Edge{{Cell: 3, Route: 1}, {Cell: 5, Route: 0}, {Cell: 7, Route: 0}}
	if diff := cmp.Diff(want, g.Edges(9)); diff != "" {
		t.Errorf("edges at 9 (-want +got):\n%s", diff)
	}
	_, ok := g.Route(5, 5)
	assert.False(t, ok, "no self loops")
	assert.Nil(t, g.Edges(12345))
}

func TestBuildRouteAdjacency_Degenerate(t *testing.T) {
	ds := &Dataset{Routes: []*Route{
		{ID: 4, Points: [][]float64{{1, 1, 8}, {2, 2, 8}, {3, 3, 8}}},
		{ID: 5, Points: [][]float64{{1, 1, 8}}},
		{ID: 6},
	}}
	g := BuildRouteAdjacency(ds)
	assert.Zero(t, g.Len())
	assert.Empty(t, g.Cells())
}

func TestBuildMarkerIndex_FirstWins(t *testing.T) {
	ds := &Dataset{Markers: []*Marker{{ID: 0, Cell: 3}, {ID: 1, Cell: 3}, {ID: 2, Cell: 4}}}
	idx := BuildMarkerIndex(ds)
	require.Len(t, idx, 2)
	assert.Equal(t, 0, idx[3].ID)
	assert.Equal(t, 2, idx[4].ID)
}

func TestNewAtlas(t *testing.T) {
	a := NewAtlas(loadTiny(t))
	assert.Len(t, a.Biomes, 3)
	assert.Len(t, a.Markers, 2)
	assert.NotNil(t, a.Resolver)
	assert.Same(t, a.Graph, a.Resolver.graph)
}
