package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fmgvault/internal/world"
)

func TestFileName(t *testing.T) {
	cases := map[string]string{
		"Alpha":               "Alpha",
		"  spaced  ":          "spaced",
		`a/b\c:d*e?f"g<h>i|j`: "abcdefghij",
		"Tinyfolk (Elf)":      "Tinyfolk Elf",
		"Cafe\u0301":          "Caf\u00e9",
		"":                    "",
		"(|)":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, FileName(in), "FileName(%q)", in)
	}
}

func TestEntityFileNames(t *testing.T) {
	culture := &world.FullCulture{CultureCore: world.CultureCore{ID: 1, Name: "Tinyfolk (Elf)"}}
	assert.Equal(t, "Tinyfolk", CultureFileName(culture))

	assert.Equal(t, "burg-7", BurgFileName(&world.Burg{ID: 7, Name: "???"}))
	assert.Equal(t, "roads-3", RouteFileName(&world.Route{ID: 3, Group: "roads", Name: "Kings Way"}))

	m := &world.Marker{ID: 4}
	assert.Equal(t, "marker-4", MarkerFileName(m, world.Note{}, false))
	assert.Equal(t, "Mount Fume", MarkerFileName(m, world.Note{Name: "Mount Fume"}, true))
	assert.Equal(t, "marker-4", MarkerFileName(m, world.Note{Name: "::"}, true))
}

func TestDisplayNames(t *testing.T) {
	assert.Equal(t, "ROAD 2", RouteDisplayName(&world.Route{ID: 2, Group: "roads"}))
	assert.Equal(t, "Hill Path", RouteDisplayName(&world.Route{ID: 1, Group: "trails", Name: "Hill Path"}))

	full := &world.FullState{StateCore: world.StateCore{ID: 1, Name: "Alphia"}, FullName: "Kingdom of Alphia"}
	assert.Equal(t, "Kingdom of Alphia", StateDisplayName(full))
	assert.Equal(t, "Neutrals", StateDisplayName(&world.NeutralState{StateCore: world.StateCore{Name: "Neutrals"}}))

	assert.Equal(t, "North", ProvinceDisplayName(&world.Province{Name: "North"}))
	assert.Equal(t, "Duchy of North", ProvinceDisplayName(&world.Province{Name: "North", FullName: "Duchy of North"}))
}

func testLayout(t *testing.T) *Layout {
	t.Helper()
	l, err := NewLayout(t.TempDir(), DefaultDirs())
	require.NoError(t, err)
	return l
}

func TestLinker(t *testing.T) {
	k := NewLinker(testLayout(t))

	culture := &world.FullCulture{CultureCore: world.CultureCore{ID: 1, Name: "Tinyfolk (Elf)"}}
	assert.Equal(t, "[[1. World/Cultures/Tinyfolk|Tinyfolk (Elf)]]", k.Culture(culture).Markdown())

	p := &world.Province{ID: 1, Name: "Northmarch", FullName: "Duchy of Northmarch"}
	assert.Equal(t, "[[1. World/Provinces/Northmarch|Duchy of Northmarch]]", k.Province(p).Markdown())

	m := &world.Marker{ID: 9}
	assert.Equal(t, "[[1. World/PointsOfInterest/marker-9|Unknown Marker 9]]", k.Marker(m, world.Note{}, false).Markdown())

	odd := Link{Target: "x/y", Display: "a|b[c]"}
	assert.Equal(t, "[[x/y|a-b(c)]]", odd.Markdown())

	assert.Equal(t, "1. World/Routes/roads-0.md", k.NotePath(world.KindRoute, "roads-0"))
}

func TestLayout_EnsureAndPaths(t *testing.T) {
	l := testLayout(t)
	require.NoError(t, l.Ensure())
	require.NoError(t, l.Ensure())

	for _, kind := range EntityKinds {
		dir, ok := l.KindDir(kind)
		require.True(t, ok, kind)
		info, err := os.Stat(l.Abs(dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	_, ok := l.KindDir(world.KindCell)
	assert.False(t, ok)

	assert.Equal(t, "1. World/1. World.md", l.HomepagePath())
	summary, ok := l.SummaryPath(world.KindCulture)
	require.True(t, ok)
	assert.Equal(t, "1. World/Cultures/Cultures.md", summary)
	assert.Equal(t, filepath.Join(l.Root, "z_Map", ".fmgvault", "manifest.json"), l.ManifestPath())
}
