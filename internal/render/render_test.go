package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fmgvault/internal/vault"
	"fmgvault/internal/world"
)

func tinyRenderer(t *testing.T) (*Renderer, *world.Atlas) {
	t.Helper()
	ds, err := world.Load("../world/testdata/tiny.json")
	require.NoError(t, err)
	atlas := world.NewAtlas(ds)
	layout, err := vault.NewLayout(t.TempDir(), vault.DefaultDirs())
	require.NoError(t, err)
	return New(atlas, layout, Options{}), atlas
}

// requireNote checks the shared note shape and returns the text.
func requireNote(t *testing.T) func(text string, err error) string {
	t.Helper()
	return func(text string, err error) string {
		t.Helper()
		require.NoError(t, err)
		assert.True(t, len(text) > 4 && text[:4] == "---\n", "frontmatter first")
		doc, perr := vault.ParseDocument(text)
		require.NoError(t, perr)
		assert.Empty(t, doc.Custom)
		return text
	}
}

func TestCulture(t *testing.T) {
	r, a := tinyRenderer(t)
	c, _ := a.Resolver.Culture(1)
	text := requireNote(t)(r.Culture(c))

	assert.Contains(t, text, "species: Elf")
	assert.Contains(t, text, "# Tinyfolk (Elf)\n")
	assert.Contains(t, text, "- **Names**: [[1. World/NameBases/German|German]]")
	assert.Contains(t, text, "- **Population**: 5K (2K Urban, 3K Rural)")
	assert.Contains(t, text, "- **Area**: 360 mi<sup>2</sup>")
	assert.Contains(t, text, "- **Origins**: [[1. World/Cultures/Wildlands|Wildlands]]")

	wild, _ := a.Resolver.Culture(0)
	text = requireNote(t)(r.Culture(wild))
	assert.Contains(t, text, "species: Any")
	assert.NotContains(t, text, "**Origins**")
}

func TestBurg(t *testing.T) {
	r, a := tinyRenderer(t)
	alpha, _ := a.Resolver.Burg(1)
	text := requireNote(t)(r.Burg(alpha))

	assert.Contains(t, text, "  - city\n")
	assert.NotContains(t, text, "crossroad")
	assert.Contains(t, text, `# Alpha<span title="Capital City">&Star;</span>`)
	assert.Contains(t, text, "- **Population**: 2.5K")
	assert.Contains(t, text, "- **Temperature**: 15°C")
	assert.Contains(t, text, "- **Biome**: [[1. World/Biomes/Grassland|Grassland]]")
	assert.Contains(t, text, "- **Religion**: [[1. World/Religions/Sun Faith|Sun Faith]]")
	assert.Contains(t, text, "- **Province**: [[1. World/Provinces/Northmarch|Northmarch March]]")
	assert.Contains(t, text, "- **Elevation**: 287 ft")
	assert.Contains(t, text, "- **Features**: Citadel, Plaza, Temple, Walls")

	beta, _ := a.Resolver.Burg(2)
	text = requireNote(t)(r.Burg(beta))
	assert.Contains(t, text, "  - village\n")
	assert.NotContains(t, text, "**Features**")
}

func TestBurg_SkipsLinksToRemovedEntities(t *testing.T) {
	r, a := tinyRenderer(t)
	ds := a.Dataset
	for _, c := range ds.Cultures {
		if full, ok := c.(*world.FullCulture); ok {
			full.Removed = true
		}
	}
	for _, s := range ds.States {
		if full, ok := s.(*world.FullState); ok {
			full.Removed = true
		}
	}
	for _, rel := range ds.Religions {
		if full, ok := rel.(*world.FullReligion); ok {
			full.Removed = true
		}
	}
	for _, p := range ds.Provinces {
		if p != nil {
			p.Removed = true
		}
	}

	alpha, _ := a.Resolver.Burg(1)
	text := requireNote(t)(r.Burg(alpha))
	for _, prop := range []string{"**Culture**", "**State**", "**Religion**", "**Province**"} {
		assert.NotContains(t, text, prop)
	}
	assert.Contains(t, text, "- **Biome**: [[1. World/Biomes/Grassland|Grassland]]")

	alpha.Removed = true
	state, _ := a.Resolver.State(1)
	state.(*world.FullState).Removed = false
	text = requireNote(t)(r.State(state))
	assert.NotContains(t, text, "**Capital**")
	assert.NotContains(t, text, "**Culture**")
}

func TestBurg_MissingCellIsReferenceError(t *testing.T) {
	r, _ := tinyRenderer(t)
	_, err := r.Burg(&world.Burg{ID: 9, Name: "Nowhere", Cell: 999})
	var refErr *world.ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, world.KindCell, refErr.To)
}

func TestState(t *testing.T) {
	r, a := tinyRenderer(t)
	s, _ := a.Resolver.State(1)
	text := requireNote(t)(r.State(s))
	assert.Contains(t, text, "# Kingdom of Alphia\n")
	assert.Contains(t, text, "- **Capital**: [[1. World/Burgs/Alpha|Alpha]]")
	assert.Contains(t, text, "- **Culture**: [[1. World/Cultures/Tinyfolk|Tinyfolk (Elf)]]")
	assert.Contains(t, text, "- **# Burgs**: 1")
	assert.Contains(t, text, "- **Neighbors**: [[1. World/States/Betaland|Republic of Betaland]]")

	neutral, _ := a.Resolver.State(0)
	text = requireNote(t)(r.State(neutral))
	assert.Contains(t, text, "# Neutrals\n")
	assert.NotContains(t, text, "**Capital**")
}

func TestProvince(t *testing.T) {
	r, a := tinyRenderer(t)
	p, _ := a.Resolver.Province(2)
	text := requireNote(t)(r.Province(p))
	assert.Contains(t, text, "# Southvale Vale\n")
	assert.Contains(t, text, "- **Burgs**: 2")
	assert.Contains(t, text, "- **Capital**: [[1. World/Burgs/Beta|Beta]]")
}

func TestReligion(t *testing.T) {
	r, a := tinyRenderer(t)

	sun, _ := a.Resolver.Religion(1)
	text := requireNote(t)(r.Religion(sun))
	assert.Contains(t, text, "- **Expansion**: 60% of Tinyfolk (Elf)")
	assert.Contains(t, text, "deity: Sol")
	assert.Contains(t, text, "- **Origins**: [[1. World/Religions/No religion|No religion]]")

	old, _ := a.Resolver.Religion(2)
	text = requireNote(t)(r.Religion(old))
	assert.Contains(t, text, "- **Expansion**: Global")
	assert.NotContains(t, text, "deity")

	none, _ := a.Resolver.Religion(0)
	requireNote(t)(r.Religion(none))
}

func TestBiome(t *testing.T) {
	r, a := tinyRenderer(t)
	b, _ := a.Resolver.Biome(2)
	text := requireNote(t)(r.Biome(b))
	assert.Contains(t, text, "- **Habitability**: Barely Survivable (12/100)")
	assert.Contains(t, text, "[Wikipedia](https://en.wikipedia.org/wiki/Taiga)")
}

func TestMarker(t *testing.T) {
	r, a := tinyRenderer(t)
	m, _ := a.Resolver.Marker(0)
	text := requireNote(t)(r.Marker(m))
	assert.Contains(t, text, "  - point-of-interest\n")
	assert.Contains(t, text, "# \U0001F30B Mount Fume\n")
	assert.Contains(t, text, "- **Type**: volcanoes")
	assert.Contains(t, text, "A smoking mountain.\n\n"+vault.CustomStart)
	assert.Contains(t, text, "  - 21\n  - -38\n")
	assert.NotContains(t, text, "nearbyBurg")

	castle, _ := a.Resolver.Marker(1)
	text = requireNote(t)(r.Marker(castle))
	assert.Contains(t, text, "nearbyBurg:")

	_, err := r.Marker(&world.Marker{ID: 77, Cell: 5})
	var refErr *world.ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, world.KindNote, refErr.To)
}

func TestRiver(t *testing.T) {
	r, a := tinyRenderer(t)
	little, _ := a.Resolver.River(2)
	text := requireNote(t)(r.River(little))
	assert.Contains(t, text, "- **Basin**: [[1. World/Rivers/Silverrun|Silverrun]]")
	assert.Contains(t, text, "- **Parent**: [[1. World/Rivers/Silverrun|Silverrun]]")
	assert.Contains(t, text, "- **Flow**: 5 m<sup>3</sup>/s")
	assert.Contains(t, text, "- **Length**: 19 mi")

	main, _ := a.Resolver.River(1)
	text = requireNote(t)(r.River(main))
	assert.NotContains(t, text, "**Basin**")
	assert.NotContains(t, text, "**Parent**")
}

func TestRoute(t *testing.T) {
	r, a := tinyRenderer(t)
	road, _ := a.Resolver.Route(0)
	text := requireNote(t)(r.Route(road))
	assert.Contains(t, text, "# ROAD 0\n")
	assert.Contains(t, text, "- **Surface**: Land")
	assert.Contains(t, text, "- **Length**: 62 mi")
	assert.Contains(t, text, "## Burgs\n\n- [[1. World/Burgs/Alpha|Alpha]]\n- [[1. World/Burgs/Beta|Beta]]")
	assert.Contains(t, text, "## Points of Interest\n\n- [[1. World/PointsOfInterest/Mount Fume|Mount Fume]]")
	assert.Contains(t, text, "## Connecting Routes\n\n- [[1. World/Routes/trails-1|Hill Path]]")

	sea, _ := a.Resolver.Route(2)
	text = requireNote(t)(r.Route(sea))
	assert.Contains(t, text, "- **Surface**: Water")
	assert.NotContains(t, text, "## Burgs")
}

func TestNameBase(t *testing.T) {
	r, a := tinyRenderer(t)
	nb, _ := a.Resolver.NameBase(0)
	text := requireNote(t)(r.NameBase(nb))
	assert.Contains(t, text, "# German\n")
}

func TestHomepage(t *testing.T) {
	r, _ := tinyRenderer(t)
	text := requireNote(t)(r.Homepage())
	assert.Contains(t, text, "# Tinyland\n\nA tiny test world\n\n```leaflet\n")
	assert.Contains(t, text, "image: [[z_Assets/tinyland.svg]]")
	assert.Contains(t, text, "markerFolder: 1. World/PointsOfInterest")
	assert.Contains(t, text, "lat: 25\nlong: 0\n")
	assert.Contains(t, text, "- **Population**: 8K (3K Urban, 5K Rural)")
	assert.Contains(t, text, "- **Territory Area**: 414 mi<sup>2</sup>")
	assert.Contains(t, text, "[[1. World/States/Alphia|Kingdom of Alphia]]")
}

func TestSummary(t *testing.T) {
	r, _ := tinyRenderer(t)
	for _, kind := range SummaryKinds {
		text := requireNote(t)(r.Summary(kind))
		assert.Contains(t, text, "  - dataview\n")
		assert.Contains(t, text, "```dataview\n")
	}
	_, err := r.Summary(world.KindRiver)
	assert.Error(t, err)
}

func TestRender_Dispatch(t *testing.T) {
	r, a := tinyRenderer(t)
	rv, _ := a.Resolver.River(1)
	text, err := r.Render(world.KindRiver, rv)
	require.NoError(t, err)
	assert.Contains(t, text, "# Silverrun")

	_, err = r.Render(world.KindCell, &world.Cell{})
	assert.Error(t, err)
}

func TestAssetBase(t *testing.T) {
	assert.Equal(t, "tinyland", AssetBase(&world.Dataset{Info: world.Info{MapName: "Tinyland"}}))
	assert.Equal(t, "map", AssetBase(&world.Dataset{}))
}
