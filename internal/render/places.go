package render

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"fmgvault/internal/vault"
	"fmgvault/internal/world"
)

var habitabilityDescriptors = []string{
	"Uninhabitable",
	"Extremely Hostile",
	"Barely Survivable",
	"Harsh",
	"Challenging",
	"Marginal",
	"Moderate",
	"Livable",
	"Comfortable",
	"Ideal",
	"Perfect",
}

// Habitability describes a 0-100 habitability score in words.
func Habitability(h float64) string {
	i := int(math.Ceil(h / 10))
	if i < 0 {
		i = 0
	}
	if i >= len(habitabilityDescriptors) {
		i = len(habitabilityDescriptors) - 1
	}
	return habitabilityDescriptors[i]
}

// defaultBiomeWiki maps the generator's stock biome names to Wikipedia pages.
var defaultBiomeWiki = map[string]string{
	"Marine":                     "Marine_habitat",
	"Hot desert":                 "Desert_climate#Hot_desert_climates",
	"Cold desert":                "Desert_climate#Cold_desert_climates",
	"Savanna":                    "Tropical_and_subtropical_grasslands,_savannas,_and_shrublands",
	"Grassland":                  "Temperate_grasslands,_savannas,_and_shrublands",
	"Tropical seasonal forest":   "Seasonal_tropical_forest",
	"Temperate deciduous forest": "Temperate_deciduous_forest",
	"Tropical rainforest":        "Tropical_rainforest",
	"Temperate rainforest":       "Temperate_rainforest",
	"Taiga":                      "Taiga",
	"Tundra":                     "Tundra",
	"Glacier":                    "Glacier",
	"Wetland":                    "Wetland",
}

// BiomeWikiLink points at the Wikipedia article for a stock biome, or a
// search for anything else.
func BiomeWikiLink(name string) string {
	if page, ok := defaultBiomeWiki[name]; ok {
		return "https://en.wikipedia.org/wiki/" + page
	}
	return "https://en.wikipedia.org/w/index.php?search=" + url.QueryEscape(name)
}

func (r *Renderer) Biome(b *world.Biome) (string, error) {
	var fm Frontmatter
	fm.Set("name", b.Name)
	fm.Set("habitability", b.Habitability)
	return page{
		kind:  world.KindBiome,
		front: fm,
		title: b.Name,
		props: []Property{
			{"Habitability", fmt.Sprintf("%s (%g/100)", Habitability(b.Habitability), b.Habitability)},
		},
		body: fmt.Sprintf("[Wikipedia](%s)", BiomeWikiLink(b.Name)),
	}.render()
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// Marker renders a point of interest. Its annotation is foundational.
func (r *Renderer) Marker(m *world.Marker) (string, error) {
	note, err := r.res.MarkerAnnotation(m)
	if err != nil {
		return "", err
	}
	lat, lon := r.res.LatLong(m.X, m.Y)
	kind := m.Type
	if kind == "" {
		kind = "Unknown"
	}

	var fm Frontmatter
	fm.Set("name", note.Name)
	fm.Set("location", []float64{round4(lat), round4(lon)})
	fm.Set("type", kind)

	if cell, ok := r.res.Cell(m.Cell); ok {
		if b, ok := r.res.Burg(cell.Burg); ok && !r.removed(b) {
			fm.Set("nearbyBurg", r.links.Burg(b).Markdown())
		}
		if p, ok := r.res.Province(cell.Province); ok {
			fm.Set("province", r.links.Province(p).Markdown())
		}
		if s, ok := r.res.State(cell.State); ok {
			fm.Set("state", r.links.State(s).Markdown())
		}
		if c, ok := r.res.Culture(cell.Culture); ok {
			fm.Set("culture", r.links.Culture(c).Markdown())
		}
		if rel, ok := r.res.Religion(cell.Religion); ok {
			fm.Set("religion", r.links.Religion(rel).Markdown())
		}
	}

	return page{
		kind:  world.KindMarker,
		tags:  []string{"point-of-interest"},
		front: fm,
		title: strings.TrimSpace(m.Icon + " " + note.Name),
		props: []Property{{"Type", kind}},
		body:  note.Legend,
	}.render()
}

func linkSection(title string, links []vault.Link) string {
	if len(links) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## " + title + "\n\n")
	for i, l := range links {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- " + l.Markdown())
	}
	return sb.String()
}

// Route renders a route with everything it passes, from TracePassages.
func (r *Renderer) Route(rt *world.Route) (string, error) {
	name := vault.RouteDisplayName(rt)
	surface := ""
	if f, ok := r.res.Feature(rt.Feature); ok {
		surface = "Water"
		if f.Land {
			surface = "Land"
		}
	}

	p := r.atlas.Trace(rt)
	var sections []string
	add := func(title string, links []vault.Link) {
		if s := linkSection(title, links); s != "" {
			sections = append(sections, s)
		}
	}

	var burgs, markers, rivers, states, provinces, cultures, religions, biomes, routes []vault.Link
	for _, b := range p.Burgs {
		if !r.removed(b) {
			burgs = append(burgs, r.links.Burg(b))
		}
	}
	for _, mp := range p.Markers {
		markers = append(markers, r.links.Marker(mp.Marker, mp.Note, mp.HasNote))
	}
	for _, rv := range p.Rivers {
		rivers = append(rivers, r.links.River(rv))
	}
	for _, s := range p.States {
		if !r.removed(s) {
			states = append(states, r.links.State(s))
		}
	}
	for _, pr := range p.Provinces {
		if !r.removed(pr) {
			provinces = append(provinces, r.links.Province(pr))
		}
	}
	for _, c := range p.Cultures {
		if !r.removed(c) {
			cultures = append(cultures, r.links.Culture(c))
		}
	}
	for _, rel := range p.Religions {
		if !r.removed(rel) {
			religions = append(religions, r.links.Religion(rel))
		}
	}
	for _, b := range p.Biomes {
		biomes = append(biomes, r.links.Biome(b))
	}
	for _, other := range p.Routes {
		routes = append(routes, r.links.Route(other))
	}
	add("Burgs", burgs)
	add("Points of Interest", markers)
	add("Rivers", rivers)
	add("States", states)
	add("Provinces", provinces)
	add("Cultures", cultures)
	add("Religions", religions)
	add("Biomes", biomes)
	add("Connecting Routes", routes)

	var fm Frontmatter
	fm.Set("name", name)
	fm.Set("group", rt.Group)
	return page{
		kind:  world.KindRoute,
		front: fm,
		title: name,
		props: []Property{
			{"Group", rt.Group},
			{"Length", r.units.Length(rt.Length.Float())},
			{"Surface", surface},
		},
		body: strings.Join(sections, "\n\n"),
	}.render()
}
