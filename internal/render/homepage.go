package render

import (
	"fmt"
	"strings"

	"fmgvault/internal/vault"
	"fmgvault/internal/world"
)

// AssetBase is the lower-cased map name used for source snapshot copies.
func AssetBase(ds *world.Dataset) string {
	name := ds.Info.MapName
	if name == "" {
		name = ds.Settings.MapName
	}
	if name = vault.FileName(name); name == "" {
		name = "map"
	}
	return strings.ToLower(name)
}

func (r *Renderer) mapName() string {
	ds := r.atlas.Dataset
	if ds.Info.MapName != "" {
		return ds.Info.MapName
	}
	if ds.Settings.MapName != "" {
		return ds.Settings.MapName
	}
	return "World"
}

func (r *Renderer) leafletBlock() string {
	ds := r.atlas.Dataset
	c := ds.Coordinates
	base := AssetBase(ds)
	poi, _ := r.layout.KindDir(world.KindMarker)
	lines := []string{
		"```leaflet",
		"id: " + r.mapName() + "-map",
		fmt.Sprintf("image: [[%s/%s.svg]]", r.layout.AssetsDir(), base),
		"markerFolder: " + poi,
		"lock: true",
		"bounds:",
		fmt.Sprintf("  - [%g,%g]", c.LatN, c.LonW),
		fmt.Sprintf("  - [%g,%g]", c.LatS, c.LonE),
		"height: 500px",
		fmt.Sprintf("lat: %g", c.LatT/2+c.LatS),
		fmt.Sprintf("long: %g", c.LonT/2+c.LonW),
		"minZoom: 2.5",
		"maxZoom: 10",
		"defaultZoom: 2.75",
		"zoomDelta: 0.5",
		"unit: " + r.units.distanceUnit(),
		"scale: 1",
		"```",
	}
	return strings.Join(lines, "\n")
}

// Homepage renders the world overview note.
func (r *Renderer) Homepage() (string, error) {
	ds := r.atlas.Dataset

	var rural, urban, territory float64
	var cultures, states, religions []vault.Link
	for _, c := range ds.Cultures {
		if c == nil {
			continue
		}
		rural += c.Core().Rural.Float()
		urban += c.Core().Urban.Float()
		if !r.removed(c) {
			cultures = append(cultures, r.links.Culture(c))
		}
	}
	for _, p := range ds.Provinces {
		if p != nil {
			territory += p.Area.Float()
		}
	}
	for _, s := range ds.States {
		if s != nil && !r.removed(s) {
			states = append(states, r.links.State(s))
		}
	}
	for _, rel := range ds.Religions {
		if rel != nil && !r.removed(rel) {
			religions = append(religions, r.links.Religion(rel))
		}
	}

	intro := []string{}
	if ds.Info.Description != "" {
		intro = append(intro, ds.Info.Description)
	}
	intro = append(intro,
		r.leafletBlock(),
		fmt.Sprintf("> View the full map at [Fantasy Map Generator](https://azgaar.github.io/Fantasy-Map-Generator/) by loading `%s/%s.map`.",
			r.layout.AssetsDir(), AssetBase(ds)),
	)

	pop := r.units.Population(rural, urban)
	var fm Frontmatter
	fm.Set("version", ds.Info.Version)
	fm.Set("seed", ds.Info.Seed.String())
	fm.Set("totalPopulation", pop.Total)

	return page{
		kind:        "world",
		aliases:     []string{r.mapName()},
		front:       fm,
		title:       r.mapName(),
		beforeProps: strings.Join(intro, "\n\n"),
		props: []Property{
			{"Population", pop.String()},
			{"Territory Area", r.units.ReadableArea(territory)},
			{"States", joinLinks(states)},
			{"Cultures", joinLinks(cultures)},
			{"Religions", joinLinks(religions)},
		},
	}.render()
}

// SummaryKinds are the kinds that get a dataview overview page.
var SummaryKinds = []world.Kind{world.KindCulture, world.KindBurg, world.KindMarker}

// largeNumber wraps a dataview field so thousands are space separated.
func largeNumber(field string) string {
	return fmt.Sprintf(`regexreplace(string(%s), "[0-9](?=(?:[0-9]{3})+(?![0-9]))", "$& ")`, field)
}

// Summary renders the dataview overview page for kind.
func (r *Renderer) Summary(kind world.Kind) (string, error) {
	var title, query string
	switch kind {
	case world.KindCulture:
		title = "Cultures"
		query = fmt.Sprintf("TABLE species AS \"Species\", %s AS \"Area (%s<sup>2</sup>)\", %s AS \"Population\"\nFROM #culture\nSORT totalPopulation DESC",
			largeNumber("area"), r.units.distanceUnit(), largeNumber("totalPopulation"))
	case world.KindBurg:
		title = "Burgs"
		query = fmt.Sprintf("TABLE %s AS \"Population\", temperature AS \"Temperature\", culture AS \"Culture\", religion AS \"Religion\", state AS \"State\", province AS \"Province\"\nFROM #burg\nSORT state ASC",
			largeNumber("population"))
	case world.KindMarker:
		title = "Points Of Interest (Markers)"
		query = "TABLE type AS \"Type\", nearbyBurg AS \"Nearby Burg\", province AS \"Province\", state AS \"State\", culture AS \"Culture\", religion AS \"Religion\"\nFROM #marker\nSORT type ASC"
	default:
		return "", fmt.Errorf("no summary page for %s", kind)
	}
	return page{
		kind:  "dataview",
		title: title,
		body:  "```dataview\n" + query + "\n```",
	}.render()
}
