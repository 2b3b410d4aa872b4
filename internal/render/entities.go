package render

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fmgvault/internal/vault"
	"fmgvault/internal/world"
)

const slowRender = 50 * time.Millisecond

var speciesPattern = regexp.MustCompile(`^(.*) \((.*)\)$`)

func (r *Renderer) Culture(c world.Culture) (string, error) {
	core := c.Core()
	species, kind := "Any", "Any"
	full, isFull := c.(*world.FullCulture)
	if isFull {
		if m := speciesPattern.FindStringSubmatch(core.Name); m != nil {
			species = m[2]
		}
		if full.Type != "" {
			kind = full.Type
		}
	}

	names, namesLink := "Any", "Any"
	if nb, ok := r.res.NameBase(core.Base); ok {
		names = nb.Name
		namesLink = r.links.NameBase(nb).Markdown()
	}

	var origins []vault.Link
	for _, o := range r.res.CultureOrigins(c) {
		origins = append(origins, r.links.Culture(o))
	}

	pop := r.units.Population(core.Rural.Float(), core.Urban.Float())
	var fm Frontmatter
	fm.Set("names", names)
	fm.Set("type", kind)
	fm.Set("species", species)
	fm.Set("area", r.units.Area(core.Area.Float()))
	fm.Set("totalPopulation", pop.Total)
	fm.Set("urbanPopulation", pop.Urban)
	fm.Set("ruralPopulation", pop.Rural)

	return page{
		kind:    world.KindCulture,
		aliases: []string{core.Name},
		front:   fm,
		title:   core.Name,
		props: []Property{
			{"Names", namesLink},
			{"Type", kind},
			{"Area", r.units.ReadableArea(core.Area.Float())},
			{"Population", pop.String()},
			{"Origins", joinLinks(origins)},
		},
		removed: core.Removed,
	}.render()
}

func burgFeatures(b *world.Burg) string {
	var out []string
	for _, f := range []struct {
		name string
		on   bool
	}{
		{"Citadel", bool(b.Citadel)},
		{"Plaza", bool(b.Plaza)},
		{"Port", b.Port != 0},
		{"Shanty Town", bool(b.Shanty)},
		{"Temple", bool(b.Temple)},
		{"Walls", bool(b.Walls)},
	} {
		if f.on {
			out = append(out, f.name)
		}
	}
	return strings.Join(out, ", ")
}

// Burg renders a settlement. The cell it stands on is foundational.
func (r *Renderer) Burg(b *world.Burg) (string, error) {
	cell, err := r.res.BurgCell(b)
	if err != nil {
		return "", err
	}
	population := r.units.Population(0, b.Population.Float()).Total
	tags := []string{"village"}
	if float64(population) > r.atlas.Dataset.Settings.Options.VillageMaxPopulation.Float() {
		tags[0] = "city"
	}
	if r.res.IsCrossroad(b.Cell) {
		tags = append(tags, "crossroad")
	}

	var biome, culture, state, religion, province string
	if v, ok := r.res.Biome(cell.Biome); ok {
		biome = r.links.Biome(v).Markdown()
	}
	if v, ok := r.res.Culture(b.Culture); ok && !r.removed(v) {
		culture = r.links.Culture(v).Markdown()
	}
	if v, ok := r.res.State(b.State); ok && !r.removed(v) {
		state = r.links.State(v).Markdown()
	}
	if v, ok := r.res.Religion(cell.Religion); ok && !r.removed(v) {
		religion = r.links.Religion(v).Markdown()
	}
	if v, ok := r.res.Province(cell.Province); ok && !r.removed(v) {
		province = r.links.Province(v).Markdown()
	}
	temperature := r.units.Temperature(cell.Temperature)

	var fm Frontmatter
	fm.Set("population", population)
	fm.Set("type", b.Type)
	fm.Set("temperature", temperature)
	fm.Set("culture", culture)
	fm.Set("state", state)
	fm.Set("religion", religion)
	fm.Set("province", province)

	title := b.Name
	if b.Capital {
		title += `<span title="Capital City">&Star;</span>`
	}
	return page{
		kind:  world.KindBurg,
		tags:  tags,
		front: fm,
		title: title,
		props: []Property{
			{"Population", CompactNumber(float64(population))},
			{"Temperature", temperature},
			{"Biome", biome},
			{"Culture", culture},
			{"State", state},
			{"Religion", religion},
			{"Province", province},
			{"Elevation", r.units.Height(cell.Height)},
			{"Features", burgFeatures(b)},
		},
		removed: b.Removed,
	}.render()
}

func (r *Renderer) State(s world.State) (string, error) {
	core := s.Core()
	pop := r.units.Population(core.Rural.Float(), core.Urban.Float())

	var fm Frontmatter
	fm.Set("population", pop.Total)
	var capital, culture, kind, form string
	removed := false
	if full, ok := s.(*world.FullState); ok {
		kind, form, removed = full.Type, full.Form, full.Removed
		if full.Capital != 0 {
			if b, ok := r.res.Burg(full.Capital); ok && !r.removed(b) {
				capital = r.links.Burg(b).Markdown()
			}
		}
		if full.Culture != 0 {
			if c, ok := r.res.Culture(full.Culture); ok && !r.removed(c) {
				culture = r.links.Culture(c).Markdown()
			}
		}
	}
	fm.Set("type", kind)
	fm.Set("name", core.Name)
	fm.Set("form", form)

	var provinces, neighbors []vault.Link
	for _, id := range core.Provinces {
		if p, ok := r.res.Province(id); ok && !r.removed(p) {
			provinces = append(provinces, r.links.Province(p))
		}
	}
	for _, id := range core.Neighbors {
		if n, ok := r.res.State(id); ok && id != core.ID && !r.removed(n) {
			neighbors = append(neighbors, r.links.State(n))
		}
	}

	return page{
		kind:  world.KindState,
		front: fm,
		title: vault.StateDisplayName(s),
		props: []Property{
			{"Population", pop.String()},
			{"Area", r.units.ReadableArea(core.Area.Float())},
			{"Capital", capital},
			{"Culture", culture},
			{"Type", kind},
			{"# Burgs", strconv.Itoa(core.Burgs)},
			{"Provinces", joinLinks(provinces)},
			{"Neighbors", joinLinks(neighbors)},
		},
		removed: removed,
	}.render()
}

func (r *Renderer) Province(p *world.Province) (string, error) {
	pop := r.units.Population(p.Rural.Float(), p.Urban.Float())
	var fm Frontmatter
	fm.Set("population", pop.Total)
	fm.Set("name", p.Name)
	fm.Set("form", p.FormName)

	var capital, state string
	if p.Burg != 0 {
		if b, ok := r.res.Burg(p.Burg); ok {
			capital = r.links.Burg(b).Markdown()
		}
	}
	if s, ok := r.res.State(p.State); ok {
		state = r.links.State(s).Markdown()
	}

	var aliases []string
	if p.FullName != "" {
		aliases = []string{p.FullName}
	}
	return page{
		kind:    world.KindProvince,
		aliases: aliases,
		front:   fm,
		title:   vault.ProvinceDisplayName(p),
		props: []Property{
			{"Population", pop.String()},
			{"Area", r.units.ReadableArea(p.Area.Float())},
			{"State", state},
			{"Capital", capital},
			{"Burgs", strconv.Itoa(len(p.Burgs))},
		},
		removed: p.Removed,
	}.render()
}

// religionExpansion is "Global", or the share of the religion's home culture
// that follows it.
func (r *Renderer) religionExpansion(rel *world.FullReligion, culture world.Culture, believers int64) string {
	if rel.Expansion == "global" {
		return "Global"
	}
	if culture == nil {
		return "Within Culture"
	}
	core := culture.Core()
	total := r.units.Population(core.Rural.Float(), core.Urban.Float()).Total
	if total == 0 {
		return "Within " + core.Name
	}
	pct := math.Round(float64(believers) / float64(total) * 100)
	return fmt.Sprintf("%d%% of %s", int64(pct), core.Name)
}

func (r *Renderer) Religion(rel world.Religion) (string, error) {
	core := rel.Core()
	var origins []vault.Link
	for _, o := range r.res.ReligionOrigins(rel) {
		origins = append(origins, r.links.Religion(o))
	}

	var fm Frontmatter
	full, ok := rel.(*world.FullReligion)
	if !ok {
		fm.Set("population", 0)
		fm.Set("name", core.Name)
		return page{
			kind:    world.KindReligion,
			aliases: []string{core.Name},
			front:   fm,
			title:   core.Name,
			props:   []Property{{"Origins", joinLinks(origins)}},
		}.render()
	}

	pop := r.units.Population(full.Rural.Float(), full.Urban.Float())
	var culture world.Culture
	cultureLink := ""
	if c, ok := r.res.Culture(full.Culture); ok && !r.removed(c) {
		culture = c
		cultureLink = r.links.Culture(c).Markdown()
	}
	fm.Set("population", pop.Total)
	fm.Set("deity", full.Deity)
	fm.Set("name", core.Name)
	fm.Set("form", full.Form)

	deity := ""
	if full.Deity != nil {
		deity = *full.Deity
	}
	return page{
		kind:    world.KindReligion,
		aliases: []string{core.Name},
		front:   fm,
		title:   core.Name,
		props: []Property{
			{"Population", pop.String()},
			{"Area", r.units.ReadableArea(full.Area.Float())},
			{"Type", full.Type},
			{"Form", full.Form},
			{"Deity", deity},
			{"Culture", cultureLink},
			{"Expansion", r.religionExpansion(full, culture, pop.Total)},
			{"Origins", joinLinks(origins)},
		},
		removed: full.Removed,
	}.render()
}

func (r *Renderer) River(rv *world.River) (string, error) {
	var basin, parent string
	if b, ok := r.res.RiverBasin(rv); ok {
		basin = r.links.River(b).Markdown()
	}
	if p, ok := r.res.RiverParent(rv); ok {
		parent = r.links.River(p).Markdown()
	}
	var fm Frontmatter
	fm.Set("name", rv.Name)
	fm.Set("type", rv.Type)
	return page{
		kind:  world.KindRiver,
		front: fm,
		title: rv.Name,
		props: []Property{
			{"Type", rv.Type},
			{"Basin", basin},
			{"Parent", parent},
			{"Flow", Flow(rv.Discharge.Float())},
			{"Length", r.units.Length(rv.Length.Float())},
		},
	}.render()
}

func (r *Renderer) NameBase(nb *world.NameBase) (string, error) {
	var fm Frontmatter
	fm.Set("name", nb.Name)

	var body string
	if samples := sampleNames(nb.B, 10); len(samples) > 0 {
		body = "## Sample Names\n\n" + strings.Join(samples, ", ")
	}
	var lengths string
	if nb.Min != 0 || nb.Max != 0 {
		lengths = fmt.Sprintf("%g to %g letters", nb.Min.Float(), nb.Max.Float())
	}
	return page{
		kind:  world.KindNameBase,
		front: fm,
		title: nb.Name,
		props: []Property{{"Name Length", lengths}},
		body:  body,
	}.render()
}

func sampleNames(list string, n int) []string {
	var out []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
		if len(out) == n {
			break
		}
	}
	return out
}
