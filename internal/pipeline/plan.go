// Package pipeline fans note generation out over a bounded worker group and
// collects a per-task report. One run is: load, index, plan, entity notes,
// barrier, summary notes, source copies.
package pipeline

import (
	"sort"

	"fmgvault/internal/logging"
	"fmgvault/internal/render"
	"fmgvault/internal/vault"
	"fmgvault/internal/world"
)

// Task is one note to generate. Path is vault-relative and decided at plan time.
type Task struct {
	Kind   world.Kind
	ID     int
	Path   string
	Entity any
}

// Skip records an entity that gets no note and why.
type Skip struct {
	Kind   world.Kind
	ID     int
	Reason string
}

// Plan is the full set of entity notes for a run.
type Plan struct {
	Tasks []Task
	// Collisions maps a path to the tasks sharing it, including the homepage
	// or a summary page. All of them still run.
	Collisions map[string][]Task
	Skipped    []Skip
}

type planner struct {
	res            *world.Resolver
	links          *vault.Linker
	includeRemoved bool
	plan           *Plan
	// reserved are the homepage and summary pages, written after every
	// entity note.
	reserved []Task
}

func (p *planner) add(kind world.Kind, id int, fileName string, entity any) {
	p.plan.Tasks = append(p.plan.Tasks, Task{
		Kind:   kind,
		ID:     id,
		Path:   p.links.NotePath(kind, fileName),
		Entity: entity,
	})
}

func (p *planner) skip(kind world.Kind, id int, reason string) {
	p.plan.Skipped = append(p.plan.Skipped, Skip{Kind: kind, ID: id, Reason: reason})
}

func (p *planner) keepRemoved(kind world.Kind, id int, removed bool) bool {
	if removed && !p.includeRemoved {
		p.skip(kind, id, "removed")
		return false
	}
	return true
}

// BuildPlan decides every entity note and its destination. Burg 0 and
// province 0 are placeholders and never get notes.
func BuildPlan(atlas *world.Atlas, layout *vault.Layout, includeRemoved bool) *Plan {
	timer := logging.StartTimer(logging.CategoryPipeline, "plan")
	defer timer.Stop()

	p := &planner{
		res:            atlas.Resolver,
		links:          vault.NewLinker(layout),
		includeRemoved: includeRemoved,
		plan:           &Plan{Collisions: make(map[string][]Task)},
	}
	ds := atlas.Dataset

	for _, c := range ds.Cultures {
		if c == nil {
			continue
		}
		core := c.Core()
		if p.keepRemoved(world.KindCulture, core.ID, core.Removed) {
			p.add(world.KindCulture, core.ID, vault.CultureFileName(c), c)
		}
	}
	for i, b := range ds.Burgs {
		if b == nil || i == 0 {
			p.skip(world.KindBurg, i, "placeholder")
			continue
		}
		if p.keepRemoved(world.KindBurg, b.ID, b.Removed) {
			p.add(world.KindBurg, b.ID, vault.BurgFileName(b), b)
		}
	}
	for _, s := range ds.States {
		if s == nil {
			continue
		}
		removed := false
		if full, ok := s.(*world.FullState); ok {
			removed = full.Removed
		}
		if p.keepRemoved(world.KindState, s.Core().ID, removed) {
			p.add(world.KindState, s.Core().ID, vault.StateFileName(s), s)
		}
	}
	for i, pr := range ds.Provinces {
		if pr == nil || i == 0 {
			p.skip(world.KindProvince, i, "placeholder")
			continue
		}
		if p.keepRemoved(world.KindProvince, pr.ID, pr.Removed) {
			p.add(world.KindProvince, pr.ID, vault.ProvinceFileName(pr), pr)
		}
	}
	for _, r := range ds.Religions {
		if r == nil {
			continue
		}
		removed := false
		if full, ok := r.(*world.FullReligion); ok {
			removed = full.Removed
		}
		if p.keepRemoved(world.KindReligion, r.Core().ID, removed) {
			p.add(world.KindReligion, r.Core().ID, vault.ReligionFileName(r), r)
		}
	}
	for i := range atlas.Biomes {
		b := &atlas.Biomes[i]
		p.add(world.KindBiome, b.ID, vault.BiomeFileName(b), b)
	}
	for _, m := range ds.Markers {
		if m == nil {
			continue
		}
		note, ok := p.res.MarkerNote(m)
		p.add(world.KindMarker, m.ID, vault.MarkerFileName(m, note, ok), m)
	}
	for _, rv := range ds.Rivers {
		if rv != nil {
			p.add(world.KindRiver, rv.ID, vault.RiverFileName(rv), rv)
		}
	}
	for _, rt := range ds.Routes {
		if rt != nil {
			p.add(world.KindRoute, rt.ID, vault.RouteFileName(rt), rt)
		}
	}
	for i := range ds.NameBases {
		nb := &ds.NameBases[i]
		p.add(world.KindNameBase, nb.ID, vault.NameBaseFileName(nb), nb)
	}

	p.reserved = append(p.reserved, Task{Kind: KindHomepage, ID: -1, Path: layout.HomepagePath()})
	for _, kind := range render.SummaryKinds {
		if path, ok := layout.SummaryPath(kind); ok {
			p.reserved = append(p.reserved, Task{Kind: KindSummary, ID: -1, Path: path})
		}
	}

	p.flagCollisions()
	logging.Pipeline("plan: tasks=%d skipped=%d collisions=%d",
		len(p.plan.Tasks), len(p.plan.Skipped), len(p.plan.Collisions))
	return p.plan
}

func (p *planner) flagCollisions() {
	byPath := make(map[string][]Task)
	for _, t := range p.plan.Tasks {
		byPath[t.Path] = append(byPath[t.Path], t)
	}
	for _, t := range p.reserved {
		if _, used := byPath[t.Path]; used {
			byPath[t.Path] = append(byPath[t.Path], t)
		}
	}
	for path, tasks := range byPath {
		if len(tasks) > 1 {
			p.plan.Collisions[path] = tasks
			logging.PipelineWarn("path collision: %s shared by %d notes", path, len(tasks))
		}
	}
}

// CollisionPaths returns the colliding paths in sorted order.
func (p *Plan) CollisionPaths() []string {
	paths := make([]string, 0, len(p.Collisions))
	for path := range p.Collisions {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
