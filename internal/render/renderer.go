// Package render turns resolved world entities into Markdown notes. Every
// note ends with an empty custom region that the vault package later fills
// with whatever the user wrote there before.
package render

import (
	"fmt"

	"fmgvault/internal/logging"
	"fmgvault/internal/vault"
	"fmgvault/internal/world"
)

// Options tune what renderers link to.
type Options struct {
	// IncludeRemoved keeps links to entities flagged removed.
	IncludeRemoved bool
}

// Renderer renders notes against one atlas. It is safe for concurrent use.
type Renderer struct {
	atlas  *world.Atlas
	res    *world.Resolver
	layout *vault.Layout
	links  *vault.Linker
	units  Units
	opts   Options
}

// New returns a Renderer for atlas writing into layout.
func New(atlas *world.Atlas, layout *vault.Layout, opts Options) *Renderer {
	return &Renderer{
		atlas:  atlas,
		res:    atlas.Resolver,
		layout: layout,
		links:  vault.NewLinker(layout),
		units:  NewUnits(atlas.Dataset.Settings),
		opts:   opts,
	}
}

// Units returns the unit converter in use.
func (r *Renderer) Units() Units { return r.units }

// Render dispatches on kind. A ReferenceError means a foundational
// reference of the entity did not resolve.
func (r *Renderer) Render(kind world.Kind, entity any) (text string, err error) {
	timer := logging.StartTimer(logging.CategoryRender, fmt.Sprintf("render %s", kind))
	defer timer.StopWithThreshold(slowRender)
	defer func() {
		if err != nil {
			logging.RenderError("%s: %v", kind, err)
		}
	}()

	switch e := entity.(type) {
	case world.Culture:
		return r.Culture(e)
	case *world.Burg:
		return r.Burg(e)
	case world.State:
		return r.State(e)
	case *world.Province:
		return r.Province(e)
	case world.Religion:
		return r.Religion(e)
	case *world.Biome:
		return r.Biome(e)
	case *world.Marker:
		return r.Marker(e)
	case *world.River:
		return r.River(e)
	case *world.Route:
		return r.Route(e)
	case *world.NameBase:
		return r.NameBase(e)
	}
	return "", fmt.Errorf("cannot render %s from %T", kind, entity)
}

// removed reports whether e is flagged removed and links to it should be dropped.
func (r *Renderer) removed(e any) bool {
	if r.opts.IncludeRemoved {
		return false
	}
	gone := false
	switch v := e.(type) {
	case *world.FullCulture:
		gone = v.Removed
	case *world.Burg:
		gone = v.Removed
	case *world.FullState:
		gone = v.Removed
	case *world.Province:
		gone = v.Removed
	case *world.FullReligion:
		gone = v.Removed
	}
	if gone {
		logging.Render("link to removed %T dropped", e)
	}
	return gone
}
