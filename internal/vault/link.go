package vault

import (
	"fmt"
	"strings"

	"fmgvault/internal/world"
)

// Link points at a note by its vault-relative path without extension.
type Link struct {
	Display string
	Target  string
}

var displayEscaper = strings.NewReplacer("|", "-", "[", "(", "]", ")")

// Markdown renders the link in wiki syntax.
func (l Link) Markdown() string {
	return fmt.Sprintf("[[%s|%s]]", l.Target, displayEscaper.Replace(l.Display))
}

// Linker builds links to entity notes.
type Linker struct {
	layout *Layout
}

// NewLinker returns a Linker for layout.
func NewLinker(layout *Layout) *Linker {
	return &Linker{layout: layout}
}

func (k *Linker) to(kind world.Kind, fileName, display string) Link {
	dir, _ := k.layout.KindDir(kind)
	return Link{Display: display, Target: dir + "/" + fileName}
}

// NotePath is the vault-relative file path for a note of kind named fileName.
func (k *Linker) NotePath(kind world.Kind, fileName string) string {
	dir, _ := k.layout.KindDir(kind)
	return k.layout.NotePath(dir, fileName)
}

func (k *Linker) Culture(c world.Culture) Link {
	return k.to(world.KindCulture, CultureFileName(c), c.Core().Name)
}

func (k *Linker) Burg(b *world.Burg) Link {
	return k.to(world.KindBurg, BurgFileName(b), b.Name)
}

func (k *Linker) State(s world.State) Link {
	return k.to(world.KindState, StateFileName(s), StateDisplayName(s))
}

func (k *Linker) Province(p *world.Province) Link {
	return k.to(world.KindProvince, ProvinceFileName(p), ProvinceDisplayName(p))
}

func (k *Linker) Religion(r world.Religion) Link {
	return k.to(world.KindReligion, ReligionFileName(r), r.Core().Name)
}

func (k *Linker) River(r *world.River) Link {
	return k.to(world.KindRiver, RiverFileName(r), r.Name)
}

func (k *Linker) Biome(b *world.Biome) Link {
	return k.to(world.KindBiome, BiomeFileName(b), b.Name)
}

func (k *Linker) NameBase(nb *world.NameBase) Link {
	return k.to(world.KindNameBase, NameBaseFileName(nb), nb.Name)
}

func (k *Linker) Route(r *world.Route) Link {
	return k.to(world.KindRoute, RouteFileName(r), RouteDisplayName(r))
}

func (k *Linker) Marker(m *world.Marker, note world.Note, hasNote bool) Link {
	display := fmt.Sprintf("Unknown Marker %d", m.ID)
	if hasNote {
		display = note.Name
	}
	return k.to(world.KindMarker, MarkerFileName(m, note, hasNote), display)
}
