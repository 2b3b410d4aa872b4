package vault

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"fmgvault/internal/world"
)

const unsafeFileChars = `/\:*?"<>|()`

var upper = cases.Upper(language.Und)

// FileName turns a display name into a file name: unsafe characters are
// stripped, the result is NFC-normalised and trimmed.
func FileName(display string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeFileChars, r) {
			return -1
		}
		return r
	}, display)
	return strings.TrimSpace(norm.NFC.String(cleaned))
}

func fileNameOr(display, fallback string) string {
	if name := FileName(display); name != "" {
		return name
	}
	return fallback
}

// CultureFileName drops the " (Species)" suffix of a culture name.
func CultureFileName(c world.Culture) string {
	core := c.Core()
	name, _, _ := strings.Cut(core.Name, " (")
	return fileNameOr(name, fmt.Sprintf("culture-%d", core.ID))
}

func BurgFileName(b *world.Burg) string {
	return fileNameOr(b.Name, fmt.Sprintf("burg-%d", b.ID))
}

func StateFileName(s world.State) string {
	return fileNameOr(s.Core().Name, fmt.Sprintf("state-%d", s.Core().ID))
}

func ProvinceFileName(p *world.Province) string {
	return fileNameOr(p.Name, fmt.Sprintf("province-%d", p.ID))
}

func ReligionFileName(r world.Religion) string {
	return fileNameOr(r.Core().Name, fmt.Sprintf("religion-%d", r.Core().ID))
}

func RiverFileName(r *world.River) string {
	return fileNameOr(r.Name, fmt.Sprintf("river-%d", r.ID))
}

func BiomeFileName(b *world.Biome) string {
	return fileNameOr(b.Name, fmt.Sprintf("biome-%d", b.ID))
}

func NameBaseFileName(nb *world.NameBase) string {
	return fileNameOr(nb.Name, fmt.Sprintf("namebase-%d", nb.ID))
}

// RouteFileName is "<group>-<id>"; route names are not unique.
func RouteFileName(r *world.Route) string {
	return FileName(fmt.Sprintf("%s-%d", r.Group, r.ID))
}

// MarkerFileName uses the annotation name, or "marker-<id>" without one.
func MarkerFileName(m *world.Marker, note world.Note, hasNote bool) string {
	fallback := fmt.Sprintf("marker-%d", m.ID)
	if !hasNote {
		return fallback
	}
	return fileNameOr(note.Name, fallback)
}

// RouteDisplayName is the route's name, or its singular upper-cased group and id.
func RouteDisplayName(r *world.Route) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("%s %d", upper.String(strings.TrimSuffix(r.Group, "s")), r.ID)
}

// StateDisplayName prefers the full name of a real state.
func StateDisplayName(s world.State) string {
	if full, ok := s.(*world.FullState); ok && full.FullName != "" {
		return full.FullName
	}
	return s.Core().Name
}

// ProvinceDisplayName prefers the full name.
func ProvinceDisplayName(p *world.Province) string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Name
}
