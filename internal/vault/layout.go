// Package vault owns the on-disk side of a generated vault: directory
// layout, file naming, wiki links, the custom-content merge and atomic writes.
package vault

import (
	"fmt"
	"os"
	"path/filepath"

	"fmgvault/internal/world"
)

// Dirs names every directory of the vault, relative to its parent.
type Dirs struct {
	World            string `yaml:"world"`
	Assets           string `yaml:"assets"`
	MapData          string `yaml:"map_data"`
	Cultures         string `yaml:"cultures"`
	Biomes           string `yaml:"biomes"`
	Burgs            string `yaml:"burgs"`
	NameBases        string `yaml:"name_bases"`
	Provinces        string `yaml:"provinces"`
	States           string `yaml:"states"`
	Religions        string `yaml:"religions"`
	Rivers           string `yaml:"rivers"`
	Routes           string `yaml:"routes"`
	PointsOfInterest string `yaml:"points_of_interest"`
}

// DefaultDirs returns the standard vault structure.
func DefaultDirs() Dirs {
	return Dirs{
		World:            "1. World",
		Assets:           "z_Assets",
		MapData:          "z_Map",
		Cultures:         "Cultures",
		Biomes:           "Biomes",
		Burgs:            "Burgs",
		NameBases:        "NameBases",
		Provinces:        "Provinces",
		States:           "States",
		Religions:        "Religions",
		Rivers:           "Rivers",
		Routes:           "Routes",
		PointsOfInterest: "PointsOfInterest",
	}
}

// stateDirName holds tool state (manifest, ledger, logs) inside the map data directory.
const stateDirName = ".fmgvault"

// Layout resolves vault paths. Relative paths use forward slashes and are
// what wiki links point at.
type Layout struct {
	Root string
	Dirs Dirs
}

// NewLayout anchors dirs at root, which is made absolute.
func NewLayout(root string, dirs Dirs) (*Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault root %s: %w", root, err)
	}
	return &Layout{Root: abs, Dirs: dirs}, nil
}

func (l *Layout) join(parts ...string) string {
	return filepath.ToSlash(filepath.Join(parts...))
}

// KindDir returns the vault-relative directory for entity notes of kind.
func (l *Layout) KindDir(kind world.Kind) (string, bool) {
	var sub string
	switch kind {
	case world.KindCulture:
		sub = l.Dirs.Cultures
	case world.KindBiome:
		sub = l.Dirs.Biomes
	case world.KindBurg:
		sub = l.Dirs.Burgs
	case world.KindNameBase:
		sub = l.Dirs.NameBases
	case world.KindProvince:
		sub = l.Dirs.Provinces
	case world.KindState:
		sub = l.Dirs.States
	case world.KindReligion:
		sub = l.Dirs.Religions
	case world.KindRiver:
		sub = l.Dirs.Rivers
	case world.KindRoute:
		sub = l.Dirs.Routes
	case world.KindMarker:
		sub = l.Dirs.PointsOfInterest
	default:
		return "", false
	}
	return l.join(l.Dirs.World, sub), true
}

// EntityKinds lists the kinds that get a directory and one note per entity.
var EntityKinds = []world.Kind{
	world.KindCulture, world.KindBiome, world.KindBurg, world.KindNameBase,
	world.KindProvince, world.KindState, world.KindReligion, world.KindRiver,
	world.KindRoute, world.KindMarker,
}

// NotePath returns the vault-relative path of a note named fileName in dir.
func (l *Layout) NotePath(dir, fileName string) string {
	return l.join(dir, fileName+".md")
}

// Abs converts a vault-relative path to an absolute filesystem path.
func (l *Layout) Abs(rel string) string {
	return filepath.Join(l.Root, filepath.FromSlash(rel))
}

// WorldDir is the vault-relative world directory.
func (l *Layout) WorldDir() string { return l.join(l.Dirs.World) }

// AssetsDir is the vault-relative assets directory.
func (l *Layout) AssetsDir() string { return l.join(l.Dirs.Assets) }

// MapDataDir is the vault-relative map data directory.
func (l *Layout) MapDataDir() string { return l.join(l.Dirs.MapData) }

// HomepagePath is the note that shares the world directory's name.
func (l *Layout) HomepagePath() string {
	return l.NotePath(l.WorldDir(), filepath.Base(l.Dirs.World))
}

// SummaryPath is the overview note of a kind directory, named after it.
func (l *Layout) SummaryPath(kind world.Kind) (string, bool) {
	dir, ok := l.KindDir(kind)
	if !ok {
		return "", false
	}
	return l.NotePath(dir, filepath.Base(dir)), true
}

// StateDir holds the manifest, ledger and logs.
func (l *Layout) StateDir() string { return l.Abs(l.join(l.Dirs.MapData, stateDirName)) }

// ManifestPath is the absolute path of the document manifest.
func (l *Layout) ManifestPath() string { return filepath.Join(l.StateDir(), "manifest.json") }

// LedgerPath is the default absolute path of the run ledger.
func (l *Layout) LedgerPath() string { return filepath.Join(l.StateDir(), "ledger.db") }

// LogsDir is the absolute diagnostic log directory.
func (l *Layout) LogsDir() string { return filepath.Join(l.StateDir(), "logs") }

// Ensure creates every vault directory. Existing directories are kept.
func (l *Layout) Ensure() error {
	dirs := []string{l.WorldDir(), l.AssetsDir(), l.MapDataDir()}
	for _, kind := range EntityKinds {
		d, _ := l.KindDir(kind)
		dirs = append(dirs, d)
	}
	for _, d := range dirs {
		if err := os.MkdirAll(l.Abs(d), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", d, err)
		}
	}
	if err := os.MkdirAll(l.StateDir(), 0755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	return nil
}
