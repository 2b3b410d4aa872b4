// Package world decodes a fantasy-map export into a read-only Dataset and
// derives the lookups the note renderers need: id resolution, the biome
// table, route adjacency and route traversal.
package world

import (
	"fmt"
	"os"
	"unicode"

	"fmgvault/internal/logging"
)

// DetectFormat picks the decoder from the first non-whitespace byte.
func DetectFormat(data []byte) Format {
	for _, b := range data {
		if unicode.IsSpace(rune(b)) {
			continue
		}
		if b == '{' {
			return FormatJSON
		}
		break
	}
	return FormatLegacy
}

// Decode detects the encoding of data and decodes it.
func Decode(data []byte) (*Dataset, error) {
	format := DetectFormat(data)
	logging.LoadDebug("detected format %s (%d bytes)", format, len(data))
	if format == FormatJSON {
		return DecodeJSON(data)
	}
	return DecodeLegacy(data)
}

// Load reads and decodes the dataset at path.
func Load(path string) (*Dataset, error) {
	timer := logging.StartTimer(logging.CategoryLoad, "load "+path)
	defer timer.Stop()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	ds, err := Decode(data)
	if err != nil {
		logging.LoadWarn("decode %s failed: %v", path, err)
		return nil, err
	}
	for _, w := range ds.Warnings {
		logging.LoadWarn("%s: %s", path, w)
	}
	logging.Load("loaded %s: version=%s format=%s stats=%v", path, ds.Info.Version, ds.Format, ds.Stats())
	return ds, nil
}
