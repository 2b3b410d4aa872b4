package world

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field positions in the legacy settings line.
const (
	legacyDistanceUnit     = 0
	legacyDistanceScale    = 1
	legacyAreaUnit         = 2
	legacyHeightUnit       = 3
	legacyHeightExponent   = 4
	legacyTemperatureScale = 5
	legacyPopulationRate   = 12
	legacyUrbanization     = 13
	legacyOptions          = 19
	legacyMapName          = 20
)

type legacyLine struct {
	kind   Kind
	elems  []json.RawMessage
	shapes []Shape
	full   bool
}

// DecodeLegacy decodes the line-oriented .map save. Its fixed-position header
// lines carry metadata; every later line is tried as a JSON array and classified
// by shape. Lines that are not JSON are skipped.
func DecodeLegacy(data []byte) (*Dataset, error) {
	lines := splitLines(data)
	if len(lines) < 4 {
		return nil, &ValidationError{Field: "map", Reason: fmt.Sprintf("expected at least 4 header lines, got %d", len(lines))}
	}

	ds := &Dataset{Format: FormatLegacy}

	params := strings.Split(lines[0], "|")
	ds.Info.Version = field(params, 0)
	if err := CheckVersion(ds.Info.Version); err != nil {
		return nil, err
	}
	ds.Info.ExportedAt = field(params, 2)
	ds.Info.Seed = FlexString(field(params, 3))
	ds.Info.Width = FlexFloat(parseFloat(field(params, 4)))
	ds.Info.Height = FlexFloat(parseFloat(field(params, 5)))
	ds.Info.MapID = FlexString(field(params, 6))

	if err := decodeLegacySettings(lines[1], &ds.Settings); err != nil {
		return nil, err
	}
	ds.Info.MapName = ds.Settings.MapName

	if strings.TrimSpace(lines[2]) != "" {
		if err := json.Unmarshal([]byte(lines[2]), &ds.Coordinates); err != nil {
			return nil, &ValidationError{Field: "map.coordinates", Reason: err.Error()}
		}
	}

	bd, err := decodeLegacyBiomes(lines[3])
	if err != nil {
		return nil, err
	}
	ds.BiomesData = bd

	accepted := make(map[Kind]legacyLine)
	for n, line := range lines[4:] {
		ll, ok := classifyLegacyLine(line)
		if !ok {
			continue
		}
		prev, seen := accepted[ll.kind]
		switch {
		case !seen:
			accepted[ll.kind] = ll
		case !prev.full && ll.full:
			accepted[ll.kind] = ll
		default:
			ds.Warnings = append(ds.Warnings, fmt.Sprintf("line %d: extra %s record ignored", n+5, ll.kind))
		}
	}

	for kind, ll := range accepted {
		if err := ds.fillLegacy(kind, ll); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func classifyLegacyLine(line string) (legacyLine, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "[") {
		return legacyLine{}, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &elems); err != nil {
		return legacyLine{}, false
	}
	kind, shapes, ok := ClassifyLine(elems)
	if !ok {
		return legacyLine{}, false
	}
	full := false
	for _, s := range shapes {
		if !s.Placeholder() {
			full = true
			break
		}
	}
	return legacyLine{kind: kind, elems: elems, shapes: shapes, full: full}, true
}

func (ds *Dataset) fillLegacy(kind Kind, ll legacyLine) error {
	path := "map." + string(kind)
	for i, raw := range ll.elems {
		placeholder := ll.shapes[i].Placeholder()
		switch kind {
		case KindCulture:
			c, err := decodeCulture(raw, placeholder, path, i)
			if err != nil {
				return err
			}
			ds.Cultures = append(ds.Cultures, c)
		case KindState:
			s, err := decodeState(raw, placeholder, path, i)
			if err != nil {
				return err
			}
			ds.States = append(ds.States, s)
		case KindReligion:
			r, err := decodeReligion(raw, placeholder, path, i)
			if err != nil {
				return err
			}
			ds.Religions = append(ds.Religions, r)
		case KindBurg:
			if placeholder {
				ds.Burgs = append(ds.Burgs, nil)
				continue
			}
			b := &Burg{}
			if err := decodeElement(raw, b, path, i); err != nil {
				return err
			}
			ds.Burgs = append(ds.Burgs, b)
		case KindProvince:
			if placeholder {
				ds.Provinces = append(ds.Provinces, nil)
				continue
			}
			p := &Province{}
			if err := decodeElement(raw, p, path, i); err != nil {
				return err
			}
			ds.Provinces = append(ds.Provinces, p)
		case KindRiver:
			r := &River{}
			if err := decodeElement(raw, r, path, i); err != nil {
				return err
			}
			ds.Rivers = append(ds.Rivers, r)
		case KindMarker:
			m := &Marker{}
			if err := decodeElement(raw, m, path, i); err != nil {
				return err
			}
			ds.Markers = append(ds.Markers, m)
		case KindRoute:
			r := &Route{}
			if err := decodeElement(raw, r, path, i); err != nil {
				return err
			}
			ds.Routes = append(ds.Routes, r)
		case KindNote:
			var n Note
			if err := decodeElement(raw, &n, path, i); err != nil {
				return err
			}
			ds.Notes = append(ds.Notes, n)
		}
	}
	return nil
}

func decodeLegacySettings(line string, s *Settings) error {
	f := strings.Split(line, "|")
	s.DistanceUnit = field(f, legacyDistanceUnit)
	s.DistanceScale = FlexFloat(parseFloat(field(f, legacyDistanceScale)))
	s.AreaUnit = field(f, legacyAreaUnit)
	s.HeightUnit = field(f, legacyHeightUnit)
	s.HeightExponent = FlexFloat(parseFloat(field(f, legacyHeightExponent)))
	s.TemperatureScale = field(f, legacyTemperatureScale)
	s.PopulationRate = FlexFloat(parseFloat(field(f, legacyPopulationRate)))
	s.Urbanization = FlexFloat(parseFloat(field(f, legacyUrbanization)))
	s.MapName = field(f, legacyMapName)
	if opts := field(f, legacyOptions); opts != "" {
		if err := json.Unmarshal([]byte(opts), &s.Options); err != nil {
			return &ValidationError{Field: "map.settings.options", Reason: err.Error()}
		}
	}
	return nil
}

// decodeLegacyBiomes reads the "colors|habitability|names" line. Ids are
// positions in the name list.
func decodeLegacyBiomes(line string) (BiomesData, error) {
	f := strings.Split(line, "|")
	if len(f) < 3 {
		return BiomesData{}, &ValidationError{Field: "map.biomes", Reason: "expected colors|habitability|names"}
	}
	colors := strings.Split(f[0], ",")
	habitability := strings.Split(f[1], ",")
	names := strings.Split(f[2], ",")

	bd := BiomesData{}
	for i, name := range names {
		bd.I = append(bd.I, i)
		bd.Name = append(bd.Name, name)
	}
	bd.Color = colors
	for i, h := range habitability {
		v, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
		if err != nil {
			return BiomesData{}, &ValidationError{Field: fmt.Sprintf("map.biomes.habitability[%d]", i), Reason: err.Error()}
		}
		bd.Habitability = append(bd.Habitability, v)
	}
	return bd, nil
}

func splitLines(data []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 256*1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	return lines
}

func field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
