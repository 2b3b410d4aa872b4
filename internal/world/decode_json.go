package world

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type rawPackCell struct {
	I        int       `json:"i"`
	G        int       `json:"g"`
	H        int       `json:"h"`
	F        int       `json:"f"`
	R        int       `json:"r"`
	Biome    int       `json:"biome"`
	Pop      FlexFloat `json:"pop"`
	Culture  int       `json:"culture"`
	Burg     int       `json:"burg"`
	State    int       `json:"state"`
	Religion int       `json:"religion"`
	Province int       `json:"province"`
	Area     FlexFloat `json:"area"`
	P        []float64 `json:"p"`
}

type rawGridCell struct {
	I    int       `json:"i"`
	H    int       `json:"h"`
	Temp FlexFloat `json:"temp"`
	Prec FlexFloat `json:"prec"`
}

// DecodeJSON decodes the consolidated export.
func DecodeJSON(data []byte) (*Dataset, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, &ValidationError{Field: "$", Reason: "not a JSON object: " + err.Error()}
	}

	ds := &Dataset{Format: FormatJSON}

	if err := decodeSection(top, "info", &ds.Info, true); err != nil {
		return nil, err
	}
	if err := CheckVersion(ds.Info.Version); err != nil {
		return nil, err
	}
	if err := decodeSection(top, "settings", &ds.Settings, true); err != nil {
		return nil, err
	}
	if err := decodeSection(top, "mapCoordinates", &ds.Coordinates, false); err != nil {
		return nil, err
	}
	if err := decodeSection(top, "biomesData", &ds.BiomesData, false); err != nil {
		return nil, err
	}
	if ds.Info.MapName == "" {
		ds.Info.MapName = ds.Settings.MapName
	}

	pack, err := objectSection(top, "pack")
	if err != nil {
		return nil, err
	}
	grid, err := objectSection(top, "grid")
	if err != nil {
		return nil, err
	}

	packCells, err := arrayField(pack, "pack", "cells", true)
	if err != nil {
		return nil, err
	}
	gridCells, err := arrayField(grid, "grid", "cells", true)
	if err != nil {
		return nil, err
	}
	if ds.Cells, err = mergeCells(packCells, gridCells); err != nil {
		return nil, err
	}

	features, err := arrayField(pack, "pack", "features", false)
	if err != nil {
		return nil, err
	}
	for i, raw := range features {
		// features[0] is a bare 0 in the generator output
		if isScalar(raw) {
			ds.Features = append(ds.Features, nil)
			continue
		}
		f := &Feature{}
		if err := decodeElement(raw, f, "pack.features", i); err != nil {
			return nil, err
		}
		ds.Features = append(ds.Features, f)
	}

	cultures, err := arrayField(pack, "pack", "cultures", true)
	if err != nil {
		return nil, err
	}
	for i, raw := range cultures {
		c, err := decodeCulture(raw, i == 0, "pack.cultures", i)
		if err != nil {
			return nil, err
		}
		ds.Cultures = append(ds.Cultures, c)
	}

	burgs, err := arrayField(pack, "pack", "burgs", true)
	if err != nil {
		return nil, err
	}
	for i, raw := range burgs {
		if i == 0 {
			ds.Burgs = append(ds.Burgs, nil)
			continue
		}
		b := &Burg{}
		if err := decodeElement(raw, b, "pack.burgs", i); err != nil {
			return nil, err
		}
		ds.Burgs = append(ds.Burgs, b)
	}

	states, err := arrayField(pack, "pack", "states", true)
	if err != nil {
		return nil, err
	}
	for i, raw := range states {
		s, err := decodeState(raw, i == 0, "pack.states", i)
		if err != nil {
			return nil, err
		}
		ds.States = append(ds.States, s)
	}

	provinces, err := arrayField(pack, "pack", "provinces", true)
	if err != nil {
		return nil, err
	}
	for i, raw := range provinces {
		if i == 0 {
			ds.Provinces = append(ds.Provinces, nil)
			continue
		}
		p := &Province{}
		if err := decodeElement(raw, p, "pack.provinces", i); err != nil {
			return nil, err
		}
		ds.Provinces = append(ds.Provinces, p)
	}

	religions, err := arrayField(pack, "pack", "religions", true)
	if err != nil {
		return nil, err
	}
	for i, raw := range religions {
		r, err := decodeReligion(raw, i == 0, "pack.religions", i)
		if err != nil {
			return nil, err
		}
		ds.Religions = append(ds.Religions, r)
	}

	if ds.Rivers, err = decodeArray[River](pack, "pack", "rivers"); err != nil {
		return nil, err
	}
	if ds.Markers, err = decodeArray[Marker](pack, "pack", "markers"); err != nil {
		return nil, err
	}
	if ds.Routes, err = decodeArray[Route](pack, "pack", "routes"); err != nil {
		return nil, err
	}

	notes, err := arrayField(top, "", "notes", true)
	if err != nil {
		return nil, err
	}
	for i, raw := range notes {
		var n Note
		if err := decodeElement(raw, &n, "notes", i); err != nil {
			return nil, err
		}
		ds.Notes = append(ds.Notes, n)
	}

	nameBases, err := arrayField(top, "", "nameBases", true)
	if err != nil {
		return nil, err
	}
	for i, raw := range nameBases {
		var nb NameBase
		if err := decodeElement(raw, &nb, "nameBases", i); err != nil {
			return nil, err
		}
		nb.ID = i
		ds.NameBases = append(ds.NameBases, nb)
	}

	return ds, nil
}

func decodeSection(top map[string]json.RawMessage, name string, dst interface{}, required bool) error {
	raw, ok := top[name]
	if !ok || isNull(raw) {
		if required {
			return &ValidationError{Field: name, Reason: "missing"}
		}
		return nil
	}
	if jsonTypeOf(raw) != typeObject {
		return &ValidationError{Field: name, Reason: "not an object"}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &ValidationError{Field: name, Reason: err.Error()}
	}
	return nil
}

func objectSection(top map[string]json.RawMessage, name string) (map[string]json.RawMessage, error) {
	raw, ok := top[name]
	if !ok || isNull(raw) {
		return nil, &ValidationError{Field: name, Reason: "missing"}
	}
	var obj map[string]json.RawMessage
	if jsonTypeOf(raw) != typeObject || json.Unmarshal(raw, &obj) != nil {
		return nil, &ValidationError{Field: name, Reason: "not an object"}
	}
	return obj, nil
}

func fieldPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// arrayField returns the elements of obj[name]. A required field that is
// missing or not an array is a ValidationError.
func arrayField(obj map[string]json.RawMessage, parent, name string, required bool) ([]json.RawMessage, error) {
	path := fieldPath(parent, name)
	raw, ok := obj[name]
	if !ok || isNull(raw) {
		if required {
			return nil, &ValidationError{Field: path, Reason: "missing"}
		}
		return nil, nil
	}
	if jsonTypeOf(raw) != typeArray {
		return nil, &ValidationError{Field: path, Reason: "not an array"}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, &ValidationError{Field: path, Reason: err.Error()}
	}
	return elems, nil
}

func decodeElement(raw json.RawMessage, dst interface{}, path string, i int) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return &ValidationError{Field: fmt.Sprintf("%s[%d]", path, i), Reason: err.Error()}
	}
	return nil
}

func decodeArray[T any](obj map[string]json.RawMessage, parent, name string) ([]*T, error) {
	elems, err := arrayField(obj, parent, name, true)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(elems))
	for i, raw := range elems {
		v := new(T)
		if err := decodeElement(raw, v, fieldPath(parent, name), i); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeCulture(raw json.RawMessage, placeholder bool, path string, i int) (Culture, error) {
	if placeholder {
		c := &WildCulture{}
		return c, decodeElement(raw, c, path, i)
	}
	c := &FullCulture{}
	return c, decodeElement(raw, c, path, i)
}

func decodeState(raw json.RawMessage, placeholder bool, path string, i int) (State, error) {
	if placeholder {
		s := &NeutralState{}
		return s, decodeElement(raw, s, path, i)
	}
	s := &FullState{}
	return s, decodeElement(raw, s, path, i)
}

func decodeReligion(raw json.RawMessage, placeholder bool, path string, i int) (Religion, error) {
	if placeholder {
		r := &NoReligion{}
		return r, decodeElement(raw, r, path, i)
	}
	r := &FullReligion{}
	return r, decodeElement(raw, r, path, i)
}

// mergeCells joins every pack cell with the grid cell it was derived from.
func mergeCells(packCells, gridCells []json.RawMessage) ([]*Cell, error) {
	grid := make(map[int]rawGridCell, len(gridCells))
	for i, raw := range gridCells {
		var gc rawGridCell
		if err := decodeElement(raw, &gc, "grid.cells", i); err != nil {
			return nil, err
		}
		grid[gc.I] = gc
	}

	cells := make([]*Cell, 0, len(packCells))
	for i, raw := range packCells {
		var pc rawPackCell
		if err := decodeElement(raw, &pc, "pack.cells", i); err != nil {
			return nil, err
		}
		c := &Cell{
			ID:         pc.I,
			GridID:     pc.G,
			Height:     pc.H,
			Feature:    pc.F,
			River:      pc.R,
			Biome:      pc.Biome,
			Population: pc.Pop.Float(),
			Culture:    pc.Culture,
			Burg:       pc.Burg,
			State:      pc.State,
			Religion:   pc.Religion,
			Province:   pc.Province,
			Area:       pc.Area.Float(),
		}
		if len(pc.P) >= 2 {
			c.X, c.Y = pc.P[0], pc.P[1]
		}
		if gc, ok := grid[pc.G]; ok {
			c.HasClimate = true
			c.GridHeight = gc.H
			c.Temperature = gc.Temp.Float()
			c.Precipitation = gc.Prec.Float()
		}
		cells = append(cells, c)
	}
	return cells, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isScalar(raw json.RawMessage) bool {
	t := jsonTypeOf(raw)
	return t == typeNumber || t == typeString || t == typeBool || t == typeNull
}
