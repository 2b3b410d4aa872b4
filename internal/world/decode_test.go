package world

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func loadTiny(t *testing.T) *Dataset {
	t.Helper()
	ds, err := Load(filepath.Join("testdata", "tiny.json"))
	require.NoError(t, err)
	return ds
}

// mutateTiny decodes the JSON fixture into a generic map, applies fn and
// re-encodes it.
func mutateTiny(t *testing.T, fn func(top map[string]any)) []byte {
	t.Helper()
	var top map[string]any
	require.NoError(t, json.Unmarshal(readFixture(t, "tiny.json"), &top))
	fn(top)
	out, err := json.Marshal(top)
	require.NoError(t, err)
	return out
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, DetectFormat([]byte("  \n\t{\"info\":{}}")))
	assert.Equal(t, FormatLegacy, DetectFormat([]byte("1.99.05|tip|x")))
	assert.Equal(t, FormatLegacy, DetectFormat(nil))
}

func TestDecodeJSON_Tiny(t *testing.T) {
	ds := loadTiny(t)

	assert.Equal(t, FormatJSON, ds.Format)
	assert.Equal(t, "Tinyland", ds.Info.MapName)
	assert.Equal(t, "123456", ds.Info.Seed.String())
	assert.Equal(t, 3.0, ds.Settings.DistanceScale.Float(), "numeric settings may arrive as strings")
	assert.Equal(t, 1.8, ds.Settings.HeightExponent.Float())
	assert.Equal(t, 2000.0, ds.Settings.Options.VillageMaxPopulation.Float())

	require.Len(t, ds.Cultures, 3)
	assert.IsType(t, &WildCulture{}, ds.Cultures[0])
	assert.IsType(t, &FullCulture{}, ds.Cultures[1])
	require.Len(t, ds.States, 3)
	assert.IsType(t, &NeutralState{}, ds.States[0])
	assert.IsType(t, &FullState{}, ds.States[2])
	require.Len(t, ds.Religions, 3)
	assert.IsType(t, &NoReligion{}, ds.Religions[0])

	require.Len(t, ds.Burgs, 4)
	assert.Nil(t, ds.Burgs[0])
	assert.True(t, bool(ds.Burgs[1].Capital))
	assert.True(t, ds.Burgs[3].Removed)
	require.Len(t, ds.Provinces, 3)
	assert.Nil(t, ds.Provinces[0])

	assert.Len(t, ds.Cells, 5)
	assert.Len(t, ds.Rivers, 2)
	assert.Len(t, ds.Markers, 2)
	assert.Len(t, ds.Routes, 3)
	assert.Len(t, ds.Notes, 2)
	require.Len(t, ds.NameBases, 2)
	assert.Equal(t, 1, ds.NameBases[1].ID)

	require.Len(t, ds.Features, 3)
	assert.Nil(t, ds.Features[0])
	assert.True(t, ds.Features[1].Land)

	full := ds.Religions[2].(*FullReligion)
	assert.Nil(t, full.Deity)
}

func TestDecodeJSON_MergesGridClimate(t *testing.T) {
	ds := loadTiny(t)
	var cell *Cell
	for _, c := range ds.Cells {
		if c.ID == 5 {
			cell = c
		}
	}
	require.NotNil(t, cell)
	assert.True(t, cell.HasClimate)
	assert.Equal(t, 15.0, cell.Temperature)
	assert.Equal(t, 10.0, cell.Precipitation)
	assert.Equal(t, 100.0, cell.X)
}

func TestDecodeJSON_NonArrayCollection(t *testing.T) {
	tests := []struct {
		name  string
		field string
		edit  func(top map[string]any)
	}{
		{"cultures object", "pack.cultures", func(top map[string]any) {
			top["pack"].(map[string]any)["cultures"] = map[string]any{}
		}},
		{"routes string", "pack.routes", func(top map[string]any) {
			top["pack"].(map[string]any)["routes"] = "nope"
		}},
		{"burgs missing", "pack.burgs", func(top map[string]any) {
			delete(top["pack"].(map[string]any), "burgs")
		}},
		{"notes number", "notes", func(top map[string]any) {
			top["notes"] = 7
		}},
		{"grid cells", "grid.cells", func(top map[string]any) {
			top["grid"] = map[string]any{"cells": true}
		}},
		{"pack missing", "pack", func(top map[string]any) {
			delete(top, "pack")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON(mutateTiny(t, tt.edit))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestDecodeJSON_ElementErrorNamesIndex(t *testing.T) {
	data := mutateTiny(t, func(top map[string]any) {
		burgs := top["pack"].(map[string]any)["burgs"].([]any)
		burgs[2].(map[string]any)["cell"] = "five"
	})
	_, err := DecodeJSON(data)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "pack.burgs[2]", verr.Field)
}

func TestDecodeJSON_UnsupportedVersion(t *testing.T) {
	for _, v := range []string{"", "1.89", "0.99", "2.0", "one.ninety"} {
		t.Run(v, func(t *testing.T) {
			data := mutateTiny(t, func(top map[string]any) {
				top["info"].(map[string]any)["version"] = v
			})
			_, err := DecodeJSON(data)
			var verr *VersionError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, v, verr.Version)
		})
	}
}

func TestCheckVersion(t *testing.T) {
	for _, v := range []string{"1.90", "1.99.05", "1.105.2"} {
		assert.NoError(t, CheckVersion(v), v)
	}
}

func TestDecode_NotJSON(t *testing.T) {
	_, err := DecodeJSON([]byte("{broken"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "$", verr.Field)
}

func TestDecodeLegacy_Tiny(t *testing.T) {
	ds, err := Decode(readFixture(t, "tiny.map"))
	require.NoError(t, err)

	assert.Equal(t, FormatLegacy, ds.Format)
	assert.Equal(t, "1.99.05", ds.Info.Version)
	assert.Equal(t, "Tinyland", ds.Info.MapName)
	assert.Equal(t, 1000.0, ds.Info.Width.Float())
	assert.Equal(t, "mi", ds.Settings.DistanceUnit)
	assert.Equal(t, 1000.0, ds.Settings.PopulationRate.Float())
	assert.Equal(t, "TE", ds.Settings.Options.EraShort)
	assert.Equal(t, 50.0, ds.Coordinates.LatN)

	assert.Equal(t, []int{0, 1, 2}, ds.BiomesData.I)
	assert.Equal(t, []string{"Marine", "Grassland", "Taiga"}, ds.BiomesData.Name)
	assert.Equal(t, []float64{0, 100, 12}, ds.BiomesData.Habitability)

	require.Len(t, ds.Cultures, 3)
	assert.IsType(t, &WildCulture{}, ds.Cultures[0])
	require.Len(t, ds.Burgs, 4)
	assert.Nil(t, ds.Burgs[0])
	require.Len(t, ds.Provinces, 3, "the all-placeholder line must not replace the real provinces")
	assert.Nil(t, ds.Provinces[0])
	assert.Equal(t, "Northmarch", ds.Provinces[1].Name)
	assert.Len(t, ds.States, 3)
	assert.Len(t, ds.Religions, 3)
	assert.Len(t, ds.Rivers, 2)
	assert.Len(t, ds.Markers, 2)
	assert.Len(t, ds.Routes, 3)
	assert.Len(t, ds.Notes, 2)
	assert.Empty(t, ds.Cells)
	assert.NotEmpty(t, ds.Warnings)
}

func TestDecodeLegacy_TooShort(t *testing.T) {
	_, err := DecodeLegacy([]byte("1.99|x\nmi|3"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDecodeLegacy_UnsupportedVersion(t *testing.T) {
	_, err := DecodeLegacy([]byte("1.70|tip|x|1|10|10|1\nmi|1\n{}\n#fff|0|Marine\n"))
	var verr *VersionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "1.70", verr.Version)
}

func TestFlexTypes(t *testing.T) {
	var v struct {
		A FlexFloat  `json:"a"`
		B FlexFloat  `json:"b"`
		C FlexString `json:"c"`
		D Flag       `json:"d"`
		E Flag       `json:"e"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"2.5","b":4,"c":42,"d":1,"e":false}`), &v))
	assert.Equal(t, 2.5, v.A.Float())
	assert.Equal(t, 4.0, v.B.Float())
	assert.Equal(t, "42", v.C.String())
	assert.True(t, bool(v.D))
	assert.False(t, bool(v.E))

	var bad struct {
		A FlexFloat `json:"a"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"a":"abc"}`), &bad))
}
