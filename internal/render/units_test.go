package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fmgvault/internal/world"
)

func TestCompactNumber(t *testing.T) {
	cases := map[float64]string{
		0:            "0",
		6:            "6",
		75:           "75",
		440:          "440",
		440041:       "440K",
		440075:       "440K",
		1523:         "1.52K",
		1526:         "1.53K",
		1234567:      "1.23M",
		1235567:      "1.24M",
		12345678:     "12.3M",
		123456789:    "123M",
		123556789:    "124M",
		999950:       "1M",
		1234567890:   "1.23B",
		123556789000: "124B",
		-1523:        "-1.52K",
	}
	for in, want := range cases {
		assert.Equal(t, want, CompactNumber(in), "CompactNumber(%v)", in)
	}
}

func TestGrouped(t *testing.T) {
	assert.Equal(t, "1,234,567", Grouped(1234567))
	assert.Equal(t, "12", Grouped(12))
	assert.Equal(t, "-3,248", Grouped(-3248))
}

func unitsWith(s world.Settings) Units { return NewUnits(s) }

func TestReadableArea(t *testing.T) {
	mi := unitsWith(world.Settings{DistanceScale: 4, DistanceUnit: "mi", AreaUnit: "square"})
	assert.Equal(t, "16 mi<sup>2</sup>", mi.ReadableArea(1))

	km := unitsWith(world.Settings{DistanceScale: 10, DistanceUnit: "km", AreaUnit: "square"})
	assert.Equal(t, "100 km<sup>2</sup>", km.ReadableArea(1))
	assert.Equal(t, "2.4K km<sup>2</sup>", km.ReadableArea(24))

	acres := unitsWith(world.Settings{DistanceScale: 1, AreaUnit: "acres"})
	assert.Equal(t, "5 acres", acres.ReadableArea(5))
}

func TestPopulation(t *testing.T) {
	u := unitsWith(world.Settings{PopulationRate: 1000})
	p := u.Population(1, 2)
	assert.Equal(t, Population{Total: 3000, Urban: 2000, Rural: 1000}, p)
	assert.Equal(t, "3K (2K Urban, 1K Rural)", p.String())

	assert.Equal(t, int64(2500), u.Population(0, 2.5).Total)
}

func TestTemperature(t *testing.T) {
	assert.Equal(t, "15°C", unitsWith(world.Settings{}).Temperature(15))
	assert.Equal(t, "50°F", unitsWith(world.Settings{TemperatureScale: "°F"}).Temperature(10))
	assert.Equal(t, "283K", unitsWith(world.Settings{TemperatureScale: "K"}).Temperature(10))
	assert.Equal(t, "-5°C", unitsWith(world.Settings{TemperatureScale: "°C"}).Temperature(-5))
}

func TestHeight(t *testing.T) {
	ft := unitsWith(world.Settings{HeightUnit: "ft", HeightExponent: 1.8})
	assert.Equal(t, "287 ft", ft.Height(30))
	assert.Equal(t, "856 ft", ft.Height(40))
	assert.Equal(t, "-492 ft", ft.Height(5))
	assert.Equal(t, "-3,248 ft", ft.Height(0))

	m := unitsWith(world.Settings{HeightUnit: "m", HeightExponent: 2})
	assert.Equal(t, "144 m", m.Height(30))
}

func TestLength(t *testing.T) {
	mi := unitsWith(world.Settings{DistanceUnit: "mi"})
	assert.Equal(t, "75 mi", mi.Length(120))
	assert.Equal(t, "", mi.Length(0))

	km := unitsWith(world.Settings{DistanceUnit: "km"})
	assert.Equal(t, "1,200 km", km.Length(1200))

	assert.Equal(t, "50 m<sup>3</sup>/s", Flow(50))
}

func TestHabitability(t *testing.T) {
	cases := map[float64]string{
		-5:  "Uninhabitable",
		0:   "Uninhabitable",
		12:  "Barely Survivable",
		50:  "Marginal",
		100: "Perfect",
		150: "Perfect",
	}
	for in, want := range cases {
		assert.Equal(t, want, Habitability(in), "Habitability(%v)", in)
	}
}

func TestBiomeWikiLink(t *testing.T) {
	assert.Equal(t, "https://en.wikipedia.org/wiki/Taiga", BiomeWikiLink("Taiga"))
	assert.Equal(t, "https://en.wikipedia.org/w/index.php?search=Ash+Plains", BiomeWikiLink("Ash Plains"))
}
