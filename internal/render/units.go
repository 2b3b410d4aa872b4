package render

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fmgvault/internal/world"
)

var compactSuffixes = []string{"", "K", "M", "B", "T"}

// roundSig rounds x to n significant digits, halves away from zero.
func roundSig(x float64, n int) float64 {
	if x == 0 {
		return 0
	}
	mag := int(math.Ceil(math.Log10(math.Abs(x))))
	pow := math.Pow(10, float64(n-mag))
	return math.Round(x*pow) / pow
}

// CompactNumber renders v in short compact notation with three significant
// digits: 440041 -> "440K", 1523 -> "1.52K", 12345678 -> "12.3M".
func CompactNumber(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	i := 0
	for v >= 1000 && i < len(compactSuffixes)-1 {
		v /= 1000
		i++
	}
	r := roundSig(v, 3)
	if r >= 1000 && i < len(compactSuffixes)-1 {
		r = roundSig(r/1000, 3)
		i++
	}
	return sign + strconv.FormatFloat(r, 'f', -1, 64) + compactSuffixes[i]
}

var grouped = message.NewPrinter(language.English)

// Grouped renders an integer with thousands separators.
func Grouped(v int64) string {
	return grouped.Sprintf("%d", v)
}

// Population is an absolute head count split by settlement type.
type Population struct {
	Total, Urban, Rural int64
}

// String renders "total (urban Urban, rural Rural)" in compact notation.
func (p Population) String() string {
	return fmt.Sprintf("%s (%s Urban, %s Rural)",
		CompactNumber(float64(p.Total)), CompactNumber(float64(p.Urban)), CompactNumber(float64(p.Rural)))
}

// Units converts raw dataset quantities using the map's settings.
type Units struct {
	settings world.Settings
}

// NewUnits wraps the map settings.
func NewUnits(settings world.Settings) Units {
	return Units{settings: settings}
}

// Population scales rural and urban population points by the population rate.
func (u Units) Population(rural, urban float64) Population {
	rate := u.settings.PopulationRate.Float()
	return Population{
		Total: int64(math.Round((rural + urban) * rate)),
		Urban: int64(math.Round(urban * rate)),
		Rural: int64(math.Round(rural * rate)),
	}
}

// Area converts a pixel area to map units squared.
func (u Units) Area(pixels float64) int64 {
	scale := u.settings.DistanceScale.Float()
	return int64(math.Round(pixels * scale * scale))
}

func (u Units) distanceUnit() string {
	if u.settings.DistanceUnit == "" {
		return "km"
	}
	return u.settings.DistanceUnit
}

// ReadableArea renders a pixel area, e.g. "2.4K mi<sup>2</sup>". Area units
// other than "square" are printed as given.
func (u Units) ReadableArea(pixels float64) string {
	unit := u.settings.AreaUnit
	if unit == "" || unit == "square" {
		unit = u.distanceUnit() + "<sup>2</sup>"
	}
	return CompactNumber(float64(u.Area(pixels))) + " " + unit
}

// Temperature converts a Celsius value to the configured scale.
func (u Units) Temperature(celsius float64) string {
	scale := u.settings.TemperatureScale
	var v float64
	switch scale {
	case "°F":
		v = celsius*9/5 + 32
	case "K":
		v = celsius + 273.15
	case "°R":
		v = (celsius + 273.15) * 9 / 5
	case "°De":
		v = (100 - celsius) * 3 / 2
	case "°N":
		v = celsius * 33 / 100
	case "°Ré":
		v = celsius * 4 / 5
	case "°Rø":
		v = celsius*21/40 + 7.5
	default:
		scale = "°C"
		v = celsius
	}
	return strconv.FormatFloat(math.Round(v), 'f', -1, 64) + scale
}

// Height converts a generator height (0-100, land from 20) to an elevation
// in the configured height unit. Water cells give negative depths.
func (u Units) Height(h int) string {
	unit := u.settings.HeightUnit
	ratio := 3.281
	switch unit {
	case "m":
		ratio = 1
	case "f":
		ratio = 0.5468
	case "", "ft":
		unit = "ft"
	}
	height := -990.0
	switch {
	case h >= 20:
		exp := u.settings.HeightExponent.Float()
		if exp == 0 {
			exp = 2
		}
		height = math.Pow(float64(h-18), exp)
	case h > 0:
		height = float64(h-20) / float64(h) * 50
	}
	return Grouped(int64(math.Round(height*ratio))) + " " + unit
}

// Length renders a river or route length, converting to miles when the map
// measures in miles.
func (u Units) Length(km float64) string {
	if km == 0 {
		return ""
	}
	if u.settings.DistanceUnit == "mi" {
		return Grouped(int64(math.Round(km*0.621371))) + " mi"
	}
	return Grouped(int64(math.Round(km))) + " km"
}

// Flow renders a discharge in cubic metres per second.
func Flow(discharge float64) string {
	return Grouped(int64(math.Round(discharge))) + " m<sup>3</sup>/s"
}
