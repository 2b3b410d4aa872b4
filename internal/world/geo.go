package world

// LatLong converts map pixel coordinates into latitude and longitude using
// the dataset's coordinate bounds. Off-map points extrapolate linearly.
func LatLong(ds *Dataset, x, y float64) (lat, lon float64) {
	c := ds.Coordinates
	if h := ds.Info.Height.Float(); h != 0 {
		lat = c.LatS + (y/h)*c.LatT
	} else {
		lat = c.LatS
	}
	if w := ds.Info.Width.Float(); w != 0 {
		lon = c.LonW + (x/w)*c.LonT
	} else {
		lon = c.LonW
	}
	return lat, lon
}
