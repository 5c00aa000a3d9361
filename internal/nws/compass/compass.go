// Package compass converts between the 16 point rose used in bulletins and
// bearings in degrees clockwise from north.
package compass

import "math"

var degrees = map[string]float64{
	"N": 0, "NNE": 22.5, "NE": 45, "ENE": 67.5,
	"E": 90, "ESE": 112.5, "SE": 135, "SSE": 157.5,
	"S": 180, "SSW": 202.5, "SW": 225, "WSW": 247.5,
	"W": 270, "WNW": 292.5, "NW": 315, "NNW": 337.5,
}

var labels = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Label returns the rose label nearest to a bearing.
func Label(bearing float64) string {
	d := math.Mod(math.Mod(bearing, 360)+360, 360)
	return labels[int(math.Floor(d/22.5+0.5))%16]
}

// Degrees returns the bearing for a rose label.
func Degrees(label string) (float64, bool) {
	d, ok := degrees[label]
	return d, ok
}
