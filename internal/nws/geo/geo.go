// Package geo holds the planar and spherical helpers product parsers use to
// build advisory geometries in EPSG:4326.
package geo

import (
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
	"github.com/couchcryptid/nws-text-ingest/internal/nws/compass"
)

const (
	earthRadiusKM = 6378.1
	kmPerMile     = 1.609347
)

// Offset moves (lon, lat) distanceSM statute miles along a great circle
// toward the compass label.
func Offset(lon, lat float64, direction string, distanceSM float64) (float64, float64, error) {
	bearing, ok := compass.Degrees(direction)
	if !ok {
		return 0, 0, fmt.Errorf("unknown compass direction %q", direction)
	}
	if distanceSM == 0 {
		return lon, lat, nil
	}
	start := s2.LatLngFromDegrees(lat, lon)
	theta := (s1.Angle(bearing) * s1.Degree).Radians()
	delta := distanceSM * kmPerMile / earthRadiusKM
	phi1 := start.Lat.Radians()

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := start.Lng.Radians() + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)
	end := s2.LatLng{Lat: s1.Angle(phi2), Lng: s1.Angle(lambda2)}.Normalized()
	return end.Lng.Degrees(), end.Lat.Degrees(), nil
}

// Corridor returns the polygon within widthNM either side of the polyline:
// the left offset of each vertex followed by the right offsets reversed.
// Widths convert to degrees at 111 nm per degree.
func Corridor(pts []orb.Point, widthNM float64) (orb.Polygon, error) {
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: corridor needs at least two points", nws.ErrInvalidGeometry)
	}
	dist := widthNM / 111.0
	left := make(orb.Ring, 0, len(pts)*2+1)
	right := make([]orb.Point, 0, len(pts))
	for i, p := range pts {
		var a, b orb.Point
		if i < len(pts)-1 {
			a, b = p, pts[i+1]
		} else {
			a, b = pts[i-1], p
		}
		dx, dy := b[0]-a[0], b[1]-a[1]
		length := math.Hypot(dx, dy)
		if length == 0 {
			return nil, fmt.Errorf("%w: zero length corridor segment at %v", nws.ErrInvalidGeometry, p)
		}
		ux, uy := dx/length, dy/length
		left = append(left, orb.Point{p[0] - uy*dist, p[1] + ux*dist})
		right = append(right, orb.Point{p[0] + uy*dist, p[1] - ux*dist})
	}
	for i := len(right) - 1; i >= 0; i-- {
		left = append(left, right[i])
	}
	left = append(left, left[0])
	return orb.Polygon{left}, nil
}

// Isolate expands a point to a square with half side diameterNM/110 degrees.
func Isolate(pt orb.Point, diameterNM float64) orb.Polygon {
	h := diameterNM / 110.0
	return orb.Polygon{orb.Ring{
		{pt[0] - h, pt[1] + h},
		{pt[0] + h, pt[1] + h},
		{pt[0] + h, pt[1] - h},
		{pt[0] - h, pt[1] - h},
		{pt[0] - h, pt[1] + h},
	}}
}

// Area returns the planar area in square degrees.
func Area(g orb.Geometry) float64 {
	return math.Abs(planar.Area(g))
}

// ClosePolygon appends the first vertex of each ring when missing.
func ClosePolygon(poly orb.Polygon) orb.Polygon {
	for i, r := range poly {
		if len(r) > 0 && !r.Closed() {
			poly[i] = append(r, r[0])
		}
	}
	return poly
}
