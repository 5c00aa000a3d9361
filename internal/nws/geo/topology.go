package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/twpayne/go-geos"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

// rightHandStep is the test point offset, indexed by the segment heading
// rounded to the nearest of N, NE, E, SE, S, SW, W, NW.
var rightHandStep = [8]orb.Point{
	{0.1, 0},     // N
	{0.1, -0.1},  // NE
	{0, -0.1},    // E
	{-0.1, -0.1}, // SE
	{-0.1, 0},    // S
	{-0.1, 0.1},  // SW
	{0, 0.1},     // W
	{0.1, 0.1},   // NW
}

// RightSideOfLine splits conus by line and returns the piece lying to the
// right of the line's middle segment.
func RightSideOfLine(conus orb.Polygon, line orb.LineString) (orb.Polygon, error) {
	if len(line) < 2 {
		return nil, fmt.Errorf("%w: line needs at least two points", nws.ErrInvalidGeometry)
	}
	cg, err := geos.NewGeomFromWKT(wkt.MarshalString(conus))
	if err != nil {
		return nil, fmt.Errorf("conus to geos: %w", err)
	}
	lg, err := geos.NewGeomFromWKT(wkt.MarshalString(line))
	if err != nil {
		return nil, fmt.Errorf("line to geos: %w", err)
	}
	noded := cg.Boundary().Union(lg)
	pieces := geos.DefaultContext.Polygonize([]*geos.Geom{noded})

	k := (len(line) - 1) / 2
	a, b := line[k], line[k+1]
	heading := math.Atan2(b[0]-a[0], b[1]-a[1]) * 180 / math.Pi
	if heading < 0 {
		heading += 360
	}
	step := rightHandStep[int(math.Round(heading/45))%8]
	mid := orb.Point{(a[0]+b[0])/2 + step[0], (a[1]+b[1])/2 + step[1]}
	sample := geos.NewPointFromXY(mid[0], mid[1])

	for i := 0; i < pieces.NumGeometries(); i++ {
		piece := pieces.Geometry(i)
		if !piece.Contains(sample) {
			continue
		}
		poly, err := wkt.UnmarshalPolygon(piece.ToWKT())
		if err != nil {
			return nil, fmt.Errorf("polygonized piece: %w", err)
		}
		return poly, nil
	}
	return nil, fmt.Errorf("%w: no polygon contains %v right of line", nws.ErrInvalidGeometry, mid)
}

// Validate rejects empty, unclosed or self-intersecting polygons.
func Validate(poly orb.Polygon) error {
	if len(poly) == 0 || len(poly[0]) < 4 {
		return fmt.Errorf("%w: empty polygon", nws.ErrInvalidGeometry)
	}
	for _, r := range poly {
		if !r.Closed() {
			return fmt.Errorf("%w: ring not closed", nws.ErrInvalidGeometry)
		}
	}
	g, err := geos.NewGeomFromWKT(wkt.MarshalString(poly))
	if err != nil {
		return fmt.Errorf("%w: %v", nws.ErrInvalidGeometry, err)
	}
	if !g.IsValid() {
		return fmt.Errorf("%w: %s", nws.ErrInvalidGeometry, g.IsValidReason())
	}
	return nil
}

// Buffer returns the point buffered by radius degrees as a polygon.
func Buffer(pt orb.Point, radius float64) (orb.Polygon, error) {
	g := geos.NewPointFromXY(pt[0], pt[1]).Buffer(radius, 8)
	poly, err := wkt.UnmarshalPolygon(g.ToWKT())
	if err != nil {
		return nil, fmt.Errorf("buffer point: %w", err)
	}
	return poly, nil
}
