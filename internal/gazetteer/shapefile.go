package gazetteer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

// ShapeKind selects how UGC codes are built from shapefile attributes.
type ShapeKind string

const (
	// Counties reads the NWS county file: STATE, CWA, COUNTYNAME, FIPS.
	Counties ShapeKind = "county"
	// Zones reads the NWS public forecast zone file: STATE, CWA, NAME, ZONE.
	Zones ShapeKind = "zone"
)

// ImportShapefile loads every record of an NWS county or zone shapefile.
// Centroids come from the LON/LAT attributes, or the bounding box center
// when those are absent.
func (g *DB) ImportShapefile(ctx context.Context, path string, kind ShapeKind) (int, error) {
	r, err := shp.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening shapefile: %w", err)
	}
	defer r.Close()

	fields := make(map[string]int)
	for i, f := range r.Fields() {
		fields[strings.ToUpper(f.String())] = i
	}
	attr := func(row int, name string) string {
		i, ok := fields[name]
		if !ok {
			return ""
		}
		return strings.Trim(r.ReadAttribute(row, i), " \x00")
	}

	count := 0
	for r.Next() {
		row, shape := r.Shape()
		u, err := ugcFromAttributes(kind, func(name string) string { return attr(row, name) })
		if err != nil {
			g.logger.Warn("skipping shapefile record", "path", path, "row", row, "error", err)
			continue
		}
		lon, lonErr := strconv.ParseFloat(attr(row, "LON"), 64)
		lat, latErr := strconv.ParseFloat(attr(row, "LAT"), 64)
		if lonErr != nil || latErr != nil {
			box := shape.BBox()
			lon, lat = (box.MinX+box.MaxX)/2, (box.MinY+box.MaxY)/2
		}
		u.Centroid = orb.Point{lon, lat}
		if err := g.PutUGC(ctx, u); err != nil {
			return count, err
		}
		count++
	}
	if err := r.Err(); err != nil {
		return count, fmt.Errorf("reading shapefile: %w", err)
	}
	return count, nil
}

func ugcFromAttributes(kind ShapeKind, attr func(string) string) (nws.UGC, error) {
	state := attr("STATE")
	if len(state) != 2 {
		return nws.UGC{}, fmt.Errorf("bad STATE %q", state)
	}
	u := nws.UGC{State: state, WFO: attr("CWA")}
	switch kind {
	case Counties:
		fips := attr("FIPS")
		if len(fips) != 5 {
			return nws.UGC{}, fmt.Errorf("bad FIPS %q", fips)
		}
		u.Code = state + "C" + fips[2:]
		u.Name = attr("COUNTYNAME")
	case Zones:
		zone := attr("ZONE")
		if len(zone) != 3 {
			return nws.UGC{}, fmt.Errorf("bad ZONE %q", zone)
		}
		u.Code = state + "Z" + zone
		u.Name = attr("NAME")
	default:
		return nws.UGC{}, fmt.Errorf("unknown shape kind %q", kind)
	}
	return u, nil
}
