package nws

import "github.com/paulmach/orb"

// Location is what a location provider knows about an NWSLI or station.
type Location struct {
	Lon    float64
	Lat    float64
	WFO    string
	TZName string
	State  string
	Name   string
}

// Point returns the location as an orb point.
func (l Location) Point() orb.Point {
	return orb.Point{l.Lon, l.Lat}
}

// LocationProvider resolves an identifier to a Location. A missing id
// reports false.
type LocationProvider interface {
	Lookup(id string) (Location, bool)
}

// UGC describes a county or zone code.
type UGC struct {
	Code     string
	Name     string
	WFO      string
	State    string
	Centroid orb.Point
}

// UGCProvider resolves county/zone codes.
type UGCProvider interface {
	LookupUGC(code string) (UGC, bool)
}

// Locations is a fixed in-memory LocationProvider.
type Locations map[string]Location

func (m Locations) Lookup(id string) (Location, bool) {
	loc, ok := m[id]
	return loc, ok
}

// UGCs is a fixed in-memory UGCProvider.
type UGCs map[string]UGC

func (m UGCs) LookupUGC(code string) (UGC, bool) {
	u, ok := m[code]
	return u, ok
}
