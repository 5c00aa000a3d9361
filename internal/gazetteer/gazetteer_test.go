package gazetteer

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	g, err := Open(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })
	return g
}

func TestStationRoundTrip(t *testing.T) {
	g := openTestDB(t)
	want := nws.Location{Lon: -93.65, Lat: 41.53, WFO: "DMX", TZName: "America/Chicago", State: "IA", Name: "Des Moines"}
	require.NoError(t, g.PutStation(context.Background(), "KDSM", want))

	got, ok := g.Lookup("KDSM")
	require.True(t, ok)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("station mismatch (-want +got):\n%s", diff)
	}

	_, ok = g.Lookup("KXXX")
	assert.False(t, ok)
}

func TestUGCRoundTrip(t *testing.T) {
	g := openTestDB(t)
	want := nws.UGC{Code: "IAC153", Name: "Polk", WFO: "DMX", State: "IA", Centroid: orb.Point{-93.57, 41.68}}
	require.NoError(t, g.PutUGC(context.Background(), want))

	got, ok := g.LookupUGC("IAC153")
	require.True(t, ok)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ugc mismatch (-want +got):\n%s", diff)
	}

	_, ok = g.LookupUGC("IAZ999")
	assert.False(t, ok)
}

func TestImportStations(t *testing.T) {
	g := openTestDB(t)
	csv := "id,name,state,wfo,tzname,lat,lon\n" +
		"kdsm,Des Moines,IA,DMX,America/Chicago,41.53,-93.65\n" +
		"AMSI4,Ames,IA,DMX,America/Chicago,42.03,-93.62\n" +
		"BAD,Nowhere,IA,DMX,America/Chicago,north,west\n"

	loaded, skipped, err := g.ImportStations(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, loaded)
	assert.Equal(t, 1, skipped)

	loc, ok := g.Lookup("KDSM")
	require.True(t, ok)
	assert.Equal(t, "Des Moines", loc.Name)

	stations, ugcs, err := g.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stations)
	assert.Equal(t, 0, ugcs)
}

func TestImportStations_MissingColumn(t *testing.T) {
	g := openTestDB(t)
	_, _, err := g.ImportStations(context.Background(), strings.NewReader("id,name,lat,lon\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state")
}

func writeCountyShapefile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "c_test.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("STATE", 2),
		shp.StringField("CWA", 9),
		shp.StringField("COUNTYNAME", 24),
		shp.StringField("FIPS", 5),
		shp.FloatField("LON", 10, 4),
		shp.FloatField("LAT", 10, 4),
	}))

	polk := shp.Polygon(*shp.NewPolyLine([][]shp.Point{{{X: -93.8, Y: 41.5}, {X: -93.8, Y: 41.9}, {X: -93.3, Y: 41.9}, {X: -93.3, Y: 41.5}, {X: -93.8, Y: 41.5}}}))
	row := int(w.Write(&polk))
	for i, v := range []any{"IA", "DMX", "Polk", "19153", -93.57, 41.68} {
		require.NoError(t, w.WriteAttribute(row, i, v))
	}

	bad := shp.Polygon(*shp.NewPolyLine([][]shp.Point{{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 0}}}))
	row = int(w.Write(&bad))
	for i, v := range []any{"IA", "DMX", "Broken", "191", 0.5, 0.5} {
		require.NoError(t, w.WriteAttribute(row, i, v))
	}
	w.Close()
	return path
}

func TestImportShapefile_Counties(t *testing.T) {
	g := openTestDB(t)
	n, err := g.ImportShapefile(context.Background(), writeCountyShapefile(t), Counties)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	u, ok := g.LookupUGC("IAC153")
	require.True(t, ok)
	assert.Equal(t, "Polk", u.Name)
	assert.Equal(t, "DMX", u.WFO)
	assert.InDelta(t, -93.57, u.Centroid.Lon(), 1e-6)
	assert.InDelta(t, 41.68, u.Centroid.Lat(), 1e-6)
}

func TestUGCFromAttributes(t *testing.T) {
	attrs := map[string]string{"STATE": "IA", "CWA": "DMX", "NAME": "Polk", "ZONE": "060"}
	u, err := ugcFromAttributes(Zones, func(k string) string { return attrs[k] })
	require.NoError(t, err)
	assert.Equal(t, "IAZ060", u.Code)
	assert.Equal(t, "Polk", u.Name)

	_, err = ugcFromAttributes(Counties, func(k string) string { return attrs[k] })
	assert.Error(t, err)
	_, err = ugcFromAttributes("marine", func(k string) string { return attrs[k] })
	assert.Error(t, err)
}

type countingProvider struct {
	nws.Locations
	nws.UGCs
	stationCalls int
	ugcCalls     int
}

func (c *countingProvider) Lookup(id string) (nws.Location, bool) {
	c.stationCalls++
	return c.Locations.Lookup(id)
}

func (c *countingProvider) LookupUGC(code string) (nws.UGC, bool) {
	c.ugcCalls++
	return c.UGCs.LookupUGC(code)
}

func TestCached(t *testing.T) {
	inner := &countingProvider{
		Locations: nws.Locations{"KDSM": {Name: "Des Moines"}},
		UGCs:      nws.UGCs{"IAC153": {Code: "IAC153", Name: "Polk"}},
	}
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "location_cache_total"}, []string{"kind", "result"})
	c := NewCached(inner, 10, lookups)

	for range 3 {
		loc, ok := c.Lookup("KDSM")
		require.True(t, ok)
		assert.Equal(t, "Des Moines", loc.Name)
	}
	assert.Equal(t, 1, inner.stationCalls)

	for range 2 {
		_, ok := c.Lookup("KXXX")
		assert.False(t, ok)
	}
	assert.Equal(t, 3, inner.stationCalls, "misses are not cached")

	for range 2 {
		u, ok := c.LookupUGC("IAC153")
		require.True(t, ok)
		assert.Equal(t, "Polk", u.Name)
	}
	assert.Equal(t, 1, inner.ugcCalls)
}
