package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

func TestOffset(t *testing.T) {
	t.Run("north one degree", func(t *testing.T) {
		lon, lat, err := Offset(-93.0, 42.0, "N", 69.17)
		require.NoError(t, err)
		assert.InDelta(t, -93.0, lon, 1e-9)
		assert.InDelta(t, 43.0, lat, 0.01)
	})

	t.Run("east at the equator", func(t *testing.T) {
		lon, lat, err := Offset(0, 0, "E", 69.17)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, lon, 0.01)
		assert.InDelta(t, 0.0, lat, 1e-9)
	})

	t.Run("zero distance", func(t *testing.T) {
		lon, lat, err := Offset(-93.5, 41.5, "SW", 0)
		require.NoError(t, err)
		assert.Equal(t, -93.5, lon)
		assert.Equal(t, 41.5, lat)
	})

	t.Run("unknown compass", func(t *testing.T) {
		_, _, err := Offset(0, 0, "NORTH", 5)
		assert.Error(t, err)
	})
}

func TestCorridor(t *testing.T) {
	poly, err := Corridor([]orb.Point{{0, 0}, {5, 0}}, 111)
	require.NoError(t, err)

	want := orb.Ring{{0, 1}, {5, 1}, {5, -1}, {0, -1}, {0, 1}}
	require.Len(t, poly, 1)
	require.Len(t, poly[0], len(want))
	for i := range want {
		assert.InDelta(t, want[i][0], poly[0][i][0], 0.01, "vertex %d lon", i)
		assert.InDelta(t, want[i][1], poly[0][i][1], 0.01, "vertex %d lat", i)
	}
	assert.InDelta(t, 10.0, Area(poly), 0.01)

	_, err = Corridor([]orb.Point{{0, 0}}, 10)
	assert.ErrorIs(t, err, nws.ErrInvalidGeometry)

	_, err = Corridor([]orb.Point{{1, 1}, {1, 1}}, 10)
	assert.ErrorIs(t, err, nws.ErrInvalidGeometry)
}

func TestIsolate(t *testing.T) {
	poly := Isolate(orb.Point{-90, 30}, 22)

	require.Len(t, poly[0], 5)
	assert.True(t, poly[0].Closed())
	assert.InDelta(t, 0.16, Area(poly), 1e-9)
	assert.NoError(t, Validate(poly))
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate(nil), nws.ErrInvalidGeometry)

	bowtie := orb.Polygon{{{0, 0}, {2, 2}, {2, 0}, {0, 2}, {0, 0}}}
	assert.ErrorIs(t, Validate(bowtie), nws.ErrInvalidGeometry)

	open := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}}}
	assert.ErrorIs(t, Validate(open), nws.ErrInvalidGeometry)
	assert.NoError(t, Validate(ClosePolygon(open)))
}

func TestRightSideOfLine(t *testing.T) {
	conus := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}

	t.Run("northbound line keeps the east half", func(t *testing.T) {
		poly, err := RightSideOfLine(conus, orb.LineString{{5, -1}, {5, 11}})
		require.NoError(t, err)
		assert.InDelta(t, 50.0, Area(poly), 1e-6)
		b := poly.Bound()
		assert.InDelta(t, 5.0, b.Min[0], 1e-9)
		assert.InDelta(t, 10.0, b.Max[0], 1e-9)
	})

	t.Run("westbound line keeps the north half", func(t *testing.T) {
		poly, err := RightSideOfLine(conus, orb.LineString{{11, 4}, {-1, 4}})
		require.NoError(t, err)
		assert.InDelta(t, 60.0, Area(poly), 1e-6)
		assert.InDelta(t, 4.0, poly.Bound().Min[1], 1e-9)
	})

	t.Run("line outside conus", func(t *testing.T) {
		_, err := RightSideOfLine(conus, orb.LineString{{20, 20}, {30, 30}})
		assert.ErrorIs(t, err, nws.ErrInvalidGeometry)
	})
}

func TestBuffer(t *testing.T) {
	poly, err := Buffer(orb.Point{-150, 25}, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi*0.25, Area(poly), 0.01)
	assert.InDelta(t, -150.0, poly.Bound().Center()[0], 1e-6)
}
