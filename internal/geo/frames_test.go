package geo

import (
	"math"
	"testing"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lonForMeters returns the longitude delta that spans the given east-west
// distance at the equator, where mercator distances are undistorted.
func lonForMeters(m float64) float64 {
	return m / 6378137.0 * 180 / math.Pi
}

func TestProjectXY_Equator(t *testing.T) {
	a := ProjectXY(GeoCoord{Lat: 0, Lon: 0})
	b := ProjectXY(GeoCoord{Lat: 0, Lon: lonForMeters(1000)})

	assert.InDelta(t, 0, a.X, 1e-6)
	assert.InDelta(t, 0, a.Y, 1e-6)
	assert.InDelta(t, 1000, b.X-a.X, 1e-6)
	assert.InDelta(t, 0, b.Y-a.Y, 1e-6)
}

func TestProjectXY_RoundTrip(t *testing.T) {
	orig := GeoCoord{Lat: 1.3521, Lon: 103.8198}
	back := UnprojectXY(ProjectXY(orig))
	assert.InDelta(t, orig.Lat, back.Lat, 1e-9)
	assert.InDelta(t, orig.Lon, back.Lon, 1e-9)
}

func TestProjectXY_ClampsPolarLatitudes(t *testing.T) {
	a := ProjectXY(GeoCoord{Lat: 89, Lon: 0})
	b := ProjectXY(GeoCoord{Lat: 85.06, Lon: 0})
	assert.Equal(t, b.Y, a.Y)
}

func TestGeoLine_ToMetric_Length(t *testing.T) {
	line := NewGeoLine([]GeoCoord{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: lonForMeters(1000)},
	})
	g, err := line.ToMetric()
	require.NoError(t, err)
	assert.InDelta(t, 1000, LinearLength(g), 1e-6)
}

func TestGeoLine_ToMetric_TooFewPoints(t *testing.T) {
	_, err := NewGeoLine([]GeoCoord{{Lat: 0, Lon: 0}}).ToMetric()
	assert.Error(t, err)

	_, err = NewGeoLine(nil).ToMetric()
	assert.Error(t, err)
}

func TestProjectRing_ClosesOpenRings(t *testing.T) {
	d := lonForMeters(100)
	ring := []GeoCoord{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: d},
		{Lat: d, Lon: d},
		{Lat: d, Lon: 0},
	}
	g, err := ProjectRing(ring)
	require.NoError(t, err)
	assert.Equal(t, geom.TypePolygon, g.Type())
	assert.False(t, g.IsEmpty())
}

func TestProjectRing_TooFewPoints(t *testing.T) {
	_, err := ProjectRing([]GeoCoord{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}})
	assert.Error(t, err)
}
