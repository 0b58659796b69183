package geo

import (
	"testing"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLinear_RoundTrip(t *testing.T) {
	line := NewGeoLine([]GeoCoord{
		{Lat: 1.30, Lon: 103.80},
		{Lat: 1.31, Lon: 103.81},
	})
	metric, err := line.ToMetric()
	require.NoError(t, err)

	encoded := EncodeLinear(metric)
	require.Len(t, encoded, 1)

	dec, err := DecodePolyline(encoded[0])
	require.NoError(t, err)
	require.Equal(t, 2, dec.NumPoints())
	assert.InDelta(t, 1.30, dec.Coords()[0].Lat, 1e-5)
	assert.InDelta(t, 103.81, dec.Coords()[1].Lon, 1e-5)
}

func TestEncodeLinear_EmptyAndAreal(t *testing.T) {
	assert.Empty(t, EncodeLinear(geom.Geometry{}))
	assert.Empty(t, EncodeLinear(mustWKT(t, "POLYGON((0 0,1 0,1 1,0 1,0 0))")))
}

func TestEncodeAreal_ExteriorRing(t *testing.T) {
	d := lonForMeters(50)
	poly, err := ProjectRing([]GeoCoord{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: d},
		{Lat: d, Lon: d},
		{Lat: d, Lon: 0},
	})
	require.NoError(t, err)

	encoded := EncodeAreal(poly)
	require.Len(t, encoded, 1)

	dec, err := DecodePolyline(encoded[0])
	require.NoError(t, err)
	assert.Equal(t, 5, dec.NumPoints()) // closed ring
}

func TestEncodeAreal_Collection(t *testing.T) {
	gc := mustWKT(t, "GEOMETRYCOLLECTION(POLYGON((0 0,10 0,10 10,0 10,0 0)),LINESTRING(0 0,5 5))")
	assert.Len(t, EncodeAreal(gc), 1)
	assert.Len(t, EncodeLinear(gc), 1)
}
