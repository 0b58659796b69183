package shadow

import (
	"math"
	"testing"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadepath/shadepath/internal/geo"
	"github.com/shadepath/shadepath/internal/solar"
)

func degForMeters(m float64) float64 {
	return m / 6378137.0 * 180 / math.Pi
}

// squareAtEquator builds a closed square footprint of the given side length
// in meters with its southwest corner at (0, 0).
func squareAtEquator(sideM float64) []geo.GeoCoord {
	d := degForMeters(sideM)
	return []geo.GeoCoord{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: d},
		{Lat: d, Lon: d},
		{Lat: d, Lon: 0},
		{Lat: 0, Lon: 0},
	}
}

func metricPoint(x, y float64) geom.Geometry {
	return geom.NewPoint(geom.Coordinates{XY: geom.XY{X: x, Y: y}}).AsGeometry()
}

func TestProject_NightYieldsNoShadows(t *testing.T) {
	p := NewProjector(DefaultConfig())
	buildings := []Building{{Footprint: squareAtEquator(20), Tags: map[string]string{"height": "10"}}}

	assert.Empty(t, p.Project(buildings, solar.Angles{AltitudeDeg: 0, AzimuthDeg: 90}))
	assert.Empty(t, p.Project(buildings, solar.Angles{AltitudeDeg: -12, AzimuthDeg: 90}))
}

func TestProject_ShadowDisplacedWest(t *testing.T) {
	// Sun due east at 45 degrees: scale 1.0, direction 270, so a 10m tall
	// building shades 10m due west of its footprint.
	p := NewProjector(DefaultConfig())
	buildings := []Building{{Footprint: squareAtEquator(20), Tags: map[string]string{"height": "10"}}}

	shadows := p.Project(buildings, solar.Angles{AltitudeDeg: 45, AzimuthDeg: 90})
	require.Len(t, shadows, 1)
	hull := shadows[0]

	// 5m west of the footprint is inside the shadow; 15m west is beyond it.
	assert.True(t, geom.Intersects(hull, metricPoint(-5, 10)))
	assert.True(t, geom.Intersects(hull, metricPoint(-9.9, 10)))
	assert.False(t, geom.Intersects(hull, metricPoint(-15, 10)))
	// The footprint itself stays covered.
	assert.True(t, geom.Intersects(hull, metricPoint(10, 10)))
}

func TestProject_SkipsDegenerateFootprints(t *testing.T) {
	p := NewProjector(DefaultConfig())
	buildings := []Building{
		{Footprint: []geo.GeoCoord{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}}}, // too few points
		{Footprint: squareAtEquator(20), Tags: map[string]string{"height": "10"}},
	}

	shadows := p.Project(buildings, solar.Angles{AltitudeDeg: 45, AzimuthDeg: 90})
	assert.Len(t, shadows, 1)
}

func TestResolveHeight(t *testing.T) {
	p := NewProjector(DefaultConfig())

	cases := []struct {
		name string
		tags map[string]string
		want float64
	}{
		{"numeric height", map[string]string{"height": "24.5"}, 24.5},
		{"height with unit token", map[string]string{"height": "12 m"}, 12},
		{"unparseable height falls back to levels", map[string]string{"height": "tall", "building:levels": "4"}, 12},
		{"levels only", map[string]string{"building:levels": "5"}, 15},
		{"unparseable everything", map[string]string{"height": "??", "building:levels": "few"}, 10},
		{"no tags", nil, 10},
		{"height wins over levels", map[string]string{"height": "30", "building:levels": "2"}, 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.ResolveHeight(tc.tags))
		})
	}
}

func TestProject_GrazingSunLongShadow(t *testing.T) {
	p := NewProjector(DefaultConfig())
	buildings := []Building{{Footprint: squareAtEquator(20), Tags: map[string]string{"height": "10"}}}

	// Just above the horizon the scale factor caps at 100, so a 10m building
	// casts a 1000m shadow.
	shadows := p.Project(buildings, solar.Angles{AltitudeDeg: 0.5, AzimuthDeg: 90})
	require.Len(t, shadows, 1)
	assert.True(t, geom.Intersects(shadows[0], metricPoint(-990, 10)))
	assert.False(t, geom.Intersects(shadows[0], metricPoint(-1100, 10)))
}
