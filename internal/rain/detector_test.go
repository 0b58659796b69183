package rain

import (
	"math"
	"testing"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadepath/shadepath/internal/geo"
)

func degForMeters(m float64) float64 {
	return m / 6378137.0 * 180 / math.Pi
}

// equatorLine builds a metric-frame east-west line at the equator spanning
// the given meter offsets.
func equatorLine(t *testing.T, fromM, toM float64) geom.Geometry {
	t.Helper()
	line := geo.NewGeoLine([]geo.GeoCoord{
		{Lat: 0, Lon: degForMeters(fromM)},
		{Lat: 0, Lon: degForMeters(toM)},
	})
	g, err := line.ToMetric()
	require.NoError(t, err)
	return g
}

func TestLineRainAffected_WithinProximity(t *testing.T) {
	d := NewDetector(5000, nil)
	line := equatorLine(t, 0, 1000)

	near := []Station{{ID: "S1", Lat: 0, Lon: degForMeters(3000), RainfallMM: 1.5}}
	far := []Station{{ID: "S2", Lat: 0, Lon: degForMeters(20000), RainfallMM: 9.0}}

	assert.True(t, d.LineRainAffected(line, near))
	assert.False(t, d.LineRainAffected(line, far))
}

func TestLineRainAffected_DryStationsIgnored(t *testing.T) {
	d := NewDetector(5000, nil)
	line := equatorLine(t, 0, 1000)

	dry := []Station{{ID: "S1", Lat: 0, Lon: degForMeters(500), RainfallMM: 0}}
	assert.False(t, d.LineRainAffected(line, dry))
}

func TestLineRainAffected_AlwaysWetOverride(t *testing.T) {
	d := NewDetector(5000, []string{"S7"})
	line := equatorLine(t, 0, 1000)

	stations := []Station{{ID: "S7", Lat: 0, Lon: degForMeters(500), RainfallMM: 0}}
	assert.True(t, d.LineRainAffected(line, stations))

	// The override only applies to the listed IDs.
	other := []Station{{ID: "S8", Lat: 0, Lon: degForMeters(500), RainfallMM: 0}}
	assert.False(t, d.LineRainAffected(line, other))
}

func TestLineRainAffected_FailsOpen(t *testing.T) {
	d := NewDetector(5000, nil)
	line := equatorLine(t, 0, 1000)

	assert.False(t, d.LineRainAffected(line, nil))
	assert.False(t, d.LineRainAffected(line, []Station{}))
	assert.False(t, d.LineRainAffected(geom.Geometry{}, []Station{{ID: "S1", RainfallMM: 5}}))
}

func TestLineRainAffected_BoundaryIsExclusive(t *testing.T) {
	d := NewDetector(5000, nil)
	line := equatorLine(t, 0, 1000)

	// Station exactly at the threshold distance does not trigger.
	at := []Station{{ID: "S1", Lat: 0, Lon: degForMeters(6000), RainfallMM: 2}}
	assert.False(t, d.LineRainAffected(line, at))

	inside := []Station{{ID: "S1", Lat: 0, Lon: degForMeters(5999), RainfallMM: 2}}
	assert.True(t, d.LineRainAffected(line, inside))
}
