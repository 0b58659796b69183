package shelter

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func degForMeters(m float64) float64 {
	return m / 6378137.0 * 180 / math.Pi
}

func writeTestShapefile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "covered_walkway.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("NAME", 25)}))

	d := degForMeters(100)
	ring := []shp.Point{
		{X: 0, Y: 0},
		{X: d, Y: 0},
		{X: d, Y: d},
		{X: 0, Y: d},
		{X: 0, Y: 0},
	}
	poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{ring}))
	w.Write(&poly)
	w.WriteAttribute(0, 0, "Esplanade Link")

	w.Close()
	return path
}

func TestLoadShapefile(t *testing.T) {
	path := writeTestShapefile(t)

	features, err := LoadShapefile(path)
	require.NoError(t, err)
	require.Len(t, features, 1)

	assert.Equal(t, "Esplanade Link", features[0].ID)
	require.False(t, features[0].Geometry.IsEmpty())

	// A 100m x 100m square near the equator projects to roughly 10000 m^2.
	assert.InDelta(t, 100*100, features[0].Geometry.Area(), 100*100*0.01)
}

func TestLoadShapefile_Missing(t *testing.T) {
	_, err := LoadShapefile(filepath.Join(t.TempDir(), "nope.shp"))
	assert.Error(t, err)
}

func TestLoadShapefile_FeedsIndex(t *testing.T) {
	features, err := LoadShapefile(writeTestShapefile(t))
	require.NoError(t, err)

	ix := NewIndex(features)
	assert.Equal(t, 1, ix.Len())

	line := mustWKT(t, "LINESTRING(-50 50,200 50)")
	assert.False(t, ix.Intersecting(line).IsEmpty())
	assert.Equal(t, []string{"Esplanade Link"}, ix.Within(line, 10))
}
