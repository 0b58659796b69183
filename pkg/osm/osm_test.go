package osm

import (
	"errors"
	"testing"

	overpass "github.com/cwbudde/go-overpass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	result    overpass.Result
	err       error
	lastQuery string
}

func (f *fakeAPI) Query(query string) (overpass.Result, error) {
	f.lastQuery = query
	return f.result, f.err
}

func squareWay(id int64, tags map[string]string) *overpass.Way {
	return &overpass.Way{
		Meta: overpass.Meta{ID: id, Tags: tags},
		Geometry: []overpass.Point{
			{Lat: 1.3000, Lon: 103.8000},
			{Lat: 1.3001, Lon: 103.8000},
			{Lat: 1.3001, Lon: 103.8001},
			{Lat: 1.3000, Lon: 103.8001},
			{Lat: 1.3000, Lon: 103.8000},
		},
	}
}

func TestBuildingsAround(t *testing.T) {
	api := &fakeAPI{result: overpass.Result{
		Ways: map[int64]*overpass.Way{
			2: squareWay(2, map[string]string{"building": "yes", "height": "25"}),
			1: squareWay(1, map[string]string{"building": "yes"}),
		},
	}}
	c := newWithAPI(api)

	buildings, err := c.BuildingsAround(1.3, 103.8, 500)
	require.NoError(t, err)
	require.Len(t, buildings, 2)

	// Sorted by way ID for deterministic output.
	assert.Equal(t, map[string]string{"building": "yes"}, buildings[0].Tags)
	assert.Equal(t, "25", buildings[1].Tags["height"])
	assert.Len(t, buildings[0].Footprint, 5)

	assert.Contains(t, api.lastQuery, `way["building"]`)
	assert.Contains(t, api.lastQuery, "around:500")
	assert.Contains(t, api.lastQuery, "out geom")
}

func TestBuildingsAround_SkipsDegenerateWays(t *testing.T) {
	api := &fakeAPI{result: overpass.Result{
		Ways: map[int64]*overpass.Way{
			1: {
				Meta:     overpass.Meta{ID: 1, Tags: map[string]string{"building": "yes"}},
				Geometry: []overpass.Point{{Lat: 1.3, Lon: 103.8}, {Lat: 1.31, Lon: 103.8}},
			},
			2: squareWay(2, map[string]string{"building": "yes"}),
		},
	}}
	c := newWithAPI(api)

	buildings, err := c.BuildingsAround(1.3, 103.8, 500)
	require.NoError(t, err)
	assert.Len(t, buildings, 1)
}

func TestBuildingsAround_QueryError(t *testing.T) {
	c := newWithAPI(&fakeAPI{err: errors.New("endpoint down")})
	_, err := c.BuildingsAround(1.3, 103.8, 500)
	assert.Error(t, err)
}

func TestBuildingsAround_FallsBackToNodes(t *testing.T) {
	nodes := []*overpass.Node{
		{Meta: overpass.Meta{ID: 10}, Lat: 1.3000, Lon: 103.8000},
		{Meta: overpass.Meta{ID: 11}, Lat: 1.3001, Lon: 103.8000},
		{Meta: overpass.Meta{ID: 12}, Lat: 1.3001, Lon: 103.8001},
		{Meta: overpass.Meta{ID: 13}, Lat: 1.3000, Lon: 103.8000},
	}
	api := &fakeAPI{result: overpass.Result{
		Ways: map[int64]*overpass.Way{
			1: {Meta: overpass.Meta{ID: 1, Tags: map[string]string{"building": "yes"}}, Nodes: nodes},
		},
	}}
	c := newWithAPI(api)

	buildings, err := c.BuildingsAround(1.3, 103.8, 500)
	require.NoError(t, err)
	require.Len(t, buildings, 1)
	assert.Len(t, buildings[0].Footprint, 4)
}
