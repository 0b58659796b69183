// Package osm fetches building footprints from the Overpass API.
package osm

import (
	"fmt"
	"net/http"
	"sort"

	overpass "github.com/cwbudde/go-overpass"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shadepath/shadepath/internal/geo"
	"github.com/shadepath/shadepath/internal/shadow"
)

// querier is the slice of the Overpass client we use.
type querier interface {
	Query(query string) (overpass.Result, error)
}

// Client queries Overpass for building footprints.
type Client struct {
	api querier
}

// New returns a Client talking to the given Overpass endpoint.
func New(endpoint string) *Client {
	c := overpass.NewWithSettings(endpoint, 1, http.DefaultClient)
	return &Client{api: &c}
}

// newWithAPI is used by tests to inject a fake Overpass backend.
func newWithAPI(api querier) *Client {
	return &Client{api: api}
}

// BuildingsAround fetches all building ways within radiusM meters of the
// given point and normalizes them into footprints with their OSM tags.
// Ways without usable geometry are skipped.
func (c *Client) BuildingsAround(lat, lon, radiusM float64) ([]shadow.Building, error) {
	query := fmt.Sprintf(
		`[out:json][timeout:25];way["building"](around:%.0f,%.6f,%.6f);out geom;`,
		radiusM, lat, lon,
	)
	result, err := c.api.Query(query)
	if err != nil {
		return nil, eris.Wrap(err, "osm: overpass query")
	}

	ids := make([]int64, 0, len(result.Ways))
	for id := range result.Ways {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	buildings := make([]shadow.Building, 0, len(ids))
	skipped := 0
	for _, id := range ids {
		way := result.Ways[id]
		footprint := wayFootprint(way)
		if len(footprint) < 3 {
			skipped++
			continue
		}
		buildings = append(buildings, shadow.Building{
			Footprint: footprint,
			Tags:      way.Tags,
		})
	}
	zap.L().Debug("fetched buildings from overpass",
		zap.Int("buildings", len(buildings)),
		zap.Int("skipped", skipped),
		zap.Float64("radius_m", radiusM))
	return buildings, nil
}

func wayFootprint(way *overpass.Way) []geo.GeoCoord {
	if len(way.Geometry) > 0 {
		coords := make([]geo.GeoCoord, 0, len(way.Geometry))
		for _, p := range way.Geometry {
			coords = append(coords, geo.GeoCoord{Lat: p.Lat, Lon: p.Lon})
		}
		return coords
	}
	coords := make([]geo.GeoCoord, 0, len(way.Nodes))
	for _, n := range way.Nodes {
		if n == nil {
			continue
		}
		coords = append(coords, geo.GeoCoord{Lat: n.Lat, Lon: n.Lon})
	}
	return coords
}
