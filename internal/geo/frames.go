// Package geo provides the coordinate frames used by the scoring engine and
// the conversions between them. Geographic coordinates (EPSG:4326 lat/lon
// degrees) are carried by GeoCoord and GeoLine; all distance and intersection
// math happens in the metric frame (EPSG:3857 spherical mercator, meters),
// carried by simplefeatures geometries. Reprojection is an explicit step at
// every ingestion boundary; nothing downstream of this package touches
// lat/lon directly.
package geo

import (
	"math"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/rotisserie/eris"
)

const earthRadiusM = 6378137.0

// GeoCoord is a point in the geographic frame.
type GeoCoord struct {
	Lat float64
	Lon float64
}

// GeoLine is an ordered coordinate sequence in the geographic frame.
type GeoLine struct {
	coords []GeoCoord
}

// NewGeoLine wraps a coordinate sequence. The sequence is not copied.
func NewGeoLine(coords []GeoCoord) GeoLine {
	return GeoLine{coords: coords}
}

// NumPoints returns the number of coordinates in the line.
func (l GeoLine) NumPoints() int { return len(l.coords) }

// Coords returns the underlying coordinate sequence.
func (l GeoLine) Coords() []GeoCoord { return l.coords }

// ProjectXY converts a geographic coordinate to metric-frame XY.
func ProjectXY(c GeoCoord) geom.XY {
	lat := c.Lat
	// Clamp to the mercator validity range.
	if lat > 85.06 {
		lat = 85.06
	}
	if lat < -85.06 {
		lat = -85.06
	}
	x := earthRadiusM * c.Lon * math.Pi / 180
	y := earthRadiusM * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
	return geom.XY{X: x, Y: y}
}

// UnprojectXY converts a metric-frame XY back to a geographic coordinate.
func UnprojectXY(xy geom.XY) GeoCoord {
	lon := xy.X / earthRadiusM * 180 / math.Pi
	lat := (2*math.Atan(math.Exp(xy.Y/earthRadiusM)) - math.Pi/2) * 180 / math.Pi
	return GeoCoord{Lat: lat, Lon: lon}
}

// ProjectPoint converts a geographic coordinate to a metric-frame point
// geometry.
func ProjectPoint(c GeoCoord) geom.Geometry {
	xy := ProjectXY(c)
	return geom.NewPoint(geom.Coordinates{XY: xy}).AsGeometry()
}

// ToMetric reprojects the line into the metric frame. Lines with fewer than
// two points yield an error since they have no length to measure.
func (l GeoLine) ToMetric() (geom.Geometry, error) {
	if len(l.coords) < 2 {
		return geom.Geometry{}, eris.Errorf("geo: line has %d points, need at least 2", len(l.coords))
	}
	flat := make([]float64, 0, len(l.coords)*2)
	for _, c := range l.coords {
		xy := ProjectXY(c)
		flat = append(flat, xy.X, xy.Y)
	}
	ls := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	return ls.AsGeometry(), nil
}

// ProjectRing converts a geographic ring into a metric-frame polygon. The
// ring is closed if its endpoints differ. Rings with fewer than three
// distinct points yield an error.
func ProjectRing(ring []GeoCoord) (geom.Geometry, error) {
	if len(ring) < 3 {
		return geom.Geometry{}, eris.Errorf("geo: ring has %d points, need at least 3", len(ring))
	}
	closed := ring
	if ring[0] != ring[len(ring)-1] {
		closed = append(append([]GeoCoord{}, ring...), ring[0])
	}
	flat := make([]float64, 0, len(closed)*2)
	for _, c := range closed {
		xy := ProjectXY(c)
		flat = append(flat, xy.X, xy.Y)
	}
	shell := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	poly := geom.NewPolygon([]geom.LineString{shell})
	g := poly.AsGeometry()
	if err := g.Validate(); err != nil {
		return geom.Geometry{}, eris.Wrap(err, "geo: invalid ring")
	}
	return g, nil
}
