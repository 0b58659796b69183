package shelter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/peterstace/simplefeatures/geom"
	"github.com/rotisserie/eris"
	gogeom "github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/shadepath/shadepath/internal/geo"
)

// nameFields are attribute names probed, in order, for a human-readable
// shelter identifier.
var nameFields = []string{"name", "objectid", "id"}

// LoadShapefile reads shelter geometry from a shapefile in geographic
// coordinates and returns metric-frame features. Records with unsupported or
// malformed geometry are skipped.
func LoadShapefile(path string) ([]Feature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "shelter: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	nameIdx := -1
	for i, f := range fields {
		fname := strings.ToLower(strings.TrimRight(f.String(), "\x00"))
		for _, candidate := range nameFields {
			if fname == candidate {
				nameIdx = i
				break
			}
		}
		if nameIdx >= 0 {
			break
		}
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var features []Feature
	var skipped int
	record := 0

	for reader.Next() {
		record++
		_, shape := reader.Shape()

		g := shapeToGeographic(shape)
		if g == nil {
			skipped++
			continue
		}

		metric, err := toMetric(g)
		if err != nil || metric.IsEmpty() {
			skipped++
			continue
		}

		id := fmt.Sprintf("%s-%d", base, record)
		if nameIdx >= 0 {
			if attr := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00")); attr != "" {
				id = attr
			}
		}
		features = append(features, Feature{ID: id, Geometry: metric})
	}

	if skipped > 0 {
		zap.L().Debug("shelter: skipped shapefile records", zap.String("path", path), zap.Int("skipped", skipped))
	}
	zap.L().Info("shelter: loaded dataset", zap.String("path", path), zap.Int("features", len(features)))
	return features, nil
}

// shapeToGeographic converts a shapefile shape into a go-geom geometry in the
// geographic frame. Unsupported shapes return nil.
func shapeToGeographic(shape shp.Shape) gogeom.T {
	switch s := shape.(type) {
	case *shp.Polygon:
		return polygonToMultiPolygon(s)
	case *shp.PolyLine:
		return polyLineToMultiLineString(s)
	default:
		return nil
	}
}

// polygonToMultiPolygon converts a shapefile Polygon to a go-geom
// MultiPolygon, one single-ring polygon per part.
func polygonToMultiPolygon(p *shp.Polygon) gogeom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}
	mp := gogeom.NewMultiPolygon(gogeom.XY).SetSRID(4326)
	for i := int32(0); i < p.NumParts; i++ {
		start, end := partRange(p.Parts, i, p.NumParts, len(p.Points))
		coords := make([]gogeom.Coord, 0, end-start)
		for j := start; j < end; j++ {
			coords = append(coords, gogeom.Coord{p.Points[j].X, p.Points[j].Y})
		}
		poly := gogeom.NewPolygon(gogeom.XY)
		if err := poly.Push(gogeom.NewLinearRing(gogeom.XY).MustSetCoords(coords)); err != nil {
			continue
		}
		if err := mp.Push(poly); err != nil {
			continue
		}
	}
	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// polyLineToMultiLineString converts a shapefile PolyLine to a go-geom
// MultiLineString.
func polyLineToMultiLineString(pl *shp.PolyLine) gogeom.T {
	if pl == nil || pl.NumParts == 0 || len(pl.Points) == 0 {
		return nil
	}
	mls := gogeom.NewMultiLineString(gogeom.XY).SetSRID(4326)
	for i := int32(0); i < pl.NumParts; i++ {
		start, end := partRange(pl.Parts, i, pl.NumParts, len(pl.Points))
		coords := make([]gogeom.Coord, 0, end-start)
		for j := start; j < end; j++ {
			coords = append(coords, gogeom.Coord{pl.Points[j].X, pl.Points[j].Y})
		}
		if err := mls.Push(gogeom.NewLineString(gogeom.XY).MustSetCoords(coords)); err != nil {
			continue
		}
	}
	if mls.NumLineStrings() == 0 {
		return nil
	}
	return mls
}

func partRange(parts []int32, i, numParts int32, numPoints int) (int32, int32) {
	start := parts[i]
	if i+1 < numParts {
		return start, parts[i+1]
	}
	return start, int32(numPoints)
}

// toMetric reprojects a geographic go-geom geometry into the metric frame as
// a simplefeatures geometry.
func toMetric(g gogeom.T) (geom.Geometry, error) {
	switch t := g.(type) {
	case *gogeom.MultiPolygon:
		polys := make([]geom.Polygon, 0, t.NumPolygons())
		for i := 0; i < t.NumPolygons(); i++ {
			src := t.Polygon(i)
			rings := make([]geom.LineString, 0, src.NumLinearRings())
			for r := 0; r < src.NumLinearRings(); r++ {
				rings = append(rings, projectCoordsToRing(src.LinearRing(r).Coords()))
			}
			polys = append(polys, geom.NewPolygon(rings))
		}
		out := geom.NewMultiPolygon(polys).AsGeometry()
		if err := out.Validate(); err != nil {
			return geom.Geometry{}, eris.Wrap(err, "shelter: invalid polygon geometry")
		}
		return out, nil

	case *gogeom.MultiLineString:
		lines := make([]geom.LineString, 0, t.NumLineStrings())
		for i := 0; i < t.NumLineStrings(); i++ {
			lines = append(lines, projectCoordsToRing(t.LineString(i).Coords()))
		}
		out := geom.NewMultiLineString(lines).AsGeometry()
		if err := out.Validate(); err != nil {
			return geom.Geometry{}, eris.Wrap(err, "shelter: invalid line geometry")
		}
		return out, nil

	default:
		return geom.Geometry{}, eris.New("shelter: unsupported geometry type")
	}
}

func projectCoordsToRing(coords []gogeom.Coord) geom.LineString {
	flat := make([]float64, 0, len(coords)*2)
	for _, c := range coords {
		xy := geo.ProjectXY(geo.GeoCoord{Lat: c[1], Lon: c[0]})
		flat = append(flat, xy.X, xy.Y)
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
}
