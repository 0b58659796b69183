package geo

import (
	"github.com/peterstace/simplefeatures/geom"
)

// EncodeLinear encodes the linear elements of a metric-frame geometry as
// Google encoded polylines, one per line string. Points and areal elements
// are ignored.
func EncodeLinear(g geom.Geometry) []string {
	var out []string
	forEachLineString(g, func(ls geom.LineString) {
		if enc := encodeMetricLineString(ls); enc != "" {
			out = append(out, enc)
		}
	})
	return out
}

// EncodeAreal encodes the exterior rings of the areal elements of a
// metric-frame geometry as closed encoded polylines, one per polygon.
func EncodeAreal(g geom.Geometry) []string {
	var out []string
	forEachPolygon(g, func(p geom.Polygon) {
		if enc := encodeMetricLineString(p.ExteriorRing()); enc != "" {
			out = append(out, enc)
		}
	})
	return out
}

func encodeMetricLineString(ls geom.LineString) string {
	seq := ls.Coordinates()
	if seq.Length() < 2 {
		return ""
	}
	coords := make([]GeoCoord, 0, seq.Length())
	for i := 0; i < seq.Length(); i++ {
		coords = append(coords, UnprojectXY(seq.GetXY(i)))
	}
	return EncodePolyline(NewGeoLine(coords))
}

func forEachLineString(g geom.Geometry, fn func(geom.LineString)) {
	switch g.Type() {
	case geom.TypeLineString:
		fn(g.MustAsLineString())
	case geom.TypeMultiLineString:
		mls := g.MustAsMultiLineString()
		for i := 0; i < mls.NumLineStrings(); i++ {
			fn(mls.LineStringN(i))
		}
	case geom.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		for i := 0; i < gc.NumGeometries(); i++ {
			forEachLineString(gc.GeometryN(i), fn)
		}
	}
}

func forEachPolygon(g geom.Geometry, fn func(geom.Polygon)) {
	switch g.Type() {
	case geom.TypePolygon:
		fn(g.MustAsPolygon())
	case geom.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		for i := 0; i < mp.NumPolygons(); i++ {
			fn(mp.PolygonN(i))
		}
	case geom.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		for i := 0; i < gc.NumGeometries(); i++ {
			forEachPolygon(gc.GeometryN(i), fn)
		}
	}
}
