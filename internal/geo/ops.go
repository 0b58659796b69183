package geo

import (
	"github.com/peterstace/simplefeatures/geom"
	"go.uber.org/zap"
)

// UnionAll merges a set of geometries into a single union geometry. Pairwise
// union failures are skipped so one degenerate polygon cannot poison the
// whole set. An empty input yields an empty geometry.
func UnionAll(gs []geom.Geometry) geom.Geometry {
	var out geom.Geometry
	for _, g := range gs {
		if g.IsEmpty() {
			continue
		}
		if out.IsEmpty() {
			out = g
			continue
		}
		merged, err := geom.Union(out, g)
		if err != nil {
			zap.L().Debug("geo: union failed, skipping geometry", zap.Error(err))
			continue
		}
		out = merged
	}
	return out
}

// LinearLength returns the total length of the linear elements of g. Points
// and areal elements contribute nothing; collections are walked recursively.
func LinearLength(g geom.Geometry) float64 {
	switch g.Type() {
	case geom.TypeLineString:
		return g.MustAsLineString().Length()
	case geom.TypeMultiLineString:
		mls := g.MustAsMultiLineString()
		var total float64
		for i := 0; i < mls.NumLineStrings(); i++ {
			total += mls.LineStringN(i).Length()
		}
		return total
	case geom.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		var total float64
		for i := 0; i < gc.NumGeometries(); i++ {
			total += LinearLength(gc.GeometryN(i))
		}
		return total
	default:
		return 0
	}
}

// ClippedLength returns the length of line that falls inside area. Geometry
// failures count as zero overlap rather than propagating.
func ClippedLength(line, area geom.Geometry) float64 {
	if line.IsEmpty() || area.IsEmpty() {
		return 0
	}
	clipped, err := geom.Intersection(line, area)
	if err != nil {
		zap.L().Debug("geo: intersection failed, treating as no overlap", zap.Error(err))
		return 0
	}
	return LinearLength(clipped)
}

// Clip returns the portion of line that falls inside area, or an empty
// geometry when they do not overlap or the operation fails.
func Clip(line, area geom.Geometry) geom.Geometry {
	if line.IsEmpty() || area.IsEmpty() {
		return geom.Geometry{}
	}
	clipped, err := geom.Intersection(line, area)
	if err != nil {
		zap.L().Debug("geo: intersection failed, treating as no overlap", zap.Error(err))
		return geom.Geometry{}
	}
	return clipped
}
