// Package shelter indexes the static covered-walkway dataset for fast
// intersection and proximity queries against route geometry. An Index is
// immutable after construction and safe for concurrent reads; a nil Index is
// a valid no-op used when the dataset is unavailable.
package shelter

import (
	"sort"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/tidwall/rtree"
)

// Feature is one shelter geometry in the metric frame.
type Feature struct {
	ID       string
	Geometry geom.Geometry
}

// Index answers "which shelters touch this line" and "which shelters are
// near this line" with a bounding-box prefilter followed by exact tests.
type Index struct {
	tree     rtree.RTreeG[int]
	features []Feature
	byID     map[string]int
}

// NewIndex builds an index over the given features. Features with empty
// geometry are dropped. A nil or empty feature set yields a usable index that
// matches nothing.
func NewIndex(features []Feature) *Index {
	ix := &Index{byID: make(map[string]int)}
	for _, f := range features {
		if f.Geometry.IsEmpty() {
			continue
		}
		min, max, ok := envelopeOf(f.Geometry)
		if !ok {
			continue
		}
		i := len(ix.features)
		ix.features = append(ix.features, f)
		ix.byID[f.ID] = i
		ix.tree.Insert(min, max, i)
	}
	return ix
}

// Len returns the number of indexed shelters.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.features)
}

// Intersecting returns the union of all shelter geometry intersecting the
// given metric-frame line, or an empty geometry when none does.
func (ix *Index) Intersecting(line geom.Geometry) geom.Geometry {
	if ix == nil || len(ix.features) == 0 || line.IsEmpty() {
		return geom.Geometry{}
	}
	min, max, ok := envelopeOf(line)
	if !ok {
		return geom.Geometry{}
	}

	var hit geom.Geometry
	ix.tree.Search(min, max, func(_, _ [2]float64, i int) bool {
		g := ix.features[i].Geometry
		if !geom.Intersects(line, g) {
			return true
		}
		if hit.IsEmpty() {
			hit = g
			return true
		}
		if merged, err := geom.Union(hit, g); err == nil {
			hit = merged
		}
		return true
	})
	return hit
}

// Within returns the IDs of shelters whose geometry lies within radiusM of
// the given metric-frame line, in index order.
func (ix *Index) Within(line geom.Geometry, radiusM float64) []string {
	if ix == nil || len(ix.features) == 0 || line.IsEmpty() || radiusM <= 0 {
		return nil
	}
	min, max, ok := envelopeOf(line)
	if !ok {
		return nil
	}
	min[0] -= radiusM
	min[1] -= radiusM
	max[0] += radiusM
	max[1] += radiusM

	var hits []int
	ix.tree.Search(min, max, func(_, _ [2]float64, i int) bool {
		d, ok := geom.Distance(line, ix.features[i].Geometry)
		if ok && d <= radiusM {
			hits = append(hits, i)
		}
		return true
	})
	sort.Ints(hits)
	ids := make([]string, 0, len(hits))
	for _, i := range hits {
		ids = append(ids, ix.features[i].ID)
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}

// Geometry returns the geometry of the shelter with the given ID.
func (ix *Index) Geometry(id string) (geom.Geometry, bool) {
	if ix == nil {
		return geom.Geometry{}, false
	}
	i, ok := ix.byID[id]
	if !ok {
		return geom.Geometry{}, false
	}
	return ix.features[i].Geometry, true
}

func envelopeOf(g geom.Geometry) (min, max [2]float64, ok bool) {
	env := g.Envelope()
	lo, hi, ok := env.MinMaxXYs()
	if !ok {
		return min, max, false
	}
	return [2]float64{lo.X, lo.Y}, [2]float64{hi.X, hi.Y}, true
}
