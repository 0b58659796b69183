// Package score ranks route candidates by how much of their length is
// protected from sun and, when rain is plausible, surfaces shelter geometry
// along and near the route. This is the composition root of the geometric
// pipeline: shadow polygons, the shelter index, and the rain detector all
// meet here.
package score

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/peterstace/simplefeatures/geom"
	"go.uber.org/zap"

	"github.com/shadepath/shadepath/internal/geo"
	"github.com/shadepath/shadepath/internal/rain"
	"github.com/shadepath/shadepath/internal/route"
	"github.com/shadepath/shadepath/internal/shelter"
)

// Config holds the scoring thresholds.
type Config struct {
	// ShelterBufferM is the radius used to surface shelters near (not on) a
	// walking step when rain is likely.
	ShelterBufferM float64
}

// DefaultConfig returns the standard scoring thresholds.
func DefaultConfig() Config {
	return Config{ShelterBufferM: 100}
}

// StepAnalysis is the per-step protection breakdown.
type StepAnalysis struct {
	Instruction      string  `json:"instruction"`
	DistanceText     string  `json:"distance_text"`
	ShadowRatio      float64 `json:"shadow_ratio"`
	LengthM          float64 `json:"length_m"`
	ProtectedLengthM float64 `json:"protected_length_m"`
	ShadowLengthM    float64 `json:"shadow_length_m"`
	ShelterLengthM   float64 `json:"shelter_length_m"`
	TravelMode       string  `json:"travel_mode"`
}

// ScoredRoute is one ranked route candidate with enough geometry for a map
// overlay.
type ScoredRoute struct {
	Summary           string          `json:"summary"`
	Duration          string          `json:"duration"`
	DistanceText      string          `json:"distance"`
	ShadowRatio       float64         `json:"shadow_ratio"`
	ShadowLengthM     float64         `json:"shadow_length_m"`
	ShelteredLengthM  float64         `json:"sheltered_length_m"`
	TotalLengthM      float64         `json:"total_length_m"`
	ExposedDistanceM  float64         `json:"exposed_distance_m"`
	IsRainLikely      bool            `json:"is_rain_likely"`
	Steps             []StepAnalysis  `json:"steps_analysis"`
	ShelteredSegments []string        `json:"sheltered_segments"`
	NearbyShelters    []string        `json:"nearby_shelters"`
	Raw               json.RawMessage `json:"original_route_data,omitempty"`
}

// Scorer scores and ranks route candidates. The shelter index is the only
// shared state and is read-only, so a Scorer is safe for concurrent use.
type Scorer struct {
	shelters *shelter.Index
	detector *rain.Detector
	cfg      Config
}

// New creates a Scorer. A nil shelter index degrades to shadow-only scoring.
func New(shelters *shelter.Index, detector *rain.Detector, cfg Config) *Scorer {
	return &Scorer{shelters: shelters, detector: detector, cfg: cfg}
}

// Score decomposes each route into steps, computes protection ratios against
// the shadow polygons and the shelter index, and returns the routes sorted
// descending by protection ratio (ties keep input order).
func (s *Scorer) Score(routes []route.Route, shadows []geom.Geometry, stations []rain.Station) []ScoredRoute {
	if len(routes) == 0 {
		return []ScoredRoute{}
	}

	// One shadow union shared across all routes: the sun position is the same
	// for every candidate in a scoring call.
	shadowUnion := geo.UnionAll(shadows)

	scored := make([]ScoredRoute, 0, len(routes))
	for _, r := range routes {
		scored = append(scored, s.scoreRoute(r, shadowUnion, stations))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].ShadowRatio > scored[j].ShadowRatio
	})
	return scored
}

// routeTotals is the accumulated result of folding over a route's steps.
type routeTotals struct {
	totalLen, totalProt float64
	walkLen, walkProt   float64
	shadowLen           float64
	shelterLen          float64
	rainLikely          bool
	steps               []StepAnalysis
	shelterSegs         []geom.Geometry
	nearbyIDs           []string
	nearbySeen          map[string]struct{}
}

func (s *Scorer) scoreRoute(r route.Route, shadowUnion geom.Geometry, stations []rain.Station) ScoredRoute {
	totals := routeTotals{
		steps:      []StepAnalysis{},
		nearbySeen: map[string]struct{}{},
	}

	for _, leg := range r.Legs {
		for _, step := range leg.Steps {
			totals = s.foldStep(totals, step, shadowUnion, stations)
		}
	}

	ratio := 0.0
	switch {
	case totals.walkLen > 0:
		ratio = clampRatio(totals.walkProt / totals.walkLen)
	case totals.totalLen > 0:
		ratio = clampRatio(totals.totalProt / totals.totalLen)
	}

	exposed := 0.0
	if totals.walkLen > 0 {
		exposed = math.Max(0, totals.walkLen-totals.walkProt)
	}

	out := ScoredRoute{
		Summary:           r.Summary,
		Duration:          r.Duration,
		DistanceText:      fmt.Sprintf("%.0f m", r.DistanceM),
		ShadowRatio:       ratio,
		ShadowLengthM:     totals.shadowLen,
		ShelteredLengthM:  totals.shelterLen,
		TotalLengthM:      totals.totalLen,
		ExposedDistanceM:  exposed,
		IsRainLikely:      totals.rainLikely,
		Steps:             totals.steps,
		ShelteredSegments: []string{},
		NearbyShelters:    []string{},
		Raw:               r.Raw,
	}

	// Shelter geometry is only meaningful context when rain is plausible;
	// otherwise both overlay collections stay empty even though the
	// intersections were computed.
	if totals.rainLikely {
		for _, seg := range totals.shelterSegs {
			out.ShelteredSegments = append(out.ShelteredSegments, geo.EncodeLinear(seg)...)
		}
		out.NearbyShelters = s.encodeShelters(totals.nearbyIDs)
	}
	return out
}

// foldStep analyzes one step and returns the accumulated totals. Steps whose
// geometry cannot be decoded are skipped and do not count toward any total.
func (s *Scorer) foldStep(t routeTotals, step route.Step, shadowUnion geom.Geometry, stations []rain.Station) routeTotals {
	line, ok := stepLine(step)
	if !ok {
		return t
	}

	length := geo.LinearLength(line)
	if length <= 0 {
		return t
	}

	// Rain likelihood is sticky: once any step comes near a raining station
	// the whole route is treated as rain-affected.
	if !t.rainLikely && s.detector.LineRainAffected(line, stations) {
		t.rainLikely = true
	}

	shadowLen := geo.ClippedLength(line, shadowUnion)

	shelterGeom := s.shelters.Intersecting(line)
	shelterSeg := geo.Clip(line, shelterGeom)
	shelterLen := geo.LinearLength(shelterSeg)

	// Effective protection is the union of shadow and shelter cover, never
	// the sum: overlap between the two must not double-count.
	protected := protectedLength(line, shadowUnion, shelterGeom, shadowLen, shelterLen)

	ratio := 0.0
	if length > 0 {
		ratio = clampRatio(protected / length)
	}

	t.totalLen += length
	t.totalProt += protected
	t.shadowLen += shadowLen
	t.shelterLen += shelterLen
	if step.IsWalking() {
		t.walkLen += length
		t.walkProt += protected
	}
	if !shelterSeg.IsEmpty() {
		t.shelterSegs = append(t.shelterSegs, shelterSeg)
	}

	if t.rainLikely && step.IsWalking() {
		for _, id := range s.shelters.Within(line, s.cfg.ShelterBufferM) {
			if _, seen := t.nearbySeen[id]; seen {
				continue
			}
			t.nearbySeen[id] = struct{}{}
			t.nearbyIDs = append(t.nearbyIDs, id)
		}
	}

	t.steps = append(t.steps, StepAnalysis{
		Instruction:      step.Instruction,
		DistanceText:     step.DistanceText,
		ShadowRatio:      ratio,
		LengthM:          length,
		ProtectedLengthM: protected,
		ShadowLengthM:    shadowLen,
		ShelterLengthM:   shelterLen,
		TravelMode:       step.TravelMode,
	})
	return t
}

// stepLine decodes and reprojects a step's polyline. Steps that decode to
// fewer than two points are unusable.
func stepLine(step route.Step) (geom.Geometry, bool) {
	decoded, err := geo.DecodePolyline(step.EncodedPolyline)
	if err != nil {
		zap.L().Debug("score: skipping undecodable step", zap.String("instruction", step.Instruction), zap.Error(err))
		return geom.Geometry{}, false
	}
	if decoded.NumPoints() < 2 {
		return geom.Geometry{}, false
	}
	line, err := decoded.ToMetric()
	if err != nil {
		return geom.Geometry{}, false
	}
	return line, true
}

// protectedLength measures line coverage by shadow ∪ shelter. The degenerate
// single-source cases avoid a union operation.
func protectedLength(line, shadowUnion, shelterGeom geom.Geometry, shadowLen, shelterLen float64) float64 {
	switch {
	case shadowUnion.IsEmpty():
		return shelterLen
	case shelterGeom.IsEmpty():
		return shadowLen
	}
	combined, err := geom.Union(shadowUnion, shelterGeom)
	if err != nil {
		zap.L().Debug("score: protection union failed, using max of components", zap.Error(err))
		return math.Max(shadowLen, shelterLen)
	}
	return geo.ClippedLength(line, combined)
}

// encodeShelters resolves shelter IDs to encoded overlay geometry. Polygonal
// shelters contribute their exterior rings; polyline shelters contribute the
// lines themselves.
func (s *Scorer) encodeShelters(ids []string) []string {
	out := []string{}
	for _, id := range ids {
		g, ok := s.shelters.Geometry(id)
		if !ok {
			continue
		}
		encs := geo.EncodeAreal(g)
		if len(encs) == 0 {
			encs = geo.EncodeLinear(g)
		}
		out = append(out, encs...)
	}
	return out
}

func clampRatio(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
