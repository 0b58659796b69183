// Package shadow projects building footprints into the shadow polygons they
// cast at a given solar position. Footprints arrive in the geographic frame,
// already normalized to simple polygons (one Building per part); output
// polygons live in the metric frame.
package shadow

import (
	"strconv"
	"strings"

	"github.com/peterstace/simplefeatures/geom"
	"go.uber.org/zap"

	"github.com/shadepath/shadepath/internal/geo"
	"github.com/shadepath/shadepath/internal/solar"
)

// Building is a single-part building footprint with its raw source tags.
type Building struct {
	// Footprint is the exterior ring in geographic coordinates.
	Footprint []geo.GeoCoord
	// Tags carries the source attributes used for height resolution
	// ("height", "building:levels").
	Tags map[string]string
}

// Config holds the height-resolution fallbacks.
type Config struct {
	DefaultHeightM float64
	MetersPerLevel float64
}

// DefaultConfig returns the standard height fallbacks: 3m per level, 10m when
// nothing is tagged.
func DefaultConfig() Config {
	return Config{DefaultHeightM: 10.0, MetersPerLevel: 3.0}
}

// Projector turns building footprints into shadow polygons.
type Projector struct {
	cfg Config
}

// NewProjector creates a Projector with the given height fallbacks.
func NewProjector(cfg Config) *Projector {
	return &Projector{cfg: cfg}
}

// Project computes one shadow polygon per building for the given sun
// position. The shadow is the convex hull of the footprint united with its
// copy translated along the shadow vector. An altitude at or below the
// horizon yields no shadows; a building whose geometry cannot be handled is
// skipped, never aborting the batch.
func (p *Projector) Project(buildings []Building, sun solar.Angles) []geom.Geometry {
	if !sun.AboveHorizon() {
		return nil
	}
	vec := solar.Vector(sun)

	shadows := make([]geom.Geometry, 0, len(buildings))
	var skipped int
	for _, b := range buildings {
		shadow, ok := p.projectOne(b, vec)
		if !ok {
			skipped++
			continue
		}
		shadows = append(shadows, shadow)
	}
	if skipped > 0 {
		zap.L().Debug("shadow: skipped buildings with unusable footprints", zap.Int("skipped", skipped))
	}
	return shadows
}

func (p *Projector) projectOne(b Building, vec solar.ShadowVector) (geom.Geometry, bool) {
	footprint, err := geo.ProjectRing(b.Footprint)
	if err != nil {
		return geom.Geometry{}, false
	}

	height := p.ResolveHeight(b.Tags)
	dx, dy := vec.Displacement(height)

	shifted := footprint.TransformXY(func(xy geom.XY) geom.XY {
		return geom.XY{X: xy.X + dx, Y: xy.Y + dy}
	})

	united, err := geom.Union(footprint, shifted)
	if err != nil {
		return geom.Geometry{}, false
	}
	hull := united.ConvexHull()
	if hull.IsEmpty() {
		return geom.Geometry{}, false
	}
	return hull, true
}

// ResolveHeight returns the building height in meters: the leading numeric
// token of the height tag, else level count scaled by MetersPerLevel, else
// the configured default.
func (p *Projector) ResolveHeight(tags map[string]string) float64 {
	if raw, ok := tags["height"]; ok {
		token := strings.SplitN(strings.TrimSpace(raw), " ", 2)[0]
		if h, err := strconv.ParseFloat(token, 64); err == nil {
			return h
		}
	}
	if raw, ok := tags["building:levels"]; ok {
		if levels, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return levels * p.cfg.MetersPerLevel
		}
	}
	return p.cfg.DefaultHeightM
}
