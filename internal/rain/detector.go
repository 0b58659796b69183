// Package rain decides whether route geometry passes near actively raining
// weather stations.
package rain

import (
	"github.com/peterstace/simplefeatures/geom"

	"github.com/shadepath/shadepath/internal/geo"
)

// Station is a live rainfall reading from one monitoring station.
type Station struct {
	ID         string
	Lat        float64
	Lon        float64
	RainfallMM float64
}

// Detector checks route lines against raining stations.
type Detector struct {
	proximityM float64
	alwaysWet  map[string]struct{}
}

// NewDetector creates a Detector. proximityM is the radius within which a
// raining station marks a line as rain-affected. alwaysWet lists station IDs
// treated as raining regardless of their reported value; the list is an
// operational override and is empty unless configured.
func NewDetector(proximityM float64, alwaysWet []string) *Detector {
	wet := make(map[string]struct{}, len(alwaysWet))
	for _, id := range alwaysWet {
		wet[id] = struct{}{}
	}
	return &Detector{proximityM: proximityM, alwaysWet: wet}
}

// ProximityM returns the configured rain-proximity radius.
func (d *Detector) ProximityM() float64 { return d.proximityM }

// LineRainAffected reports whether the metric-frame line comes within the
// proximity radius of any raining station. A nil station list means the rain
// feed was unavailable; that fails open to "not affected".
func (d *Detector) LineRainAffected(line geom.Geometry, stations []Station) bool {
	if line.IsEmpty() || len(stations) == 0 {
		return false
	}
	for _, s := range stations {
		if !d.raining(s) {
			continue
		}
		pt := geo.ProjectPoint(geo.GeoCoord{Lat: s.Lat, Lon: s.Lon})
		if dist, ok := geom.Distance(line, pt); ok && dist < d.proximityM {
			return true
		}
	}
	return false
}

func (d *Detector) raining(s Station) bool {
	if _, ok := d.alwaysWet[s.ID]; ok {
		return true
	}
	return s.RainfallMM > 0
}
