// Package sunpos computes solar altitude and azimuth for a location and time.
package sunpos

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"

	"github.com/shadepath/shadepath/internal/solar"
)

// At returns the sun's position for the given instant and geographic
// coordinates. Azimuth is converted to compass bearing: 0 north, 90 east,
// 180 south (suncalc reports radians measured from south).
func At(t time.Time, lat, lon float64) solar.Angles {
	pos := suncalc.GetPosition(t, lat, lon)
	azimuth := pos.Azimuth*180/math.Pi + 180
	if azimuth >= 360 {
		azimuth -= 360
	}
	return solar.Angles{
		AltitudeDeg: pos.Altitude * 180 / math.Pi,
		AzimuthDeg:  azimuth,
	}
}
