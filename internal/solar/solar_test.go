package solar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector_GrazingAngleCapped(t *testing.T) {
	for _, alt := range []float64{0.001, 0.5, 0.999} {
		v := Vector(Angles{AltitudeDeg: alt, AzimuthDeg: 45})
		assert.Equal(t, 100.0, v.ScaleFactor, "altitude %v", alt)
	}
}

func TestVector_FortyFiveDegrees(t *testing.T) {
	v := Vector(Angles{AltitudeDeg: 45, AzimuthDeg: 90})
	assert.InDelta(t, 1.0, v.ScaleFactor, 1e-12)
	assert.Equal(t, 270.0, v.DirectionDeg)
}

func TestVector_HigherSunShorterShadow(t *testing.T) {
	low := Vector(Angles{AltitudeDeg: 20, AzimuthDeg: 0})
	high := Vector(Angles{AltitudeDeg: 70, AzimuthDeg: 0})
	assert.Greater(t, low.ScaleFactor, high.ScaleFactor)
}

func TestDisplacement_DueWest(t *testing.T) {
	// Sun due east at 45 degrees: a 10m building shades 10m due west.
	v := Vector(Angles{AltitudeDeg: 45, AzimuthDeg: 90})
	dx, dy := v.Displacement(10)
	assert.InDelta(t, -10, dx, 1e-9)
	assert.InDelta(t, 0, dy, 1e-9)
}

func TestAboveHorizon(t *testing.T) {
	assert.False(t, Angles{AltitudeDeg: 0}.AboveHorizon())
	assert.False(t, Angles{AltitudeDeg: -10}.AboveHorizon())
	assert.True(t, Angles{AltitudeDeg: 0.1}.AboveHorizon())
}
