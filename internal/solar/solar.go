// Package solar converts solar positions into shadow-casting vectors.
package solar

import "math"

// grazingCapScale bounds shadow length when the sun sits within a degree of
// the horizon, where 1/tan(altitude) approaches infinity.
const grazingCapScale = 100.0

// Angles is a solar position: altitude above the horizon and compass azimuth,
// both in degrees.
type Angles struct {
	AltitudeDeg float64
	AzimuthDeg  float64
}

// AboveHorizon reports whether the sun casts any shadow at all.
func (a Angles) AboveHorizon() bool { return a.AltitudeDeg > 0 }

// ShadowVector describes the ground direction and length multiplier of a
// shadow: a structure of height h casts a shadow of length h*ScaleFactor
// toward DirectionDeg (compass degrees).
type ShadowVector struct {
	DirectionDeg float64
	ScaleFactor  float64
}

// Vector computes the shadow vector for a sun position. Callers must not
// invoke it with altitude <= 0; that case means no shadow exists.
func Vector(a Angles) ShadowVector {
	scale := grazingCapScale
	if a.AltitudeDeg >= 1 {
		scale = 1 / math.Tan(a.AltitudeDeg*math.Pi/180)
	}
	return ShadowVector{
		DirectionDeg: a.AzimuthDeg + 180,
		ScaleFactor:  scale,
	}
}

// Displacement returns the (dx, dy) metric-frame offset of a shadow cast by a
// structure of the given height.
func (v ShadowVector) Displacement(heightM float64) (dx, dy float64) {
	length := heightM * v.ScaleFactor
	rad := v.DirectionDeg * math.Pi / 180
	return length * math.Sin(rad), length * math.Cos(rad)
}
