package sim

import "math"

type Vec2 struct{ X, Y float64 }

// Modulation is the per-frame control signal derived from the hand.
type Modulation struct {
	// Expansion scales every target away from the origin; always >= 1.
	Expansion float64
	// ColorShift is the hue phase; 0 leaves colors alone.
	ColorShift float64
	// Orientation is the rotation the cloud should follow. Only meaningful
	// when HasOrientation is set.
	Orientation    Vec2
	HasOrientation bool
}

// Identity is the signal for "no hand".
func Identity() Modulation { return Modulation{Expansion: 1} }

// NewModulation clamps expansion to >= 1 and color shift to >= 0, mapping
// NaN and infinities to the identity values.
func NewModulation(expansion, colorShift float64) Modulation {
	if math.IsNaN(expansion) || math.IsInf(expansion, 0) || expansion < 1 {
		expansion = 1
	}
	if math.IsNaN(colorShift) || math.IsInf(colorShift, 0) || colorShift < 0 {
		colorShift = 0
	}
	return Modulation{Expansion: expansion, ColorShift: colorShift}
}

// WithOrientation returns m following target.
func (m Modulation) WithOrientation(target Vec2) Modulation {
	m.Orientation = target
	m.HasOrientation = true
	return m
}
