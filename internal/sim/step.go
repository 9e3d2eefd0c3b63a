package sim

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/particlecloud/internal/particle"
)

const (
	SpringConstant    = 0.001
	Damping           = 0.95
	OrientationFollow = 0.05
	BackgroundSpin    = 0.001
)

// Params tunes a Stepper.
type Params struct {
	// RevertColor restores the template base color on the first frame the
	// color shift drops back to zero. When false the last shifted hues stay
	// until the next rebuild.
	RevertColor bool
}

// Stepper advances a particle store one frame at a time. It keeps only the
// bookkeeping needed for RevertColor; all particle state lives in the store.
type Stepper struct {
	Params Params

	shifted    bool
	generation uint64
}

func NewStepper(p Params) *Stepper { return &Stepper{Params: p} }

// Advance integrates every particle once: Euler position update, spring pull
// toward target*expansion, damping, then the optional hue override.
func (st *Stepper) Advance(s *particle.Store, m Modulation) {
	if s == nil {
		return
	}
	if s.Generation() != st.generation {
		st.generation = s.Generation()
		st.shifted = false
	}

	exp := float32(m.Expansion)
	if !(exp >= 1) {
		exp = 1
	}
	pos, vel, tgt := s.Positions(), s.Velocities(), s.Targets()
	for j := 0; j+2 < len(pos); j += 3 {
		for k := j; k < j+3; k++ {
			pos[k] += vel[k]
			d := tgt[k]*exp - pos[k]
			vel[k] += d * SpringConstant
			vel[k] *= Damping
		}
	}

	switch {
	case m.ColorShift > 0:
		shiftColors(s, m.ColorShift)
		st.shifted = true
	case st.shifted && st.Params.RevertColor:
		s.ResetColors()
		st.shifted = false
	}
}

// shiftColors paints particle i with hue (i/n + phase) mod 1 at full
// saturation and half lightness.
func shiftColors(s *particle.Store, phase float64) {
	n := s.Len()
	if n == 0 {
		return
	}
	col := s.Colors()
	inv := 1 / float64(n)
	for i := 0; i < n; i++ {
		h := math.Mod(float64(i)*inv+phase, 1)
		r, g, b := colorful.Hsl(h*360, 1, 0.5).LinearRgb()
		j := i * 3
		col[j], col[j+1], col[j+2] = float32(r), float32(g), float32(b)
	}
}
