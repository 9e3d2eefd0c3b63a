package sim

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/particlecloud/internal/particle"
	"github.com/coreman2200/particlecloud/internal/template"
)

func newStore(t *testing.T, id template.ID, gen uint64) *particle.Store {
	t.Helper()
	return particle.Rebuild(template.Default(), id, gen, rand.New(rand.NewPCG(3, 4)))
}

func maxDisplacement(s *particle.Store, expansion float32) float64 {
	pos, tgt := s.Positions(), s.Targets()
	worst := 0.0
	for i := 0; i+2 < len(pos); i += 3 {
		dx := float64(pos[i] - tgt[i]*expansion)
		dy := float64(pos[i+1] - tgt[i+1]*expansion)
		dz := float64(pos[i+2] - tgt[i+2]*expansion)
		worst = math.Max(worst, math.Sqrt(dx*dx+dy*dy+dz*dz))
	}
	return worst
}

func TestSingleStepMatchesRecurrence(t *testing.T) {
	s := newStore(t, template.Spiral, 1)
	pos, vel, tgt := s.Positions(), s.Velocities(), s.Targets()
	pos[3] += 2
	x0, v0, tx := pos[3], vel[3], tgt[3]

	NewStepper(Params{}).Advance(s, NewModulation(1.5, 0))

	x1 := x0 + v0
	v1 := (v0 + (tx*1.5-x1)*SpringConstant) * Damping
	assert.InDelta(t, x1, pos[3], 1e-6)
	assert.InDelta(t, v1, vel[3], 1e-6)
}

func TestSpringConverges(t *testing.T) {
	s := newStore(t, template.Flower, 1)
	pos := s.Positions()
	for i := range pos {
		pos[i] += 5
	}
	st := NewStepper(Params{})
	m := Identity()

	start := maxDisplacement(s, 1)
	require.Greater(t, start, 8.0)

	// The recurrence is an underdamped linear attractor (|eigenvalue| =
	// sqrt(0.95)), so the per-window peak shrinks every window.
	const window = 100
	prevPeak := math.Inf(1)
	for w := 0; w < 4; w++ {
		peak := 0.0
		for i := 0; i < window; i++ {
			st.Advance(s, m)
			d := maxDisplacement(s, 1)
			assert.LessOrEqual(t, d, start+0.1, "energy grew")
			peak = math.Max(peak, d)
		}
		assert.Less(t, peak, prevPeak, "window %d", w)
		prevPeak = peak
	}
	for i := 0; i < 600; i++ {
		st.Advance(s, m)
	}
	assert.Less(t, maxDisplacement(s, 1), 1e-3)
}

func TestExpansionScalesTarget(t *testing.T) {
	s := newStore(t, template.Heart, 1)
	st := NewStepper(Params{})
	m := NewModulation(2, 0)
	for i := 0; i < 1500; i++ {
		st.Advance(s, m)
	}
	assert.Less(t, maxDisplacement(s, 2), 1e-2)
}

func TestColorShift(t *testing.T) {
	s := newStore(t, template.Spiral, 1)
	st := NewStepper(Params{})
	st.Advance(s, NewModulation(1, 0.25))

	// particle 0: hue 0.25 -> 90°, HSL(90,1,.5) = (0.5,1,0) in sRGB
	c := s.Colors()
	assert.InDelta(t, 0.214, c[0], 0.01) // 0.5 sRGB ≈ 0.214 linear
	assert.InDelta(t, 1.0, c[1], 1e-4)
	assert.InDelta(t, 0.0, c[2], 1e-4)

	// distinct particles get distinct hues
	n := s.Len()
	mid := (n / 2) * 3
	assert.NotEqual(t, c[0:3], c[mid:mid+3])
}

func TestColorStickyByDefault(t *testing.T) {
	s := newStore(t, template.Spiral, 1)
	st := NewStepper(Params{})
	st.Advance(s, NewModulation(1, 0.4))
	shifted := append([]float32(nil), s.Colors()...)

	st.Advance(s, Identity())
	assert.Equal(t, shifted, s.Colors())
}

func TestColorRevert(t *testing.T) {
	s := newStore(t, template.Spiral, 1)
	st := NewStepper(Params{RevertColor: true})
	st.Advance(s, NewModulation(1, 0.4))
	st.Advance(s, Identity())

	r, g, b := s.Base()
	c := s.Colors()
	assert.Equal(t, []float32{r, g, b}, c[0:3])
}

func TestRevertBookkeepingResetsOnRebuild(t *testing.T) {
	st := NewStepper(Params{RevertColor: true})
	a := newStore(t, template.Spiral, 1)
	st.Advance(a, NewModulation(1, 0.4))

	b := newStore(t, template.Heart, 2)
	b.Colors()[0] = 0.123
	st.Advance(b, Identity())
	// b never shifted, so nothing to revert
	assert.Equal(t, float32(0.123), b.Colors()[0])
}

func TestNoNaNFromRawModulation(t *testing.T) {
	lib := template.Default()
	require.NoError(t, lib.Override(template.Galaxy, "", 1))
	s := particle.Rebuild(lib, template.Galaxy, 1, nil)
	st := NewStepper(Params{})
	st.Advance(s, Modulation{Expansion: math.NaN()})
	st.Advance(s, Modulation{Expansion: -4})
	for _, v := range s.Positions() {
		assert.False(t, math.IsNaN(float64(v)))
	}
	st.Advance(nil, Identity())
}

func TestNewModulationClamps(t *testing.T) {
	m := NewModulation(-3, -1)
	assert.Equal(t, 1.0, m.Expansion)
	assert.Equal(t, 0.0, m.ColorShift)
	m = NewModulation(math.NaN(), math.NaN())
	assert.Equal(t, Identity(), m)
	m = NewModulation(2.5, 7)
	assert.Equal(t, 2.5, m.Expansion)
	assert.Equal(t, 7.0, m.ColorShift)
	assert.False(t, m.HasOrientation)
	assert.True(t, m.WithOrientation(Vec2{1, 2}).HasOrientation)
}

func TestRotation(t *testing.T) {
	var r Rotation
	r.Apply(Identity())
	assert.InDelta(t, BackgroundSpin, r.Y, 1e-12)
	assert.Equal(t, 0.0, r.X)

	r = Rotation{}
	r.Apply(Identity().WithOrientation(Vec2{X: 10, Y: -20}))
	assert.InDelta(t, 10*OrientationFollow+BackgroundSpin, r.Y, 1e-12)
	assert.InDelta(t, -20*OrientationFollow, r.X, 1e-12)

	// repeated follow converges to the target (plus the spin drift)
	for i := 0; i < 2000; i++ {
		r.Follow(Vec2{X: 10, Y: -20}, OrientationFollow)
	}
	assert.InDelta(t, 10, r.Y, 1e-6)
	assert.InDelta(t, -20, r.X, 1e-6)
}
