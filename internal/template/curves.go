package template

import (
	"math"
	"math/rand/v2"
)

const curveRadius = 15.0

// phase maps index onto t = 2π·index/total.
func phase(index, total int) (t, f float64) {
	f = float64(index) / float64(total)
	return f * 2 * math.Pi, f
}

// SpiralShape is a double helix whose radius grows with the index while z
// sweeps from -10 to 10.
type SpiralShape struct{}

func (SpiralShape) Position(index, total int, _ *rand.Rand) Vec3 {
	if total <= 0 {
		return Vec3{}
	}
	t, f := phase(index, total)
	return Vec3{
		X: math.Cos(t*5) * curveRadius * f,
		Y: math.Sin(t*5) * curveRadius * f,
		Z: f*20 - 10,
	}
}

// HeartShape is the classic parametric heart, scaled 0.8 and waved in z.
type HeartShape struct{}

func (HeartShape) Position(index, total int, _ *rand.Rand) Vec3 {
	if total <= 0 {
		return Vec3{}
	}
	t, _ := phase(index, total)
	h := t * 2
	s := math.Sin(h)
	return Vec3{
		X: 16 * s * s * s * 0.8,
		Y: (13*math.Cos(h) - 5*math.Cos(2*h) - 2*math.Cos(3*h) - math.Cos(4*h)) * 0.8,
		Z: math.Sin(t*3) * 5,
	}
}

// FlowerShape is an 8-petal rose with a petal-synchronous z wobble.
type FlowerShape struct{}

func (FlowerShape) Position(index, total int, _ *rand.Rand) Vec3 {
	if total <= 0 {
		return Vec3{}
	}
	t, _ := phase(index, total)
	petal := t * 8
	r := curveRadius * (1 + 0.5*math.Sin(petal))
	return Vec3{
		X: r * math.Cos(t),
		Y: r * math.Sin(t),
		Z: math.Cos(petal) * 3,
	}
}
