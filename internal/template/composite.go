package template

import (
	"math"
	"math/rand/v2"
)

const (
	// SaturnSphereShare is the fraction of saturn particles forming the planet.
	SaturnSphereShare = 0.3
	SaturnSphereR     = 8.0
	SaturnRingInner   = 12.0
	SaturnRingWidth   = 6.0

	fireworkBursts  = 5
	fireworkSpacing = 15.0
	fireworkRadius  = 20.0
	fireworkJitter  = 10.0

	galaxyRadius = 25.0
	galaxyTwist  = 0.2
	galaxyJitter = 5.0
)

// SaturnShape puts the first 30% of particles on a sphere and the rest on a
// rippled ring with a random radius per particle.
type SaturnShape struct{}

func (SaturnShape) Position(index, total int, rng *rand.Rand) Vec3 {
	if total <= 0 {
		return Vec3{}
	}
	sphere := float64(total) * SaturnSphereShare
	i := float64(index)
	if i < sphere {
		u := i / sphere
		theta := u * 2 * math.Pi
		phi := math.Acos(2*u - 1)
		return Vec3{
			X: SaturnSphereR * math.Sin(phi) * math.Cos(theta),
			Y: SaturnSphereR * math.Sin(phi) * math.Sin(theta),
			Z: SaturnSphereR * math.Cos(phi),
		}
	}

	ringT := ((i - sphere) / (float64(total) - sphere)) * 2 * math.Pi
	r := SaturnRingInner + SaturnRingWidth/2 + jitter(rng, SaturnRingWidth)
	return Vec3{
		X: r * math.Cos(ringT),
		Y: math.Sin(ringT*10) * 0.5,
		Z: r * math.Sin(ringT),
	}
}

// FireworksShape spreads five radial bursts along x with random y/z scatter.
type FireworksShape struct{}

func (FireworksShape) Position(index, total int, rng *rand.Rand) Vec3 {
	if total <= 0 {
		return Vec3{}
	}
	per := float64(total) / fireworkBursts
	i := float64(index)
	burst := math.Floor(i / per)
	local := math.Mod(i, per) / per
	angle := local * 2 * math.Pi
	r := local * fireworkRadius
	offset := burst*fireworkSpacing - 30
	return Vec3{
		X: r*math.Cos(angle) + offset,
		Y: r*math.Sin(angle) + jitter(rng, fireworkJitter),
		Z: jitter(rng, fireworkJitter),
	}
}

// GalaxyShape is a twisted spiral arm in the xz plane over a thin random disk.
type GalaxyShape struct{}

func (GalaxyShape) Position(index, total int, rng *rand.Rand) Vec3 {
	if total <= 0 {
		return Vec3{}
	}
	t, f := phase(index, total)
	armT := t * 3
	armR := f * galaxyRadius
	a := armT + armR*galaxyTwist
	return Vec3{
		X: armR * math.Cos(a),
		Y: jitter(rng, galaxyJitter),
		Z: armR * math.Sin(a),
	}
}
