package template

import (
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
)

// ID names one of the built-in shape templates.
type ID string

const (
	Spiral    ID = "spiral"
	Heart     ID = "heart"
	Flower    ID = "flower"
	Saturn    ID = "saturn"
	Fireworks ID = "fireworks"
	Galaxy    ID = "galaxy"
)

func (id ID) String() string { return string(id) }

type Vec3 struct{ X, Y, Z float64 }

// Generator produces the target position of particle index out of total.
// rng feeds the jittered dimensions of a shape; a nil rng centers them.
type Generator interface {
	Position(index, total int, rng *rand.Rand) Vec3
}

// Template is a generator plus the metadata a particle collection is built from.
type Template struct {
	ID    ID
	Color colorful.Color // sRGB
	Count int
	Gen   Generator
}

// Hex returns the base color as #rrggbb.
func (t Template) Hex() string { return t.Color.Hex() }

// Linear returns the base color in linear RGB.
func (t Template) Linear() (r, g, b float32) {
	lr, lg, lb := t.Color.LinearRgb()
	return float32(lr), float32(lg), float32(lb)
}

// jitter returns a uniform draw in [-span/2, span/2).
func jitter(rng *rand.Rand, span float64) float64 {
	if rng == nil {
		return 0
	}
	return (rng.Float64() - 0.5) * span
}
