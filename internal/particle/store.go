package particle

import (
	"math/rand/v2"

	"github.com/coreman2200/particlecloud/internal/template"
)

// InitialJitter bounds the per-axis starting velocity.
const InitialJitter = 0.01

// Store holds one template's particles as parallel flat arrays, three floats
// per particle. A Store is never resized; switching templates builds a new one.
type Store struct {
	tmpl       template.ID
	generation uint64

	pos    []float32
	vel    []float32
	col    []float32
	target []float32
	base   [3]float32
}

// Rebuild builds a collection for template id with every particle sitting on
// its target. generation tags the collection for sinks holding GPU or
// hardware resources per collection.
func Rebuild(lib *template.Library, id template.ID, generation uint64, rng *rand.Rand) *Store {
	t := lib.MustLookup(id)
	n := t.Count
	if n < 0 {
		n = 0
	}
	r, g, b := t.Linear()
	s := &Store{
		tmpl:       id,
		generation: generation,
		pos:        make([]float32, n*3),
		vel:        make([]float32, n*3),
		col:        make([]float32, n*3),
		target:     make([]float32, n*3),
		base:       [3]float32{r, g, b},
	}
	for i := 0; i < n; i++ {
		p := t.Gen.Position(i, n, rng)
		j := i * 3
		s.target[j], s.target[j+1], s.target[j+2] = float32(p.X), float32(p.Y), float32(p.Z)
		s.pos[j], s.pos[j+1], s.pos[j+2] = s.target[j], s.target[j+1], s.target[j+2]
		s.vel[j] = velJitter(rng)
		s.vel[j+1] = velJitter(rng)
		s.vel[j+2] = velJitter(rng)
		s.col[j], s.col[j+1], s.col[j+2] = r, g, b
	}
	return s
}

func velJitter(rng *rand.Rand) float32 {
	if rng == nil {
		return 0
	}
	return float32((rng.Float64() - 0.5) * 2 * InitialJitter)
}

func (s *Store) Len() int                { return len(s.pos) / 3 }
func (s *Store) Template() template.ID   { return s.tmpl }
func (s *Store) Generation() uint64      { return s.generation }
func (s *Store) Positions() []float32    { return s.pos }
func (s *Store) Velocities() []float32   { return s.vel }
func (s *Store) Colors() []float32       { return s.col }
func (s *Store) Targets() []float32      { return s.target }
func (s *Store) Base() (r, g, b float32) { return s.base[0], s.base[1], s.base[2] }

// Target returns particle i's target position.
func (s *Store) Target(i int) (x, y, z float32) {
	j := i * 3
	return s.target[j], s.target[j+1], s.target[j+2]
}

// Position returns particle i's current position.
func (s *Store) Position(i int) (x, y, z float32) {
	j := i * 3
	return s.pos[j], s.pos[j+1], s.pos[j+2]
}

// ResetColors paints every particle with the template base color.
func (s *Store) ResetColors() {
	for j := 0; j+2 < len(s.col); j += 3 {
		s.col[j], s.col[j+1], s.col[j+2] = s.base[0], s.base[1], s.base[2]
	}
}
