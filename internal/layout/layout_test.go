package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexPlain(t *testing.T) {
	l := Layout{Dim: Dim{3, 2, 2}}
	assert.Equal(t, 0, l.Index(0, 0, 0))
	assert.Equal(t, 5, l.Index(2, 1, 0))
	assert.Equal(t, 6, l.Index(0, 0, 1))
	assert.Equal(t, 12, l.Count())
}

func TestIndexSerpentine(t *testing.T) {
	l := Layout{Dim: Dim{3, 2, 2}, Order: Serpentine{XFlipEveryRow: true, YFlipEveryPanel: true}}
	// panel 0: row 1 runs backwards
	assert.Equal(t, 3, l.Index(2, 1, 0))
	assert.Equal(t, 5, l.Index(0, 1, 0))
	// panel 1 starts above where panel 0 ended and walks down
	assert.Equal(t, 6, l.Index(0, 1, 1))
	assert.Equal(t, 8, l.Index(2, 1, 1))
	assert.Equal(t, 9, l.Index(2, 0, 1))
	assert.Equal(t, 11, l.Index(0, 0, 1))
}

func TestIndexIsBijective(t *testing.T) {
	for _, o := range []Serpentine{{}, {true, false}, {false, true}, {true, true}} {
		l := Layout{Dim: Dim{5, 26, 5}, Order: o}
		seen := make([]bool, l.Count())
		for z := 0; z < l.Dim.Z; z++ {
			for y := 0; y < l.Dim.Y; y++ {
				for x := 0; x < l.Dim.X; x++ {
					i := l.Index(x, y, z)
					if assert.True(t, i >= 0 && i < len(seen)) {
						assert.False(t, seen[i], "index %d reused", i)
						seen[i] = true
					}
				}
			}
		}
	}
}

func TestVoxel(t *testing.T) {
	l := Layout{Dim: Dim{4, 4, 2}}
	x, y, z, ok := l.Voxel(0, 0, 0, 10)
	assert.True(t, ok)
	assert.Equal(t, []int{2, 2, 1}, []int{x, y, z})

	x, y, z, ok = l.Voxel(-10, 10, -9.9, 10)
	assert.True(t, ok)
	assert.Equal(t, []int{0, 3, 0}, []int{x, y, z})

	_, _, _, ok = l.Voxel(10.5, 0, 0, 10)
	assert.False(t, ok)
	_, _, _, ok = l.Voxel(0, 0, 0, 0)
	assert.False(t, ok)
}
