// Package layout maps a serpentine-wired LED cube between voxel coordinates
// and strip indices.
package layout

import "math"

type Dim struct{ X, Y, Z int }

type Serpentine struct {
	XFlipEveryRow   bool
	YFlipEveryPanel bool
}

type Layout struct {
	Dim   Dim
	Order Serpentine
}

// Index maps x,y,z to the linear LED index (0..N-1). Rows are counted in
// wiring order, so a flipped panel also flips which rows run backwards.
func (l Layout) Index(x, y, z int) int {
	yy := y
	if l.Order.YFlipEveryPanel && z%2 == 1 {
		yy = l.Dim.Y - 1 - y
	}
	xx := x
	if l.Order.XFlipEveryRow && yy%2 == 1 {
		xx = l.Dim.X - 1 - x
	}
	perPanel := l.Dim.X * l.Dim.Y
	return z*perPanel + yy*l.Dim.X + xx
}

func (l Layout) Count() int {
	return l.Dim.X * l.Dim.Y * l.Dim.Z
}

// Voxel maps a world point inside [-extent, extent]^3 to its cell. World y
// is up and becomes the panel row; world z becomes the panel.
func (l Layout) Voxel(x, y, z, extent float32) (vx, vy, vz int, ok bool) {
	if extent <= 0 {
		return 0, 0, 0, false
	}
	cell := func(v float32, n int) (int, bool) {
		u := (v/extent + 1) / 2
		if !(u >= 0 && u <= 1) {
			return 0, false
		}
		i := int(math.Floor(float64(u) * float64(n)))
		if i == n {
			i = n - 1
		}
		return i, true
	}
	var okx, oky, okz bool
	vx, okx = cell(x, l.Dim.X)
	vy, oky = cell(y, l.Dim.Y)
	vz, okz = cell(z, l.Dim.Z)
	return vx, vy, vz, okx && oky && okz
}
