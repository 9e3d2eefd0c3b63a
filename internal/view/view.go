// Package view holds the camera and projection shared by the preview sinks.
package view

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/coreman2200/particlecloud/internal/sim"
)

type Camera struct {
	Eye       mgl32.Vec3
	FovY      float32 // degrees
	Near, Far float32
}

// DefaultCamera sits on +z looking at the origin with a 75 degree field of view.
func DefaultCamera() Camera {
	return Camera{Eye: mgl32.Vec3{0, 0, 50}, FovY: 75, Near: 0.1, Far: 1000}
}

// Distance converts an NDC depth back to distance from the eye.
func (c Camera) Distance(ndcZ float32) float32 {
	return 2 * c.Far * c.Near / ((c.Far + c.Near) - ndcZ*(c.Far-c.Near))
}

// Model returns the cloud's rotation matrix: x first, then y.
func Model(rot sim.Rotation) mgl32.Mat4 {
	return mgl32.HomogRotate3DX(float32(rot.X)).Mul4(mgl32.HomogRotate3DY(float32(rot.Y)))
}

// Rotate applies the cloud's rotation to one point.
func Rotate(rot sim.Rotation, p mgl32.Vec3) mgl32.Vec3 {
	m := mgl32.Rotate3DX(float32(rot.X)).Mul3(mgl32.Rotate3DY(float32(rot.Y)))
	return m.Mul3x1(p)
}

// Projector maps world points to normalized device coordinates.
type Projector struct {
	mvp mgl32.Mat4
}

func NewProjector(cam Camera, aspect float32, rot sim.Rotation) Projector {
	if aspect <= 0 {
		aspect = 1
	}
	proj := mgl32.Perspective(mgl32.DegToRad(cam.FovY), aspect, cam.Near, cam.Far)
	v := mgl32.LookAtV(cam.Eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	return Projector{mvp: proj.Mul4(v).Mul4(Model(rot))}
}

// Project returns p in NDC. ok is false when p is behind the camera or
// outside the view volume.
func (pr Projector) Project(p mgl32.Vec3) (ndc mgl32.Vec3, ok bool) {
	c := pr.mvp.Mul4x1(p.Vec4(1))
	if c.W() <= 0 {
		return mgl32.Vec3{}, false
	}
	ndc = c.Vec3().Mul(1 / c.W())
	for _, v := range ndc {
		if v < -1 || v > 1 {
			return ndc, false
		}
	}
	return ndc, true
}

// ToScreen maps NDC x,y onto a w by h grid with row 0 at the top.
func ToScreen(ndc mgl32.Vec3, w, h int) (col, row int) {
	col = int((ndc.X() + 1) / 2 * float32(w))
	row = int((1 - ndc.Y()) / 2 * float32(h))
	if col >= w {
		col = w - 1
	}
	if row >= h {
		row = h - 1
	}
	return col, row
}
