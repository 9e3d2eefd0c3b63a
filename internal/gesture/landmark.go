package gesture

import (
	"fmt"
	"math"
)

// LandmarkCount is the number of points in a tracked hand skeleton.
const LandmarkCount = 21

// Landmark indices used by the interpreter.
const (
	Wrist     = 0
	ThumbTip  = 4
	IndexPIP  = 6
	IndexTip  = 8
	MiddlePIP = 10
	MiddleTip = 12
	RingPIP   = 14
	RingTip   = 16
	PinkyPIP  = 18
	PinkyTip  = 20
)

// Point is one landmark: x,y normalized to the image (y grows downward), z
// relative depth.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand is a complete landmark set.
type Hand [LandmarkCount]Point

// HandFrom copies pts into a Hand, rejecting sets of the wrong size or with
// non-finite coordinates.
func HandFrom(pts []Point) (*Hand, error) {
	if len(pts) != LandmarkCount {
		return nil, fmt.Errorf("hand needs %d landmarks, got %d", LandmarkCount, len(pts))
	}
	var h Hand
	for i, p := range pts {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return nil, fmt.Errorf("landmark %d is not finite", i)
		}
		h[i] = p
	}
	return &h, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// PinchDistance is the 2D distance between index and thumb tips.
func (h *Hand) PinchDistance() float64 {
	a, b := h[IndexTip], h[ThumbTip]
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

var fingers = [4][2]int{
	{IndexTip, IndexPIP},
	{MiddleTip, MiddlePIP},
	{RingTip, RingPIP},
	{PinkyTip, PinkyPIP},
}

// ExtendedFingers counts non-thumb fingers whose tip sits above its PIP joint
// in image space. Only y is compared, so a rotated hand miscounts.
func (h *Hand) ExtendedFingers() int {
	n := 0
	for _, f := range fingers {
		if h[f[0]].Y < h[f[1]].Y {
			n++
		}
	}
	return n
}

// Palm returns the wrist landmark, used as the palm position.
func (h *Hand) Palm() Point { return h[Wrist] }
