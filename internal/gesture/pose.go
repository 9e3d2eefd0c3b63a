package gesture

import "fmt"

// Pose names a synthetic hand shape for simulators and tests.
type Pose string

const (
	PoseNone  Pose = "none"
	PoseFist  Pose = "fist"
	PosePeace Pose = "peace"
	PoseOpen  Pose = "open"
	PosePinch Pose = "pinch"
	PosePoint Pose = "point"
	PoseThree Pose = "three"
)

// Synth builds a hand in pose with its wrist at (palmX, palmY). Fingers are
// laid out upright so the y-only extension test reads them correctly.
func Synth(p Pose, palmX, palmY float64) (*Hand, error) {
	var ext [4]bool
	pinch := false
	switch p {
	case PoseNone:
		return nil, nil
	case PoseFist:
	case PosePoint:
		ext = [4]bool{true}
	case PosePeace:
		ext = [4]bool{true, true}
	case PoseThree:
		ext = [4]bool{true, true, true}
	case PoseOpen:
		ext = [4]bool{true, true, true, true}
	case PosePinch:
		pinch = true
	default:
		return nil, fmt.Errorf("unknown pose %q", p)
	}

	var h Hand
	for i := range h {
		h[i] = Point{X: palmX, Y: palmY - 0.05}
	}
	h[Wrist] = Point{X: palmX, Y: palmY}
	h[ThumbTip] = Point{X: palmX - 0.15, Y: palmY - 0.05}

	for k, f := range fingers {
		x := palmX - 0.045 + float64(k)*0.03
		pip := Point{X: x, Y: palmY - 0.15}
		tip := Point{X: x, Y: palmY - 0.08} // curled: below the joint
		if ext[k] {
			tip.Y = palmY - 0.25
		}
		h[f[1]] = pip
		h[f[0]] = tip
	}
	if pinch {
		h[IndexTip] = Point{X: h[ThumbTip].X + 0.01, Y: h[ThumbTip].Y}
	}
	return &h, nil
}

// MustSynth is Synth for fixed poses known to be valid.
func MustSynth(p Pose, palmX, palmY float64) *Hand {
	h, err := Synth(p, palmX, palmY)
	if err != nil {
		panic(err)
	}
	return h
}
