// Package script replays keyframed gesture programs, for driving the engine
// without a camera.
package script

import "github.com/coreman2200/particlecloud/internal/gesture"

// Keyframe is a value at time T (seconds into the clip). Ease shapes the
// segment that starts here.
type Keyframe struct {
	T    float64 `yaml:"t"`
	V    float64 `yaml:"v"`
	Ease string  `yaml:"ease,omitempty"` // "linear","smooth","cubic"
}

// Envelope is a list of keyframes sorted by T.
type Envelope []Keyframe

// Clip holds one pose for DurationS seconds while the palm follows PalmX and
// PalmY. A non-empty Unavailable reports the source as failed instead.
type Clip struct {
	Name        string       `yaml:"name"`
	Pose        gesture.Pose `yaml:"pose"`
	DurationS   float64      `yaml:"durationS"`
	PalmX       Envelope     `yaml:"palm_x,omitempty"`
	PalmY       Envelope     `yaml:"palm_y,omitempty"`
	Unavailable string       `yaml:"unavailable,omitempty"`
}

type Program struct {
	Version string `yaml:"version"` // "gesture.v1"
	Loop    bool   `yaml:"loop,omitempty"`
	Clips   []Clip `yaml:"clips"`
}

type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Hooks receive the player's output.
type Hooks struct {
	// Emit gets the frame for the current instant on every tick.
	Emit func(gesture.Frame)
	// ClipStart fires when a clip becomes current.
	ClipStart func(c Clip)
	// Done fires when a non-looping program runs out.
	Done func()
}
