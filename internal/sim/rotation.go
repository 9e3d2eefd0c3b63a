package sim

// Rotation is the whole cloud's orientation in radians about x and y.
type Rotation struct{ X, Y float64 }

// Follow eases the rotation toward a palm-derived target: Y follows the
// target's X component, X follows its Y component.
func (r *Rotation) Follow(target Vec2, k float64) {
	r.Y += (target.X - r.Y) * k
	r.X += (target.Y - r.X) * k
}

// Spin adds the constant background yaw.
func (r *Rotation) Spin(rate float64) { r.Y += rate }

// Apply runs one frame of orientation: follow the hand when present, then spin.
func (r *Rotation) Apply(m Modulation) {
	if m.HasOrientation {
		r.Follow(m.Orientation, OrientationFollow)
	}
	r.Spin(BackgroundSpin)
}
