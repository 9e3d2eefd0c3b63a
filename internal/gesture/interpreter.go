package gesture

import (
	"math"
	"time"

	"github.com/coreman2200/particlecloud/internal/sim"
	"github.com/coreman2200/particlecloud/internal/template"
)

const (
	DefaultDebounce       = 2000 * time.Millisecond
	DefaultPinchThreshold = 0.05

	// orientationScale maps the palm offset from image center to radians.
	orientationScale = 100
)

// StatusKind enumerates the states reported to the status sink.
type StatusKind string

const (
	StatusWaiting      StatusKind = "waiting"
	StatusUnavailable  StatusKind = "unavailable"
	StatusPinch        StatusKind = "pinch"
	StatusSwitched     StatusKind = "switched"
	StatusOpenHand     StatusKind = "open_hand"
	StatusHandDetected StatusKind = "hand_detected"
)

type Status struct {
	Kind StatusKind `json:"kind"`
	Text string     `json:"text"`
}

// SwitchEvent asks the controller to move to another template.
type SwitchEvent struct {
	From template.ID
	To   template.ID
	At   time.Time
}

// Result is everything one frame of gesture input produces.
type Result struct {
	Modulation sim.Modulation
	Switch     *SwitchEvent
	Status     Status
}

type Options struct {
	Debounce       time.Duration
	PinchThreshold float64
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.PinchThreshold <= 0 {
		o.PinchThreshold = DefaultPinchThreshold
	}
	return o
}

// Interpreter turns landmark frames into modulation, switch events and status.
// It owns the debounce clock; nothing else moves it.
type Interpreter struct {
	lib  *template.Library
	opts Options

	lastSwitch time.Time
	switched   bool
}

func NewInterpreter(lib *template.Library, opts Options) *Interpreter {
	return &Interpreter{lib: lib, opts: opts.withDefaults()}
}

// Interpret reads one frame. current is the template on screen; a peace sign
// advances from it in the library's cyclic order.
func (in *Interpreter) Interpret(f Frame, current template.ID, now time.Time) Result {
	if f.Unavailable != "" {
		return Result{
			Modulation: sim.Identity(),
			Status:     Status{Kind: StatusUnavailable, Text: "Camera access denied: " + f.Unavailable},
		}
	}
	h := f.Hand
	if h == nil {
		return Result{
			Modulation: sim.Identity(),
			Status:     Status{Kind: StatusWaiting, Text: "Waiting for hand..."},
		}
	}

	palm := h.Palm()
	orient := sim.Vec2{
		X: (palm.X - 0.5) * orientationScale,
		Y: -(palm.Y - 0.5) * orientationScale,
	}
	res := Result{Modulation: sim.Identity().WithOrientation(orient)}

	fingers := h.ExtendedFingers()
	switch {
	case h.PinchDistance() < in.opts.PinchThreshold:
		ms := float64(now.UnixMilli())
		res.Modulation = sim.NewModulation(2+math.Sin(ms*0.005), ms*0.001).WithOrientation(orient)
		res.Status = Status{Kind: StatusPinch, Text: "Pinch detected - Expanding particles!"}

	case fingers == 2 && in.ready(now):
		next := in.lib.Next(current)
		in.lastSwitch = now
		in.switched = true
		res.Switch = &SwitchEvent{From: current, To: next, At: now}
		res.Status = Status{Kind: StatusSwitched, Text: "Peace sign - Switched to " + string(next) + "!"}

	case fingers >= 3:
		res.Status = Status{Kind: StatusOpenHand, Text: "Open hand - Normal flow"}

	default:
		res.Status = Status{Kind: StatusHandDetected, Text: "Hand detected"}
	}
	return res
}

func (in *Interpreter) ready(now time.Time) bool {
	return !in.switched || now.Sub(in.lastSwitch) > in.opts.Debounce
}

// LastSwitch reports the time of the last accepted switch.
func (in *Interpreter) LastSwitch() (time.Time, bool) { return in.lastSwitch, in.switched }
