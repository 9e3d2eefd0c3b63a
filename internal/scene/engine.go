package scene

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/particlecloud/internal/diagnostics"
	"github.com/coreman2200/particlecloud/internal/gesture"
	"github.com/coreman2200/particlecloud/internal/sim"
	"github.com/coreman2200/particlecloud/internal/template"
)

type Options struct {
	Library *template.Library // nil uses template.Default()
	Start   template.ID       // empty starts at the first template in order
	Seed    uint64
	Slot    *gesture.Slot // nil creates one; see Engine.Slot
	Gesture gesture.Options
	Sim     sim.Params

	Sinks       []Sink
	StatusSinks []StatusSink
	Logger      zerolog.Logger
}

// Engine is the simulation context: the active template and store, the cloud
// rotation and the gesture interpreter. Tick and Run must be called from one
// goroutine; only the slot is shared with producers.
type Engine struct {
	lib     *template.Library
	slot    *gesture.Slot
	interp  *gesture.Interpreter
	ctrl    *Controller
	stepper *sim.Stepper
	rot     sim.Rotation

	sinks       []Sink
	statusSinks []StatusSink
	log         zerolog.Logger

	frameID   uint64
	status    gesture.Status
	hasStatus bool
	failed    map[int]bool

	// Last holds timings of the most recent tick in milliseconds.
	Last struct {
		StepMS  float64
		WriteMS float64
		TotalMS float64
	}
}

func New(opts Options) (*Engine, error) {
	lib := opts.Library
	if lib == nil {
		lib = template.Default()
	}
	if len(lib.Order()) == 0 {
		return nil, errors.New("template library is empty")
	}
	start := opts.Start
	if start == "" {
		start = lib.Order()[0]
	}
	if _, err := lib.Lookup(start); err != nil {
		return nil, err
	}
	slot := opts.Slot
	if slot == nil {
		slot = gesture.NewSlot()
	}

	var disposers []Disposer
	for _, s := range opts.Sinks {
		if d, ok := s.(Disposer); ok {
			disposers = append(disposers, d)
		}
		if p, ok := s.(PaletteSink); ok {
			p.SetPalette(lib.Palette())
		}
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	e := &Engine{
		lib:         lib,
		slot:        slot,
		interp:      gesture.NewInterpreter(lib, opts.Gesture),
		ctrl:        NewController(lib, rng, disposers, opts.Logger),
		stepper:     sim.NewStepper(opts.Sim),
		sinks:       opts.Sinks,
		statusSinks: opts.StatusSinks,
		log:         opts.Logger,
		failed:      map[int]bool{},
	}
	e.ctrl.SwitchTo(start)
	return e, nil
}

func (e *Engine) Slot() *gesture.Slot               { return e.slot }
func (e *Engine) Controller() *Controller           { return e.ctrl }
func (e *Engine) Interpreter() *gesture.Interpreter { return e.interp }
func (e *Engine) Rotation() sim.Rotation            { return e.rot }
func (e *Engine) FrameID() uint64                   { return e.frameID }

// Status returns the last published status.
func (e *Engine) Status() gesture.Status { return e.status }

// Tick runs one frame at now: read the latest gesture, interpret it, apply
// any switch, advance the particles and the rotation, then write the frame.
func (e *Engine) Tick(now time.Time) gesture.Result {
	start := time.Now()

	res := e.interp.Interpret(e.slot.Load(), e.ctrl.Active(), now)
	if res.Switch != nil {
		st := e.ctrl.SwitchTo(res.Switch.To)
		e.diagnose(diagnostics.Switched(string(res.Switch.From), string(res.Switch.To), st.Generation()))
	}

	store := e.ctrl.Store()
	e.stepper.Advance(store, res.Modulation)
	e.rot.Apply(res.Modulation)
	e.Last.StepMS = ms(time.Since(start))

	e.frameID++
	f := Frame{
		ID:         e.frameID,
		At:         now,
		Template:   store.Template(),
		Generation: store.Generation(),
		Positions:  store.Positions(),
		Colors:     store.Colors(),
		Rotation:   e.rot,
	}
	writeStart := time.Now()
	for i, s := range e.sinks {
		if err := s.Write(f); err != nil {
			e.sinkError(i, err)
		} else {
			delete(e.failed, i)
		}
	}
	e.Last.WriteMS = ms(time.Since(writeStart))

	e.publish(res.Status)
	e.Last.TotalMS = ms(time.Since(start))
	return res
}

// sinkError logs the first failure of a sink and stays quiet until it
// recovers.
func (e *Engine) sinkError(i int, err error) {
	if e.failed[i] {
		return
	}
	e.failed[i] = true
	e.log.Warn().Err(err).Int("sink", i).Uint64("frame_id", e.frameID).Msg("sink write failed")
	e.diagnose(diagnostics.SinkFailed(diagnostics.SinkWrite, sinkName(e.sinks[i]), err))
}

func (e *Engine) publish(st gesture.Status) {
	if e.hasStatus && st == e.status {
		return
	}
	e.hasStatus = true
	e.status = st
	e.log.Info().Str("kind", string(st.Kind)).Msg(st.Text)
	for _, s := range e.statusSinks {
		s.Status(st)
	}
	if st.Kind == gesture.StatusUnavailable {
		e.diagnose(diagnostics.Unavailable(st.Text))
	}
}

func (e *Engine) diagnose(d diagnostics.Diagnostic) {
	for _, s := range e.statusSinks {
		if ds, ok := s.(DiagnosticSink); ok {
			ds.Diagnostic(d)
		}
	}
}

// Run ticks at fps until ctx is cancelled.
func (e *Engine) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		return errors.New("fps must be positive")
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	e.log.Info().Int("fps", fps).Str("template", string(e.ctrl.Active())).Msg("render loop starting")
	for {
		select {
		case <-ctx.Done():
			e.log.Info().Uint64("frames", e.frameID).Msg("render loop stopped")
			return nil
		case now := <-ticker.C:
			e.Tick(now)
		}
	}
}

type named interface{ Name() string }

func sinkName(s Sink) string {
	if n, ok := s.(named); ok {
		return n.Name()
	}
	return "sink"
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000.0 }
