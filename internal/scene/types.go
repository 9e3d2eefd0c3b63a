package scene

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/particlecloud/internal/diagnostics"
	"github.com/coreman2200/particlecloud/internal/gesture"
	"github.com/coreman2200/particlecloud/internal/sim"
	"github.com/coreman2200/particlecloud/internal/template"
)

// Frame is one rendered step. Positions and Colors alias the live store and
// are only valid for the duration of Write; sinks that keep them must copy.
type Frame struct {
	ID         uint64
	At         time.Time
	Template   template.ID
	Generation uint64
	Positions  []float32
	Colors     []float32
	Rotation   sim.Rotation
}

// Len is the particle count of the frame.
func (f Frame) Len() int { return len(f.Positions) / 3 }

// Sink abstracts a frame consumer (websocket, terminal, LED cube).
type Sink interface {
	Write(Frame) error
}

// Disposer is implemented by sinks holding per-collection resources. Dispose
// is called with the outgoing collection before a rebuild.
type Disposer interface {
	Dispose(id template.ID, generation uint64)
}

// PaletteSink receives the template base colors once at startup.
type PaletteSink interface {
	SetPalette(map[template.ID]colorful.Color)
}

// StatusSink receives the human status whenever it changes.
type StatusSink interface {
	Status(gesture.Status)
}

// DiagnosticSink receives structured diagnostics alongside status.
type DiagnosticSink interface {
	Diagnostic(diagnostics.Diagnostic)
}
