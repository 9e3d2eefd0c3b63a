// Package fake provides an in-memory sink that records everything the engine
// hands it, for headless tests.
package fake

import (
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/particlecloud/internal/diagnostics"
	"github.com/coreman2200/particlecloud/internal/gesture"
	"github.com/coreman2200/particlecloud/internal/scene"
	"github.com/coreman2200/particlecloud/internal/template"
)

type Disposal struct {
	Template   template.ID
	Generation uint64
}

// Driver copies every frame it is given. Err, when set, is returned from
// Write after the frame is recorded.
type Driver struct {
	mu sync.Mutex

	Count       int
	Frames      []scene.Frame
	Disposals   []Disposal
	Palette     map[template.ID]colorful.Color
	Statuses    []gesture.Status
	Diagnostics []diagnostics.Diagnostic
	Err         error

	// Keep bounds Frames; 0 keeps everything.
	Keep int
}

func (d *Driver) Name() string { return "fake" }

func (d *Driver) Write(f scene.Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Count++
	f.Positions = append([]float32(nil), f.Positions...)
	f.Colors = append([]float32(nil), f.Colors...)
	d.Frames = append(d.Frames, f)
	if d.Keep > 0 && len(d.Frames) > d.Keep {
		d.Frames = d.Frames[len(d.Frames)-d.Keep:]
	}
	return d.Err
}

func (d *Driver) Dispose(id template.ID, generation uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Disposals = append(d.Disposals, Disposal{Template: id, Generation: generation})
}

func (d *Driver) SetPalette(p map[template.ID]colorful.Color) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Palette = p
}

func (d *Driver) Status(s gesture.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Statuses = append(d.Statuses, s)
}

func (d *Driver) Diagnostic(x diagnostics.Diagnostic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Diagnostics = append(d.Diagnostics, x)
}

// Written reports how many frames have been written.
func (d *Driver) Written() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Count
}

// Last returns the most recent frame and whether there was one.
func (d *Driver) Last() (scene.Frame, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Frames) == 0 {
		return scene.Frame{}, false
	}
	return d.Frames[len(d.Frames)-1], true
}

// StatusKinds lists the kinds of every recorded status in order.
func (d *Driver) StatusKinds() []gesture.StatusKind {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]gesture.StatusKind, len(d.Statuses))
	for i, s := range d.Statuses {
		out[i] = s.Kind
	}
	return out
}
