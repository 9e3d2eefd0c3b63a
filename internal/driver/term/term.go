// Package term draws a perspective preview of the cloud in a terminal.
package term

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/particlecloud/internal/gesture"
	"github.com/coreman2200/particlecloud/internal/scene"
	"github.com/coreman2200/particlecloud/internal/view"
)

// depth ramp, nearest first
var glyphs = []rune{'@', 'O', 'o', '.'}

type Sink struct {
	screen tcell.Screen
	cam    view.Camera

	mu     sync.Mutex
	status string
	depth  []float32

	quit     chan struct{}
	quitOnce sync.Once
}

// Open takes over the controlling terminal.
func Open() (*Sink, error) {
	scr, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := scr.Init(); err != nil {
		return nil, err
	}
	return New(scr), nil
}

// New draws onto an initialized screen and starts reading its key events.
func New(scr tcell.Screen) *Sink {
	s := &Sink{screen: scr, cam: view.DefaultCamera(), quit: make(chan struct{})}
	scr.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
	scr.Clear()
	go s.poll()
	return s
}

func (s *Sink) Name() string { return "terminal" }

// Done is closed when the user presses q or Esc.
func (s *Sink) Done() <-chan struct{} { return s.quit }

func (s *Sink) poll() {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				s.quitOnce.Do(func() { close(s.quit) })
			}
		case *tcell.EventResize:
			s.screen.Sync()
		}
	}
}

func (s *Sink) Status(st gesture.Status) {
	s.mu.Lock()
	s.status = st.Text
	s.mu.Unlock()
}

// Write projects every particle and keeps the nearest one per cell. Terminal
// cells are about twice as tall as wide, which the aspect accounts for.
func (s *Sink) Write(f scene.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, h := s.screen.Size()
	if w <= 0 || h <= 1 {
		return nil
	}
	rows := h - 1
	if cap(s.depth) < w*rows {
		s.depth = make([]float32, w*rows)
	}
	depth := s.depth[:w*rows]
	for i := range depth {
		depth[i] = 2
	}

	s.screen.Clear()
	pr := view.NewProjector(s.cam, float32(w)/float32(2*rows), f.Rotation)
	pos, col := f.Positions, f.Colors
	for j := 0; j+2 < len(pos) && j+2 < len(col); j += 3 {
		ndc, ok := pr.Project(mgl32.Vec3{pos[j], pos[j+1], pos[j+2]})
		if !ok {
			continue
		}
		x, y := view.ToScreen(ndc, w, rows)
		if ndc.Z() >= depth[y*w+x] {
			continue
		}
		depth[y*w+x] = ndc.Z()
		r, g, b := colorful.LinearRgb(float64(col[j]), float64(col[j+1]), float64(col[j+2])).Clamped().RGB255()
		style := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
		s.screen.SetContent(x, y, s.glyph(ndc.Z()), nil, style)
	}

	line := string(f.Template) + "  " + s.status
	st := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	for i, r := range []rune(line) {
		if i >= w {
			break
		}
		s.screen.SetContent(i, rows, r, nil, st)
	}
	s.screen.Show()
	return nil
}

// glyph picks a denser rune for nearer points, in bands around the camera's
// distance to the origin.
func (s *Sink) glyph(ndcZ float32) rune {
	d := s.cam.Distance(ndcZ)
	switch mid := s.cam.Eye.Len(); {
	case d < mid-15:
		return glyphs[0]
	case d < mid-5:
		return glyphs[1]
	case d < mid+5:
		return glyphs[2]
	default:
		return glyphs[3]
	}
}

// Close restores the terminal.
func (s *Sink) Close() error {
	s.screen.Fini()
	return nil
}
