// Package ledcube voxelizes the particle cloud onto a serpentine-wired LED
// cube driven over SPI.
package ledcube

import (
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"github.com/coreman2200/particlecloud/internal/layout"
	"github.com/coreman2200/particlecloud/internal/scene"
	"github.com/coreman2200/particlecloud/internal/template"
	"github.com/coreman2200/particlecloud/internal/view"
)

// Strip is the pixel transport; *nrzled.Dev satisfies it.
type Strip interface {
	Write(rgb []byte) (int, error)
	Halt() error
}

type Options struct {
	Layout     layout.Layout
	Extent     float32 // world half-width mapped onto the cube
	Brightness float64 // 0..1
	WhiteCap   float64 // per-LED cap on r+g+b as a fraction of full white
	LimitAmps  float64 // whole-cube current budget; 0 disables
	// Saturation is how many particles light a voxel fully.
	Saturation int
}

type Sink struct {
	opts   Options
	strip  Strip
	closer io.Closer

	rgb []byte
	acc []float32 // summed linear color per voxel
	cnt []int
}

// Open initializes the host, opens the SPI port named dev (empty picks the
// first one) and drives an nrzled strip sized to the layout.
func Open(dev string, o Options) (*Sink, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	port, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", dev, err)
	}
	d, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: o.Layout.Count(),
		Channels:  3,
		Freq:      2500 * physic.KiloHertz,
	})
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return New(d, port, o), nil
}

// New wraps an already opened strip. closer may be nil.
func New(strip Strip, closer io.Closer, o Options) *Sink {
	if o.Saturation <= 0 {
		o.Saturation = 4
	}
	if o.Extent <= 0 {
		o.Extent = 30
	}
	n := o.Layout.Count()
	return &Sink{
		opts:   o,
		strip:  strip,
		closer: closer,
		rgb:    make([]byte, n*3),
		acc:    make([]float32, n*3),
		cnt:    make([]int, n),
	}
}

func (s *Sink) Name() string { return "ledcube" }

func (s *Sink) Write(f scene.Frame) error {
	if _, err := s.strip.Write(s.Voxelize(f)); err != nil {
		return fmt.Errorf("ledcube write: %w", err)
	}
	return nil
}

// Dispose blanks the cube so the outgoing shape does not linger.
func (s *Sink) Dispose(template.ID, uint64) {
	clear(s.rgb)
	_ = s.strip.Halt()
}

func (s *Sink) Close() error {
	err := s.strip.Halt()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Voxelize rotates every particle with the cloud, bins it into the layout and
// returns the strip-ordered RGB buffer. The buffer is reused across calls.
func (s *Sink) Voxelize(f scene.Frame) []byte {
	clear(s.acc)
	clear(s.cnt)
	l := s.opts.Layout
	pos, col := f.Positions, f.Colors
	for j := 0; j+2 < len(pos) && j+2 < len(col); j += 3 {
		p := view.Rotate(f.Rotation, mgl32.Vec3{pos[j], pos[j+1], pos[j+2]})
		x, y, z, ok := l.Voxel(p.X(), p.Y(), p.Z(), s.opts.Extent)
		if !ok {
			continue
		}
		i := l.Index(x, y, z)
		s.acc[i*3] += col[j]
		s.acc[i*3+1] += col[j+1]
		s.acc[i*3+2] += col[j+2]
		s.cnt[i]++
	}

	sat := float64(s.opts.Saturation)
	for i, n := range s.cnt {
		if n == 0 {
			s.rgb[i*3], s.rgb[i*3+1], s.rgb[i*3+2] = 0, 0, 0
			continue
		}
		k := math.Min(1, float64(n)/sat) * s.opts.Brightness / float64(n)
		c := colorful.LinearRgb(float64(s.acc[i*3])*k, float64(s.acc[i*3+1])*k, float64(s.acc[i*3+2])*k)
		s.rgb[i*3], s.rgb[i*3+1], s.rgb[i*3+2] = c.Clamped().RGB255()
	}
	applyWhiteCap(s.rgb, s.opts.WhiteCap)
	applyCurrentLimit(s.rgb, s.opts.LimitAmps)
	return s.rgb
}

// applyWhiteCap scales each LED so r+g+b <= whiteCap*3*255.
func applyWhiteCap(rgb []byte, whiteCap float64) {
	if whiteCap <= 0 || whiteCap >= 1 {
		return
	}
	limit := whiteCap * 3 * 255
	for i := 0; i+2 < len(rgb); i += 3 {
		sum := float64(rgb[i]) + float64(rgb[i+1]) + float64(rgb[i+2])
		if sum <= limit {
			continue
		}
		k := limit / sum
		rgb[i] = byte(math.Round(float64(rgb[i]) * k))
		rgb[i+1] = byte(math.Round(float64(rgb[i+1]) * k))
		rgb[i+2] = byte(math.Round(float64(rgb[i+2]) * k))
	}
}

// applyCurrentLimit scales the whole frame down when its estimated draw
// exceeds limitAmps. Channels are floored so the result never lands above
// the budget.
func applyCurrentLimit(rgb []byte, limitAmps float64) {
	if limitAmps <= 0 {
		return
	}
	amps := EstimateCurrent(rgb)
	if amps <= limitAmps {
		return
	}
	k := limitAmps / amps
	for i, b := range rgb {
		rgb[i] = byte(math.Floor(float64(b) * k))
	}
}

// EstimateCurrent returns the strip draw in amps at 20mA per full channel.
func EstimateCurrent(rgb []byte) float64 {
	var sum float64
	for _, b := range rgb {
		sum += float64(b)
	}
	return sum / 255 * 0.020
}
