package script

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/particlecloud/internal/gesture"
)

// Palm position used when a clip has no envelope for an axis.
const centered = 0.5

// Player walks a Program's timeline and emits a synthetic hand per tick.
type Player struct {
	State PlayerState

	prog  Program
	nowS  float64 // position within the current clip
	idx   int
	hooks Hooks
}

func NewPlayer(h Hooks) *Player {
	return &Player{State: Idle, hooks: h}
}

// Validate checks that every clip can be played.
func (p Program) Validate() error {
	if len(p.Clips) == 0 {
		return errors.New("program has no clips")
	}
	for i, c := range p.Clips {
		if c.DurationS <= 0 {
			return fmt.Errorf("clip %d (%s): duration must be positive", i, c.Name)
		}
		if c.Unavailable == "" {
			if _, err := gesture.Synth(c.Pose, centered, centered); err != nil {
				return fmt.Errorf("clip %d (%s): %w", i, c.Name, err)
			}
		}
		if !c.PalmX.sorted() || !c.PalmY.sorted() {
			return fmt.Errorf("clip %d (%s): keyframes out of order", i, c.Name)
		}
	}
	return nil
}

// TotalS is the program length in seconds.
func (p Program) TotalS() float64 {
	total := 0.0
	for _, c := range p.Clips {
		total += c.DurationS
	}
	return total
}

// LoadFile reads a YAML program.
func LoadFile(path string) (Program, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Program{}, err
	}
	return Parse(b)
}

func Parse(b []byte) (Program, error) {
	var p Program
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Program{}, fmt.Errorf("parse program: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Program{}, err
	}
	return p, nil
}

// Load replaces the program and resets to Idle.
func (p *Player) Load(prog Program) error {
	if err := prog.Validate(); err != nil {
		return err
	}
	p.prog = prog
	p.nowS = 0
	p.idx = 0
	p.State = Idle
	return nil
}

// Start runs the program from its current position.
func (p *Player) Start() {
	if p.State == Running || len(p.prog.Clips) == 0 {
		return
	}
	p.State = Running
	if p.hooks.ClipStart != nil {
		p.hooks.ClipStart(p.prog.Clips[p.idx])
	}
}

func (p *Player) Pause() { p.State = Paused }

func (p *Player) Resume() {
	if p.State == Paused {
		p.State = Running
	}
}

// Stop rewinds to the start.
func (p *Player) Stop() {
	p.State = Idle
	p.nowS = 0
	p.idx = 0
}

// Current returns the active clip and the time into it.
func (p *Player) Current() (Clip, float64) {
	return p.prog.Clips[p.idx], p.nowS
}

// Tick advances by dt seconds, crossing as many clip boundaries as dt
// covers, then emits the frame for the new instant.
func (p *Player) Tick(dt float64) {
	if p.State != Running || dt <= 0 {
		return
	}
	p.nowS += dt
	for p.nowS >= p.prog.Clips[p.idx].DurationS {
		p.nowS -= p.prog.Clips[p.idx].DurationS
		next := p.idx + 1
		if next >= len(p.prog.Clips) {
			if !p.prog.Loop {
				p.State = Idle
				if p.hooks.Done != nil {
					p.hooks.Done()
				}
				return
			}
			next = 0
		}
		p.idx = next
		if p.hooks.ClipStart != nil {
			p.hooks.ClipStart(p.prog.Clips[p.idx])
		}
	}
	if p.hooks.Emit != nil {
		p.hooks.Emit(p.Frame())
	}
}

// Frame builds the gesture frame for the current instant.
func (p *Player) Frame() gesture.Frame {
	c, t := p.Current()
	if c.Unavailable != "" {
		return gesture.Frame{Unavailable: c.Unavailable}
	}
	h, err := gesture.Synth(c.Pose, c.PalmX.Eval(t, centered), c.PalmY.Eval(t, centered))
	if err != nil {
		// Validate rejects unknown poses
		panic(err)
	}
	return gesture.Frame{Hand: h}
}

// Demo cycles through every gesture the engine reacts to.
func Demo() Program {
	sweep := Envelope{{T: 0, V: 0.3, Ease: "smooth"}, {T: 3, V: 0.7}}
	return Program{
		Version: "gesture.v1",
		Loop:    true,
		Clips: []Clip{
			{Name: "idle", Pose: gesture.PoseNone, DurationS: 1},
			{Name: "open", Pose: gesture.PoseOpen, DurationS: 3, PalmX: sweep},
			{Name: "switch", Pose: gesture.PosePeace, DurationS: 0.5},
			{Name: "rest", Pose: gesture.PoseFist, DurationS: 2},
			{Name: "expand", Pose: gesture.PosePinch, DurationS: 3, PalmY: sweep},
			{Name: "switch again", Pose: gesture.PosePeace, DurationS: 0.5},
			{Name: "wave", Pose: gesture.PoseThree, DurationS: 2},
		},
	}
}
