package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/particlecloud/internal/gesture"
)

func TestEnvelopeEval(t *testing.T) {
	env := Envelope{{T: 0, V: 0}, {T: 10, V: 10}}
	assert.Equal(t, 0.0, env.Eval(-1, 5))
	assert.Equal(t, 5.0, env.Eval(5, 0))
	assert.Equal(t, 10.0, env.Eval(11, 0))
	assert.Equal(t, 0.5, Envelope(nil).Eval(3, 0.5))

	smooth := Envelope{{T: 0, V: 0, Ease: "smooth"}, {T: 1, V: 1}}
	assert.InDelta(t, 0.5, smooth.Eval(0.5, 0), 1e-12)
	assert.Less(t, smooth.Eval(0.25, 0), 0.25)

	cubic := Envelope{{T: 0, V: 0, Ease: "cubic"}, {T: 1, V: 1}}
	assert.Less(t, cubic.Eval(0.25, 0), smooth.Eval(0.25, 0))
}

type recording struct {
	frames []gesture.Frame
	clips  []string
	done   int
}

func (l *recording) hooks() Hooks {
	return Hooks{
		Emit:      func(f gesture.Frame) { l.frames = append(l.frames, f) },
		ClipStart: func(c Clip) { l.clips = append(l.clips, c.Name) },
		Done:      func() { l.done++ },
	}
}

func program(loop bool) Program {
	return Program{
		Version: "gesture.v1",
		Loop:    loop,
		Clips: []Clip{
			{Name: "peace", Pose: gesture.PosePeace, DurationS: 1,
				PalmX: Envelope{{T: 0, V: 0.2}, {T: 1, V: 0.8}}},
			{Name: "gone", Pose: gesture.PoseNone, DurationS: 0.5},
			{Name: "denied", Unavailable: "camera unplugged", DurationS: 0.5},
		},
	}
}

func TestPlayerEmitsPoses(t *testing.T) {
	var l recording
	p := NewPlayer(l.hooks())
	require.NoError(t, p.Load(program(false)))
	p.Start()

	p.Tick(0.5)
	require.Len(t, l.frames, 1)
	h := l.frames[0].Hand
	require.NotNil(t, h)
	assert.Equal(t, 2, h.ExtendedFingers())
	assert.InDelta(t, 0.5, h.Palm().X, 1e-9)

	p.Tick(0.6) // 1.1: into "gone"
	assert.Nil(t, l.frames[1].Hand)
	assert.Empty(t, l.frames[1].Unavailable)

	p.Tick(0.5) // 1.6: into "denied"
	assert.Equal(t, "camera unplugged", l.frames[2].Unavailable)
	assert.Equal(t, []string{"peace", "gone", "denied"}, l.clips)

	p.Tick(1)
	assert.Equal(t, Idle, p.State)
	assert.Equal(t, 1, l.done)
	assert.Len(t, l.frames, 3, "no frame after the end")
}

func TestPlayerLoops(t *testing.T) {
	var l recording
	p := NewPlayer(l.hooks())
	require.NoError(t, p.Load(program(true)))
	p.Start()
	p.Tick(2.25)
	assert.Equal(t, Running, p.State)
	c, at := p.Current()
	assert.Equal(t, "peace", c.Name)
	assert.InDelta(t, 0.25, at, 1e-9)
	assert.Equal(t, []string{"peace", "gone", "denied", "peace"}, l.clips)
	assert.Zero(t, l.done)
}

func TestPlayerPauseAndStop(t *testing.T) {
	var l recording
	p := NewPlayer(l.hooks())
	require.NoError(t, p.Load(program(false)))
	p.Tick(0.1)
	assert.Empty(t, l.frames, "idle player does nothing")

	p.Start()
	p.Pause()
	p.Tick(0.1)
	assert.Empty(t, l.frames)
	p.Resume()
	p.Tick(0.1)
	assert.Len(t, l.frames, 1)

	p.Stop()
	assert.Equal(t, Idle, p.State)
	_, at := p.Current()
	assert.Zero(t, at)
}

func TestValidate(t *testing.T) {
	assert.Error(t, Program{}.Validate())
	assert.Error(t, Program{Clips: []Clip{{Pose: gesture.PoseOpen}}}.Validate())
	assert.Error(t, Program{Clips: []Clip{{Pose: "wave", DurationS: 1}}}.Validate())
	assert.Error(t, Program{Clips: []Clip{{Pose: gesture.PoseOpen, DurationS: 1,
		PalmY: Envelope{{T: 1}, {T: 0}}}}}.Validate())
	assert.NoError(t, Demo().Validate())
	assert.InDelta(t, 12, Demo().TotalS(), 1e-9)
}

func TestParse(t *testing.T) {
	p, err := Parse([]byte(`
version: gesture.v1
loop: true
clips:
  - name: sweep
    pose: open
    durationS: 2
    palm_x:
      - { t: 0, v: 0.1, ease: smooth }
      - { t: 2, v: 0.9 }
  - name: pinch
    pose: pinch
    durationS: 1
`))
	require.NoError(t, err)
	assert.True(t, p.Loop)
	require.Len(t, p.Clips, 2)
	assert.Equal(t, gesture.PoseOpen, p.Clips[0].Pose)
	assert.Equal(t, "smooth", p.Clips[0].PalmX[0].Ease)
	assert.Equal(t, 0.9, p.Clips[0].PalmX.Eval(5, 0))

	_, err = Parse([]byte("clips: []"))
	assert.Error(t, err)
}
