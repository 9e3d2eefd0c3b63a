package scene_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/particlecloud/internal/diagnostics"
	"github.com/coreman2200/particlecloud/internal/driver/fake"
	"github.com/coreman2200/particlecloud/internal/gesture"
	"github.com/coreman2200/particlecloud/internal/scene"
	"github.com/coreman2200/particlecloud/internal/template"
)

var t0 = time.UnixMilli(1_700_000_000_000)

func after(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

func newEngine(t *testing.T, start template.ID) (*scene.Engine, *fake.Driver) {
	t.Helper()
	drv := &fake.Driver{Keep: 8}
	e, err := scene.New(scene.Options{
		Start:       start,
		Seed:        7,
		Sinks:       []scene.Sink{drv},
		StatusSinks: []scene.StatusSink{drv},
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)
	return e, drv
}

func TestNewInstallsStartTemplate(t *testing.T) {
	e, drv := newEngine(t, template.Heart)
	assert.Equal(t, template.Heart, e.Controller().Active())
	assert.Equal(t, 1500, e.Controller().Store().Len())
	assert.Len(t, drv.Palette, 6)
	assert.Empty(t, drv.Disposals)
}

func TestNewDefaultsToFirstTemplate(t *testing.T) {
	e, _ := newEngine(t, "")
	assert.Equal(t, template.Spiral, e.Controller().Active())
}

func TestNewUnknownStart(t *testing.T) {
	_, err := scene.New(scene.Options{Start: "cube", Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, template.ErrUnknownTemplate)
}

func TestPeaceSignDebounceEndToEnd(t *testing.T) {
	e, drv := newEngine(t, template.Spiral)
	e.Slot().Publish(gesture.Frame{Hand: gesture.MustSynth(gesture.PosePeace, 0.5, 0.5)})

	r := e.Tick(after(0))
	require.NotNil(t, r.Switch)
	assert.Equal(t, template.Heart, e.Controller().Active())
	assert.Equal(t, []fake.Disposal{{Template: template.Spiral, Generation: 1}}, drv.Disposals)

	e.Tick(after(500))
	assert.Equal(t, template.Heart, e.Controller().Active())

	e.Tick(after(2100))
	assert.Equal(t, template.Flower, e.Controller().Active())
	assert.Equal(t, 2000, e.Controller().Store().Len())
	assert.Len(t, drv.Disposals, 2)

	f, ok := drv.Last()
	require.True(t, ok)
	assert.Equal(t, template.Flower, f.Template)
	assert.Equal(t, uint64(3), f.Generation)
	assert.Equal(t, uint64(3), f.ID)

	require.Len(t, drv.Diagnostics, 2)
	for _, d := range drv.Diagnostics {
		assert.Equal(t, diagnostics.TemplateSwitched, d.Code)
	}
	assert.Equal(t, "flower", drv.Diagnostics[1].Evidence["to"])
}

func TestFrameLengthMatchesTemplate(t *testing.T) {
	e, drv := newEngine(t, template.Spiral)
	drv.Keep = 0
	lib := template.Default()
	e.Slot().Publish(gesture.Frame{Hand: gesture.MustSynth(gesture.PosePeace, 0.5, 0.5)})

	for i := 0; i < 40; i++ {
		e.Tick(after(i * 700))
	}
	seen := map[template.ID]bool{}
	for _, f := range drv.Frames {
		seen[f.Template] = true
		assert.Equal(t, lib.MustLookup(f.Template).Count, f.Len(), "frame %d", f.ID)
		assert.Len(t, f.Colors, len(f.Positions))
	}
	assert.Len(t, seen, 6, "cycles through every template")
}

func TestStatusPublishedOnChange(t *testing.T) {
	e, drv := newEngine(t, template.Spiral)
	for i := 0; i < 3; i++ {
		e.Tick(after(i * 16))
	}
	assert.Equal(t, []gesture.StatusKind{gesture.StatusWaiting}, drv.StatusKinds())

	e.Slot().Publish(gesture.Frame{Hand: gesture.MustSynth(gesture.PoseOpen, 0.5, 0.5)})
	e.Tick(after(100))
	e.Tick(after(116))
	e.Slot().Publish(gesture.Frame{})
	e.Tick(after(132))
	assert.Equal(t, []gesture.StatusKind{
		gesture.StatusWaiting, gesture.StatusOpenHand, gesture.StatusWaiting,
	}, drv.StatusKinds())
	assert.Equal(t, gesture.StatusWaiting, e.Status().Kind)
}

func TestPinchRecolorsAndRotates(t *testing.T) {
	e, drv := newEngine(t, template.Spiral)
	e.Slot().Publish(gesture.Frame{Hand: gesture.MustSynth(gesture.PosePinch, 0.9, 0.5)})
	base := e.Controller().Store().Colors()[0:3]
	base = append([]float32(nil), base...)

	for i := 0; i < 60; i++ {
		e.Tick(after(i * 16))
	}
	f, _ := drv.Last()
	assert.Equal(t, gesture.StatusPinch, e.Status().Kind)
	assert.NotEqual(t, base, f.Colors[0:3])
	assert.Greater(t, f.Rotation.Y, 0.5, "yaw follows a palm right of center")
}

func TestUnavailableKeepsRunning(t *testing.T) {
	e, drv := newEngine(t, template.Galaxy)
	e.Slot().Fail("permission denied")
	e.Tick(after(0))
	e.Tick(after(16))

	assert.Equal(t, gesture.StatusUnavailable, e.Status().Kind)
	require.Len(t, drv.Diagnostics, 1)
	assert.Equal(t, diagnostics.GestureUnavailable, drv.Diagnostics[0].Code)
	assert.Equal(t, 2, drv.Written())
}

func TestSinkErrorDoesNotStopSimulation(t *testing.T) {
	e, drv := newEngine(t, template.Spiral)
	drv.Err = errors.New("unplugged")
	for i := 0; i < 5; i++ {
		e.Tick(after(i * 16))
	}
	assert.Equal(t, 5, drv.Written())
	assert.Equal(t, uint64(5), e.FrameID())

	var writes int
	for _, d := range drv.Diagnostics {
		if d.Code == diagnostics.SinkWrite {
			writes++
		}
	}
	assert.Equal(t, 1, writes, "reported once until the sink recovers")
}

func TestRunStopsOnCancel(t *testing.T) {
	e, drv := newEngine(t, template.Spiral)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, 200) }()

	require.Eventually(t, func() bool { return drv.Written() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunRejectsZeroFPS(t *testing.T) {
	e, _ := newEngine(t, template.Spiral)
	assert.Error(t, e.Run(context.Background(), 0))
}
