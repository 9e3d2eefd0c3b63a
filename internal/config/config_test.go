package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/particlecloud/internal/template"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 2*time.Second, c.Debounce())
	assert.Equal(t, 50*time.Millisecond, c.FrameThrottle())
	assert.Equal(t, "spiral", c.StartTemplate)
	assert.False(t, c.RevertColor)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fps: 30
start_template: galaxy
templates:
  heart: { color: "#00ff00", count: 10 }
ledcube:
  enabled: true
  dim: { x: 4, y: 4, z: 4 }
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, c.FPS)
	assert.Equal(t, "galaxy", c.StartTemplate)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, 2000, c.DebounceMS)
	assert.Equal(t, Dim{X: 4, Y: 4, Z: 4}, c.Ledcube.Dim)
	assert.Equal(t, 0.85, c.Ledcube.WhiteCap)

	lib, err := c.Library()
	require.NoError(t, err)
	h := lib.MustLookup(template.Heart)
	assert.Equal(t, 10, h.Count)
	assert.Equal(t, "#00ff00", h.Hex())
	assert.Equal(t, 2000, lib.MustLookup(template.Spiral).Count)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	c := Default()
	c.Seed = 42
	c.Templates = map[string]TemplateCfg{"saturn": {Count: 100}}
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"fps":            func(c *Config) { c.FPS = 0 },
		"debounce":       func(c *Config) { c.DebounceMS = -1 },
		"zero debounce":  func(c *Config) { c.DebounceMS = 0 },
		"limit amps":     func(c *Config) { c.Ledcube.LimitAmps = -1 },
		"pinch":          func(c *Config) { c.PinchThreshold = 0 },
		"start":          func(c *Config) { c.StartTemplate = "cube" },
		"template name":  func(c *Config) { c.Templates = map[string]TemplateCfg{"cube": {}} },
		"template count": func(c *Config) { c.Templates = map[string]TemplateCfg{"heart": {Count: -1}} },
		"cube dim": func(c *Config) {
			c.Ledcube.Enabled = true
			c.Ledcube.Dim.Z = 0
		},
		"brightness": func(c *Config) { c.Ledcube.Brightness = 2 },
		"volume":     func(c *Config) { c.Audio.Volume = -0.1 },
	}
	for name, mut := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mut(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}

func TestLibraryBadColor(t *testing.T) {
	c := Default()
	c.Templates = map[string]TemplateCfg{"heart": {Color: "pink"}}
	_, err := c.Library()
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRejectsZeroDebounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debounce_ms: 0\n"), 0644))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()

	c, missing, err := LoadOrDefault(filepath.Join(dir, "nope.yaml"))
	require.NoError(t, err)
	assert.True(t, missing)
	assert.Equal(t, Default(), c)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("start_template: torus\nledcube: { enabled: true }\n"), 0644))
	_, missing, err = LoadOrDefault(bad)
	assert.False(t, missing)
	assert.ErrorIs(t, err, ErrInvalid)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("fps: [\n"), 0644))
	_, missing, err = LoadOrDefault(broken)
	assert.False(t, missing)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, os.ErrNotExist)
}

func TestLogPath(t *testing.T) {
	c := Default()
	assert.Empty(t, c.LogPath())

	c.Terminal.Enabled = true
	assert.Equal(t, DefaultTerminalLog, c.LogPath())

	c.LogFile = "/var/log/pc.log"
	assert.Equal(t, "/var/log/pc.log", c.LogPath())
}
