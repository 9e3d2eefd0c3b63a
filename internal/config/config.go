package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/particlecloud/internal/template"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type TemplateCfg struct {
	Color string `yaml:"color,omitempty"`
	Count int    `yaml:"count,omitempty"`
}

type Terminal struct {
	Enabled bool `yaml:"enabled"`
}

type Dim struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

type Ledcube struct {
	Enabled         bool    `yaml:"enabled"`
	Dev             string  `yaml:"dev"` // spireg name; empty picks the first port
	Dim             Dim     `yaml:"dim"`
	XFlipEveryRow   bool    `yaml:"x_flip_every_row"`
	YFlipEveryPanel bool    `yaml:"y_flip_every_panel"`
	Brightness      float64 `yaml:"brightness"`
	WhiteCap        float64 `yaml:"white_cap"`
	LimitAmps       float64 `yaml:"limit_amps"` // 0 disables the current limiter
	// Extent is the world half-width mapped onto the cube.
	Extent float64 `yaml:"extent"`
}

type Audio struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

type Config struct {
	Addr     string `yaml:"addr"`
	FPS      int    `yaml:"fps"`
	Seed     uint64 `yaml:"seed"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file,omitempty"`

	StartTemplate   string  `yaml:"start_template"`
	DebounceMS      int     `yaml:"debounce_ms"`
	PinchThreshold  float64 `yaml:"pinch_threshold"`
	RevertColor     bool    `yaml:"revert_color"`
	FrameThrottleMS int     `yaml:"frame_throttle_ms"`

	Templates map[string]TemplateCfg `yaml:"templates,omitempty"`

	Terminal Terminal `yaml:"terminal"`
	Ledcube  Ledcube  `yaml:"ledcube"`
	Audio    Audio    `yaml:"audio"`
}

func Default() *Config {
	return &Config{
		Addr:            ":8080",
		FPS:             60,
		Seed:            1,
		LogLevel:        "info",
		StartTemplate:   string(template.Spiral),
		DebounceMS:      2000,
		PinchThreshold:  0.05,
		FrameThrottleMS: 50,
		Ledcube: Ledcube{
			Dim:             Dim{X: 5, Y: 26, Z: 5},
			XFlipEveryRow:   true,
			YFlipEveryPanel: true,
			Brightness:      0.8,
			WhiteCap:        0.85,
			LimitAmps:       10,
			Extent:          30,
		},
		Audio: Audio{Volume: 0.5},
	}
}

// Load reads path over the defaults, so a partial file only changes the keys
// it names.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults with
// missing set. Parse and validation errors are still returned.
func LoadOrDefault(path string) (c *Config, missing bool, err error) {
	c, err = Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), true, nil
	}
	return c, false, err
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

// Validate checks ranges and that every template name is known.
func (c *Config) Validate() error {
	lib := template.Default()
	if c.FPS <= 0 {
		return invalid("fps must be positive, got %d", c.FPS)
	}
	if c.DebounceMS <= 0 {
		return invalid("debounce_ms must be positive, got %d", c.DebounceMS)
	}
	if c.PinchThreshold <= 0 {
		return invalid("pinch_threshold must be positive, got %v", c.PinchThreshold)
	}
	if c.FrameThrottleMS < 0 {
		return invalid("frame_throttle_ms must not be negative, got %d", c.FrameThrottleMS)
	}
	if _, err := lib.Parse(c.StartTemplate); err != nil {
		return invalid("start_template: %v", err)
	}
	for name, t := range c.Templates {
		if _, err := lib.Parse(name); err != nil {
			return invalid("templates: %v", err)
		}
		if t.Count < 0 {
			return invalid("templates.%s.count must not be negative", name)
		}
	}
	if c.Ledcube.Enabled {
		d := c.Ledcube.Dim
		if d.X <= 0 || d.Y <= 0 || d.Z <= 0 {
			return invalid("ledcube.dim must be positive, got %dx%dx%d", d.X, d.Y, d.Z)
		}
		if c.Ledcube.Extent <= 0 {
			return invalid("ledcube.extent must be positive")
		}
	}
	if c.Ledcube.LimitAmps < 0 {
		return invalid("ledcube.limit_amps must not be negative")
	}
	if c.Ledcube.Brightness < 0 || c.Ledcube.Brightness > 1 {
		return invalid("ledcube.brightness must be in [0,1]")
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return invalid("audio.volume must be in [0,1]")
	}
	return nil
}

// Library builds the template library with the configured overrides applied.
func (c *Config) Library() (*template.Library, error) {
	lib := template.Default()
	for name, t := range c.Templates {
		if err := lib.Override(template.ID(name), t.Color, t.Count); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	return lib, nil
}

// DefaultTerminalLog receives logs while the terminal preview owns the tty.
const DefaultTerminalLog = "particlecloud.log"

// LogPath is where logs go; empty means stderr. The terminal preview draws
// on the same tty as stderr, so it forces a file.
func (c *Config) LogPath() string {
	if c.LogFile == "" && c.Terminal.Enabled {
		return DefaultTerminalLog
	}
	return c.LogFile
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

func (c *Config) FrameThrottle() time.Duration {
	return time.Duration(c.FrameThrottleMS) * time.Millisecond
}
