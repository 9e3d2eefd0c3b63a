// Package logx configures the zerolog global logger for the binaries.
package logx

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Level string
	Out   io.Writer
	// JSON skips the console writer, for log shippers.
	JSON bool
}

// Setup installs the global logger. An empty level means info.
func Setup(o Options) error {
	lvl := zerolog.InfoLevel
	if o.Level != "" {
		l, err := zerolog.ParseLevel(o.Level)
		if err != nil {
			return fmt.Errorf("log level %q: %w", o.Level, err)
		}
		lvl = l
	}
	out := o.Out
	if out == nil {
		out = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(lvl)
	if o.JSON {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return nil
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen})
	return nil
}

// Component returns the global logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
