package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/particlecloud/internal/audio"
	"github.com/coreman2200/particlecloud/internal/config"
	"github.com/coreman2200/particlecloud/internal/diagnostics"
	"github.com/coreman2200/particlecloud/internal/driver/ledcube"
	"github.com/coreman2200/particlecloud/internal/driver/term"
	"github.com/coreman2200/particlecloud/internal/gesture"
	"github.com/coreman2200/particlecloud/internal/layout"
	"github.com/coreman2200/particlecloud/internal/logx"
	"github.com/coreman2200/particlecloud/internal/scene"
	"github.com/coreman2200/particlecloud/internal/sim"
	"github.com/coreman2200/particlecloud/internal/template"
	"github.com/coreman2200/particlecloud/internal/ws"
)

func main() {
	// ---- Flags (override config.yaml when set) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		writeCfg   = flag.Bool("write-config", false, "write the effective config to -config and exit")
		addr       = flag.String("addr", "", "HTTP listen address")
		fps        = flag.Int("fps", 0, "target frames per second")
		start      = flag.String("template", "", "starting template")
		seed       = flag.Uint64("seed", 0, "rng seed for template jitter")
		logLevel   = flag.String("log-level", "", "trace|debug|info|warn|error")
		logFile    = flag.String("log-file", "", "write logs to this file instead of stderr")
		terminal   = flag.Bool("terminal", false, "draw a preview in this terminal")
		cube       = flag.Bool("ledcube", false, "drive the LED cube over SPI")
		chime      = flag.Bool("audio", false, "play a chime on template switches")
	)
	flag.Parse()

	// ---- Config ----
	cfg, missing, err := config.LoadOrDefault(*configPath)
	if err != nil {
		// logging is not configured yet; the default console writer is fine here
		log.Fatal().Err(err).Str("path", *configPath).Msg("config")
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["addr"] {
		cfg.Addr = *addr
	}
	if set["fps"] {
		cfg.FPS = *fps
	}
	if set["template"] {
		cfg.StartTemplate = *start
	}
	if set["seed"] {
		cfg.Seed = *seed
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevel
	}
	if set["log-file"] {
		cfg.LogFile = *logFile
	}
	if set["terminal"] {
		cfg.Terminal.Enabled = *terminal
	}
	if set["ledcube"] {
		cfg.Ledcube.Enabled = *cube
	}
	if set["audio"] {
		cfg.Audio.Enabled = *chime
	}

	// ---- Logging ----
	var logOut io.Writer = os.Stderr
	if p := cfg.LogPath(); p != "" {
		f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatal().Err(err).Str("path", p).Msg("open log file")
		}
		defer f.Close()
		logOut = f
	}
	if err := logx.Setup(logx.Options{Level: cfg.LogLevel, Out: logOut}); err != nil {
		log.Fatal().Err(err).Msg("logging")
	}
	if missing {
		log.Warn().Str("path", *configPath).Msg("no config file; proceeding with defaults and flags")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if *writeCfg {
		if err := config.Save(*configPath, cfg); err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("write config")
		}
		log.Info().Str("path", *configPath).Msg("config written")
		return
	}

	lib, err := cfg.Library()
	if err != nil {
		log.Fatal().Err(err).Msg("templates")
	}

	// ---- Sinks ----
	slot := gesture.NewSlot()
	hub := ws.NewHub(ws.Options{
		Slot:     slot,
		Throttle: cfg.FrameThrottle(),
		FPS:      cfg.FPS,
		Logger:   logx.Component("ws"),
	})
	sinks := []scene.Sink{hub}
	statusSinks := []scene.StatusSink{hub}
	var closers []func() error
	var quit <-chan struct{}

	if cfg.Terminal.Enabled {
		t, err := term.Open()
		if err != nil {
			log.Warn().Err(err).Msg("terminal init failed; continuing without preview")
			hub.Diagnostic(diagnostics.SinkFailed(diagnostics.SinkInit, "terminal", err))
		} else {
			sinks = append(sinks, t)
			statusSinks = append(statusSinks, t)
			closers = append(closers, t.Close)
			quit = t.Done()
		}
	}

	if cfg.Ledcube.Enabled {
		lc := cfg.Ledcube
		l := layout.Layout{
			Dim:   layout.Dim{X: lc.Dim.X, Y: lc.Dim.Y, Z: lc.Dim.Z},
			Order: layout.Serpentine{XFlipEveryRow: lc.XFlipEveryRow, YFlipEveryPanel: lc.YFlipEveryPanel},
		}
		c, err := ledcube.Open(lc.Dev, ledcube.Options{
			Layout:     l,
			Extent:     float32(lc.Extent),
			Brightness: lc.Brightness,
			WhiteCap:   lc.WhiteCap,
			LimitAmps:  lc.LimitAmps,
		})
		if err != nil {
			log.Warn().Err(err).
				Str("dev", lc.Dev).
				Int("count", l.Count()).
				Msg("LED cube init failed; continuing without it")
			hub.Diagnostic(diagnostics.SinkFailed(diagnostics.SinkInit, "ledcube", err))
		} else {
			log.Info().Int("count", l.Count()).Msg("LED cube ready")
			sinks = append(sinks, c)
			closers = append(closers, c.Close)
		}
	}

	if cfg.Audio.Enabled {
		a, err := audio.Open(cfg.Audio.Volume)
		if err != nil {
			log.Warn().Err(err).Msg("audio init failed; continuing silently")
			hub.Diagnostic(diagnostics.SinkFailed(diagnostics.SinkInit, "audio", err))
		} else {
			statusSinks = append(statusSinks, a)
		}
	}

	// ---- Engine ----
	eng, err := scene.New(scene.Options{
		Library: lib,
		Start:   template.ID(cfg.StartTemplate),
		Seed:    cfg.Seed,
		Slot:    slot,
		Gesture: gesture.Options{
			Debounce:       cfg.Debounce(),
			PinchThreshold: cfg.PinchThreshold,
		},
		Sim:         sim.Params{RevertColor: cfg.RevertColor},
		Sinks:       sinks,
		StatusSinks: statusSinks,
		Logger:      logx.Component("scene"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("engine")
	}

	// ---- HTTP routes ----
	mux := http.NewServeMux()
	hub.Routes(mux)
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if quit != nil {
		go func() {
			select {
			case <-quit:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	go hub.Run(ctx)
	go func() {
		log.Info().Str("addr", cfg.Addr).Int("sinks", len(sinks)).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server crashed")
			cancel()
		}
	}()

	if err := eng.Run(ctx, cfg.FPS); err != nil {
		log.Error().Err(err).Msg("render loop")
	}

	// ---- Shutdown ----
	log.Info().Msg("shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()
	_ = srv.Shutdown(shutdownCtx)
	for _, c := range closers {
		if err := c(); err != nil {
			log.Warn().Err(err).Msg("close sink")
		}
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}
