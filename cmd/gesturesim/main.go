// Command gesturesim replays a gesture program against a running
// particlecloud's /gesture endpoint.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/particlecloud/internal/gesture"
	"github.com/coreman2200/particlecloud/internal/logx"
	"github.com/coreman2200/particlecloud/internal/script"
	"github.com/coreman2200/particlecloud/internal/ws"
)

func main() {
	var (
		url      = flag.String("url", "ws://localhost:8080/gesture", "particlecloud gesture endpoint")
		progPath = flag.String("program", "", "YAML gesture program (default: built-in demo)")
		rate     = flag.Int("rate", 30, "frames per second sent")
		once     = flag.Bool("once", false, "play the program once even if it loops")
		logLevel = flag.String("log-level", "info", "trace|debug|info|warn|error")
	)
	flag.Parse()

	if err := logx.Setup(logx.Options{Level: *logLevel, Out: os.Stderr}); err != nil {
		log.Fatal().Err(err).Msg("logging")
	}

	prog := script.Demo()
	if *progPath != "" {
		p, err := script.LoadFile(*progPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *progPath).Msg("load program")
		}
		prog = p
	}
	if *once {
		prog.Loop = false
	}
	if *rate <= 0 {
		log.Fatal().Int("rate", *rate).Msg("rate must be positive")
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", *url).Msg("dial")
	}
	defer conn.Close()
	log.Info().Str("url", *url).Int("clips", len(prog.Clips)).Float64("total_s", prog.TotalS()).Msg("connected")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	send := func(f gesture.Frame) {
		b, err := ws.EncodeFrame(f)
		if err == nil {
			err = conn.WriteMessage(websocket.TextMessage, b)
		}
		if err != nil {
			log.Error().Err(err).Msg("send")
			cancel()
		}
	}

	p := script.NewPlayer(script.Hooks{
		Emit:      send,
		ClipStart: func(c script.Clip) { log.Info().Str("clip", c.Name).Str("pose", string(c.Pose)).Msg("clip") },
		Done:      cancel,
	})
	if err := p.Load(prog); err != nil {
		log.Fatal().Err(err).Msg("program")
	}
	p.Start()

	dt := time.Second / time.Duration(*rate)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			log.Info().Msg("done")
			return
		case <-ticker.C:
			p.Tick(dt.Seconds())
		}
	}
}
