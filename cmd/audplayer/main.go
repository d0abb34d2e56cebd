// SPDX-License-Identifier: EPL-2.0

// Command audplayer plays audio files through the streaming engine with an
// interactive prompt for transport control.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chzyer/readline"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audplayer"
	"github.com/ik5/audplayer/internal/config"
	"github.com/ik5/audplayer/internal/observe"
	"github.com/ik5/audplayer/midi"
	"github.com/ik5/audplayer/output"
	"github.com/ik5/audplayer/player"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	backend := flag.String("backend", "", "audio backend: oto or offline")
	rate := flag.Int("rate", 0, "output sample rate in Hz")
	period := flag.Int("period", 0, "frames per render period")
	quality := flag.String("quality", "", "converter quality: best, medium, fastest, zero-order-hold, linear")
	metricsAddr := flag.String("metrics", "", "listen address for /metrics")
	loop := flag.Bool("loop", false, "loop the file")
	autoplay := flag.Bool("play", false, "start playing the file given as argument")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	cfg, err := loadConfig(*configPath, func(c *config.Config) {
		if *backend != "" {
			c.Output.Backend = config.Backend(*backend)
		}
		if *rate != 0 {
			c.Output.SampleRate = *rate
		}
		if *period != 0 {
			c.Output.PeriodFrames = *period
		}
		if *quality != "" {
			c.Engine.Quality = *quality
		}
		if *metricsAddr != "" {
			c.Metrics.Addr = *metricsAddr
		}
		if *loop {
			c.Engine.Loop = true
		}
		if *debug {
			c.Log.Level = config.LogDebug
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "audplayer: %v\n", err)
		return 1
	}

	var level slog.LevelVar
	level.Set(cfg.Log.Level.Level())
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := audplayer.New(player.Options{
		OutputRate:    cfg.Output.SampleRate,
		BufferSamples: cfg.Engine.BufferSamples,
		PollInterval:  cfg.Engine.PollInterval,
		Quality:       cfg.Quality(),
		Level:         &level,
		Notify:        logNotification,
	})
	if err != nil {
		slog.Error("failed to create engine", "err", err)
		return 1
	}
	defer engine.Close()

	engine.SetVolume(float32(cfg.Engine.Volume))
	engine.SetLoop(cfg.Engine.Loop)
	engine.SetDebug(cfg.Log.Level == config.LogDebug)
	engine.SetPositionNotifyDelta(cfg.Engine.NotifyDelta)

	queue := midi.NewQueue(256)
	g, gctx := errgroup.WithContext(ctx)

	switch cfg.Output.Backend {
	case config.BackendOffline:
		off, err := output.NewOffline(engine, queue, cfg.Output.SampleRate, cfg.Output.PeriodFrames)
		if err != nil {
			slog.Error("failed to create offline output", "err", err)
			return 1
		}
		g.Go(func() error { return off.Run(gctx) })
	default:
		dev, err := output.NewOto(engine, queue, output.OtoConfig{
			SampleRate:   cfg.Output.SampleRate,
			PeriodFrames: cfg.Output.PeriodFrames,
			BufferSize:   cfg.Output.DeviceBuffer,
		})
		if err != nil {
			slog.Error("failed to open audio device", "err", err)
			return 1
		}
		defer dev.Close()
		dev.Start()
	}

	if cfg.Metrics.Addr != "" {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
		if err != nil {
			slog.Error("failed to init metrics", "err", err)
			return 1
		}
		defer shutdown(context.Background())

		if _, err := observe.Register(otel.GetMeterProvider(), engine, queue); err != nil {
			slog.Error("failed to register metrics", "err", err)
			return 1
		}
		g.Go(func() error { return observe.Serve(gctx, cfg.Metrics.Addr) })
	}

	slog.Info("audplayer ready",
		"backend", cfg.Output.Backend,
		"rate", cfg.Output.SampleRate,
		"period", cfg.Output.PeriodFrames,
		"quality", cfg.Engine.Quality,
		"formats", engine.Formats(),
	)

	sh := &shell{e: engine, q: queue, out: os.Stdout}
	if file := flag.Arg(0); file != "" {
		if err := sh.exec("open " + file); err != nil {
			slog.Error("failed to open file", "file", file, "err", err)
		} else if *autoplay {
			engine.Play()
		}
	}

	g.Go(func() error {
		defer stop()
		return repl(gctx, sh)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("audplayer stopped", "err", err)
		return 1
	}
	return 0
}

// logNotification reports engine changes at debug level.
func logNotification(n player.Notification) {
	slog.Debug("player changed", "event", n.Event, "value", n.Value)
}

// loadConfig reads the file at path, applies flag overrides and validates
// the result.
func loadConfig(path string, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	override(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// repl reads commands until quit, end of input or ctx is done.
func repl(ctx context.Context, sh *shell) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "audplayer> ",
		AutoComplete: completer(),
		Stdout:       sh.out,
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	go func() {
		<-ctx.Done()
		rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("readline: %w", err)
		}

		switch err := sh.exec(line); {
		case errors.Is(err, errQuit):
			return nil
		case err != nil:
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
	}
}
