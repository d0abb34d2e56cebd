package main

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ik5/audplayer/audio"
	"github.com/ik5/audplayer/formats"
	"github.com/ik5/audplayer/internal/audiotest"
	"github.com/ik5/audplayer/internal/config"
	"github.com/ik5/audplayer/midi"
	"github.com/ik5/audplayer/player"
)

func newTestShell(t *testing.T) (*shell, *bytes.Buffer) {
	t.Helper()

	e, err := player.New(player.Options{
		OutputRate: 8000,
		Registry:   formats.NewRegistry(),
		Logger:     slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("player.New: %v", err)
	}
	t.Cleanup(e.Close)

	var out bytes.Buffer
	return &shell{e: e, q: midi.NewQueue(4), out: &out}, &out
}

func TestShell_Transport(t *testing.T) {
	t.Parallel()

	sh, out := newTestShell(t)
	path := audiotest.TempWAV(t, "clip.wav", 8000, 2, audiotest.RampPCM16(16000, 2))

	if err := sh.exec("open " + path); err != nil {
		t.Fatalf("open: %v", err)
	}
	if !strings.Contains(out.String(), "clip.wav: wav, 8000 Hz, 2 ch, 2.00s") {
		t.Errorf("open output = %q", out.String())
	}

	steps := []string{"play", "loop on", "vol 0.25", "seek 1.5", "quality linear", "debug on"}
	for _, line := range steps {
		if err := sh.exec(line); err != nil {
			t.Fatalf("%s: %v", line, err)
		}
	}

	if sh.e.PlayState() != player.Starting {
		t.Errorf("PlayState() = %v, want starting", sh.e.PlayState())
	}
	if !sh.e.Loop() || sh.e.Volume() != 0.25 || !sh.e.Debug() {
		t.Errorf("loop=%v volume=%v debug=%v", sh.e.Loop(), sh.e.Volume(), sh.e.Debug())
	}
	if sh.e.Position() != 1.5 {
		t.Errorf("Position() = %v, want 1.5", sh.e.Position())
	}
	if sh.e.ConversionQuality() != audio.QualityLinear {
		t.Errorf("ConversionQuality() = %v", sh.e.ConversionQuality())
	}

	out.Reset()
	if err := sh.exec("info"); err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{path, "2 ch", "loop: true", "quality: linear"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("info output missing %q: %q", want, out.String())
		}
	}

	if err := sh.exec("stop"); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := sh.exec("close"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if sh.e.IsOpen() {
		t.Error("file still open after close")
	}
}

func TestShell_LoopRangeAndTracks(t *testing.T) {
	t.Parallel()

	sh, out := newTestShell(t)
	path := audiotest.TempWAV(t, "pairs.wav", 8000, 2, audiotest.RampPCM16(16000, 2))
	if err := sh.exec("open " + path); err != nil {
		t.Fatalf("open: %v", err)
	}

	for _, line := range []string{"range 0.5 1.5", "track a mix", "track b 0", "notify 0.5"} {
		if err := sh.exec(line); err != nil {
			t.Fatalf("%s: %v", line, err)
		}
	}
	if sh.e.LoopStart() != 0.5 || sh.e.LoopEnd() != 1.5 {
		t.Errorf("range = %v-%v, want 0.5-1.5", sh.e.LoopStart(), sh.e.LoopEnd())
	}
	if sh.e.TrackA() != player.TrackMix || sh.e.TrackB() != 0 {
		t.Errorf("tracks = %d/%d", sh.e.TrackA(), sh.e.TrackB())
	}
	if sh.e.PositionNotifyDelta() != 0.5 {
		t.Errorf("PositionNotifyDelta() = %v, want 0.5", sh.e.PositionNotifyDelta())
	}

	// A range past the current end moves the end first.
	if err := sh.exec("range 1.75 1.875"); err != nil {
		t.Fatalf("range 1.75 1.875: %v", err)
	}
	if sh.e.LoopStart() != 1.75 {
		t.Errorf("LoopStart() = %v, want 1.75", sh.e.LoopStart())
	}

	for _, line := range []string{"range 1 3", "track b 2"} {
		if err := sh.exec(line); err == nil || errors.Is(err, errUsage) {
			t.Errorf("%q: error = %v, want rejection", line, err)
		}
	}
	for _, line := range []string{"range 1", "track c 0", "track a x", "notify -1"} {
		if err := sh.exec(line); !errors.Is(err, errUsage) {
			t.Errorf("%q: error = %v, want usage", line, err)
		}
	}

	out.Reset()
	if err := sh.exec("info"); err != nil {
		t.Fatalf("info: %v", err)
	}
	if !strings.Contains(out.String(), "tracks: mix/0") {
		t.Errorf("info output = %q", out.String())
	}
}

func TestShell_ControlChangeQueued(t *testing.T) {
	t.Parallel()

	sh, _ := newTestShell(t)
	if err := sh.exec("cc 7 50 2"); err != nil {
		t.Fatalf("cc: %v", err)
	}

	got := sh.q.Drain(make([]midi.Message, 4))
	if len(got) != 1 {
		t.Fatalf("queued %d messages, want 1", len(got))
	}
	if m := got[0]; m.Controller() != midi.ControllerVolume || m.Value() != 50 || m.Channel() != 2 {
		t.Errorf("message = %v", m)
	}
}

func TestShell_Errors(t *testing.T) {
	t.Parallel()

	sh, _ := newTestShell(t)

	usage := []string{"seek", "seek x", "loop maybe", "vol", "cc 7", "cc 200 1", "cc 7 1 16", "quality sinc", "open", "tag", "probe"}
	for _, line := range usage {
		if err := sh.exec(line); !errors.Is(err, errUsage) {
			t.Errorf("%q: error = %v, want usage", line, err)
		}
	}

	if err := sh.exec("vol 3"); err == nil || errors.Is(err, errUsage) {
		t.Errorf("vol 3: error = %v, want range error", err)
	}
	if err := sh.exec("fly"); err == nil {
		t.Error("unknown command accepted")
	}
	if err := sh.exec("open " + filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("open of missing file succeeded")
	}
	if err := sh.exec("tag title"); err == nil {
		t.Error("tag without an open file succeeded")
	}
	if err := sh.exec("exit"); !errors.Is(err, errQuit) {
		t.Errorf("exit: error = %v, want quit", err)
	}
	if err := sh.exec("   "); err != nil {
		t.Errorf("blank line: error = %v", err)
	}
}

func TestShell_ProbeAndHelp(t *testing.T) {
	t.Parallel()

	sh, out := newTestShell(t)
	path := audiotest.TempWAV(t, "probe.wav", 8000, 1, audiotest.RampPCM16(2000, 1))

	if err := sh.exec("probe " + path); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !strings.Contains(out.String(), "0.250 s") {
		t.Errorf("probe output = %q", out.String())
	}

	out.Reset()
	if err := sh.exec("help"); err != nil {
		t.Fatalf("help: %v", err)
	}
	for name := range commands {
		if !strings.Contains(out.String(), name) {
			t.Errorf("help output missing %q", name)
		}
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig("", func(c *config.Config) {
		c.Output.Backend = config.BackendOffline
		c.Engine.Quality = "fastest"
	})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Output.Backend != config.BackendOffline || cfg.Quality() != audio.QualityFastest {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := loadConfig("", func(c *config.Config) { c.Output.Backend = "jack" }); err == nil {
		t.Error("invalid override accepted")
	}
}
