package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ik5/audplayer/audio"
	"github.com/ik5/audplayer/internal/config"
)

func TestLoadFromReader_Empty(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}

	want := config.Default()
	if *cfg != *want {
		t.Errorf("empty config = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadFromReader_Overrides(t *testing.T) {
	t.Parallel()
	yaml := `
output:
  backend: offline
  sample_rate: 44100
engine:
  poll_interval: 5ms
  quality: linear
  volume: 0.5
  loop: true
  notify_delta: 0.5
log:
  level: debug
metrics:
  addr: ":9464"
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}

	if cfg.Output.Backend != config.BackendOffline || cfg.Output.SampleRate != 44100 {
		t.Errorf("output = %+v", cfg.Output)
	}
	if cfg.Output.PeriodFrames != 256 {
		t.Errorf("period_frames = %d, want default 256", cfg.Output.PeriodFrames)
	}
	if cfg.Engine.PollInterval != 5*time.Millisecond {
		t.Errorf("poll_interval = %v, want 5ms", cfg.Engine.PollInterval)
	}
	if cfg.Quality() != audio.QualityLinear {
		t.Errorf("Quality() = %v, want linear", cfg.Quality())
	}
	if cfg.Engine.Volume != 0.5 || !cfg.Engine.Loop || cfg.Engine.NotifyDelta != 0.5 {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Log.Level.Level().String() != "DEBUG" {
		t.Errorf("log level = %v", cfg.Log.Level.Level())
	}
	if cfg.Metrics.Addr != ":9464" {
		t.Errorf("metrics.addr = %q", cfg.Metrics.Addr)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()
	yaml := `
engine:
  buffer_frames: 4096
`
	if _, err := config.LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()
	yaml := `
output:
  backend: alsa
  sample_rate: 100
  period_frames: 0
engine:
  buffer_samples: 10
  quality: sinc
  volume: 3
  notify_delta: -1
log:
  level: loud
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	for _, want := range []string{
		"output.backend",
		"output.sample_rate",
		"output.period_frames",
		"engine.buffer_samples",
		"engine.quality",
		"engine.volume",
		"engine.notify_delta",
		"log.level",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load("")
	if err != nil || cfg.Output.SampleRate != 48000 {
		t.Fatalf("Load(\"\") = %+v, %v", cfg, err)
	}

	path := filepath.Join(t.TempDir(), "audplayer.yaml")
	if err := os.WriteFile(path, []byte("output:\n  sample_rate: 96000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err = config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.SampleRate != 96000 {
		t.Errorf("sample_rate = %d, want 96000", cfg.Output.SampleRate)
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing) succeeded")
	}
}
