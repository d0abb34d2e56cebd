// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ik5/audplayer/audio"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults and
// validates the result.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Output
	if !cfg.Output.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("output.backend %q is invalid; valid values: oto, offline", cfg.Output.Backend))
	}
	if cfg.Output.SampleRate < 8000 || cfg.Output.SampleRate > 384000 {
		errs = append(errs, fmt.Errorf("output.sample_rate %d is out of range [8000, 384000]", cfg.Output.SampleRate))
	}
	if cfg.Output.PeriodFrames < 16 || cfg.Output.PeriodFrames > 8192 {
		errs = append(errs, fmt.Errorf("output.period_frames %d is out of range [16, 8192]", cfg.Output.PeriodFrames))
	}
	if cfg.Output.DeviceBuffer < 0 {
		errs = append(errs, fmt.Errorf("output.device_buffer %s must not be negative", cfg.Output.DeviceBuffer))
	}

	// Engine
	if cfg.Engine.BufferSamples < 1024 {
		errs = append(errs, fmt.Errorf("engine.buffer_samples %d is too small; minimum 1024", cfg.Engine.BufferSamples))
	}
	if cfg.Engine.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("engine.poll_interval %s must be positive", cfg.Engine.PollInterval))
	}
	if _, err := audio.ParseQuality(cfg.Engine.Quality); err != nil {
		errs = append(errs, fmt.Errorf("engine.quality %q is invalid; valid values: best, medium, fastest, zero-order-hold, linear", cfg.Engine.Quality))
	}
	if cfg.Engine.Volume < 0 || cfg.Engine.Volume > 2 {
		errs = append(errs, fmt.Errorf("engine.volume %.2f is out of range [0, 2]", cfg.Engine.Volume))
	}
	if cfg.Engine.NotifyDelta < 0 {
		errs = append(errs, fmt.Errorf("engine.notify_delta %.3f must not be negative", cfg.Engine.NotifyDelta))
	}

	// Log
	if !cfg.Log.Level.IsValid() {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", cfg.Log.Level))
	}

	if cfg.Output.SampleRate > 0 && cfg.Output.PeriodFrames > 0 &&
		cfg.Engine.PollInterval > 0 && cfg.Engine.BufferSamples > 0 {
		// Two buffers must outlast one producer poll at the render rate.
		perPoll := int(cfg.Engine.PollInterval.Seconds()*float64(cfg.Output.SampleRate)) * 2
		if 2*cfg.Engine.BufferSamples < perPoll {
			slog.Warn("engine buffers are smaller than one poll interval of audio; expect underruns",
				"buffer_samples", cfg.Engine.BufferSamples,
				"poll_interval", cfg.Engine.PollInterval,
				"sample_rate", cfg.Output.SampleRate,
			)
		}
	}

	return errors.Join(errs...)
}

// Quality returns the parsed converter tier. Call only on a validated
// config.
func (c *Config) Quality() audio.Quality {
	q, err := audio.ParseQuality(c.Engine.Quality)
	if err != nil {
		return audio.QualityBest
	}
	return q
}
