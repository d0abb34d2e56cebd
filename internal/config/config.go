// SPDX-License-Identifier: EPL-2.0

// Package config holds the audplayer configuration file format.
package config

import (
	"log/slog"
	"time"
)

// Backend selects the audio transport.
type Backend string

const (
	// BackendOto plays through the system sound device.
	BackendOto Backend = "oto"
	// BackendOffline paces render periods with a timer and discards audio.
	BackendOffline Backend = "offline"
)

// IsValid reports whether b is a recognised backend.
func (b Backend) IsValid() bool {
	return b == BackendOto || b == BackendOffline
}

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to a slog level. Unknown values map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the root configuration structure.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Engine  EngineConfig  `yaml:"engine"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// OutputConfig describes the audio transport.
type OutputConfig struct {
	// Backend is "oto" or "offline".
	Backend Backend `yaml:"backend"`

	// SampleRate is the render rate in Hz.
	SampleRate int `yaml:"sample_rate"`

	// PeriodFrames is the number of frames per render period.
	PeriodFrames int `yaml:"period_frames"`

	// DeviceBuffer is the sound device buffer length. Zero lets the
	// driver choose.
	DeviceBuffer time.Duration `yaml:"device_buffer"`
}

// EngineConfig tunes the streaming engine.
type EngineConfig struct {
	// BufferSamples is the capacity of each of the two stream buffers in
	// interleaved samples.
	BufferSamples int `yaml:"buffer_samples"`

	// PollInterval is how often the background reader checks for work.
	PollInterval time.Duration `yaml:"poll_interval"`

	// Quality is the sample-rate converter tier: best, medium, fastest,
	// zero-order-hold or linear.
	Quality string `yaml:"quality"`

	// Volume is the initial level, 0 to 2.
	Volume float64 `yaml:"volume"`

	// Loop starts with looping enabled.
	Loop bool `yaml:"loop"`

	// NotifyDelta is how far, in seconds, the position moves between
	// position notifications.
	NotifyDelta float64 `yaml:"notify_delta"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level LogLevel `yaml:"level"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables it.
	Addr string `yaml:"addr"`
}

// Default returns the configuration used for omitted keys.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Backend:      BackendOto,
			SampleRate:   48000,
			PeriodFrames: 256,
		},
		Engine: EngineConfig{
			BufferSamples: 200000,
			PollInterval:  10 * time.Millisecond,
			Quality:       "best",
			Volume:        1,
			NotifyDelta:   0.1,
		},
		Log: LogConfig{Level: LogInfo},
	}
}
