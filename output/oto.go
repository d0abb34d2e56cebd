// SPDX-License-Identifier: EPL-2.0

package output

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/audplayer/midi"
)

// Oto plays a Renderer through the system sound device.
type Oto struct {
	ctx    *oto.Context
	player *oto.Player
	stream *Stream
	log    *slog.Logger
}

// OtoConfig describes the device stream.
type OtoConfig struct {
	SampleRate   int
	PeriodFrames int
	// BufferSize is the device buffer length; zero lets oto choose.
	BufferSize time.Duration
	Logger     *slog.Logger
}

// NewOto opens the sound device. Only one oto context may exist per
// process, so NewOto must be called at most once.
func NewOto(r Renderer, q *midi.Queue, cfg OtoConfig) (*Oto, error) {
	stream, err := NewStream(r, q, cfg.PeriodFrames)
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   cfg.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("oto context: %w", err)
	}
	<-ready

	o := &Oto{
		ctx:    ctx,
		stream: stream,
		log:    log.With("component", "output"),
	}
	o.player = ctx.NewPlayer(stream)

	o.log.Info("audio device ready",
		"rate", cfg.SampleRate,
		"period", cfg.PeriodFrames,
		"buffer", cfg.BufferSize,
	)
	return o, nil
}

// Start begins pulling periods from the renderer.
func (o *Oto) Start() { o.player.Play() }

// Err reports a device error, if any.
func (o *Oto) Err() error {
	if err := o.ctx.Err(); err != nil {
		return err
	}
	return o.player.Err()
}

// Close stops the device stream.
func (o *Oto) Close() error {
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("close player: %w", err)
	}
	return nil
}
