// SPDX-License-Identifier: EPL-2.0

package output

import (
	"context"
	"time"

	"github.com/ik5/audplayer/midi"
)

// Offline renders periods on a wall-clock ticker and discards the audio.
// It stands in for a sound device on headless hosts and in tests.
type Offline struct {
	stream   *Stream
	interval time.Duration
}

// NewOffline paces periods of periodFrames at sampleRate.
func NewOffline(r Renderer, q *midi.Queue, sampleRate, periodFrames int) (*Offline, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidPeriod
	}
	stream, err := NewStream(r, q, periodFrames)
	if err != nil {
		return nil, err
	}

	return &Offline{
		stream:   stream,
		interval: time.Duration(periodFrames) * time.Second / time.Duration(sampleRate),
	}, nil
}

// Interval returns the wall-clock length of one period.
func (o *Offline) Interval() time.Duration { return o.interval }

// Step renders n periods immediately.
func (o *Offline) Step(n int) {
	for range n {
		o.stream.period()
	}
}

// Run renders one period per interval until ctx is done.
func (o *Offline) Run(ctx context.Context) error {
	t := time.NewTicker(o.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			o.stream.period()
		}
	}
}
