// SPDX-License-Identifier: EPL-2.0

// Package output drives a Renderer at a fixed period, either from a sound
// device through oto or from a wall-clock ticker with no device at all.
package output

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/ik5/audplayer/midi"
)

// Channels is the number of output channels every transport produces.
const Channels = 2

// ErrInvalidPeriod is returned for a non-positive period size.
var ErrInvalidPeriod = errors.New("invalid period size")

// Renderer produces one period of two-channel output and consumes the
// control events that arrived during it.
type Renderer interface {
	Render(outA, outB []float32, events []midi.Message)
}

// Stream turns a Renderer into an io.Reader of interleaved float32
// little-endian frames, one period at a time. Pending control events are
// drained from the queue once per period. After construction Read does not
// allocate.
type Stream struct {
	r      Renderer
	q      *midi.Queue
	outA   []float32
	outB   []float32
	events []midi.Message
	pcm    []byte
	off    int
}

// NewStream prepares a stream rendering periodFrames frames per period.
// q may be nil when there is no control input.
func NewStream(r Renderer, q *midi.Queue, periodFrames int) (*Stream, error) {
	if periodFrames <= 0 {
		return nil, ErrInvalidPeriod
	}

	pcm := make([]byte, periodFrames*Channels*4)
	return &Stream{
		r:      r,
		q:      q,
		outA:   make([]float32, periodFrames),
		outB:   make([]float32, periodFrames),
		events: make([]midi.Message, 0, 64),
		pcm:    pcm,
		off:    len(pcm),
	}, nil
}

// PeriodFrames returns the number of frames rendered per period.
func (s *Stream) PeriodFrames() int { return len(s.outA) }

// Read fills p completely, rendering as many periods as needed. A frame
// split across two calls continues where the previous call stopped.
func (s *Stream) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if s.off == len(s.pcm) {
			s.period()
		}
		c := copy(p[n:], s.pcm[s.off:])
		s.off += c
		n += c
	}
	return n, nil
}

// period renders the next period and encodes it.
func (s *Stream) period() {
	events := s.events[:0]
	if s.q != nil {
		events = s.q.Drain(s.events[:cap(s.events)])
	}

	s.r.Render(s.outA, s.outB, events)

	for i := range s.outA {
		o := i * Channels * 4
		binary.LittleEndian.PutUint32(s.pcm[o:], math.Float32bits(s.outA[i]))
		binary.LittleEndian.PutUint32(s.pcm[o+4:], math.Float32bits(s.outB[i]))
	}
	s.off = 0
}
