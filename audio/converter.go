// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"github.com/ik5/audplayer/utils"
)

// Quality selects the interpolation used by a Converter. The numbering
// follows libsamplerate so values stored in configs stay portable.
type Quality uint

const (
	QualityBest Quality = iota
	QualityMedium
	QualityFastest
	QualityZeroOrderHold
	QualityLinear
)

// Valid reports whether q is one of the supported tiers.
func (q Quality) Valid() bool { return q <= QualityLinear }

func (q Quality) String() string {
	switch q {
	case QualityBest:
		return "best"
	case QualityMedium:
		return "medium"
	case QualityFastest:
		return "fastest"
	case QualityZeroOrderHold:
		return "zero-order-hold"
	case QualityLinear:
		return "linear"
	default:
		return "invalid"
	}
}

// ParseQuality maps a tier name (as returned by String) to a Quality.
func ParseQuality(s string) (Quality, error) {
	for q := QualityBest; q <= QualityLinear; q++ {
		if q.String() == s {
			return q, nil
		}
	}
	return 0, ErrInvalidQuality
}

// ConverterHeadroom is the number of frames a single Process call may emit
// beyond inputFrames*ratio because of carried fractional position.
const ConverterHeadroom = 4

// Converter is a streaming sample-rate converter working on interleaved
// float32 blocks. State (pending input, fractional phase, filter memory)
// is carried across Process calls and cleared only by Reset.
type Converter struct {
	channels int
	quality  Quality

	// win holds input frames not yet fully consumed; pos is the read
	// position, in frames, relative to the start of win.
	win []float32
	pos float64

	filterState []float32
	primed      bool
}

// NewConverter allocates a converter for the given channel count.
func NewConverter(channels int, quality Quality) (*Converter, error) {
	if !quality.Valid() {
		return nil, ErrInvalidQuality
	}
	if channels < 1 {
		return nil, ErrInvalidChannels
	}

	return &Converter{
		channels:    channels,
		quality:     quality,
		win:         make([]float32, 0, 4096*channels),
		filterState: make([]float32, channels),
	}, nil
}

func (c *Converter) Channels() int    { return c.channels }
func (c *Converter) Quality() Quality { return c.quality }
func (c *Converter) Pending() int     { return len(c.win) / c.channels }

// Reset drops pending input and interpolation state. Call it after the
// upstream source is repositioned.
func (c *Converter) Reset() {
	c.win = c.win[:0]
	c.pos = 0
	c.primed = false
	for i := range c.filterState {
		c.filterState[i] = 0
	}
}

// Process appends in to the pending input and writes as many converted
// frames into out as are available, returning the number of frames
// written. ratio is outputRate/sourceRate. With endOfInput set the tail is
// flushed by holding the last frame instead of waiting for look-ahead.
func (c *Converter) Process(in, out []float32, ratio float64, endOfInput bool) (int, error) {
	if len(in)%c.channels != 0 || len(out)%c.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if ratio <= 0 {
		return 0, ErrInvalidRatio
	}

	c.appendInput(in, ratio)

	frames := len(c.win) / c.channels
	step := 1 / ratio
	maxOut := len(out) / c.channels
	written := 0

	for written < maxOut {
		i := int(c.pos)
		if i >= frames {
			break
		}
		// Cubic needs i+2 as look-ahead until the input is known to end.
		if !endOfInput && i+2 >= frames {
			break
		}

		frac := float32(c.pos - float64(i))
		base := written * c.channels
		for ch := range c.channels {
			out[base+ch] = c.interpolate(i, ch, frames, frac)
		}

		written++
		c.pos += step
	}

	c.compact()

	return written, nil
}

func (c *Converter) appendInput(in []float32, ratio float64) {
	if len(in) == 0 {
		return
	}

	start := len(c.win)
	c.win = append(c.win, in...)

	alpha, ok := c.filterAlpha(ratio)
	if !ok {
		return
	}

	added := c.win[start:]
	if !c.primed {
		// Seed the filter with the first frame to avoid a warm-up transient.
		copy(c.filterState, added[:c.channels])
		c.primed = true
	}
	for f := 0; f+c.channels <= len(added); f += c.channels {
		for ch := range c.channels {
			y := alpha*added[f+ch] + (1-alpha)*c.filterState[ch]
			c.filterState[ch] = y
			added[f+ch] = y
		}
	}
}

// filterAlpha returns the one-pole low-pass coefficient used when
// downsampling. Lower alpha cuts harder.
func (c *Converter) filterAlpha(ratio float64) (float32, bool) {
	if ratio >= 1 {
		return 0, false
	}

	switch c.quality {
	case QualityBest:
		return float32(max(ratio, 0.2)), true
	case QualityMedium:
		return 0.5, true
	default:
		return 0, false
	}
}

func (c *Converter) sample(frame, ch, frames int) float32 {
	if frame < 0 {
		frame = 0
	}
	if frame >= frames {
		frame = frames - 1
	}
	return c.win[frame*c.channels+ch]
}

func (c *Converter) interpolate(i, ch, frames int, frac float32) float32 {
	switch c.quality {
	case QualityZeroOrderHold:
		return c.sample(i, ch, frames)
	case QualityLinear:
		y1 := c.sample(i, ch, frames)
		y2 := c.sample(i+1, ch, frames)
		return y1 + (y2-y1)*frac
	default:
		return utils.CubicInterpolate(
			c.sample(i-1, ch, frames),
			c.sample(i, ch, frames),
			c.sample(i+1, ch, frames),
			c.sample(i+2, ch, frames),
			frac,
		)
	}
}

// compact drops frames that can no longer be referenced, keeping one frame
// of history before the read position for the cubic kernel.
func (c *Converter) compact() {
	drop := int(c.pos) - 1
	frames := len(c.win) / c.channels
	if drop <= 0 {
		return
	}
	if drop > frames {
		drop = frames
	}

	n := copy(c.win, c.win[drop*c.channels:])
	c.win = c.win[:n]
	c.pos -= float64(drop)
}
