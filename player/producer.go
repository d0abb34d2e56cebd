// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"math"
	"time"
)

// producer keeps the double buffer filled from one Source. All of its
// state is owned by its goroutine.
type producer struct {
	e      *Engine
	src    *Source
	ratio  float64
	ch     int
	cursor int64 // output frame of the next sample to publish
	notes  notifier
}

func newProducer(e *Engine, src *Source) *producer {
	return &producer{
		e:     e,
		src:   src,
		ratio: src.Ratio(),
		ch:    src.Info().Channels,
		notes: notifier{fn: e.notify},
	}
}

func (p *producer) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	defer p.shutdown()

	t := time.NewTicker(p.e.poll)
	defer t.Stop()

	for {
		p.poll()
		p.notes.check(p.e)

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// poll performs one unit of work: a pending seek, then a fill of every
// empty buffer while there is data left.
func (p *producer) poll() {
	e := p.e

	if SeekState(e.seekState.Load()) == SeekSeeking {
		p.seek()
	}

	loading := SeekState(e.seekState.Load()) == SeekLoading
	if !loading && !e.more.Load() {
		return
	}

	order := [2]int{0, 1}
	if !loading {
		a := int(e.active.Load())
		order = [2]int{a, 1 - a}
	}

	for _, i := range order {
		b := e.buffers[i]
		if b.IsEmpty() && (loading || e.more.Load()) {
			p.fill(b)
		}

		if loading {
			// Playback may resume once the first buffer holds the new
			// position. The epoch moves first: Render must never see Idle
			// while still holding the cursor of the old position.
			e.epoch.Add(1)
			e.seekState.CompareAndSwap(uint32(SeekLoading), uint32(SeekIdle))
			loading = false
		}
	}
}

func (p *producer) seek() {
	e := p.e

	gen := e.seekGen.Load()
	target := e.seekTarget.Load()

	e.buffers[0].reset()
	e.buffers[1].reset()

	frame := int64(float64(target) / p.ratio)
	if err := p.src.Seek(frame); err != nil {
		e.stats.errors.Add(1)
		e.log.Warn("seek failed", "file", p.src.Info().Filename, "frame", frame, "err", err)
	}
	p.cursor = target
	e.position.Store(target)
	e.more.Store(true)
	e.stats.seeks.Add(1)

	e.seekState.CompareAndSwap(uint32(SeekSeeking), uint32(SeekLoading))
	if e.seekGen.Load() != gen {
		// A newer request arrived while repositioning.
		e.seekState.Store(uint32(SeekSeeking))
	}

	if e.debug.Load() {
		e.log.Debug("seeked", "frame", frame, "position", target)
	}
}

// fill reads the next block into b and publishes it. With looping on,
// reads stop at the loop end and restart from the loop start; otherwise
// the end of the file publishes an empty buffer to mark the end.
func (p *producer) fill(b *Buffer) {
	e := p.e
	dst := b.Writable()

	start, end, looping := p.loopRange()
	n, err := p.src.FillUntil(dst, end)
	if n == 0 && err == nil && looping {
		if serr := p.src.Seek(start); serr != nil {
			err = serr
		} else {
			p.cursor = int64(math.Round(float64(start) * p.ratio))
			e.stats.loops.Add(1)
			if e.debug.Load() {
				e.log.Debug("looping", "file", p.src.Info().Filename, "frame", start)
			}
			n, err = p.src.FillUntil(dst, end)
		}
	}

	if n > 0 {
		b.Publish(n*p.ch, p.cursor)
		p.cursor += int64(n)
		e.stats.fills.Add(1)
	}

	if err != nil {
		e.stats.errors.Add(1)
		e.log.Warn("read failed, ending playback", "file", p.src.Info().Filename, "err", err)
		e.more.Store(false)
		return
	}

	if n == 0 {
		e.more.Store(false)
		b.Publish(0, p.cursor)
		if e.debug.Load() {
			e.log.Debug("end of file", "file", p.src.Info().Filename, "frames", p.cursor)
		}
	}
}

// loopRange returns the source frames looping restarts from and reads stop
// at. end is -1 when reads run to the end of the file.
func (p *producer) loopRange() (start, end int64, looping bool) {
	if !p.e.loop.Load() {
		return 0, -1, false
	}
	start, end = p.e.loopStart.Load(), p.e.loopEnd.Load()
	if start < 0 || end <= start {
		return 0, -1, true
	}
	return start, end, true
}

func (p *producer) shutdown() {
	if err := p.src.Close(); err != nil {
		p.e.log.Warn("close failed", "file", p.src.Info().Filename, "err", err)
	}
	p.e.buffers[0].reset()
	p.e.buffers[1].reset()
	p.e.position.Store(0)
}
