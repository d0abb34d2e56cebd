// SPDX-License-Identifier: EPL-2.0

package player

import "github.com/ik5/audplayer/midi"

// Render produces one period of output into outA and outB, then applies
// events in arrival order. It clears both outputs first, so every frame
// it does not play is silent. Render does not block, lock or allocate and
// must be called from a single goroutine.
func (e *Engine) Render(outA, outB []float32, events []midi.Message) {
	clear(outA)
	clear(outB)
	e.stats.periods.Add(1)

	if info := e.info.Load(); info != nil {
		e.renderFrames(outA, outB, info.Channels)
	}

	e.applyEvents(events)
}

func (e *Engine) renderFrames(outA, outB []float32, channels int) {
	trackA := int(e.trackA.Load())
	trackB := int(e.trackB.Load())
	level := e.Volume()
	frames := min(len(outA), len(outB))

	played := 0
	defer func() { e.stats.frames.Add(uint64(played)) }()

	for f := range frames {
		if SeekState(e.seekState.Load()) != SeekIdle {
			e.cursor = 0
			continue
		}

		if ep := e.epoch.Load(); ep != e.seenEpoch {
			// The producer refilled from a new position starting at buffer 0.
			e.seenEpoch = ep
			e.active.Store(0)
			e.cursor = 0
		}

		switch PlayState(e.playState.Load()) {
		case Starting:
			e.playState.CompareAndSwap(uint32(Starting), uint32(Playing))
		case Stopping:
			e.playState.CompareAndSwap(uint32(Stopping), uint32(Stopped))
			return
		case Stopped:
			return
		}

		a := int(e.active.Load())
		buf := e.buffers[a]
		empty := buf.IsEmpty()
		end := buf.End()
		if empty || e.cursor+channels > end {
			buf.MarkEmpty()
			a = 1 - a
			e.active.Store(int32(a))
			e.cursor = 0

			buf = e.buffers[a]
			empty = buf.IsEmpty()
			end = buf.End()
			if empty || end < channels {
				if SeekState(e.seekState.Load()) != SeekIdle {
					// A seek reset the buffers after this frame passed the gate.
					continue
				}
				if e.more.Load() {
					e.stats.xruns.Add(1)
				}
				e.endOfStream()
				return
			}
		}

		s, ok := buf.frame(e.cursor, channels, end)
		if !ok {
			e.cursor = end
			continue
		}
		if e.cursor == 0 {
			e.position.Store(buf.StartPos())
		}

		outA[f] = level * trackSample(s, trackA, 0)
		outB[f] = level * trackSample(s, trackB, 1)
		e.cursor += channels
		e.position.Add(1)
		played++
	}
}

// trackSample returns channel track of one interleaved frame. A negative
// track averages every second channel from first, which mixes the left or
// right sides of the stereo pairs.
func trackSample(frame []float32, track, first int) float32 {
	if len(frame) == 1 {
		return frame[0]
	}
	if track >= 0 {
		if track >= len(frame) {
			return 0
		}
		return frame[track]
	}

	var sum float32
	for c := first; c < len(frame); c += 2 {
		sum += frame[c]
	}
	return sum / float32(len(frame)/2)
}

// endOfStream stops playback when no more data is available.
func (e *Engine) endOfStream() {
	e.buffers[0].MarkEmpty()
	e.buffers[1].MarkEmpty()
	e.active.Store(0)
	e.cursor = 0
	e.playState.Store(uint32(Stopped))
}

// applyEvents handles control-change messages on any channel. Other
// message kinds and controllers are ignored.
func (e *Engine) applyEvents(events []midi.Message) {
	for _, m := range events {
		if !m.IsControlChange() {
			continue
		}

		switch m.Controller() {
		case midi.ControllerVolume:
			e.SetVolume(float32(m.Value()) / 100)
		case midi.ControllerPlay:
			if m.Switch() {
				e.Play()
			} else {
				e.Stop()
			}
		case midi.ControllerLoop:
			e.SetLoop(m.Switch())
		}
	}
}
