// SPDX-License-Identifier: EPL-2.0

package player

import (
	"fmt"
	"math"
)

// Event names the engine value a Notification reports.
type Event int

const (
	EventTransport Event = iota + 1
	EventPosition
	EventGain
	EventLoop
	EventTrackA
	EventTrackB
	EventQuality
	EventDebug
	EventLoopStart
	EventLoopEnd
)

func (ev Event) String() string {
	switch ev {
	case EventTransport:
		return "transport"
	case EventPosition:
		return "position"
	case EventGain:
		return "gain"
	case EventLoop:
		return "loop"
	case EventTrackA:
		return "track_a"
	case EventTrackB:
		return "track_b"
	case EventQuality:
		return "quality"
	case EventDebug:
		return "debug"
	case EventLoopStart:
		return "loop_start"
	case EventLoopEnd:
		return "loop_end"
	default:
		return fmt.Sprintf("event(%d)", int(ev))
	}
}

// Notification carries the new value of one engine setting. Value is the
// PlayState for EventTransport, seconds for positions and loop points, 1
// or 0 for switches, the channel for tracks and the audio.Quality for
// EventQuality.
type Notification struct {
	Event Event
	Value float64
}

// NotifyFunc receives notifications. It runs on the producer goroutine
// and should return quickly.
type NotifyFunc func(Notification)

// gainDelta is the smallest volume change that is notified.
const gainDelta = 0.01

// notifier compares the engine against the values it last reported. It
// is owned by the producer goroutine.
type notifier struct {
	fn     NotifyFunc
	primed bool

	transport PlayState
	position  float64
	gain      float32
	loop      bool
	trackA    int
	trackB    int
	quality   uint32
	debug     bool
	loopStart float64
	loopEnd   float64
}

// check reports every value that changed since the last call. The first
// call reports everything.
func (n *notifier) check(e *Engine) {
	if n.fn == nil || !e.IsOpen() {
		return
	}
	first := !n.primed
	n.primed = true

	if s := e.PlayState(); first || s != n.transport {
		n.transport = s
		n.send(EventTransport, float64(s))
	}
	if pos := e.Position(); first || math.Abs(pos-n.position) >= e.PositionNotifyDelta() {
		n.position = pos
		n.send(EventPosition, pos)
	}
	if g := e.Volume(); first || math.Abs(float64(g-n.gain)) >= gainDelta {
		n.gain = g
		n.send(EventGain, float64(g))
	}
	if l := e.Loop(); first || l != n.loop {
		n.loop = l
		n.send(EventLoop, boolValue(l))
	}
	if t := e.TrackA(); first || t != n.trackA {
		n.trackA = t
		n.send(EventTrackA, float64(t))
	}
	if t := e.TrackB(); first || t != n.trackB {
		n.trackB = t
		n.send(EventTrackB, float64(t))
	}
	if q := e.quality.Load(); first || q != n.quality {
		n.quality = q
		n.send(EventQuality, float64(q))
	}
	if d := e.Debug(); first || d != n.debug {
		n.debug = d
		n.send(EventDebug, boolValue(d))
	}
	if s := e.LoopStart(); first || s != n.loopStart {
		n.loopStart = s
		n.send(EventLoopStart, s)
	}
	if end := e.LoopEnd(); first || end != n.loopEnd {
		n.loopEnd = end
		n.send(EventLoopEnd, end)
	}
}

func (n *notifier) send(ev Event, v float64) {
	n.fn(Notification{Event: ev, Value: v})
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
