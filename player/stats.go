// SPDX-License-Identifier: EPL-2.0

package player

import "sync/atomic"

// Stats is a snapshot of engine counters since New.
type Stats struct {
	Periods uint64 // render calls
	Frames  uint64 // frames rendered from file data
	Xruns   uint64 // buffer switches that found no data while more was expected
	Fills   uint64 // buffers published by the producer
	Seeks   uint64 // repositions performed by the producer
	Loops   uint64 // loop restarts
	Errors  uint64 // read or seek failures
}

type counters struct {
	periods atomic.Uint64
	frames  atomic.Uint64
	xruns   atomic.Uint64
	fills   atomic.Uint64
	seeks   atomic.Uint64
	loops   atomic.Uint64
	errors  atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Periods: c.periods.Load(),
		Frames:  c.frames.Load(),
		Xruns:   c.xruns.Load(),
		Fills:   c.fills.Load(),
		Seeks:   c.seeks.Load(),
		Loops:   c.loops.Load(),
		Errors:  c.errors.Load(),
	}
}
