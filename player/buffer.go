// SPDX-License-Identifier: EPL-2.0

package player

import "sync/atomic"

// Buffer is one half of the double buffer between the producer and the
// render step.
//
// Ownership follows the empty flag: while IsEmpty is true only the
// producer touches the samples and end/startPos; while it is false only
// the render step reads them. The flag is stored last by the writer and
// loaded first by the reader, so the atomics order the plain sample
// writes. A buffer is never non-empty with End() == 0.
type Buffer struct {
	data     []float32
	end      atomic.Int64 // valid interleaved samples
	startPos atomic.Int64 // output frame of data[0]
	empty    atomic.Bool
}

func newBuffer(size int) *Buffer {
	b := &Buffer{data: make([]float32, size)}
	b.empty.Store(true)
	return b
}

// Size returns the capacity in samples.
func (b *Buffer) Size() int { return len(b.data) }

// End returns the number of valid interleaved samples.
func (b *Buffer) End() int { return int(b.end.Load()) }

// StartPos returns the output frame of the first sample.
func (b *Buffer) StartPos() int64 { return b.startPos.Load() }

// IsEmpty reports whether the buffer belongs to the producer.
func (b *Buffer) IsEmpty() bool { return b.empty.Load() }

// Samples returns the valid range. Only meaningful while !IsEmpty().
func (b *Buffer) Samples() []float32 { return b.data[:b.End()] }

// frame returns the samples of the frame at cursor when the whole frame
// lies below end, which the caller loaded once from End.
func (b *Buffer) frame(cursor, channels, end int) ([]float32, bool) {
	if cursor < 0 || cursor+channels > end || end > len(b.data) {
		return nil, false
	}
	return b.data[cursor : cursor+channels], true
}

// MarkEmpty hands the buffer back to the producer.
func (b *Buffer) MarkEmpty() { b.empty.Store(true) }

// Writable exposes the whole backing array to the producer. Callers must
// only write while IsEmpty() is true.
func (b *Buffer) Writable() []float32 { return b.data }

// Publish makes the first n samples of Writable visible to the render step
// as starting at output frame startPos. Publishing zero samples leaves the
// buffer empty and records end == 0, which marks the end of source data.
func (b *Buffer) Publish(n int, startPos int64) {
	b.end.Store(int64(n))
	b.startPos.Store(startPos)
	if n > 0 {
		b.empty.Store(false)
	}
}

// Fill copies samples into the buffer and publishes them. It returns the
// number of samples accepted, which is less than len(samples) when the
// buffer is too small.
func (b *Buffer) Fill(samples []float32, startPos int64) int {
	n := copy(b.data, samples)
	b.Publish(n, startPos)
	return n
}

// reset empties the buffer and clears its end marker.
func (b *Buffer) reset() {
	b.empty.Store(true)
	b.end.Store(0)
	b.startPos.Store(0)
}
