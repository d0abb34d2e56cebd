// SPDX-License-Identifier: EPL-2.0

package midi

import "sync/atomic"

// Queue is a lock-free single-producer, single-consumer ring of messages.
//
// Two monotonically increasing counters index a power-of-two ring. The
// producer stores writePos after writing the slot; the consumer loads
// writePos before reading it, so every message is visible once counted.
//
// Push is for the sending goroutine only; Drain is for the render
// callback only.
type Queue struct {
	writePos atomic.Uint64
	_pad1    [56]byte
	readPos  atomic.Uint64
	_pad2    [56]byte

	dropped atomic.Uint64

	buf  []Message
	mask uint64
}

// NewQueue creates a queue with capacity rounded up to the next power of two.
func NewQueue(minSize int) *Queue {
	size := 1
	for size < minSize {
		size <<= 1
	}
	return &Queue{
		buf:  make([]Message, size),
		mask: uint64(size - 1),
	}
}

// Push appends m. It never blocks; when the ring is full the message is
// dropped, counted, and false is returned.
func (q *Queue) Push(m Message) bool {
	w := q.writePos.Load()
	r := q.readPos.Load()

	if w-r >= uint64(len(q.buf)) {
		q.dropped.Add(1)
		return false
	}

	q.buf[w&q.mask] = m
	q.writePos.Store(w + 1)
	return true
}

// Drain moves queued messages into dst in arrival order and returns the
// filled prefix. It stops when dst is full; the rest stay queued for the
// next call. Drain does not allocate.
func (q *Queue) Drain(dst []Message) []Message {
	r := q.readPos.Load()
	w := q.writePos.Load()

	n := 0
	for r != w && n < len(dst) {
		dst[n] = q.buf[r&q.mask]
		n++
		r++
	}

	q.readPos.Store(r)
	return dst[:n]
}

// Len returns the number of queued messages.
func (q *Queue) Len() int { return int(q.writePos.Load() - q.readPos.Load()) }

// Dropped returns how many messages were discarded because the ring was full.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }
