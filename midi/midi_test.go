package midi

import (
	"sync"
	"testing"
)

func TestControlChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		channel    byte
		controller byte
		value      byte
		want       Message
	}{
		{"volume ch1", 0, ControllerVolume, 100, Message{0xB0, 7, 100}},
		{"play ch16", 15, ControllerPlay, 127, Message{0xBF, 68, 127}},
		{"channel masked", 0x13, ControllerLoop, 0, Message{0xB3, 69, 0}},
		{"data bytes masked", 2, 0x87, 0xFF, Message{0xB2, 7, 0x7F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := ControlChange(tt.channel, tt.controller, tt.value)
			if m != tt.want {
				t.Fatalf("ControlChange() = % X, want % X", m, tt.want)
			}
			if !m.IsControlChange() {
				t.Error("IsControlChange() = false")
			}
			if m.Channel() != tt.want[0]&0x0F {
				t.Errorf("Channel() = %d", m.Channel())
			}
			if m.Controller() != tt.want[1] || m.Value() != tt.want[2] {
				t.Errorf("Controller(), Value() = %d, %d", m.Controller(), m.Value())
			}
		})
	}
}

func TestMessage_NotControlChange(t *testing.T) {
	t.Parallel()

	for _, m := range []Message{
		{0x90, 60, 100}, // note on
		{0x80, 60, 0},   // note off
		{0xE0, 0, 64},   // pitch bend
		{0xF8, 0, 0},    // clock
	} {
		if m.IsControlChange() {
			t.Errorf("% X reported as control change", m)
		}
	}
}

func TestMessage_Switch(t *testing.T) {
	t.Parallel()

	for v, want := range map[byte]bool{0: false, 63: false, 64: true, 127: true} {
		if got := ControlChange(0, ControllerPlay, v).Switch(); got != want {
			t.Errorf("Switch() with value %d = %v, want %v", v, got, want)
		}
	}
}

func TestNewQueue_RoundsUp(t *testing.T) {
	t.Parallel()

	for size, want := range map[int]int{0: 1, 1: 1, 3: 4, 256: 256, 300: 512} {
		if got := len(NewQueue(size).buf); got != want {
			t.Errorf("NewQueue(%d) size = %d, want %d", size, got, want)
		}
	}
}

func TestQueue_OrderAndWrap(t *testing.T) {
	t.Parallel()

	q := NewQueue(4)
	dst := make([]Message, 3)

	next := byte(0)
	want := byte(0)
	for range 10 {
		for range 3 {
			if !q.Push(ControlChange(0, ControllerVolume, next)) {
				t.Fatal("Push() = false on a queue with room")
			}
			next++
		}
		for _, m := range q.Drain(dst) {
			if m.Value() != want {
				t.Fatalf("drained value %d, want %d", m.Value(), want)
			}
			want++
		}
	}
	if q.Len() != 0 || q.Dropped() != 0 {
		t.Errorf("Len() = %d, Dropped() = %d", q.Len(), q.Dropped())
	}
}

func TestQueue_Full(t *testing.T) {
	t.Parallel()

	q := NewQueue(2)
	q.Push(ControlChange(0, 7, 1))
	q.Push(ControlChange(0, 7, 2))

	if q.Push(ControlChange(0, 7, 3)) {
		t.Error("Push() = true on a full queue")
	}
	if q.Dropped() != 1 || q.Len() != 2 {
		t.Errorf("Dropped() = %d, Len() = %d, want 1, 2", q.Dropped(), q.Len())
	}

	got := q.Drain(make([]Message, 8))
	if len(got) != 2 || got[0].Value() != 1 || got[1].Value() != 2 {
		t.Errorf("Drain() = %v", got)
	}
}

func TestQueue_DrainPartial(t *testing.T) {
	t.Parallel()

	q := NewQueue(8)
	for v := range byte(5) {
		q.Push(ControlChange(0, 7, v))
	}

	first := q.Drain(make([]Message, 2))
	if len(first) != 2 || q.Len() != 3 {
		t.Fatalf("Drain() = %d messages, Len() = %d, want 2, 3", len(first), q.Len())
	}
	rest := q.Drain(make([]Message, 8))
	if len(rest) != 3 || rest[0].Value() != 2 {
		t.Errorf("second Drain() = %v", rest)
	}
	if empty := q.Drain(make([]Message, 8)); len(empty) != 0 {
		t.Errorf("Drain() on empty queue = %v", empty)
	}
}

func TestQueue_Concurrent(t *testing.T) {
	t.Parallel()

	const total = 20000
	q := NewQueue(64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; {
			if q.Push(ControlChange(0, 7, byte(i%128))) {
				i++
			}
		}
	}()

	dst := make([]Message, 16)
	received := 0
	for received < total {
		for _, m := range q.Drain(dst) {
			if m.Value() != byte(received%128) {
				t.Fatalf("message %d carries %d", received, m.Value())
			}
			received++
		}
	}
	wg.Wait()

	if q.Len() != 0 {
		t.Errorf("Len() = %d after draining everything", q.Len())
	}
}
