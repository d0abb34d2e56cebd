package output

import (
	"context"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/ik5/audplayer/midi"
)

// countingRenderer writes the period number into A and its negation into
// B and records the events it receives.
type countingRenderer struct {
	periods int
	events  [][]midi.Message
}

func (c *countingRenderer) Render(outA, outB []float32, events []midi.Message) {
	c.periods++
	for i := range outA {
		outA[i] = float32(c.periods)
		outB[i] = -float32(c.periods)
	}
	c.events = append(c.events, append([]midi.Message(nil), events...))
}

func sampleAt(p []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
}

func TestNewStream_InvalidPeriod(t *testing.T) {
	t.Parallel()

	if _, err := NewStream(&countingRenderer{}, nil, 0); err != ErrInvalidPeriod {
		t.Errorf("NewStream(0) error = %v, want ErrInvalidPeriod", err)
	}
}

func TestStream_ReadInterleaves(t *testing.T) {
	t.Parallel()

	r := &countingRenderer{}
	s, err := NewStream(r, nil, 4)
	if err != nil {
		t.Fatalf("NewStream() error = %v", err)
	}

	// 6 frames spans two periods.
	p := make([]byte, 6*Channels*4)
	n, err := s.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read() = %d, %v", n, err)
	}
	if r.periods != 2 {
		t.Fatalf("rendered %d periods, want 2", r.periods)
	}

	for f := range 6 {
		want := float32(1)
		if f >= 4 {
			want = 2
		}
		if a, b := sampleAt(p, f*2), sampleAt(p, f*2+1); a != want || b != -want {
			t.Errorf("frame %d = %v/%v, want %v/%v", f, a, b, want, -want)
		}
	}

	// The rest of period 2 is served before period 3 is rendered.
	p = make([]byte, 2*Channels*4)
	if _, err := s.Read(p); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if r.periods != 2 || sampleAt(p, 0) != 2 {
		t.Errorf("periods = %d, first sample = %v", r.periods, sampleAt(p, 0))
	}
}

func TestStream_DrainsQueuePerPeriod(t *testing.T) {
	t.Parallel()

	r := &countingRenderer{}
	q := midi.NewQueue(8)
	s, err := NewStream(r, q, 2)
	if err != nil {
		t.Fatalf("NewStream() error = %v", err)
	}

	q.Push(midi.ControlChange(0, midi.ControllerVolume, 10))
	q.Push(midi.ControlChange(0, midi.ControllerPlay, 127))

	p := make([]byte, 2*2*Channels*4)
	if _, err := s.Read(p); err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if len(r.events) != 2 {
		t.Fatalf("got %d periods of events, want 2", len(r.events))
	}
	if len(r.events[0]) != 2 || r.events[0][0].Controller() != midi.ControllerVolume || r.events[0][1].Controller() != midi.ControllerPlay {
		t.Errorf("period 1 events = %v", r.events[0])
	}
	if len(r.events[1]) != 0 {
		t.Errorf("period 2 events = %v, want none", r.events[1])
	}
	if q.Len() != 0 {
		t.Errorf("queue length = %d, want 0", q.Len())
	}
}

func TestOffline(t *testing.T) {
	t.Parallel()

	r := &countingRenderer{}
	o, err := NewOffline(r, nil, 48000, 480)
	if err != nil {
		t.Fatalf("NewOffline() error = %v", err)
	}
	if o.Interval() != 10*time.Millisecond {
		t.Errorf("Interval() = %v, want 10ms", o.Interval())
	}

	o.Step(3)
	if r.periods != 3 {
		t.Errorf("Step(3) rendered %d periods", r.periods)
	}

	if _, err := NewOffline(r, nil, 0, 480); err == nil {
		t.Error("NewOffline(rate 0) succeeded")
	}
}

func TestOffline_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	r := &countingRenderer{}
	o, err := NewOffline(r, nil, 1000, 1)
	if err != nil {
		t.Fatalf("NewOffline() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := o.Run(ctx); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if r.periods == 0 {
		t.Error("Run() rendered no periods")
	}
}
