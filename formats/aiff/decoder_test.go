// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audplayer/audio"
)

// mockAiffReader simulates the aiff.Decoder for testing
type mockAiffReader struct {
	sampleRate   int
	channels     int
	samples      []int
	offset       int
	returnErrors bool
}

func (m *mockAiffReader) Format() *goaudio.Format {
	return &goaudio.Format{
		SampleRate:  m.sampleRate,
		NumChannels: m.channels,
	}
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.returnErrors {
		return 0, io.ErrUnexpectedEOF
	}

	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := copy(buf.Data, m.samples[m.offset:])
	m.offset += n

	if m.offset >= len(m.samples) {
		return n, io.EOF
	}

	return n, nil
}

func newTestSource(bitDepth, channels int, samples []int) (*source, *int) {
	reopens := 0
	mk := func() *mockAiffReader {
		return &mockAiffReader{sampleRate: 44100, channels: channels, samples: samples}
	}
	return &source{
		dec: mk(),
		reopen: func() (aiffReader, error) {
			reopens++
			return mk(), nil
		},
		sampleRate: 44100,
		channels:   channels,
		bitDepth:   bitDepth,
		frames:     int64(len(samples) / channels),
	}, &reopens
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	decoder := Decoder{}
	_, err := decoder.Decode(bytes.NewReader([]byte("This is not AIFF data")))

	if err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
}

func TestDecoder_EmptyInput(t *testing.T) {
	t.Parallel()

	decoder := Decoder{}
	_, err := decoder.Decode(bytes.NewReader([]byte{}))

	if err == nil {
		t.Error("Decode() error = nil, want error for empty input")
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src, _ := newTestSource(16, 2, make([]int, 200))

	if src.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", src.SampleRate())
	}
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if src.Frames() != 100 {
		t.Errorf("Frames() = %d, want 100", src.Frames())
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	var _ audio.SeekableSource = src
}

func TestSource_ReadSamples_EmptyBuffer(t *testing.T) {
	t.Parallel()

	src, _ := newTestSource(16, 2, []int{1, 2})

	n, err := src.ReadSamples(make([]float32, 1))
	if n != 0 || err != nil {
		t.Errorf("ReadSamples() with a partial frame = %d, %v, want 0, nil", n, err)
	}
}

func TestSource_ReadSamples_EOF(t *testing.T) {
	t.Parallel()

	src, _ := newTestSource(16, 1, []int{100, 200, 300})

	buf := make([]float32, 8)
	n, err := src.ReadSamples(buf)
	if n != 3 {
		t.Errorf("ReadSamples() n = %d, want 3", n)
	}
	if err != io.EOF {
		t.Errorf("ReadSamples() error = %v, want io.EOF", err)
	}

	n, err = src.ReadSamples(buf)
	if n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = %d, %v, want 0, io.EOF", n, err)
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	src, _ := newTestSource(16, 1, []int{1, 2, 3})
	src.dec = &mockAiffReader{sampleRate: 44100, channels: 1, returnErrors: true}

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestSource_BitDepthNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		sample   int
		want     float32
	}{
		{"8-bit", 8, 64, 0.5},
		{"16-bit", 16, -16384, -0.5},
		{"24-bit", 24, 4194304, 0.5},
		{"32-bit", 32, -1073741824, -0.5},
		{"unknown falls back to 16-bit", 12, 16384, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, _ := newTestSource(tt.bitDepth, 1, []int{tt.sample, 0})
			buf := make([]float32, 2)
			if _, err := src.ReadSamples(buf); err != nil && err != io.EOF {
				t.Fatalf("ReadSamples() error = %v", err)
			}
			if buf[0] != tt.want {
				t.Errorf("sample = %v, want %v", buf[0], tt.want)
			}
		})
	}
}

func TestSource_SeekFrame(t *testing.T) {
	t.Parallel()

	samples := make([]int, 20000)
	for i := range samples {
		samples[i] = i
	}
	src, reopens := newTestSource(32, 2, samples)

	if err := src.SeekFrame(6000); err != nil {
		t.Fatalf("SeekFrame() error = %v", err)
	}
	if *reopens != 1 {
		t.Errorf("reopens = %d, want 1", *reopens)
	}

	buf := make([]float32, 2)
	if _, err := src.ReadSamples(buf); err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if want := float32(12000) / 2147483648.0; buf[0] != want {
		t.Errorf("first sample after seek = %v, want %v", buf[0], want)
	}

	if err := src.SeekFrame(0); err != nil {
		t.Fatalf("SeekFrame(0) error = %v", err)
	}
	if _, err := src.ReadSamples(buf); err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if buf[0] != 0 {
		t.Errorf("first sample after rewind = %v, want 0", buf[0])
	}
}

func TestSource_SeekFramePastEnd(t *testing.T) {
	t.Parallel()

	src, _ := newTestSource(16, 1, []int{1, 2, 3, 4})

	if err := src.SeekFrame(100); err != nil {
		t.Fatalf("SeekFrame() error = %v", err)
	}
	n, err := src.ReadSamples(make([]float32, 4))
	if n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() past end = %d, %v, want 0, io.EOF", n, err)
	}
}

func TestSource_SeekFrameReopenError(t *testing.T) {
	t.Parallel()

	src, _ := newTestSource(16, 1, []int{1, 2})
	boom := errors.New("rewind failed")
	src.reopen = func() (aiffReader, error) { return nil, boom }

	if err := src.SeekFrame(1); !errors.Is(err, boom) {
		t.Errorf("SeekFrame() error = %v, want %v", err, boom)
	}
}
