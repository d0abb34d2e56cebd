// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ik5/audplayer/audio"
)

// StreamInfo describes the open file. It is captured once when the file
// is opened and does not change until it is closed.
type StreamInfo struct {
	Filename   string
	Format     string // registry key, e.g. "wav"
	SampleRate int
	Channels   int
	Frames     int64
}

// Duration returns the length in seconds, or 0 when unknown.
func (i StreamInfo) Duration() float64 {
	if i.SampleRate <= 0 {
		return 0
	}
	return float64(i.Frames) / float64(i.SampleRate)
}

// Source adapts a decoder to the producer: it reads raw interleaved
// frames, converts them to the output rate when needed, and seeks. The
// converter keeps its state across fills and is reset only by Seek.
type Source struct {
	dec    audio.SeekableSource
	closer io.Closer
	info   StreamInfo

	ratio     float64
	conv      *audio.Converter
	scratch   []float32
	maxFrames int
	eof       bool
	pos       int64 // source frame of the next read
}

// OpenSource opens path, picks a decoder from reg by extension and
// prepares conversion to outputRate. capacity is the size, in samples, of
// the buffers the source will fill.
func OpenSource(path string, reg *audio.Registry, outputRate int, quality audio.Quality, capacity int) (*Source, error) {
	dec, format, f, err := decodeFile(path, reg)
	if err != nil {
		return nil, err
	}

	info := StreamInfo{
		Filename:   path,
		Format:     format,
		SampleRate: dec.SampleRate(),
		Channels:   dec.Channels(),
		Frames:     dec.Frames(),
	}

	s, err := NewSource(dec, info, outputRate, quality, capacity)
	if err != nil {
		_ = dec.Close()
		_ = f.Close()
		return nil, err
	}
	s.closer = f
	return s, nil
}

// NewSource wraps an already decoded stream.
func NewSource(dec audio.SeekableSource, info StreamInfo, outputRate int, quality audio.Quality, capacity int) (*Source, error) {
	if info.SampleRate <= 0 || info.Channels < 1 {
		return nil, ErrInvalidStream
	}
	if outputRate <= 0 {
		return nil, ErrInvalidOutputRate
	}

	s := &Source{
		dec:   dec,
		info:  info,
		ratio: float64(outputRate) / float64(info.SampleRate),
	}
	s.maxFrames = maxReadFrames(capacity, info.Channels, s.ratio)
	if s.maxFrames < 1 {
		return nil, ErrBufferTooSmall
	}

	if s.ratio != 1 {
		conv, err := audio.NewConverter(info.Channels, quality)
		if err != nil {
			return nil, fmt.Errorf("converter: %w", err)
		}
		s.conv = conv
	}
	s.scratch = make([]float32, s.maxFrames*info.Channels)

	return s, nil
}

// maxReadFrames sizes a read so its converted output cannot overflow a
// buffer of capacity samples.
func maxReadFrames(capacity, channels int, ratio float64) int {
	n := capacity
	if ratio > 1 {
		n = int(float64(capacity) / ratio)
	}
	n /= channels
	if ratio != 1 {
		n -= audio.ConverterHeadroom
	}
	return n
}

func (s *Source) Info() StreamInfo { return s.info }
func (s *Source) Ratio() float64   { return s.ratio }
func (s *Source) MaxFrames() int   { return s.maxFrames }

// ReadPos returns the source frame the next read starts at.
func (s *Source) ReadPos() int64 { return s.pos }

// ReadFrames reads up to maxFrames raw frames at the source rate. The
// returned slice aliases internal storage and is valid until the next
// call. n is 0 at the end of the stream.
func (s *Source) ReadFrames(maxFrames int) ([]float32, int, error) {
	maxFrames = min(maxFrames, s.maxFrames)
	n, err := s.readInto(s.scratch[:maxFrames*s.info.Channels])
	return s.scratch[:n*s.info.Channels], n, err
}

func (s *Source) readInto(dst []float32) (int, error) {
	if s.eof {
		return 0, nil
	}

	ch := s.info.Channels
	read := 0
	for read < len(dst) {
		n, err := s.dec.ReadSamples(dst[read:])
		read += n
		if errors.Is(err, io.EOF) {
			s.eof = true
			break
		}
		if err != nil {
			s.pos += int64(read / ch)
			return read / ch, fmt.Errorf("read %s: %w", s.info.Filename, err)
		}
		if n == 0 {
			break
		}
	}
	s.pos += int64(read / ch)
	return read / ch, nil
}

// Fill reads the next block and writes it, converted, into dst. It
// returns the number of output frames written; 0 means the source is
// exhausted.
func (s *Source) Fill(dst []float32) (int, error) { return s.FillUntil(dst, -1) }

// FillUntil is Fill with reads stopping at source frame end. A negative
// end reads to the end of the stream. Reaching end flushes the converter
// as the end of the stream does.
func (s *Source) FillUntil(dst []float32, end int64) (int, error) {
	ch := s.info.Channels
	frames := s.maxFrames
	if end >= 0 {
		frames = int(max(0, min(int64(frames), end-s.pos)))
	}

	if s.conv == nil {
		limit := min(frames*ch, len(dst)-len(dst)%ch)
		return s.readInto(dst[:limit])
	}

	raw, n, err := s.ReadFrames(frames)
	if err != nil && n == 0 {
		return 0, err
	}

	limit := len(dst) - len(dst)%ch
	out, cerr := s.conv.Process(raw, dst[:limit], s.ratio, n < s.maxFrames)
	if cerr != nil {
		return 0, fmt.Errorf("convert: %w", cerr)
	}
	return out, err
}

// Seek moves to frame, in source frames, and resets the converter.
func (s *Source) Seek(frame int64) error {
	if err := s.dec.SeekFrame(frame); err != nil {
		return fmt.Errorf("seek %s: %w", s.info.Filename, err)
	}
	s.eof = false
	s.pos = max(0, frame)
	if s.info.Frames > 0 {
		s.pos = min(s.pos, s.info.Frames)
	}
	if s.conv != nil {
		s.conv.Reset()
	}
	return nil
}

// Close releases the decoder and the underlying file.
func (s *Source) Close() error {
	err := s.dec.Close()
	if s.closer != nil {
		err = errors.Join(err, s.closer.Close())
	}
	return err
}

func decodeFile(path string, reg *audio.Registry) (audio.SeekableSource, string, *os.File, error) {
	decoder, format, err := reg.ForPath(path)
	if err != nil {
		return nil, format, nil, fmt.Errorf("open %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, format, nil, fmt.Errorf("open %s: %w", path, err)
	}

	src, err := decoder.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, format, nil, fmt.Errorf("decode %s: %w", path, err)
	}

	seekable, ok := src.(audio.SeekableSource)
	if !ok {
		_ = src.Close()
		_ = f.Close()
		return nil, format, nil, fmt.Errorf("open %s: %w", path, audio.ErrNotSeekable)
	}
	return seekable, format, f, nil
}

// FileDuration probes path and returns its length in seconds without
// touching any engine. It returns 0 when the file cannot be decoded.
func FileDuration(path string, reg *audio.Registry) float64 {
	dec, format, f, err := decodeFile(path, reg)
	if err != nil {
		return 0
	}
	defer f.Close()
	defer dec.Close()

	return StreamInfo{Format: format, SampleRate: dec.SampleRate(), Frames: dec.Frames()}.Duration()
}

// FileInfo returns the metadata tag key of path (see the audio.Tag*
// constants), or "" when the file or the tag is missing.
func FileInfo(path, key string, reg *audio.Registry) string {
	dec, _, f, err := decodeFile(path, reg)
	if err != nil {
		return ""
	}
	defer f.Close()
	defer dec.Close()

	if t, ok := dec.(audio.Tagger); ok {
		return t.Tag(key)
	}
	return ""
}
