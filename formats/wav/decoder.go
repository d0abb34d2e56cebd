// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	gowav "github.com/go-audio/wav"
	"github.com/ik5/audplayer/audio"
)

const (
	formatPCM        = 1
	formatIEEEFloat  = 3
	formatExtensible = 0xFFFE
)

type source struct {
	rs         io.ReadSeeker
	sampleRate int
	channels   int
	bitDepth   int
	float      bool

	dataStart  int64
	dataSize   int64
	blockAlign int64
	offset     int64 // byte offset within the data chunk

	buf  []byte
	tags map[string]string
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) Frames() int64   { return s.dataSize / s.blockAlign }
func (s *source) BitDepth() int   { return s.bitDepth }

func (s *source) Tag(key string) string { return s.tags[key] }

func (s *source) SeekFrame(frame int64) error {
	frame = max(0, min(frame, s.Frames()))
	off := frame * s.blockAlign

	if _, err := s.rs.Seek(s.dataStart+off, io.SeekStart); err != nil {
		return fmt.Errorf("wav seek: %w", err)
	}
	s.offset = off
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	frames := int64(len(dst) / s.channels)
	remaining := (s.dataSize - s.offset) / s.blockAlign
	if remaining <= 0 {
		return 0, io.EOF
	}
	frames = min(frames, remaining)
	if frames == 0 {
		return 0, nil
	}

	need := int(frames * s.blockAlign)
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := io.ReadFull(s.rs, s.buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, fmt.Errorf("wav read: %w", err)
	}
	s.offset += int64(n)

	bps := s.bitDepth / 8
	samples := n / bps
	for i := range samples {
		dst[i] = s.decodeSample(s.buf[i*bps : i*bps+bps])
	}

	if samples == 0 {
		return 0, io.EOF
	}
	if s.offset >= s.dataSize {
		return samples, io.EOF
	}
	return samples, nil
}

func (s *source) decodeSample(b []byte) float32 {
	switch s.bitDepth {
	case 8:
		return (float32(b[0]) - 128) / 128.0
	case 16:
		return float32(int16(binary.LittleEndian.Uint16(b))) / 32768.0
	case 24:
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if v&0x800000 != 0 {
			v |= ^0xFFFFFF
		}
		return float32(v) / 8388608.0
	case 32:
		if s.float {
			return math.Float32frombits(binary.LittleEndian.Uint32(b))
		}
		return float32(float64(int32(binary.LittleEndian.Uint32(b))) / 2147483648.0)
	default:
		return 0
	}
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := asReadSeeker(r)
	if err != nil {
		return nil, err
	}

	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("wav decode: %w", err)
	}

	if !gowav.NewDecoder(rs).IsValidFile() {
		return nil, ErrNotWavFile
	}

	tags, err := readTags(rs, start)
	if err != nil {
		return nil, err
	}

	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("wav rewind: %w", err)
	}

	dec := gowav.NewDecoder(rs)
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	if channels < 1 || dec.SampleRate == 0 {
		return nil, ErrUnsupportedWavLayout
	}

	isFloat := false
	switch dec.WavAudioFormat {
	case formatPCM, formatExtensible:
		if bitDepth != 8 && bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
			return nil, ErrUnsupportedBitDepth
		}
	case formatIEEEFloat:
		if bitDepth != 32 {
			return nil, ErrUnsupportedBitDepth
		}
		isFloat = true
	default:
		return nil, ErrUnsupportedEncoding
	}

	dataStart, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("wav data offset: %w", err)
	}

	return &source{
		rs:         rs,
		sampleRate: int(dec.SampleRate),
		channels:   channels,
		bitDepth:   bitDepth,
		float:      isFloat,
		dataStart:  dataStart,
		dataSize:   int64(dec.PCMSize),
		blockAlign: int64(channels * bitDepth / 8),
		buf:        make([]byte, 4096),
		tags:       tags,
	}, nil
}

// readTags collects the LIST/INFO chunk. go-audio reads the whole file to
// find it, so the caller rewinds afterwards.
func readTags(rs io.ReadSeeker, start int64) (map[string]string, error) {
	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("wav tags: %w", err)
	}

	dec := gowav.NewDecoder(rs)
	dec.ReadMetadata()
	tags := make(map[string]string)
	if dec.Metadata == nil {
		return tags, nil
	}

	m := dec.Metadata
	for key, val := range map[string]string{
		audio.TagTitle:     m.Title,
		audio.TagArtist:    m.Artist,
		audio.TagAlbum:     m.Product,
		audio.TagComment:   m.Comments,
		audio.TagDate:      m.CreationDate,
		audio.TagGenre:     m.Genre,
		audio.TagCopyright: m.Copyright,
		audio.TagSoftware:  m.Software,
		audio.TagTrack:     m.TrackNbr,
	} {
		if val != "" {
			tags[key] = val
		}
	}
	return tags, nil
}

func asReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading wav data: %w", err)
	}
	return bytes.NewReader(data), nil
}
