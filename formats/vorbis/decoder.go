// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"
	"strings"

	"github.com/ik5/audplayer/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	// Read returns the number of float32 values written, not frames.
	Read([]float32) (int, error)
	Length() int64
	SetPosition(pos int64) error
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
	tags       map[string]string
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) Frames() int64   { return s.dec.Length() }

func (s *source) Tag(key string) string { return s.tags[key] }

func (s *source) SeekFrame(frame int64) error {
	if length := s.dec.Length(); length > 0 {
		frame = min(frame, length)
	}
	if err := s.dec.SetPosition(max(frame, 0)); err != nil {
		return fmt.Errorf("vorbis seek: %w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	want := (len(dst) / s.channels) * s.channels
	if want == 0 {
		return 0, nil
	}

	read := 0
	for read < want {
		n, err := s.dec.Read(dst[read:want])
		read += n
		if err != nil {
			if read == 0 {
				return 0, err
			}
			return read, err
		}
		if n == 0 {
			break
		}
	}

	return read, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
		tags:       parseComments(dec.CommentHeader().Comments),
	}, nil
}

// parseComments turns "KEY=value" vorbis comments into a lower-case keyed
// map. The first occurrence of a key wins.
func parseComments(comments []string) map[string]string {
	tags := make(map[string]string, len(comments))
	for _, c := range comments {
		key, val, ok := strings.Cut(c, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(key)
		switch key {
		case "tracknumber":
			key = audio.TagTrack
		case "description":
			key = audio.TagComment
		}
		if _, dup := tags[key]; !dup {
			tags[key] = val
		}
	}
	return tags
}
