// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	// Close releases any resources.
	Close() error
}

// Seeker is implemented by sources that can reposition their read cursor.
type Seeker interface {
	// SeekFrame moves the read cursor to frame (per-channel sample index).
	SeekFrame(frame int64) error
}

// Lengther is implemented by sources that know their total length.
type Lengther interface {
	// Frames returns the total number of frames, or 0 when unknown.
	Frames() int64
}

// Tagger is implemented by sources that carry textual metadata.
type Tagger interface {
	// Tag returns the value for key (see the Tag* constants) or "".
	Tag(key string) string
}

// SeekableSource is what a file streaming engine needs from a decoder.
type SeekableSource interface {
	Source
	Seeker
	Lengther
}

// Common metadata keys understood by Tagger implementations.
const (
	TagTitle     = "title"
	TagArtist    = "artist"
	TagAlbum     = "album"
	TagComment   = "comment"
	TagDate      = "date"
	TagGenre     = "genre"
	TagCopyright = "copyright"
	TagSoftware  = "software"
	TagTrack     = "track"
)

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// ForPath looks up a decoder by the extension of path and returns it along
// with the format key it was registered under.
func (r *Registry) ForPath(path string) (Decoder, string, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, "", ErrUnknownFormat
	}

	format := strings.ToLower(ext)
	d, ok := r.Get(format)
	if !ok {
		return nil, format, ErrUnknownFormat
	}
	return d, format, nil
}

// Formats lists registered format keys in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	keys := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
