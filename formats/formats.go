// SPDX-License-Identifier: EPL-2.0

// Package formats wires every decoder in this module into a single
// audio.Registry keyed by file extension.
package formats

import (
	"github.com/ik5/audplayer/audio"
	"github.com/ik5/audplayer/formats/aiff"
	"github.com/ik5/audplayer/formats/mp3"
	"github.com/ik5/audplayer/formats/vorbis"
	"github.com/ik5/audplayer/formats/wav"
)

// NewRegistry returns a registry with all built-in decoders registered
// under their usual file extensions.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()

	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})

	return reg
}
