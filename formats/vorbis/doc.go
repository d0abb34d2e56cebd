// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis to decode Ogg Vorbis
// files. Samples are interleaved:
//
//	[L0, R0, L1, R1, L2, R2, ...]
//
// # Seeking
//
// SeekFrame uses the granule positions of the Ogg pages and needs the
// input to be an io.ReadSeeker, which an *os.File is.
//
// # Metadata
//
// Vorbis comments are exposed through audio.Tagger with lower-cased
// keys. TRACKNUMBER maps to audio.TagTrack and DESCRIPTION to
// audio.TagComment.
package vorbis
