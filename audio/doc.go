// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decoding and conversion primitives the
// player streams from.
//
// This package contains:
//   - Source and its optional capabilities (Seeker, Lengther, Tagger)
//   - Converter for streaming sample rate conversion
//   - Registry for mapping file extensions to decoders
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    Close() error
//	}
//
// Decoders that can reposition and report their length implement
// SeekableSource, which is what the player requires.
//
// # Conversion
//
// A Converter turns blocks of interleaved frames at one rate into blocks
// at another. Its state survives between Process calls, so a stream cut
// into arbitrary blocks converts to the same signal as one long block:
//
//	conv, _ := audio.NewConverter(2, audio.QualityBest)
//	n, err := conv.Process(in, out, 48000.0/44100.0, false)
//
// Call Reset after the upstream source seeks. Quality tiers keep the
// libsamplerate numbering: best, medium, fastest, zero-order-hold and
// linear. A single call may emit up to ConverterHeadroom frames more
// than len(in)/channels*ratio.
//
// # Format Registry
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, format, err := registry.ForPath("song.WAV")
//
// Keys are case-insensitive.
//
// # Sample Format
//
// Audio samples are represented as float32 in the range [-1.0, 1.0]:
//   - 0.0 represents silence
//   - 1.0 represents maximum positive amplitude
//   - -1.0 represents maximum negative amplitude
//
// Multi-channel audio is interleaved: [L0, R0, L1, R1, ...].
package audio
