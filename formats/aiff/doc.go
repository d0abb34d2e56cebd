// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files.
//
// # Supported Formats
//
//   - PCM 8, 16, 24 and 32-bit
//   - Mono and multi-channel
//   - Any sample rate
//
// AIFF-C (compressed) files are not supported.
//
// # Seeking
//
// go-audio cannot reposition inside the SSND chunk, so SeekFrame rewinds
// to the start of the file and discards samples up to the target frame.
// Seeking is therefore linear in the target position.
//
// # Error Handling
//
//   - ErrNotAiffFile: the input is not a valid AIFF file
//   - ErrUnsupportedBitDepth: a sample size other than 8, 16, 24 or 32 bits
//   - ErrUnsupportedAiffLayout: the file declares no channels
package aiff
