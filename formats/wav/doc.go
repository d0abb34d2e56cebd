// SPDX-License-Identifier: EPL-2.0

// Package wav provides seekable WAV audio file decoding.
//
// It uses github.com/go-audio/wav to validate the RIFF structure, locate
// the data chunk and read the LIST/INFO metadata. Samples are then read
// straight from the data chunk so that any frame can be reached with a
// single seek.
//
// # Supported Formats
//
//   - PCM 8, 16, 24 and 32-bit integer
//   - IEEE float 32-bit
//   - WAVE_FORMAT_EXTENSIBLE carrying integer PCM
//   - Any channel count and sample rate
//
// # Decoding WAV Files
//
//	file, _ := os.Open("audio.wav")
//	src, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	seekable := src.(audio.SeekableSource)
//	_ = seekable.SeekFrame(44100)
//
//	buf := make([]float32, 4096)
//	n, err := seekable.ReadSamples(buf)
//
// Samples are interleaved float32 values in the range [-1.0, 1.0].
//
// # Metadata
//
// The source implements audio.Tagger. INFO fields are mapped to the
// audio.Tag* keys; IPRD is reported as the album.
//
// # Error Handling
//
//   - ErrNotWavFile: the input is not a RIFF/WAVE file
//   - ErrUnsupportedBitDepth: a sample size the decoder cannot convert
//   - ErrUnsupportedEncoding: a compressed format such as ADPCM
//   - ErrUnsupportedWavLayout: no channels or no sample rate
//   - ErrUnsupportedWavChunks: the data chunk could not be found
package wav
