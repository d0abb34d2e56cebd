// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files.
// go-mp3 always produces 16-bit stereo, so every source reports two
// channels regardless of the file's channel mode.
//
// # Decoding MP3 Files
//
//	file, _ := os.Open("audio.mp3")
//	src, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
//
// # Seeking
//
// When the input is an io.ReadSeeker the source implements
// audio.SeekableSource and Frames reports the decoded length. Streams
// that cannot seek return audio.ErrNotSeekable from SeekFrame.
package mp3
