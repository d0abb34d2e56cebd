// SPDX-License-Identifier: EPL-2.0

// Package audplayer streams audio files into a real-time render callback
// without gaps.
//
// A background producer decodes the open file, converts it to the output
// sample rate and fills one half of a double buffer while the render step
// plays the other half. Render never blocks, locks or allocates, so it can
// run on an audio device thread.
//
// # Quick Start
//
//	engine, err := audplayer.New(player.Options{OutputRate: 48000})
//	if err != nil {
//	    // Handle error
//	}
//	defer engine.Close()
//
//	if err := engine.Open("song.ogg"); err != nil {
//	    // Handle error
//	}
//	engine.Play()
//
//	// On the audio thread, once per period:
//	engine.Render(left, right, events)
//
// # Supported Formats
//
//   - WAV (PCM 8/16/24/32-bit, float 32-bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF (PCM 8/16/24/32-bit) via formats/aiff
//
// # Control
//
// Besides the methods on player.Engine, Render accepts MIDI control
// changes on any channel:
//
//   - CC 7 sets the volume to value/100
//   - CC 68 plays when the value is above 63 and stops otherwise
//   - CC 69 enables looping when the value is above 63
//
// # Outputs
//
// The output package drives Render from an audio device through
// github.com/ebitengine/oto/v3, or from a timer for headless use.
//
// See the individual subpackages for more detailed documentation.
package audplayer
