// SPDX-License-Identifier: EPL-2.0

// Package player streams a local audio file into a real-time render step
// without gaps.
//
// An Engine owns a pair of buffers. A background producer goroutine reads
// the open file through a Source, converts it to the output rate and
// fills whichever buffer is empty. Render, called once per output period
// by the audio transport, drains the active buffer into two output
// channels and flips to the other buffer when it runs out. The two sides
// hand buffers over through atomic flags only; Render never blocks.
//
// Transport (play, stop, loop, seek, volume) is driven through the
// Engine's methods or by MIDI control-change messages passed to Render.
// The Engine also bounds looping to a range of the file, routes any file
// channel (or a mix of the stereo pairs) to each output, and reports
// changed settings to Options.Notify from the producer goroutine.
package player
