// SPDX-License-Identifier: EPL-2.0

package audplayer_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ik5/audplayer"
	"github.com/ik5/audplayer/internal/audiotest"
	"github.com/ik5/audplayer/player"
)

// Example probes a file without opening it in an engine.
func Example() {
	dir, err := os.MkdirTemp("", "audplayer")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	if err := audiotest.WriteWAV16(f, 22050, 1, make([]int16, 44100)); err != nil {
		log.Fatal(err)
	}
	f.Close()

	fmt.Printf("%.1fs\n", audplayer.FileDuration(path))
	// Output: 2.0s
}

// Example_engine builds an engine for a 48 kHz device.
func Example_engine() {
	engine, err := audplayer.New(player.Options{OutputRate: 48000})
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	fmt.Println(engine.IsOpen(), engine.PlayState(), engine.Volume())
	// Output: false stopped 1
}
