package audplayer

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/ik5/audplayer/audio"
	"github.com/ik5/audplayer/internal/audiotest"
	"github.com/ik5/audplayer/player"
)

func TestNew_DefaultRegistry(t *testing.T) {
	t.Parallel()

	e, err := New(player.Options{OutputRate: 48000})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	for _, f := range []string{"wav", "mp3", "ogg", "aiff"} {
		if !slices.Contains(e.Formats(), f) {
			t.Errorf("Formats() = %v, missing %q", e.Formats(), f)
		}
	}
}

func TestNew_KeepsRegistry(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	e, err := New(player.Options{OutputRate: 48000, Registry: reg})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(e.Formats()) != 0 {
		t.Errorf("Formats() = %v, want the empty registry passed in", e.Formats())
	}
}

func TestNew_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := New(player.Options{}); !errors.Is(err, player.ErrInvalidOutputRate) {
		t.Errorf("New() error = %v, want ErrInvalidOutputRate", err)
	}
}

func TestProbes(t *testing.T) {
	t.Parallel()

	path := audiotest.TempWAV(t, "probe.wav", 8000, 2, audiotest.RampPCM16(4000, 2))

	if got := FileDuration(path); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("FileDuration() = %v, want 0.5", got)
	}
	if got := FileDuration(path + ".missing"); got != 0 {
		t.Errorf("FileDuration(missing) = %v, want 0", got)
	}
	if got := FileInfo(path, audio.TagTitle); got != "" {
		t.Errorf("FileInfo(title) = %q, want empty", got)
	}
}
