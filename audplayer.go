// SPDX-License-Identifier: EPL-2.0

package audplayer

import (
	"github.com/ik5/audplayer/formats"
	"github.com/ik5/audplayer/player"
)

// New builds an engine that can open every built-in format. A nil
// opts.Registry is replaced with formats.NewRegistry; other zero fields
// take the player defaults.
func New(opts player.Options) (*player.Engine, error) {
	if opts.Registry == nil {
		opts.Registry = formats.NewRegistry()
	}
	return player.New(opts)
}

// FileDuration returns the length of path in seconds, or 0 when it cannot
// be decoded. No engine is needed.
func FileDuration(path string) float64 {
	return player.FileDuration(path, formats.NewRegistry())
}

// FileInfo returns the metadata tag key of path (see the audio.Tag*
// constants), or "".
func FileInfo(path, key string) string {
	return player.FileInfo(path, key, formats.NewRegistry())
}
