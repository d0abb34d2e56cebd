// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize  = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat   = errors.New("no decoder registered for format")
	ErrNotSeekable     = errors.New("source does not support seeking")
	ErrInvalidQuality  = errors.New("conversion quality out of range")
	ErrInvalidRatio    = errors.New("conversion ratio must be positive")
	ErrInvalidChannels = errors.New("channel count must be at least 1")
)
