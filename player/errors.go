// SPDX-License-Identifier: EPL-2.0

package player

import "errors"

var (
	// ErrInvalidStream is returned when a decoded file reports no channels
	// or no sample rate.
	ErrInvalidStream = errors.New("invalid stream parameters")
	// ErrInvalidOutputRate is returned for a non-positive output rate.
	ErrInvalidOutputRate = errors.New("invalid output sample rate")
	// ErrBufferTooSmall is returned when a buffer cannot hold a single
	// converted read of the file.
	ErrBufferTooSmall = errors.New("buffer too small for stream")
	// ErrInvalidBufferSize is returned by New for a non-positive buffer size.
	ErrInvalidBufferSize = errors.New("invalid buffer size")
	// ErrNoRegistry is returned by New when no decoder registry is given.
	ErrNoRegistry = errors.New("no decoder registry")
)
