// SPDX-License-Identifier: EPL-2.0

package player

// PlayState is the transport state of an Engine.
type PlayState uint32

const (
	// Stopped renders silence only. Initial and terminal state.
	Stopped PlayState = iota
	// Starting becomes Playing on the next render step.
	Starting
	// Playing drains the double buffer into the output.
	Playing
	// Stopping becomes Stopped on the next render step.
	Stopping
)

func (s PlayState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Playing:
		return "playing"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// SeekState is the handshake between a seek request, the producer and
// the render step. The render step outputs silence unless it is SeekIdle.
type SeekState uint32

const (
	SeekIdle SeekState = iota
	// SeekSeeking asks the producer to drop both buffers and reposition.
	SeekSeeking
	// SeekLoading means the producer is refilling after a reposition.
	SeekLoading
)

func (s SeekState) String() string {
	switch s {
	case SeekIdle:
		return "idle"
	case SeekSeeking:
		return "seeking"
	case SeekLoading:
		return "loading"
	default:
		return "unknown"
	}
}
