// SPDX-License-Identifier: EPL-2.0

// Package midi carries the small real-time control vocabulary the player
// reacts to: raw three-byte channel messages and a lock-free queue that
// moves them from a non real-time sender into the render period.
package midi

// Controller numbers understood by the player.
const (
	ControllerVolume = 7
	ControllerPlay   = 68
	ControllerLoop   = 69
)

const statusControlChange = 0xB0

// Message is a raw three-byte MIDI channel message.
type Message [3]byte

// ControlChange builds a control-change message on channel (0-15).
func ControlChange(channel, controller, value byte) Message {
	return Message{statusControlChange | channel&0x0F, controller & 0x7F, value & 0x7F}
}

// IsControlChange reports whether m belongs to the control-change category,
// on any channel.
func (m Message) IsControlChange() bool { return m[0]&0xF0 == statusControlChange }

func (m Message) Channel() byte    { return m[0] & 0x0F }
func (m Message) Controller() byte { return m[1] }
func (m Message) Value() byte      { return m[2] }

// Switch reports the on/off reading of a switch controller (value > 63).
func (m Message) Switch() bool { return m[2] > 63 }
