// Package midiwire holds what the control channel backends share: raw short
// message encoding for drivers that only accept bytes, output port name
// matching and the all-notes-off sweep.
package midiwire

import (
	"fmt"
	"strings"

	"github.com/leandrodaf/midisampler/sdk/contracts"
)

// Voice implements the send half of contracts.ControlChannel for a transport
// that delivers raw short messages.
type Voice struct {
	Channel uint8                  // MIDI channel (0-15).
	Send    func(msg []byte) error // Delivers one short message.
}

// NoteOn sends a Note On message.
func (v Voice) NoteOn(note, velocity uint8) error {
	return v.send(contracts.NoteOn, note, velocity)
}

// NoteOff sends a Note Off message with zero release velocity.
func (v Voice) NoteOff(note uint8) error {
	return v.send(contracts.NoteOff, note, 0)
}

// ProgramChange sends a Program Change message.
func (v Voice) ProgramChange(program uint8) error {
	if program > contracts.MaxDataValue {
		return fmt.Errorf("%w: program %d out of range", contracts.ErrControlChannel, program)
	}
	return v.deliver([]byte{Status(contracts.ProgramChange, v.Channel), program})
}

// ControlChange sends a Control Change message.
func (v Voice) ControlChange(control, value uint8) error {
	return v.send(contracts.ControlChange, control, value)
}

func (v Voice) send(cmd contracts.MIDICommand, d1, d2 uint8) error {
	if d1 > contracts.MaxDataValue || d2 > contracts.MaxDataValue {
		return fmt.Errorf("%w: data bytes %d/%d out of range", contracts.ErrControlChannel, d1, d2)
	}
	return v.deliver([]byte{Status(cmd, v.Channel), d1, d2})
}

func (v Voice) deliver(msg []byte) error {
	if v.Send == nil {
		return fmt.Errorf("%w: no output port selected", contracts.ErrControlChannel)
	}
	if err := v.Send(msg); err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrControlChannel, err)
	}
	return nil
}

// Status builds the status byte for cmd on channel.
func Status(cmd contracts.MIDICommand, channel uint8) byte {
	return byte(cmd) | (channel & 0x0F)
}

// Pack packs a short message into the little-endian DWORD layout used by winmm.
func Pack(msg []byte) uint32 {
	var dw uint32
	for i, b := range msg {
		if i > 2 {
			break
		}
		dw |= uint32(b) << (8 * i)
	}
	return dw
}

// MatchName picks the device whose name equals want, falling back to a
// case-insensitive substring match. It returns -1 when nothing matches.
func MatchName(devices []contracts.DeviceInfo, want string) int {
	for i, d := range devices {
		if d.Name == want {
			return i
		}
	}
	lw := strings.ToLower(want)
	for i, d := range devices {
		if lw != "" && strings.Contains(strings.ToLower(d.Name), lw) {
			return i
		}
	}
	return -1
}
