package contracts

// MIDICommand is the status nibble of a MIDI channel voice message.
type MIDICommand byte

const (
	// NoteOff is the MIDI command for a Note Off event (0x80).
	NoteOff MIDICommand = 0x80
	// NoteOn is the MIDI command for a Note On event (0x90).
	NoteOn MIDICommand = 0x90
	// ControlChange is the MIDI command for a Control Change event (0xB0).
	ControlChange MIDICommand = 0xB0
	// ProgramChange is the MIDI command for a Program Change event (0xC0).
	ProgramChange MIDICommand = 0xC0
)

// MaxDataValue is the largest value a MIDI data byte can carry.
const MaxDataValue = 127

// ControlChannel sends channel voice messages to the instrument being sampled.
//
// Sends are fire-and-forget: a failed send returns an error wrapping
// ErrControlChannel and the caller decides whether to continue.
type ControlChannel interface {
	ListDevices() ([]DeviceInfo, error)       // Lists the MIDI output ports.
	SelectDevice(name string) error           // Opens the output port matching name.
	NoteOn(note, velocity uint8) error        // Starts a note.
	NoteOff(note uint8) error                 // Releases a note.
	ProgramChange(program uint8) error        // Selects a preset on the instrument.
	ControlChange(control, value uint8) error // Sets a synth parameter.
	Stop() error                              // Closes the port and releases the driver.
}
