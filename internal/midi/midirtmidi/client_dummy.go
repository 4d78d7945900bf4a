//go:build !linux
// +build !linux

package midirtmidi

import (
	"fmt"

	"github.com/leandrodaf/midisampler/sdk/contracts"
)

type dummyMIDIClient struct {
	logger contracts.Logger
}

// NewMIDIClient initializes a dummy MIDI client for non-Linux systems.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ControlChannel, error) {
	options.Logger.Info("Using dummy MIDI client for non-Linux system")
	return &dummyMIDIClient{logger: options.Logger}, nil
}

func (m *dummyMIDIClient) ListDevices() ([]contracts.DeviceInfo, error) {
	m.logger.Warn("ListDevices called on dummy MIDI client")
	return nil, fmt.Errorf("%w: rtmidi is not available on this platform", contracts.ErrDeviceUnavailable)
}

func (m *dummyMIDIClient) SelectDevice(name string) error {
	m.logger.Warn("SelectDevice called on dummy MIDI client")
	return fmt.Errorf("%w: rtmidi is not available on this platform", contracts.ErrDeviceUnavailable)
}

func (m *dummyMIDIClient) NoteOn(note, velocity uint8) error { return m.unavailable() }

func (m *dummyMIDIClient) NoteOff(note uint8) error { return m.unavailable() }

func (m *dummyMIDIClient) ProgramChange(program uint8) error { return m.unavailable() }

func (m *dummyMIDIClient) ControlChange(control, value uint8) error { return m.unavailable() }

func (m *dummyMIDIClient) Stop() error { return nil }

func (m *dummyMIDIClient) unavailable() error {
	return fmt.Errorf("%w: rtmidi is not available on this platform", contracts.ErrControlChannel)
}
