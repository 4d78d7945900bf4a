//go:build !darwin
// +build !darwin

package mididarwin

import (
	"fmt"

	"github.com/leandrodaf/midisampler/sdk/contracts"
)

type DummyMIDIClient struct {
	logger contracts.Logger
}

func NewMIDIClient(options *contracts.ClientOptions) (contracts.ControlChannel, error) {
	options.Logger.Info("Using dummy MIDI client for non-macOS system")
	return &DummyMIDIClient{
		logger: options.Logger,
	}, nil
}

func (m *DummyMIDIClient) ListDevices() ([]contracts.DeviceInfo, error) {
	m.logger.Warn("ListDevices called on dummy MIDI client")
	return nil, fmt.Errorf("%w: CoreMIDI is not available on this platform", contracts.ErrDeviceUnavailable)
}

func (m *DummyMIDIClient) SelectDevice(name string) error {
	m.logger.Warn("SelectDevice called on dummy MIDI client")
	return fmt.Errorf("%w: CoreMIDI is not available on this platform", contracts.ErrDeviceUnavailable)
}

func (m *DummyMIDIClient) NoteOn(note, velocity uint8) error { return m.unavailable() }

func (m *DummyMIDIClient) NoteOff(note uint8) error { return m.unavailable() }

func (m *DummyMIDIClient) ProgramChange(program uint8) error { return m.unavailable() }

func (m *DummyMIDIClient) ControlChange(control, value uint8) error { return m.unavailable() }

func (m *DummyMIDIClient) Stop() error {
	m.logger.Warn("Stop called on dummy MIDI client")
	return nil
}

func (m *DummyMIDIClient) unavailable() error {
	return fmt.Errorf("%w: CoreMIDI is not available on this platform", contracts.ErrControlChannel)
}
