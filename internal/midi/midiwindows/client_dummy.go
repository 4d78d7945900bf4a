//go:build !windows
// +build !windows

package midiwindows

import (
	"fmt"

	"github.com/leandrodaf/midisampler/sdk/contracts"
)

type dummyMIDIClient struct {
	logger contracts.Logger
}

// NewMIDIClient initializes a dummy MIDI client for non-Windows systems.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ControlChannel, error) {
	options.Logger.Info("Using dummy MIDI client for non-Windows system")
	return &dummyMIDIClient{
		logger: options.Logger,
	}, nil
}

// ListDevices logs a warning and returns an error indicating that winmm is unavailable on this platform.
func (m *dummyMIDIClient) ListDevices() ([]contracts.DeviceInfo, error) {
	m.logger.Warn("ListDevices called on dummy MIDI client")
	return nil, fmt.Errorf("%w: winmm is not available on this platform", contracts.ErrDeviceUnavailable)
}

// SelectDevice logs a warning and returns ErrDeviceUnavailable.
func (m *dummyMIDIClient) SelectDevice(name string) error {
	m.logger.Warn("SelectDevice called on dummy MIDI client")
	return fmt.Errorf("%w: winmm is not available on this platform", contracts.ErrDeviceUnavailable)
}

// NoteOn always fails on the dummy client.
func (m *dummyMIDIClient) NoteOn(note, velocity uint8) error { return m.unavailable() }

// NoteOff always fails on the dummy client.
func (m *dummyMIDIClient) NoteOff(note uint8) error { return m.unavailable() }

// ProgramChange always fails on the dummy client.
func (m *dummyMIDIClient) ProgramChange(program uint8) error { return m.unavailable() }

// ControlChange always fails on the dummy client.
func (m *dummyMIDIClient) ControlChange(control, value uint8) error { return m.unavailable() }

// Stop logs a warning indicating that Stop was called on the dummy MIDI client.
func (m *dummyMIDIClient) Stop() error {
	m.logger.Warn("Stop called on dummy MIDI client")
	return nil
}

func (m *dummyMIDIClient) unavailable() error {
	return fmt.Errorf("%w: winmm is not available on this platform", contracts.ErrControlChannel)
}
