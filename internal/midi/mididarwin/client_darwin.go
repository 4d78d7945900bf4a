//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midisampler/internal/midi/midiwire"
	"github.com/leandrodaf/midisampler/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for MIDI connection and handling issues.
var (
	ErrNoMIDIDevices       = errors.New("no MIDI destinations found")
	ErrCreateOutputPort    = errors.New("error creating output port")
	ErrDestinationNotFound = errors.New("MIDI destination not found")
)

// ClientMid sends MIDI to a CoreMIDI destination on Darwin (macOS) systems.
type ClientMid struct {
	midiwire.Voice

	logger      contracts.Logger
	client      coremidi.Client       // CoreMIDI client instance for MIDI operations.
	outputPort  coremidi.OutputPort   // Output port messages are sent through.
	destination *coremidi.Destination // Selected destination; nil until SelectDevice.
	mu          sync.Mutex            // Guards destination and port state.
	stopOnce    sync.Once             // Ensures Stop() is executed only once.
}

// NewMIDIClient initializes a CoreMIDI client and output port.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ControlChannel, error) {
	client, err := coremidi.NewClient(options.ControlConfig.ClientName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrDeviceUnavailable, err)
	}
	port, err := coremidi.NewOutputPort(client, "Output Port")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateOutputPort, err)
	}
	options.Logger.Info("MIDI client successfully created")

	m := &ClientMid{
		logger:     options.Logger,
		client:     client,
		outputPort: port,
	}
	m.Voice = midiwire.Voice{Channel: options.ControlConfig.Channel, Send: m.send}
	return m, nil
}

// ListDevices retrieves the available CoreMIDI destinations.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI destinations: %w", err)
	}
	if len(destinations) == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(destinations))
	for i, destination := range destinations {
		entity := destination.Entity()
		devices[i] = contracts.DeviceInfo{
			ID:           i,
			Name:         destination.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice picks the destination whose name matches name.
func (m *ClientMid) SelectDevice(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrDeviceUnavailable, err)
	}
	devices := make([]contracts.DeviceInfo, len(destinations))
	for i, destination := range destinations {
		devices[i] = contracts.DeviceInfo{ID: i, Name: destination.Name()}
	}
	idx := midiwire.MatchName(devices, name)
	if idx < 0 {
		m.logger.Error(ErrDestinationNotFound.Error(), m.logger.Field().String("deviceName", name))
		return fmt.Errorf("%w: %w %q", contracts.ErrDeviceUnavailable, ErrDestinationNotFound, name)
	}

	destination := destinations[idx]
	m.destination = &destination
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", idx),
		m.logger.Field().String("deviceName", destination.Name()))
	return nil
}

func (m *ClientMid) send(msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.destination == nil {
		return errors.New("no destination selected")
	}
	packet := coremidi.NewPacket(msg, 0)
	return packet.Send(&m.outputPort, m.destination)
}

// Stop forgets the selected destination. Executes only once.
func (m *ClientMid) Stop() error {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.destination = nil
		m.logger.Info("MIDI output stopped")
	})
	return nil
}
