//go:build linux
// +build linux

package midirtmidi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midisampler/internal/midi/midiwire"
	"github.com/leandrodaf/midisampler/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// ErrNoOutputSelected is returned when a message is sent before SelectDevice succeeded.
var ErrNoOutputSelected = errors.New("no MIDI output selected")

// ClientMid sends MIDI through the rtmidi driver (ALSA on Linux).
type ClientMid struct {
	logger   contracts.Logger
	drv      *rtmididrv.Driver
	out      drivers.Out
	sendFn   func(midi.Message) error
	channel  uint8
	mu       sync.Mutex
	stopOnce sync.Once
}

// NewMIDIClient initialises the rtmidi driver.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ControlChannel, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("%w: rtmididrv: %v", contracts.ErrDeviceUnavailable, err)
	}
	options.Logger.Info("MIDI client successfully created")
	return &ClientMid{
		logger:  options.Logger,
		drv:     drv,
		channel: options.ControlConfig.Channel,
	}, nil
}

// ListDevices lists the rtmidi output ports.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	outs, err := m.drv.Outs()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI outputs: %w", err)
	}
	devices := make([]contracts.DeviceInfo, len(outs))
	for i, out := range outs {
		devices[i] = contracts.DeviceInfo{ID: out.Number(), Name: out.String()}
	}
	return devices, nil
}

// SelectDevice opens the output port whose name matches name.
func (m *ClientMid) SelectDevice(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	outs, err := m.drv.Outs()
	if err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrDeviceUnavailable, err)
	}
	devices := make([]contracts.DeviceInfo, len(outs))
	for i, out := range outs {
		devices[i] = contracts.DeviceInfo{ID: i, Name: out.String()}
	}
	idx := midiwire.MatchName(devices, name)
	if idx < 0 {
		m.logger.Error("MIDI output not found", m.logger.Field().String("deviceName", name))
		return fmt.Errorf("%w: MIDI output %q not found", contracts.ErrDeviceUnavailable, name)
	}

	m.closeOut()
	out := outs[idx]
	if err := out.Open(); err != nil {
		return fmt.Errorf("%w: open %q: %v", contracts.ErrDeviceUnavailable, out.String(), err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: %v", contracts.ErrDeviceUnavailable, err)
	}

	m.out = out
	m.sendFn = send
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", out.Number()),
		m.logger.Field().String("deviceName", out.String()))
	return nil
}

// NoteOn sends a Note On message.
func (m *ClientMid) NoteOn(note, velocity uint8) error {
	if note > contracts.MaxDataValue || velocity > contracts.MaxDataValue {
		return fmt.Errorf("%w: note %d velocity %d out of range", contracts.ErrControlChannel, note, velocity)
	}
	return m.send(midi.NoteOn(m.channel, note, velocity))
}

// NoteOff sends a Note Off message.
func (m *ClientMid) NoteOff(note uint8) error {
	if note > contracts.MaxDataValue {
		return fmt.Errorf("%w: note %d out of range", contracts.ErrControlChannel, note)
	}
	return m.send(midi.NoteOff(m.channel, note))
}

// ProgramChange sends a Program Change message.
func (m *ClientMid) ProgramChange(program uint8) error {
	if program > contracts.MaxDataValue {
		return fmt.Errorf("%w: program %d out of range", contracts.ErrControlChannel, program)
	}
	return m.send(midi.ProgramChange(m.channel, program))
}

// ControlChange sends a Control Change message.
func (m *ClientMid) ControlChange(control, value uint8) error {
	if control > contracts.MaxDataValue || value > contracts.MaxDataValue {
		return fmt.Errorf("%w: control %d value %d out of range", contracts.ErrControlChannel, control, value)
	}
	return m.send(midi.ControlChange(m.channel, control, value))
}

func (m *ClientMid) send(msg midi.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendFn == nil {
		return fmt.Errorf("%w: %w", contracts.ErrControlChannel, ErrNoOutputSelected)
	}
	if err := m.sendFn(msg); err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrControlChannel, err)
	}
	return nil
}

// Stop closes the output port and the driver. Executes only once.
func (m *ClientMid) Stop() error {
	var err error
	m.stopOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.closeOut()
		err = m.drv.Close()
		m.logger.Info("MIDI output closed")
	})
	return err
}

func (m *ClientMid) closeOut() {
	if m.out != nil {
		_ = m.out.Close()
		m.out = nil
	}
	m.sendFn = nil
}
