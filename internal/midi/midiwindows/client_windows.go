//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/leandrodaf/midisampler/internal/midi/midiwire"
	"github.com/leandrodaf/midisampler/sdk/contracts"
	"golang.org/x/sys/windows"
)

// Type definitions for MIDI handles
type HMIDIOUT windows.Handle

// CALLBACK_NULL opens the device without a status callback.
const CALLBACK_NULL = 0x00000000

// Struct representing MIDI output device capabilities (MIDIOUTCAPSW)
type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

// ClientMid sends MIDI through winmm on Windows
type ClientMid struct {
	midiwire.Voice

	logger contracts.Logger
	handle HMIDIOUT
	open   bool
	mu     sync.Mutex
}

// Load the winmm.dll library and required functions
var (
	winmm                 = windows.NewLazySystemDLL("winmm.dll")
	procMidiOutGetNumDevs = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps = winmm.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen       = winmm.NewProc("midiOutOpen")
	procMidiOutShortMsg   = winmm.NewProc("midiOutShortMsg")
	procMidiOutReset      = winmm.NewProc("midiOutReset")
	procMidiOutClose      = winmm.NewProc("midiOutClose")
)

// NewMIDIClient creates a MIDI output client for Windows
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ControlChannel, error) {
	options.Logger.Info("MIDI client created for Windows")

	m := &ClientMid{logger: options.Logger}
	m.Voice = midiwire.Voice{Channel: options.ControlConfig.Channel, Send: m.send}
	return m, nil
}

// ListDevices lists the available MIDI output devices
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiOutGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		m.logger.Warn("No MIDI output devices found")
		return nil, errors.New("no MIDI output devices found")
	}

	devices := make([]contracts.DeviceInfo, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiOutCaps
		r1, _, _ := procMidiOutGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			m.logger.Warn(fmt.Sprintf("Failed to get information for MIDI device %d", i))
			continue
		}
		deviceName := windows.UTF16ToString(caps.szPname[:])
		devices = append(devices, contracts.DeviceInfo{
			ID:           int(i),
			Name:         deviceName,
			EntityName:   deviceName,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		})
	}
	return devices, nil
}

// SelectDevice opens the output device whose name matches name
func (m *ClientMid) SelectDevice(name string) error {
	devices, err := m.ListDevices()
	if err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrDeviceUnavailable, err)
	}
	idx := midiwire.MatchName(devices, name)
	if idx < 0 {
		return fmt.Errorf("%w: MIDI output %q not found", contracts.ErrDeviceUnavailable, name)
	}
	deviceID := devices[idx].ID

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.open {
		if err := m.closeDevice(); err != nil {
			return fmt.Errorf("failed to close previous MIDI output: %w", err)
		}
	}

	r1, _, err := procMidiOutOpen.Call(
		uintptr(unsafe.Pointer(&m.handle)),
		uintptr(deviceID),
		0,
		0,
		uintptr(CALLBACK_NULL),
	)
	if r1 != 0 {
		m.logger.Error(fmt.Sprintf("Failed to open MIDI device %d: %v", deviceID, err))
		return fmt.Errorf("%w: failed to open MIDI device %d: %v", contracts.ErrDeviceUnavailable, deviceID, err)
	}

	m.open = true
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", devices[idx].Name))
	return nil
}

func (m *ClientMid) send(msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return errors.New("no MIDI output device selected")
	}
	r1, _, err := procMidiOutShortMsg.Call(uintptr(m.handle), uintptr(midiwire.Pack(msg)))
	if r1 != 0 {
		return fmt.Errorf("midiOutShortMsg failed (code %d): %v", r1, err)
	}
	return nil
}

// Stop resets and closes the output device
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		m.logger.Warn("No MIDI device is connected")
		return nil
	}
	if err := m.closeDevice(); err != nil {
		return fmt.Errorf("failed to close MIDI output: %w", err)
	}
	m.logger.Info("MIDI output closed")
	return nil
}

// closeDevice silences and releases the device
func (m *ClientMid) closeDevice() error {
	if m.handle == 0 {
		return fmt.Errorf("invalid MIDI device handle")
	}

	if r1, _, err := procMidiOutReset.Call(uintptr(m.handle)); r1 != 0 {
		m.logger.Error(fmt.Sprintf("Failed to reset MIDI output: %v", err))
		return err
	}
	if r1, _, err := procMidiOutClose.Call(uintptr(m.handle)); r1 != 0 {
		m.logger.Error(fmt.Sprintf("Failed to close MIDI device: %v", err))
		return err
	}

	m.open = false
	m.handle = 0
	return nil
}
