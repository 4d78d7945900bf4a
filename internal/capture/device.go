// Package capture reads fixed-size PCM chunks from a PortAudio input device.
package capture

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/leandrodaf/midisampler/sdk/contracts"
)

// Device opens blocking input streams on one PortAudio device.
type Device struct {
	logger contracts.Logger
	index  int
	format contracts.AudioFormat

	mu          sync.Mutex
	initialized bool
}

// NewDevice returns a capture device for the PortAudio device at index.
// PortAudio itself is initialized lazily on first use.
func NewDevice(index int, format contracts.AudioFormat, logger contracts.Logger) (*Device, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	return &Device{logger: logger, index: index, format: format}, nil
}

// Format returns the PCM format sessions produce.
func (d *Device) Format() contracts.AudioFormat {
	return d.format
}

func (d *Device) initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return nil
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: portaudio: %v", contracts.ErrDeviceUnavailable, err)
	}
	d.initialized = true
	return nil
}

// ListDevices returns the devices that have at least one input channel.
func (d *Device) ListDevices() ([]contracts.DeviceInfo, error) {
	if err := d.initialize(); err != nil {
		return nil, err
	}
	all, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("error listing audio devices: %w", err)
	}

	devices := make([]contracts.DeviceInfo, 0, len(all))
	for _, info := range all {
		if info.MaxInputChannels < 1 {
			continue
		}
		dev := contracts.DeviceInfo{
			ID:       info.Index,
			Name:     info.Name,
			Channels: info.MaxInputChannels,
		}
		if info.HostApi != nil {
			dev.EntityName = info.HostApi.Name
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

// Open starts a blocking input stream delivering ChunkSize frames per read.
func (d *Device) Open() (contracts.CaptureSession, error) {
	if err := d.initialize(); err != nil {
		return nil, err
	}

	info, err := d.lookup()
	if err != nil {
		return nil, err
	}
	if info.MaxInputChannels < d.format.Channels {
		return nil, fmt.Errorf("%w: %q has %d input channels, need %d",
			contracts.ErrDeviceUnavailable, info.Name, info.MaxInputChannels, d.format.Channels)
	}

	buf := newBuffer(d.format)
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: d.format.Channels,
			Latency:  info.DefaultLowInputLatency,
		},
		SampleRate:      float64(d.format.SampleRate),
		FramesPerBuffer: d.format.ChunkSize,
	}

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: open stream on %q: %v", contracts.ErrDeviceUnavailable, info.Name, err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("%w: start stream on %q: %v", contracts.ErrDeviceUnavailable, info.Name, err)
	}

	d.logger.Debug("Capture stream opened",
		d.logger.Field().Int("deviceIndex", info.Index),
		d.logger.Field().String("deviceName", info.Name),
		d.logger.Field().Int("chunkSize", d.format.ChunkSize))
	return &Session{stream: stream, buf: buf, format: d.format, logger: d.logger}, nil
}

func (d *Device) lookup() (*portaudio.DeviceInfo, error) {
	all, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrDeviceUnavailable, err)
	}
	for _, info := range all {
		if info.Index == d.index {
			return info, nil
		}
	}
	return nil, fmt.Errorf("%w: no audio device at index %d", contracts.ErrDeviceUnavailable, d.index)
}

// Terminate releases PortAudio. Sessions must be closed first.
func (d *Device) Terminate() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return nil
	}
	d.initialized = false
	return portaudio.Terminate()
}
