package devicetest

import (
	"fmt"

	"github.com/leandrodaf/midisampler/sdk/contracts"
)

// Capture hands out sessions that return zero-filled chunks.
type Capture struct {
	AudioFormat contracts.AudioFormat

	OpenErr error // Returned by Open when set.
	// FailWhen is consulted before every read; a non-nil result fails that read.
	FailWhen func() error

	Opens, Closes, Reads int
	Terminated           bool
}

// NewCapture returns a capture device producing format.
func NewCapture(format contracts.AudioFormat) *Capture {
	return &Capture{AudioFormat: format}
}

// ListDevices reports a single input matching AudioFormat.
func (c *Capture) ListDevices() ([]contracts.DeviceInfo, error) {
	return []contracts.DeviceInfo{{ID: 0, Name: "test input", Channels: c.AudioFormat.Channels}}, nil
}

// Open starts a session, or fails with OpenErr wrapped in ErrDeviceUnavailable.
func (c *Capture) Open() (contracts.CaptureSession, error) {
	if c.OpenErr != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrDeviceUnavailable, c.OpenErr)
	}
	c.Opens++
	return &session{dev: c}, nil
}

// Format returns AudioFormat.
func (c *Capture) Format() contracts.AudioFormat {
	return c.AudioFormat
}

// Terminate marks the device as released.
func (c *Capture) Terminate() error {
	c.Terminated = true
	return nil
}

// Active reports how many sessions are currently open.
func (c *Capture) Active() int {
	return c.Opens - c.Closes
}

type session struct {
	dev    *Capture
	closed bool
}

func (s *session) Read() ([]byte, error) {
	if s.closed {
		return nil, fmt.Errorf("%w: session closed", contracts.ErrCapture)
	}
	if s.dev.FailWhen != nil {
		if err := s.dev.FailWhen(); err != nil {
			return nil, fmt.Errorf("%w: %v", contracts.ErrCapture, err)
		}
	}
	s.dev.Reads++
	return make([]byte, s.dev.AudioFormat.ChunkBytes()), nil
}

func (s *session) Close() error {
	if !s.closed {
		s.closed = true
		s.dev.Closes++
	}
	return nil
}
