package contracts

import (
	"fmt"
	"time"
)

// AudioFormat describes the PCM stream produced by a capture session.
type AudioFormat struct {
	Channels    int // Interleaved channel count.
	SampleRate  int // Frames per second.
	SampleWidth int // Bytes per sample: 1, 2 or 4.
	ChunkSize   int // Frames returned by a single read.
}

// Validate reports whether the format can be captured and encoded.
func (f AudioFormat) Validate() error {
	if f.Channels < 1 {
		return fmt.Errorf("invalid channel count %d", f.Channels)
	}
	if f.SampleRate < 1 {
		return fmt.Errorf("invalid sample rate %d", f.SampleRate)
	}
	if f.ChunkSize < 1 {
		return fmt.Errorf("invalid chunk size %d", f.ChunkSize)
	}
	switch f.SampleWidth {
	case 1, 2, 4:
	default:
		return fmt.Errorf("unsupported sample width %d", f.SampleWidth)
	}
	return nil
}

// ChunkBytes returns the size in bytes of one chunk.
func (f AudioFormat) ChunkBytes() int {
	return f.ChunkSize * f.Channels * f.SampleWidth
}

// ChunksFor returns how many chunks cover d, rounding up so that the
// captured audio is never shorter than requested.
func (f AudioFormat) ChunksFor(d time.Duration) int {
	if d <= 0 || f.ChunkSize < 1 {
		return 0
	}
	frames := int64(f.SampleRate) * int64(d)
	per := int64(f.ChunkSize) * int64(time.Second)
	return int((frames + per - 1) / per)
}

// CaptureSession is an open, started input stream.
type CaptureSession interface {
	// Read blocks until exactly one chunk is available and returns it as
	// little-endian PCM bytes. Failures wrap ErrCapture.
	Read() ([]byte, error)
	// Close stops the stream. Calling it more than once is safe.
	Close() error
}

// CaptureDevice opens capture sessions on one physical input device.
type CaptureDevice interface {
	ListDevices() ([]DeviceInfo, error)
	Open() (CaptureSession, error) // Failures wrap ErrDeviceUnavailable.
	Format() AudioFormat
	Terminate() error
}
