package capture

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/leandrodaf/midisampler/sdk/contracts"
	"go.uber.org/multierr"
)

// Session is a started input stream. It is not safe for concurrent use.
type Session struct {
	stream *portaudio.Stream
	buf    interface{} // []uint8, []int16 or []int32, sized to one chunk.
	format contracts.AudioFormat
	logger contracts.Logger

	closeOnce sync.Once
	closed    bool
	closeErr  error
}

// newBuffer allocates the typed sample buffer PortAudio reads into.
func newBuffer(f contracts.AudioFormat) interface{} {
	n := f.ChunkSize * f.Channels
	switch f.SampleWidth {
	case 1:
		return make([]uint8, n)
	case 4:
		return make([]int32, n)
	default:
		return make([]int16, n)
	}
}

// Read blocks until one chunk has been captured and returns a copy of it.
func (s *Session) Read() ([]byte, error) {
	if s.closed {
		return nil, fmt.Errorf("%w: session closed", contracts.ErrCapture)
	}
	if err := s.stream.Read(); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrCapture, err)
	}
	return encodeLE(s.buf), nil
}

// Close stops and closes the stream. Later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed = true
		s.closeErr = multierr.Combine(s.stream.Stop(), s.stream.Close())
		s.logger.Debug("Capture stream closed")
	})
	return s.closeErr
}

// encodeLE serializes a typed sample buffer as little-endian bytes.
func encodeLE(buf interface{}) []byte {
	switch b := buf.(type) {
	case []uint8:
		out := make([]byte, len(b))
		copy(out, b)
		return out
	case []int16:
		out := make([]byte, 2*len(b))
		for i, v := range b {
			binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
		}
		return out
	case []int32:
		out := make([]byte, 4*len(b))
		for i, v := range b {
			binary.LittleEndian.PutUint32(out[4*i:], uint32(v))
		}
		return out
	default:
		return nil
	}
}
