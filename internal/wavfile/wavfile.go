// Package wavfile encodes captured PCM as WAV artifacts.
package wavfile

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/leandrodaf/midisampler/internal/atomicfile"
	"github.com/leandrodaf/midisampler/sdk/contracts"
	"go.uber.org/multierr"
)

// ErrUnsupportedWidth is returned for sample widths other than 1, 2 or 4 bytes.
var ErrUnsupportedWidth = errors.New("unsupported sample width")

// pcmFormat is the WAVE format tag for linear PCM.
const pcmFormat = 1

// Info is stored in the LIST/INFO chunk of the file.
type Info struct {
	Title    string
	Artist   string
	Comments string
	Keywords string
	Genre    string
	Software string
}

// Writer encodes little-endian PCM bytes in the configured format.
type Writer struct {
	Format contracts.AudioFormat
}

// NewWriter returns a Writer for format.
func NewWriter(format contracts.AudioFormat) *Writer {
	return &Writer{Format: format}
}

// Write encodes pcm to path. The artifact is synced and renamed into
// place, so path only ever holds a complete file.
func (w *Writer) Write(path string, pcm []byte, info Info) (err error) {
	samples, err := Samples(pcm, w.Format.SampleWidth)
	if err != nil {
		return err
	}

	f, err := atomicfile.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, f.Cleanup())
		}
	}()

	if err = w.encode(f, samples, info); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err = f.Commit(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func (w *Writer) encode(out atomicfile.Writer, samples []int, info Info) error {
	enc := wav.NewEncoder(out, w.Format.SampleRate, w.Format.SampleWidth*8, w.Format.Channels, pcmFormat)
	if !info.empty() {
		enc.Metadata = &wav.Metadata{
			Title:    info.Title,
			Artist:   info.Artist,
			Comments: info.Comments,
			Keywords: info.Keywords,
			Genre:    info.Genre,
			Software: info.Software,
		}
	}

	buf := &audio.IntBuffer{
		Data:           samples,
		Format:         &audio.Format{NumChannels: w.Format.Channels, SampleRate: w.Format.SampleRate},
		SourceBitDepth: w.Format.SampleWidth * 8,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

func (i Info) empty() bool {
	return i == Info{}
}

// Samples converts little-endian PCM bytes to integer samples. 8-bit audio
// is unsigned, wider widths are signed. A trailing partial sample is an error.
func Samples(pcm []byte, width int) ([]int, error) {
	switch width {
	case 1, 2, 4:
	default:
		return nil, fmt.Errorf("%w: %d bytes", ErrUnsupportedWidth, width)
	}
	if len(pcm)%width != 0 {
		return nil, fmt.Errorf("pcm length %d is not a multiple of sample width %d", len(pcm), width)
	}

	out := make([]int, len(pcm)/width)
	for i := range out {
		b := pcm[i*width:]
		switch width {
		case 1:
			out[i] = int(b[0])
		case 2:
			out[i] = int(int16(binary.LittleEndian.Uint16(b)))
		case 4:
			out[i] = int(int32(binary.LittleEndian.Uint32(b)))
		}
	}
	return out, nil
}
