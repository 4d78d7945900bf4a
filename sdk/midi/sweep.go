package midi

import (
	"github.com/leandrodaf/midisampler/internal/midi/midiwire"
	"github.com/leandrodaf/midisampler/sdk/contracts"
)

// AllNotesOff silences every note (0-127) on ctrl so the instrument cannot
// keep a stuck note across an error boundary. It keeps going after a failed
// send and returns every failure combined.
func AllNotesOff(ctrl contracts.ControlChannel) error {
	return midiwire.AllNotesOff(ctrl)
}
