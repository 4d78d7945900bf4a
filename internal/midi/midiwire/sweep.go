package midiwire

import (
	"github.com/leandrodaf/midisampler/sdk/contracts"
	"go.uber.org/multierr"
)

// AllNotesOff sends a Note Off for every note from 0 to 127. A failed send
// does not stop the sweep; every failure is returned combined.
func AllNotesOff(ctrl contracts.ControlChannel) error {
	var err error
	for note := 0; note <= contracts.MaxDataValue; note++ {
		err = multierr.Append(err, ctrl.NoteOff(uint8(note)))
	}
	return err
}
