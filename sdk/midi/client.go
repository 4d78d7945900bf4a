package midi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/midisampler/internal/midi/mididarwin"
	"github.com/leandrodaf/midisampler/internal/midi/midirtmidi"
	"github.com/leandrodaf/midisampler/internal/midi/midiwindows"
	"github.com/leandrodaf/midisampler/sdk/contracts"
)

// ErrUnsupportedOS is returned when the operating system has no control channel backend.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// clientInitializers maps OS names to corresponding control channel initializers.
var clientInitializers = map[string]func(*contracts.ClientOptions) (contracts.ControlChannel, error){
	"darwin":  mididarwin.NewMIDIClient,  // macOS (Darwin) CoreMIDI output.
	"windows": midiwindows.NewMIDIClient, // Windows winmm output.
	"linux":   midirtmidi.NewMIDIClient,  // Linux rtmidi (ALSA) output.
}

// NewClient initializes a control channel based on the current operating system.
//
// Returns ErrUnsupportedOS (wrapping contracts.ErrDeviceUnavailable) if the OS has no backend.
func NewClient(opts *contracts.ClientOptions) (contracts.ControlChannel, error) {
	if initializer, exists := clientInitializers[runtime.GOOS]; exists {
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %w: %s", contracts.ErrDeviceUnavailable, ErrUnsupportedOS, runtime.GOOS)
}
