package midi

import (
	"fmt"

	"github.com/leandrodaf/midisampler/internal/logger"
	"github.com/leandrodaf/midisampler/sdk/contracts"
)

// DefaultClientName is the name the control client registers with the driver.
const DefaultClientName = "midisampler"

// applyDefaultOptions sets default values for ClientOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify ClientOptions.
//
// Returns:
//   - contracts.ClientOptions: A structure containing the finalized client options with defaults applied.
//   - error: An error if there was an issue applying the options.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
		if options.LogFilePath != "" {
			if err := options.Logger.SetDestination(contracts.FileLog, options.LogFilePath); err != nil {
				return contracts.ClientOptions{}, err
			}
		}
		options.Logger.SetLevel(options.LogLevel)
	}

	if options.ControlConfig == nil {
		options.ControlConfig = &contracts.ControlConfig{ClientName: DefaultClientName}
	}
	if options.ControlConfig.ClientName == "" {
		options.ControlConfig.ClientName = DefaultClientName
	}
	if options.ControlConfig.Channel > 15 {
		return contracts.ClientOptions{}, fmt.Errorf("MIDI channel %d out of range 0-15", options.ControlConfig.Channel)
	}

	return *options, nil
}
