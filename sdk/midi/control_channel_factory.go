package midi

import (
	"github.com/leandrodaf/midisampler/sdk/contracts"
)

// NewControlChannel creates a control channel with the specified options.
// It applies default options and initializes the platform backend.
//
// opts ...contracts.Option: A variadic list of option functions to customize the client configuration.
//
// Returns:
//   - contracts.ControlChannel: The control channel; call SelectDevice before sending.
//   - error: An error, if any occurred during the creation of the client.
func NewControlChannel(opts ...contracts.Option) (contracts.ControlChannel, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	client, err := NewClient(&options)
	if err != nil {
		return nil, err
	}

	return client, nil
}
