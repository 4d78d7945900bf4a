package contracts

// ControlConfig holds settings shared by every control channel backend.
type ControlConfig struct {
	ClientName string // Name the driver registers the client under.
	Channel    uint8  // MIDI channel (0-15) all messages are addressed to.
}

// ClientOptions defines the configuration options for the control channel.
type ClientOptions struct {
	Logger        Logger         // Logger for logging events and errors.
	LogLevel      LogLevel       // Level of logging to use.
	LogFilePath   string         // File path for logging if file logging is enabled.
	ControlConfig *ControlConfig // Client name and MIDI channel.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the control channel.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the control channel.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile directs the default logger to a file.
func WithLogFile(path string) Option {
	return func(opts *ClientOptions) {
		opts.LogFilePath = path
	}
}

// WithControlConfig sets the client name and MIDI channel.
func WithControlConfig(config ControlConfig) Option {
	return func(opts *ClientOptions) {
		opts.ControlConfig = &config
	}
}
