// Package config loads sampler settings from defaults, an optional config
// file, a .env file, SAMPLER_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/leandrodaf/midisampler/internal/grid"
	"github.com/leandrodaf/midisampler/internal/metadata"
	"github.com/leandrodaf/midisampler/sdk/contracts"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix prefixes every environment variable, e.g. SAMPLER_MIDI_DEVICE.
const EnvPrefix = "SAMPLER"

// Config holds all runtime configuration.
type Config struct {
	Instrument InstrumentConfig `mapstructure:"instrument"`
	MIDI       MIDIConfig       `mapstructure:"midi"`
	Audio      AudioConfig      `mapstructure:"audio"`
	Sampling   SamplingConfig   `mapstructure:"sampling"`
	Sweep      SweepConfig      `mapstructure:"sweep"`
	Log        LogConfig        `mapstructure:"log"`
}

// InstrumentConfig describes the synthesizer for filenames and descriptions.
type InstrumentConfig struct {
	Name         string `mapstructure:"name"`
	Manufacturer string `mapstructure:"manufacturer"`
	Summary      string `mapstructure:"summary"`
	Tags         string `mapstructure:"tags"`
	License      string `mapstructure:"license"`
}

// MIDIConfig selects the control output.
type MIDIConfig struct {
	Device     string `mapstructure:"device"` // Output port name, matched exactly then by substring.
	Channel    int    `mapstructure:"channel"`
	ClientName string `mapstructure:"client_name"`
}

// AudioConfig selects the capture input and its PCM format.
type AudioConfig struct {
	DeviceIndex int `mapstructure:"device_index"`
	Channels    int `mapstructure:"channels"`
	SampleRate  int `mapstructure:"sample_rate"`
	SampleWidth int `mapstructure:"sample_width"` // Bytes per sample.
	ChunkSize   int `mapstructure:"chunk_size"`   // Frames per read.
}

// SamplingConfig drives preset multisampling.
type SamplingConfig struct {
	Presets       []int         `mapstructure:"presets"` // 1-based, as shown on the instrument.
	NoteMin       int           `mapstructure:"note_min"`
	NoteMax       int           `mapstructure:"note_max"` // Inclusive.
	Velocities    []int         `mapstructure:"velocities"`
	Sustain       time.Duration `mapstructure:"sustain"`
	Tail          time.Duration `mapstructure:"tail"`
	OutputDir     string        `mapstructure:"output_dir"`
	WriteMetadata bool          `mapstructure:"write_metadata"`
	MaxPasses     int           `mapstructure:"max_passes"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

// SweepConfig drives parameter-row sampling at a single note.
type SweepConfig struct {
	Program  int        `mapstructure:"program"` // 0-based program change value.
	Note     int        `mapstructure:"note"`
	Velocity int        `mapstructure:"velocity"`
	Rows     []SweepRow `mapstructure:"rows"`
}

// SweepRow is one parameter snapshot.
type SweepRow struct {
	ID       int            `mapstructure:"id"`
	Settings []ControlValue `mapstructure:"settings"`
}

// ControlValue is a control change number and its value.
type ControlValue struct {
	Control int `mapstructure:"control"`
	Value   int `mapstructure:"value"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Loader layers configuration sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a Loader with defaults and environment lookup installed.
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// BindFlag makes a command-line flag override key when it is set.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for %s", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads configFile (if not empty) and envFile (if it exists), then
// decodes and validates the result.
func (l *Loader) Load(configFile, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if configFile != "" {
		l.v.SetConfigFile(configFile)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load is shorthand for NewLoader().Load without flags.
func Load(configFile, envFile string) (*Config, error) {
	return NewLoader().Load(configFile, envFile)
}

// Validate reports every out-of-range setting at once.
func (c *Config) Validate() error {
	var errs error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf(format, args...))
		}
	}
	midiValue := func(v int) bool { return v >= 0 && v <= contracts.MaxDataValue }

	check(c.Instrument.Name != "", "instrument.name is empty")
	check(c.MIDI.Channel >= 0 && c.MIDI.Channel <= 15, "midi.channel %d outside 0-15", c.MIDI.Channel)
	check(c.Audio.DeviceIndex >= 0, "audio.device_index %d is negative", c.Audio.DeviceIndex)
	if err := c.AudioFormat().Validate(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("audio: %w", err))
	}

	s := c.Sampling
	check(midiValue(s.NoteMin) && midiValue(s.NoteMax) && s.NoteMin <= s.NoteMax,
		"sampling notes %d-%d outside 0-127", s.NoteMin, s.NoteMax)
	check(len(s.Velocities) > 0, "sampling.velocities is empty")
	for _, vel := range s.Velocities {
		check(midiValue(vel), "sampling velocity %d outside 0-127", vel)
	}
	for _, p := range s.Presets {
		check(p >= 1 && p <= contracts.MaxDataValue+1, "sampling preset %d outside 1-128", p)
	}
	check(s.Sustain > 0, "sampling.sustain must be positive, got %v", s.Sustain)
	check(s.Tail >= 0, "sampling.tail is negative: %v", s.Tail)
	check(s.OutputDir != "", "sampling.output_dir is empty")
	check(s.MaxPasses >= 0, "sampling.max_passes %d is negative", s.MaxPasses)
	check(s.RetryDelay >= 0, "sampling.retry_delay is negative: %v", s.RetryDelay)

	w := c.Sweep
	check(midiValue(w.Program), "sweep.program %d outside 0-127", w.Program)
	check(midiValue(w.Note), "sweep.note %d outside 0-127", w.Note)
	check(midiValue(w.Velocity), "sweep.velocity %d outside 0-127", w.Velocity)
	for _, r := range w.Rows {
		for _, cv := range r.Settings {
			check(midiValue(cv.Control) && midiValue(cv.Value),
				"sweep row %d: control %d value %d outside 0-127", r.ID, cv.Control, cv.Value)
		}
	}

	if errs != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, errs)
	}
	return nil
}

// AudioFormat returns the capture format.
func (c *Config) AudioFormat() contracts.AudioFormat {
	return contracts.AudioFormat{
		Channels:    c.Audio.Channels,
		SampleRate:  c.Audio.SampleRate,
		SampleWidth: c.Audio.SampleWidth,
		ChunkSize:   c.Audio.ChunkSize,
	}
}

// InstrumentInfo returns the metadata description of the instrument.
func (c *Config) InstrumentInfo() metadata.Instrument {
	return metadata.Instrument{
		Name:         c.Instrument.Name,
		Manufacturer: c.Instrument.Manufacturer,
		Summary:      c.Instrument.Summary,
		Tags:         c.Instrument.Tags,
		License:      c.Instrument.License,
	}
}

// PerTask is the capture time of one task.
func (c *Config) PerTask() time.Duration {
	return c.Sampling.Sustain + c.Sampling.Tail
}

// SweepRows converts the configured rows. Call after Validate.
func (c *Config) SweepRows() []grid.Row {
	rows := make([]grid.Row, len(c.Sweep.Rows))
	for i, r := range c.Sweep.Rows {
		settings := make([]grid.ParameterSetting, len(r.Settings))
		for j, cv := range r.Settings {
			settings[j] = grid.ParameterSetting{Control: uint8(cv.Control), Value: uint8(cv.Value)}
		}
		rows[i] = grid.Row{ID: r.ID, Settings: settings}
	}
	return rows
}
