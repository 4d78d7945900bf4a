package config

import (
	"time"

	"github.com/leandrodaf/midisampler/internal/metadata"
	"github.com/spf13/viper"
)

// Filter envelope rows for the Slim Phatty: everything at rest except
// CC27 at half, CC30 and CC19 fully open, and CC9 stepped per row.
func defaultSweepRows() []SweepRow {
	base := func(cc9 int) []ControlValue {
		return []ControlValue{
			{23, 0}, {24, 0}, {25, 0}, {26, 0},
			{27, 64}, {28, 0}, {29, 0}, {30, 127},
			{31, 0}, {19, 127}, {21, 0}, {9, cc9},
		}
	}
	return []SweepRow{
		{ID: 3, Settings: base(0)},
		{ID: 4, Settings: base(6)},
		{ID: 5, Settings: base(43)},
		{ID: 6, Settings: base(89)},
	}
}

func setDefaults(v *viper.Viper) {
	inst := metadata.SlimPhatty
	v.SetDefault("instrument.name", inst.Name)
	v.SetDefault("instrument.manufacturer", inst.Manufacturer)
	v.SetDefault("instrument.summary", inst.Summary)
	v.SetDefault("instrument.tags", inst.Tags)
	v.SetDefault("instrument.license", inst.License)

	v.SetDefault("midi.device", "Slim Phatty")
	v.SetDefault("midi.channel", 0)
	v.SetDefault("midi.client_name", "midisampler")

	v.SetDefault("audio.device_index", 0)
	v.SetDefault("audio.channels", 1)
	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("audio.sample_width", 2)
	v.SetDefault("audio.chunk_size", 1024)

	v.SetDefault("sampling.presets", []int{})
	v.SetDefault("sampling.note_min", 0)
	v.SetDefault("sampling.note_max", 127)
	v.SetDefault("sampling.velocities", []int{127})
	v.SetDefault("sampling.sustain", 2*time.Second)
	v.SetDefault("sampling.tail", 2*time.Second)
	v.SetDefault("sampling.output_dir", ".")
	v.SetDefault("sampling.write_metadata", true)
	v.SetDefault("sampling.max_passes", 0)
	v.SetDefault("sampling.retry_delay", time.Duration(0))

	v.SetDefault("sweep.program", 0)
	v.SetDefault("sweep.note", 54)
	v.SetDefault("sweep.velocity", 127)
	v.SetDefault("sweep.rows", defaultSweepRows())

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}
