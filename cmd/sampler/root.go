package main

import (
	"github.com/leandrodaf/midisampler/internal/config"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configFile string
	envFile    string
	yes        bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	loader := config.NewLoader()

	root := &cobra.Command{
		Use:           "sampler",
		Short:         "Record multisample libraries from a MIDI synthesizer",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (yaml, toml or json)")
	pf.StringVar(&flags.envFile, "env-file", ".env", "dotenv file with SAMPLER_* variables")
	pf.String("output-dir", ".", "directory samples and descriptions are written to")
	pf.String("log-level", "info", "debug, info, warn or error")
	pf.String("log-file", "", "write logs to this file instead of stderr")
	pf.String("midi-device", "Slim Phatty", "MIDI output port name")
	pf.Int("audio-device", 0, "PortAudio input device index")

	for key, name := range map[string]string{
		"sampling.output_dir": "output-dir",
		"log.level":           "log-level",
		"log.file":            "log-file",
		"midi.device":         "midi-device",
		"audio.device_index":  "audio-device",
	} {
		cobra.CheckErr(loader.BindFlag(key, pf.Lookup(name)))
	}

	root.AddCommand(
		newSampleCmd(loader, flags),
		newSweepCmd(loader, flags),
		newDevicesCmd(loader, flags),
	)
	return root
}
