package main

import (
	"fmt"
	"io"

	"github.com/leandrodaf/midisampler/internal/config"
	"github.com/leandrodaf/midisampler/sdk/contracts"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newDevicesCmd(loader *config.Loader, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List MIDI outputs and audio inputs",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			cfg, log, err := loadConfig(loader, flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			ctrl, err := hardware.control(cfg, log)
			if err != nil {
				fmt.Fprintf(out, "MIDI outputs: unavailable (%v)\n", err)
			} else {
				defer func() { err = multierr.Append(err, ctrl.Stop()) }()
				list(out, "MIDI outputs", ctrl.ListDevices)
			}

			dev, err := hardware.capture(cfg, log)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, dev.Terminate()) }()
			list(out, "Audio inputs", dev.ListDevices)
			return nil
		},
	}
}

func list(out io.Writer, title string, devices func() ([]contracts.DeviceInfo, error)) {
	fmt.Fprintf(out, "%s:\n", title)
	found, err := devices()
	if err != nil {
		fmt.Fprintf(out, "\tunavailable (%v)\n", err)
		return
	}
	for _, d := range found {
		fmt.Fprintf(out, "\t%d - %s", d.ID, d.Name)
		if d.Channels > 0 {
			fmt.Fprintf(out, " (%d in)", d.Channels)
		}
		if d.Manufacturer != "" {
			fmt.Fprintf(out, " [%s]", d.Manufacturer)
		}
		fmt.Fprintln(out)
	}
}
