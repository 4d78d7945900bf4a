package main

import (
	"fmt"
	"time"

	"github.com/leandrodaf/midisampler/internal/logger"
	"github.com/leandrodaf/midisampler/sdk/contracts"
	"github.com/leandrodaf/midisampler/sdk/midi"
)

// Plays middle C on the first MIDI output, then silences everything.
func main() {
	log := logger.NewZapLogger()

	client, err := midi.NewControlChannel(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithControlConfig(contracts.ControlConfig{ClientName: "midisampler example"}),
	)
	if err != nil {
		log.Error("Failed to initialize MIDI client", log.Field().Error("error", err))
		return
	}
	defer client.Stop()

	devices, err := client.ListDevices()
	if err != nil || len(devices) == 0 {
		log.Error("No MIDI devices found or error listing devices", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI outputs:", devices)

	if err = client.SelectDevice(devices[0].Name); err != nil {
		log.Error("Failed to select MIDI device", log.Field().Error("error", err))
		return
	}

	if err := client.NoteOn(60, 100); err != nil {
		log.Warn("Note on failed", log.Field().Error("error", err))
	}
	time.Sleep(time.Second)
	if err := midi.AllNotesOff(client); err != nil {
		log.Warn("All notes off incomplete", log.Field().Error("error", err))
	}
}
