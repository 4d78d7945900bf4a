package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leandrodaf/midisampler/internal/capture"
	"github.com/leandrodaf/midisampler/internal/config"
	"github.com/leandrodaf/midisampler/internal/logger"
	"github.com/leandrodaf/midisampler/internal/metadata"
	"github.com/leandrodaf/midisampler/internal/orchestrator"
	"github.com/leandrodaf/midisampler/internal/recorder"
	"github.com/leandrodaf/midisampler/internal/runner"
	"github.com/leandrodaf/midisampler/sdk/contracts"
	"github.com/leandrodaf/midisampler/sdk/midi"
	"go.uber.org/multierr"
)

// app holds the devices and components of one command invocation.
type app struct {
	cfg     *config.Config
	log     contracts.Logger
	ctrl    contracts.ControlChannel // nil when no backend could start.
	capture contracts.CaptureDevice
	gen     *metadata.Generator
	dryRun  bool
}

// devices builds the control channel and capture device of a run.
type devices struct {
	control func(cfg *config.Config, log contracts.Logger) (contracts.ControlChannel, error)
	capture func(cfg *config.Config, log contracts.Logger) (contracts.CaptureDevice, error)
}

// hardware talks to the platform MIDI backend and PortAudio.
var hardware = devices{control: openControl, capture: openCapture}

func openControl(cfg *config.Config, log contracts.Logger) (contracts.ControlChannel, error) {
	return midi.NewControlChannel(
		contracts.WithLogger(log),
		contracts.WithControlConfig(contracts.ControlConfig{
			ClientName: cfg.MIDI.ClientName,
			Channel:    uint8(cfg.MIDI.Channel),
		}),
	)
}

func openCapture(cfg *config.Config, log contracts.Logger) (contracts.CaptureDevice, error) {
	dev, err := capture.NewDevice(cfg.Audio.DeviceIndex, cfg.AudioFormat(), log)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

func loadConfig(loader *config.Loader, flags *rootFlags) (*config.Config, contracts.Logger, error) {
	cfg, err := loader.Load(flags.configFile, flags.envFile)
	if err != nil {
		return nil, nil, err
	}

	log := logger.NewZapLogger()
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	log.SetLevel(level)
	if cfg.Log.File != "" {
		if err := log.SetDestination(contracts.FileLog, cfg.Log.File); err != nil {
			return nil, nil, err
		}
	}
	return cfg, log, nil
}

// newApp connects to both devices. A missing control device turns the run
// into a dry run; a missing capture device with the control device present
// is fatal.
func newApp(loader *config.Loader, flags *rootFlags, devs devices) (*app, error) {
	cfg, log, err := loadConfig(loader, flags)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, gen: metadata.New(cfg.InstrumentInfo())}

	if err := os.MkdirAll(cfg.Sampling.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	a.ctrl, err = devs.control(cfg, log)
	if err != nil {
		log.Warn("MIDI unavailable, skipping audio recording", log.Field().Error("error", err))
		a.ctrl = nil
		a.dryRun = true
	} else if err := a.ctrl.SelectDevice(cfg.MIDI.Device); err != nil {
		log.Warn("Could not connect to MIDI output port, skipping audio recording",
			log.Field().String("device", cfg.MIDI.Device),
			log.Field().Error("error", err))
		a.dryRun = true
	}

	a.capture, err = devs.capture(cfg, log)
	if err != nil {
		return nil, multierr.Append(err, a.close())
	}

	if !a.dryRun {
		session, err := a.capture.Open()
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("capture device %d: %w", cfg.Audio.DeviceIndex, err), a.close())
		}
		if err := session.Close(); err != nil {
			log.Warn("Closing device check session failed", log.Field().Error("error", err))
		}
		if err := midi.AllNotesOff(a.ctrl); err != nil {
			log.Warn("All notes off incomplete", log.Field().Error("error", err))
		}
	}
	return a, nil
}

func (a *app) close() error {
	var err error
	if a.ctrl != nil {
		err = multierr.Append(err, a.ctrl.Stop())
	}
	if a.capture != nil {
		err = multierr.Append(err, a.capture.Terminate())
	}
	return err
}

func (a *app) controller() *runner.Controller {
	cfg := a.cfg
	rec := recorder.New(recorder.Options{
		Control:   a.ctrl,
		Format:    cfg.AudioFormat(),
		Logger:    a.log,
		OutputDir: cfg.Sampling.OutputDir,
		Sustain:   cfg.Sampling.Sustain,
		Tail:      cfg.Sampling.Tail,
		Describe:  a.gen.Info,
	})
	orch := orchestrator.New(orchestrator.Options{
		Control:   a.ctrl,
		Capture:   a.capture,
		Recorder:  rec,
		Logger:    a.log,
		OutputDir: cfg.Sampling.OutputDir,
		PerTask:   cfg.PerTask(),
		Rows:      a.gen.Row,
		DryRun:    a.dryRun,
	})
	return runner.New(runner.Options{
		Orchestrator:  orch,
		Logger:        a.log,
		MetadataDir:   cfg.Sampling.OutputDir,
		WriteMetadata: cfg.Sampling.WriteMetadata,
		ExportName:    a.gen.ExportFilename,
		MaxPasses:     cfg.Sampling.MaxPasses,
		RetryDelay:    cfg.Sampling.RetryDelay,
	})
}

// confirm asks before a recording run. Dry runs and --yes skip the prompt.
func (a *app) confirm(ask func(label string) runner.Prompter, plans []orchestrator.Plan, yes bool) error {
	if a.dryRun || yes {
		return nil
	}
	return runner.Confirm(ask(runner.StartPrompt(plans, a.cfg.PerTask())))
}

func (a *app) report(out io.Writer, reports []runner.Report) {
	for _, r := range reports {
		fmt.Fprintf(out, "%s %d: %d recorded, %d existing", r.Kind, r.ID, r.Recorded, r.Existing)
		if r.Skipped > 0 {
			fmt.Fprintf(out, ", %d missing (dry run)", r.Skipped)
		}
		fmt.Fprintf(out, " after %d pass(es)", r.Passes)
		if r.MetadataPath != "" {
			fmt.Fprintf(out, ", descriptions in %q", r.MetadataPath)
		}
		fmt.Fprintln(out)
	}
}

func isAbort(err error) bool {
	return errors.Is(err, runner.ErrAborted)
}
