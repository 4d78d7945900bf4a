package main

import (
	"fmt"

	"github.com/leandrodaf/midisampler/internal/config"
	"github.com/leandrodaf/midisampler/internal/grid"
	"github.com/leandrodaf/midisampler/internal/orchestrator"
	"github.com/leandrodaf/midisampler/internal/runner"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newSampleCmd(loader *config.Loader, flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Sample every note and velocity of the configured presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, loader, flags, presetPlans)
		},
	}
	cmd.Flags().IntSlice("presets", nil, "presets to sample, 1-based (e.g. 1,2,3)")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "start without asking for confirmation")
	cobra.CheckErr(loader.BindFlag("sampling.presets", cmd.Flags().Lookup("presets")))
	return cmd
}

func newSweepCmd(loader *config.Loader, flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Sample the configured parameter rows at a single note",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, loader, flags, sweepPlans)
		},
	}
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "start without asking for confirmation")
	return cmd
}

type planner func(a *app) ([]orchestrator.Plan, error)

func run(cmd *cobra.Command, loader *config.Loader, flags *rootFlags, plan planner) (err error) {
	a, err := newApp(loader, flags, hardware)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.close()) }()

	plans, err := plan(a)
	if err != nil {
		return err
	}
	ask := func(label string) runner.Prompter {
		return runner.NewPrompt(cmd.InOrStdin(), cmd.OutOrStdout(), label)
	}
	if err := a.confirm(ask, plans, flags.yes); err != nil {
		if isAbort(err) {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing sampled.")
			return nil
		}
		return err
	}

	reports, err := a.controller().Run(cmd.Context(), plans)
	a.report(cmd.OutOrStdout(), reports)
	return err
}

func presetPlans(a *app) ([]orchestrator.Plan, error) {
	s := a.cfg.Sampling
	if len(s.Presets) == 0 {
		return nil, fmt.Errorf("no presets to sample: set sampling.presets or pass --presets")
	}
	notes, err := grid.EnumerateNotes(s.NoteMin, s.NoteMax, s.Velocities)
	if err != nil {
		return nil, err
	}

	plans := make([]orchestrator.Plan, len(s.Presets))
	for i, preset := range s.Presets {
		program := uint8(preset - 1)
		plans[i] = orchestrator.Plan{
			Kind:    grid.KindNote,
			ID:      preset,
			Program: &program,
			Tasks:   grid.NoteTasks(preset, notes, a.gen.Filename),
		}
	}
	return plans, nil
}

func sweepPlans(a *app) ([]orchestrator.Plan, error) {
	w := a.cfg.Sweep
	note := grid.NoteSpec{Note: uint8(w.Note), Velocity: uint8(w.Velocity)}
	tasks, err := grid.RowTasks(a.cfg.SweepRows(), note, a.gen.Filename)
	if err != nil {
		return nil, err
	}
	program := uint8(w.Program)
	return []orchestrator.Plan{{Kind: grid.KindRow, Program: &program, Tasks: tasks}}, nil
}
