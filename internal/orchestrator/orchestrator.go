// Package orchestrator runs one pass over the task grid of a preset or
// parameter sweep.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leandrodaf/midisampler/internal/grid"
	"github.com/leandrodaf/midisampler/internal/metadata"
	"github.com/leandrodaf/midisampler/internal/midi/midiwire"
	"github.com/leandrodaf/midisampler/internal/progress"
	"github.com/leandrodaf/midisampler/sdk/contracts"
	"go.uber.org/multierr"
)

// Recorder captures a single task from an open session.
type Recorder interface {
	Record(t grid.Task, session contracts.CaptureSession) (string, error)
}

// Plan is the task grid of one preset or sweep.
type Plan struct {
	Kind    grid.Kind
	ID      int
	Program *uint8 // Program change sent before the pass; nil sends none.
	Tasks   []grid.Task
}

// Options configures an Orchestrator.
type Options struct {
	Control   contracts.ControlChannel
	Capture   contracts.CaptureDevice
	Recorder  Recorder
	Logger    contracts.Logger
	OutputDir string
	PerTask   time.Duration // Sustain plus tail; used for the remaining-time label.

	// Rows builds the metadata row of a task. Optional.
	Rows func(grid.Task) metadata.Row

	// DryRun classifies tasks against the output directory without touching
	// either device.
	DryRun bool
}

// Orchestrator owns the capture session for the duration of a pass.
type Orchestrator struct {
	opts Options
}

// New returns an Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{opts: opts}
}

// DryRun reports whether passes leave the devices alone.
func (o *Orchestrator) DryRun() bool {
	return o.opts.DryRun
}

// RunPass walks plan.Tasks in order. Tasks whose artifact exists are left
// alone; the rest are recorded. A failed task is silenced, the session is
// reopened and the pass moves on. The returned error is non-nil only when
// the pass could not continue at all: the capture session could not be
// (re)opened or ctx was cancelled. The partial result is returned with it.
func (o *Orchestrator) RunPass(ctx context.Context, plan Plan) (PassResult, error) {
	res := PassResult{ID: plan.ID}
	log := o.opts.Logger

	var session contracts.CaptureSession
	if !o.opts.DryRun {
		if plan.Program != nil {
			o.warn(o.opts.Control.ProgramChange(*plan.Program), "program change")
		}
		o.warn(midiwire.AllNotesOff(o.opts.Control), "all notes off")

		var err error
		session, err = o.opts.Capture.Open()
		if err != nil {
			o.warn(midiwire.AllNotesOff(o.opts.Control), "all notes off")
			return res, err
		}
	}

	total := len(plan.Tasks)
	for i, t := range plan.Tasks {
		if err := ctx.Err(); err != nil {
			o.finish(session)
			return res, err
		}

		if o.opts.Rows != nil {
			res.Rows = append(res.Rows, o.opts.Rows(t))
		}

		exists, err := o.exists(t)
		if err != nil {
			log.Warn("Could not check artifact", log.Field().String("file", t.Filename), log.Field().Error("error", err))
		}
		if exists {
			res.add(t, OutcomeExisting, nil)
			continue
		}
		if o.opts.DryRun {
			res.add(t, OutcomeSkipped, nil)
			continue
		}

		log.Info("Recording",
			log.Field().String("task", fmt.Sprintf("%s %d [%d/%d]", plan.Kind, plan.ID, i+1, total)),
			log.Field().Uint8("note", t.Note.Note),
			log.Field().Uint8("velocity", t.Note.Velocity),
			log.Field().String("eta", progress.Label(progress.Remaining(i, total, o.opts.PerTask))))

		if _, err := o.opts.Recorder.Record(t, session); err != nil {
			res.add(t, OutcomeFailed, err)
			log.Error("Task failed, skipping",
				log.Field().String("file", t.Filename),
				log.Field().Error("error", err))

			session, err = o.recover(t, session)
			if err != nil {
				o.finish(nil)
				return res, err
			}
			continue
		}
		res.add(t, OutcomeRecorded, nil)
	}

	o.finish(session)
	o.summarize(plan, res)
	return res, nil
}

// recover silences the failed note and every other one, then reseats the
// capture session.
func (o *Orchestrator) recover(t grid.Task, session contracts.CaptureSession) (contracts.CaptureSession, error) {
	o.warn(o.opts.Control.NoteOff(t.Note.Note), "note off")
	o.warn(midiwire.AllNotesOff(o.opts.Control), "all notes off")

	if err := session.Close(); err != nil {
		o.opts.Logger.Warn("Closing capture session failed", o.opts.Logger.Field().Error("error", err))
	}
	next, err := o.opts.Capture.Open()
	if err != nil {
		return nil, fmt.Errorf("reopen capture session: %w", err)
	}
	return next, nil
}

// finish closes the session, if any, and sends the closing sweep.
func (o *Orchestrator) finish(session contracts.CaptureSession) {
	if o.opts.DryRun {
		return
	}
	var err error
	if session != nil {
		err = session.Close()
	}
	err = multierr.Append(err, midiwire.AllNotesOff(o.opts.Control))
	if err != nil {
		o.opts.Logger.Warn("Pass cleanup incomplete", o.opts.Logger.Field().Error("error", err))
	}
}

func (o *Orchestrator) exists(t grid.Task) (bool, error) {
	_, err := os.Stat(filepath.Join(o.opts.OutputDir, t.Filename))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (o *Orchestrator) warn(err error, what string) {
	if err != nil {
		o.opts.Logger.Warn("Control message dropped",
			o.opts.Logger.Field().String("message", what),
			o.opts.Logger.Field().Error("error", err))
	}
}

func (o *Orchestrator) summarize(plan Plan, res PassResult) {
	log := o.opts.Logger
	if o.opts.DryRun {
		log.Info("Dry run complete, no new samples were recorded",
			log.Field().String("plan", fmt.Sprintf("%s %d", plan.Kind, plan.ID)),
			log.Field().Int("existing", len(res.Existing)),
			log.Field().Int("missing", len(res.Skipped)))
		return
	}
	log.Info("Pass complete",
		log.Field().String("plan", fmt.Sprintf("%s %d", plan.Kind, plan.ID)),
		log.Field().Int("recorded", len(res.Recorded)),
		log.Field().Int("existing", len(res.Existing)),
		log.Field().Int("failed", len(res.Failed)))
}
