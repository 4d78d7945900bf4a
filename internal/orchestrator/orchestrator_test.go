package orchestrator

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/leandrodaf/midisampler/internal/devicetest"
	"github.com/leandrodaf/midisampler/internal/grid"
	"github.com/leandrodaf/midisampler/internal/logger"
	"github.com/leandrodaf/midisampler/internal/metadata"
	"github.com/leandrodaf/midisampler/internal/recorder"
	"github.com/leandrodaf/midisampler/sdk/contracts"
)

// Each task reads 2 sustain and 2 tail chunks.
var testFormat = contracts.AudioFormat{Channels: 1, SampleRate: 8, SampleWidth: 2, ChunkSize: 4}

type rig struct {
	ctrl *devicetest.Control
	capt *devicetest.Capture
	gen  *metadata.Generator
	orch *Orchestrator
	dir  string
}

func newRig(t *testing.T, dryRun bool) *rig {
	t.Helper()
	r := &rig{
		ctrl: &devicetest.Control{},
		capt: devicetest.NewCapture(testFormat),
		gen:  metadata.New(metadata.SlimPhatty),
		dir:  t.TempDir(),
	}
	log := logger.NewNopLogger()
	rec := recorder.New(recorder.Options{
		Control:   r.ctrl,
		Format:    testFormat,
		Logger:    log,
		OutputDir: r.dir,
		Sustain:   time.Second,
		Tail:      time.Second,
		Describe:  r.gen.Info,
	})
	r.orch = New(Options{
		Control:   r.ctrl,
		Capture:   r.capt,
		Recorder:  rec,
		Logger:    log,
		OutputDir: r.dir,
		PerTask:   2 * time.Second,
		Rows:      r.gen.Row,
		DryRun:    dryRun,
	})
	return r
}

func (r *rig) plan(t *testing.T, preset int, lo, hi int, velocity int) Plan {
	t.Helper()
	notes, err := grid.EnumerateNotes(lo, hi, []int{velocity})
	if err != nil {
		t.Fatalf("EnumerateNotes: %v", err)
	}
	program := uint8(preset - 1)
	return Plan{Kind: grid.KindNote, ID: preset, Program: &program, Tasks: grid.NoteTasks(preset, notes, r.gen.Filename)}
}

func (r *rig) failOn(note uint8, times int) {
	r.capt.FailWhen = func() error {
		if times == 0 {
			return nil
		}
		for _, n := range r.ctrl.Sounding() {
			if n == note {
				times--
				return errors.New("input overflowed")
			}
		}
		return nil
	}
}

func names(tasks []grid.Task, idx ...int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = tasks[j].Filename
	}
	return out
}

func TestEndToEndRetry(t *testing.T) {
	r := newRig(t, false)
	plan := r.plan(t, 1, 60, 62, 100)
	r.failOn(61, 1)

	first, err := r.orch.RunPass(context.Background(), plan)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if !reflect.DeepEqual(first.Recorded, names(plan.Tasks, 0, 2)) {
		t.Errorf("recorded = %v", first.Recorded)
	}
	if !reflect.DeepEqual(first.Failed, names(plan.Tasks, 1)) {
		t.Errorf("failed = %v", first.Failed)
	}
	if len(first.Existing) != 0 || first.Clean() {
		t.Errorf("existing = %v, clean = %v", first.Existing, first.Clean())
	}
	if len(first.Rows) != 3 {
		t.Errorf("rows = %d, want 3", len(first.Rows))
	}

	second, err := r.orch.RunPass(context.Background(), plan)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if !reflect.DeepEqual(second.Recorded, names(plan.Tasks, 1)) {
		t.Errorf("recorded = %v", second.Recorded)
	}
	if !reflect.DeepEqual(second.Existing, names(plan.Tasks, 0, 2)) {
		t.Errorf("existing = %v", second.Existing)
	}
	if !second.Clean() {
		t.Errorf("failed = %v", second.Failed)
	}
	if r.capt.Active() != 0 {
		t.Errorf("%d sessions left open", r.capt.Active())
	}
}

func TestSecondPassIsIdempotent(t *testing.T) {
	r := newRig(t, false)
	plan := r.plan(t, 2, 60, 63, 127)

	first, err := r.orch.RunPass(context.Background(), plan)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	reads := r.capt.Reads
	r.ctrl.Reset()

	second, err := r.orch.RunPass(context.Background(), plan)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(second.Recorded) != 0 {
		t.Errorf("recorded = %v", second.Recorded)
	}
	if !reflect.DeepEqual(second.Existing, first.Recorded) {
		t.Errorf("existing = %v, want %v", second.Existing, first.Recorded)
	}
	if r.capt.Reads != reads {
		t.Errorf("second pass read %d chunks", r.capt.Reads-reads)
	}
	if n := r.ctrl.Count(devicetest.NoteOn); n != 0 {
		t.Errorf("second pass sent %d note ons", n)
	}
	if !reflect.DeepEqual(second.Rows, first.Rows) {
		t.Error("metadata rows differ between passes")
	}
}

func TestChunkCountPerTask(t *testing.T) {
	r := newRig(t, false)
	plan := r.plan(t, 1, 60, 62, 100)

	if _, err := r.orch.RunPass(context.Background(), plan); err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if r.capt.Reads != 3*4 {
		t.Errorf("reads = %d, want 12", r.capt.Reads)
	}
}

func TestFailedNoteIsReleasedBeforeNextTask(t *testing.T) {
	r := newRig(t, false)
	plan := r.plan(t, 1, 60, 62, 100)
	r.failOn(61, 1)

	if _, err := r.orch.RunPass(context.Background(), plan); err != nil {
		t.Fatalf("RunPass: %v", err)
	}

	events := r.ctrl.Events()
	var on61, off61, on62 = -1, -1, -1
	for i, e := range events {
		switch {
		case e.Kind == devicetest.NoteOn && e.Data1 == 61:
			on61 = i
		case e.Kind == devicetest.NoteOff && e.Data1 == 61 && on61 >= 0 && off61 < 0:
			off61 = i
		case e.Kind == devicetest.NoteOn && e.Data1 == 62:
			on62 = i
		}
	}
	if on61 < 0 || off61 < 0 || on62 < 0 || !(on61 < off61 && off61 < on62) {
		t.Errorf("note 61 on/off at %d/%d, note 62 on at %d", on61, off61, on62)
	}
	if got := r.ctrl.Sounding(); len(got) != 0 {
		t.Errorf("notes left sounding: %v", got)
	}
	if r.capt.Opens != 2 {
		t.Errorf("opens = %d, want 2 (initial + reopen)", r.capt.Opens)
	}
}

func TestPassFramesWithProgramAndSweeps(t *testing.T) {
	r := newRig(t, false)
	plan := r.plan(t, 5, 60, 60, 100)

	if _, err := r.orch.RunPass(context.Background(), plan); err != nil {
		t.Fatalf("RunPass: %v", err)
	}

	events := r.ctrl.Events()
	if events[0] != (devicetest.Event{Kind: devicetest.ProgramChange, Data1: 4}) {
		t.Errorf("first event = %+v, want program change 4", events[0])
	}
	// program change + sweep + note on + note off + sweep
	if len(events) != 1+128+2+128 {
		t.Errorf("got %d events", len(events))
	}
	last := events[len(events)-1]
	if last.Kind != devicetest.NoteOff || last.Data1 != 127 {
		t.Errorf("last event = %+v, want closing sweep", last)
	}
}

func TestDryRun(t *testing.T) {
	r := newRig(t, false)
	plan := r.plan(t, 1, 60, 62, 100)
	plan.Tasks = plan.Tasks[:1]
	if _, err := r.orch.RunPass(context.Background(), plan); err != nil {
		t.Fatalf("seed pass: %v", err)
	}

	dry := newRig(t, true)
	dry.dir = r.dir
	dry.orch.opts.OutputDir = r.dir
	full := dry.plan(t, 1, 60, 62, 100)

	res, err := dry.orch.RunPass(context.Background(), full)
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if !reflect.DeepEqual(res.Existing, names(full.Tasks, 0)) {
		t.Errorf("existing = %v", res.Existing)
	}
	if !reflect.DeepEqual(res.Skipped, names(full.Tasks, 1, 2)) {
		t.Errorf("skipped = %v", res.Skipped)
	}
	if len(res.Recorded) != 0 || len(res.Failed) != 0 {
		t.Errorf("recorded = %v, failed = %v", res.Recorded, res.Failed)
	}
	if len(res.Rows) != 3 {
		t.Errorf("rows = %d, want 3", len(res.Rows))
	}
	if n := len(dry.ctrl.Events()); n != 0 {
		t.Errorf("dry run sent %d control messages", n)
	}
	if dry.capt.Opens != 0 {
		t.Errorf("dry run opened %d sessions", dry.capt.Opens)
	}
}

func TestOpenFailure(t *testing.T) {
	r := newRig(t, false)
	r.capt.OpenErr = errors.New("no such device")

	res, err := r.orch.RunPass(context.Background(), r.plan(t, 1, 60, 61, 100))
	if !errors.Is(err, contracts.ErrDeviceUnavailable) {
		t.Fatalf("err = %v, want ErrDeviceUnavailable", err)
	}
	if len(res.Tasks) != 0 {
		t.Errorf("tasks ran without a session: %v", res.Tasks)
	}
}

func TestReopenFailureEndsPass(t *testing.T) {
	r := newRig(t, false)
	plan := r.plan(t, 1, 60, 62, 100)
	r.capt.FailWhen = func() error {
		r.capt.OpenErr = errors.New("unplugged")
		return errors.New("disconnected")
	}

	res, err := r.orch.RunPass(context.Background(), plan)
	if !errors.Is(err, contracts.ErrDeviceUnavailable) {
		t.Fatalf("err = %v, want ErrDeviceUnavailable", err)
	}
	if !reflect.DeepEqual(res.Failed, names(plan.Tasks, 0)) {
		t.Errorf("failed = %v", res.Failed)
	}
	if r.capt.Active() != 0 {
		t.Errorf("%d sessions left open", r.capt.Active())
	}
	if got := r.ctrl.Sounding(); len(got) != 0 {
		t.Errorf("notes left sounding: %v", got)
	}
}

func TestCancelledContext(t *testing.T) {
	r := newRig(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.orch.RunPass(ctx, r.plan(t, 1, 60, 62, 100))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(res.Tasks) != 0 {
		t.Errorf("ran %d tasks after cancellation", len(res.Tasks))
	}
	if r.capt.Active() != 0 {
		t.Errorf("%d sessions left open", r.capt.Active())
	}
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[Outcome]string{
		OutcomeRecorded: "recorded",
		OutcomeExisting: "existing",
		OutcomeFailed:   "failed",
		OutcomeSkipped:  "skipped",
	} {
		if o.String() != want {
			t.Errorf("%d.String() = %q", o, o.String())
		}
	}
}
