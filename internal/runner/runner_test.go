package runner

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leandrodaf/midisampler/internal/devicetest"
	"github.com/leandrodaf/midisampler/internal/grid"
	"github.com/leandrodaf/midisampler/internal/logger"
	"github.com/leandrodaf/midisampler/internal/metadata"
	"github.com/leandrodaf/midisampler/internal/orchestrator"
	"github.com/leandrodaf/midisampler/internal/recorder"
	"github.com/leandrodaf/midisampler/sdk/contracts"
	"github.com/manifoldco/promptui"
)

var testFormat = contracts.AudioFormat{Channels: 1, SampleRate: 8, SampleWidth: 2, ChunkSize: 4}

// observed wraps an orchestrator and calls after once each pass returns.
type observed struct {
	Orchestrator
	after func(pass int, res orchestrator.PassResult)
	pass  int
}

func (o *observed) RunPass(ctx context.Context, plan orchestrator.Plan) (orchestrator.PassResult, error) {
	res, err := o.Orchestrator.RunPass(ctx, plan)
	o.pass++
	if o.after != nil {
		o.after(o.pass, res)
	}
	return res, err
}

// scripted returns canned results.
type scripted struct {
	results []orchestrator.PassResult
	calls   int
}

func (s *scripted) RunPass(ctx context.Context, plan orchestrator.Plan) (orchestrator.PassResult, error) {
	r := s.results[s.calls%len(s.results)]
	s.calls++
	return r, nil
}

func devices() (*devicetest.Control, *devicetest.Capture, *metadata.Generator) {
	return &devicetest.Control{}, devicetest.NewCapture(testFormat), metadata.New(metadata.SlimPhatty)
}

func TestExportOnlyAfterCleanPass(t *testing.T) {
	dir := t.TempDir()
	ctrl, capt, gen := devices()
	log := logger.NewNopLogger()

	failed := false
	capt.FailWhen = func() error {
		for _, n := range ctrl.Sounding() {
			if n == 61 && !failed {
				failed = true
				return errors.New("input overflowed")
			}
		}
		return nil
	}

	orch := orchestrator.New(orchestrator.Options{
		Control: ctrl,
		Capture: capt,
		Recorder: recorder.New(recorder.Options{
			Control: ctrl, Format: testFormat, Logger: log, OutputDir: dir,
			Sustain: time.Second, Tail: time.Second,
		}),
		Logger:    log,
		OutputDir: dir,
		Rows:      gen.Row,
	})

	exportPath := filepath.Join(dir, gen.ExportFilename(grid.KindNote, 1))
	obs := &observed{Orchestrator: orch}
	obs.after = func(pass int, res orchestrator.PassResult) {
		_, err := os.Stat(exportPath)
		if pass == 1 && !os.IsNotExist(err) {
			t.Errorf("export exists after the failed pass: %v", err)
		}
	}

	notes, _ := grid.EnumerateNotes(60, 62, []int{100})
	plan := orchestrator.Plan{Kind: grid.KindNote, ID: 1, Tasks: grid.NoteTasks(1, notes, gen.Filename)}

	ctl := New(Options{
		Orchestrator:  obs,
		Logger:        log,
		MetadataDir:   dir,
		WriteMetadata: true,
		ExportName:    gen.ExportFilename,
	})
	report, err := ctl.RunPlan(context.Background(), plan)
	if err != nil {
		t.Fatalf("RunPlan: %v", err)
	}

	if report.Passes != 2 || report.Recorded != 3 || report.Existing != 2 {
		t.Errorf("report = %+v", report)
	}
	if report.MetadataPath != exportPath {
		t.Errorf("MetadataPath = %q", report.MetadataPath)
	}

	f, err := os.Open(exportPath)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(records) != 1+len(plan.Tasks) {
		t.Errorf("export has %d records, want %d", len(records), 1+len(plan.Tasks))
	}
}

func TestPassLimit(t *testing.T) {
	dir := t.TempDir()
	orch := &scripted{results: []orchestrator.PassResult{{ID: 1, Failed: []string{"a.wav"}}}}
	ctl := New(Options{
		Orchestrator:  orch,
		Logger:        logger.NewNopLogger(),
		MetadataDir:   dir,
		WriteMetadata: true,
		ExportName:    metadata.New(metadata.SlimPhatty).ExportFilename,
		MaxPasses:     3,
	})

	report, err := ctl.RunPlan(context.Background(), orchestrator.Plan{ID: 1})
	if !errors.Is(err, ErrPassLimit) {
		t.Fatalf("err = %v, want ErrPassLimit", err)
	}
	if orch.calls != 3 || report.Passes != 3 {
		t.Errorf("calls = %d, passes = %d", orch.calls, report.Passes)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("metadata written for a failing plan: %v", entries)
	}
}

func TestRetryDelayHonoursContext(t *testing.T) {
	orch := &scripted{results: []orchestrator.PassResult{{Failed: []string{"a.wav"}}}}
	ctl := New(Options{
		Orchestrator: orch,
		Logger:       logger.NewNopLogger(),
		RetryDelay:   time.Hour,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := ctl.RunPlan(ctx, orchestrator.Plan{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
	if orch.calls != 1 {
		t.Errorf("calls = %d, want 1", orch.calls)
	}
}

func TestRunStopsAtFirstError(t *testing.T) {
	failing := errors.New("boom")
	calls := 0
	orch := orchFunc(func(ctx context.Context, plan orchestrator.Plan) (orchestrator.PassResult, error) {
		calls++
		if plan.ID == 2 {
			return orchestrator.PassResult{}, failing
		}
		return orchestrator.PassResult{ID: plan.ID, Recorded: []string{"x.wav"}}, nil
	})
	ctl := New(Options{Orchestrator: orch, Logger: logger.NewNopLogger()})

	reports, err := ctl.Run(context.Background(), []orchestrator.Plan{{ID: 1}, {ID: 2}, {ID: 3}})
	if !errors.Is(err, failing) {
		t.Fatalf("err = %v", err)
	}
	if len(reports) != 1 || reports[0].ID != 1 || calls != 2 {
		t.Errorf("reports = %+v, calls = %d", reports, calls)
	}
}

type orchFunc func(ctx context.Context, plan orchestrator.Plan) (orchestrator.PassResult, error)

func (f orchFunc) RunPass(ctx context.Context, plan orchestrator.Plan) (orchestrator.PassResult, error) {
	return f(ctx, plan)
}

func TestEstimate(t *testing.T) {
	plans := []orchestrator.Plan{
		{Tasks: make([]grid.Task, 128)},
		{Tasks: make([]grid.Task, 4)},
	}
	if got := Estimate(plans, 4*time.Second); got != 528*time.Second {
		t.Errorf("Estimate = %v", got)
	}
	if got := StartPrompt(plans, 4*time.Second); !strings.Contains(got, "00:08:48") {
		t.Errorf("StartPrompt = %q", got)
	}
}

type answer struct {
	err error
}

func (a answer) Run() (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return "y", nil
}

func TestConfirm(t *testing.T) {
	boom := errors.New("no terminal")
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"accepted", nil, nil},
		{"declined", promptui.ErrAbort, ErrAborted},
		{"interrupted", promptui.ErrInterrupt, ErrAborted},
		{"end of input", promptui.ErrEOF, ErrAborted},
		{"prompt failure", boom, boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Confirm(answer{tt.err}); !errors.Is(err, tt.wantErr) {
				t.Errorf("Confirm = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if err := Confirm(answer{boom}); errors.Is(err, ErrAborted) {
		t.Error("a broken prompt was reported as a user abort")
	}
}

func TestNewPrompt(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompt(strings.NewReader("y\n"), &out, "Start")
	if !p.IsConfirm || p.Label != "Start" {
		t.Errorf("prompt = %+v", p)
	}
	if p.Stdin == nil || p.Stdout == nil {
		t.Fatal("prompt streams not set")
	}
	if _, err := p.Stdout.Write([]byte("x")); err != nil || out.String() != "x" {
		t.Errorf("stdout not routed to out: %q, %v", out.String(), err)
	}
	if err := p.Stdout.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
