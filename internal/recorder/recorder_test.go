package recorder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leandrodaf/midisampler/internal/devicetest"
	"github.com/leandrodaf/midisampler/internal/grid"
	"github.com/leandrodaf/midisampler/internal/logger"
	"github.com/leandrodaf/midisampler/internal/wavfile"
	"github.com/leandrodaf/midisampler/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testFormat = contracts.AudioFormat{Channels: 1, SampleRate: 8, SampleWidth: 2, ChunkSize: 4}

type memWriter struct {
	writes map[string][]byte
	err    error
}

func (w *memWriter) Write(path string, pcm []byte, _ wavfile.Info) error {
	if w.err != nil {
		return w.err
	}
	if w.writes == nil {
		w.writes = map[string][]byte{}
	}
	w.writes[path] = pcm
	return nil
}

func task(note uint8, settings ...grid.ParameterSetting) grid.Task {
	return grid.Task{
		Kind:     grid.KindNote,
		ID:       1,
		Note:     grid.NoteSpec{Note: note, Velocity: 100},
		Settings: settings,
		Filename: "sample.wav",
	}
}

func newRecorder(ctrl contracts.ControlChannel, w ArtifactWriter, log contracts.Logger) *Recorder {
	return New(Options{
		Control:   ctrl,
		Format:    testFormat,
		Writer:    w,
		Logger:    log,
		OutputDir: "out",
		Sustain:   time.Second,
		Tail:      time.Second,
	})
}

func TestRecordSequence(t *testing.T) {
	ctrl := &devicetest.Control{}
	capt := devicetest.NewCapture(testFormat)
	w := &memWriter{}

	readsAt := map[devicetest.EventKind]int{}
	ctrl.OnEvent = func(e devicetest.Event) { readsAt[e.Kind] = capt.Reads }

	session, _ := capt.Open()
	rec := newRecorder(ctrl, w, logger.NewNopLogger())
	path, err := rec.Record(task(60, grid.ParameterSetting{Control: 23, Value: 0}, grid.ParameterSetting{Control: 9, Value: 6}), session)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	want := []devicetest.Event{
		{Kind: devicetest.ControlChange, Data1: 23, Data2: 0},
		{Kind: devicetest.ControlChange, Data1: 9, Data2: 6},
		{Kind: devicetest.NoteOn, Data1: 60, Data2: 100},
		{Kind: devicetest.NoteOff, Data1: 60},
	}
	got := ctrl.Events()
	if len(got) != len(want) {
		t.Fatalf("events = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if readsAt[devicetest.NoteOn] != 0 || readsAt[devicetest.NoteOff] != 2 {
		t.Errorf("reads before note on/off = %d/%d, want 0/2", readsAt[devicetest.NoteOn], readsAt[devicetest.NoteOff])
	}
	if capt.Reads != 4 {
		t.Errorf("reads = %d, want 4", capt.Reads)
	}
	if path != filepath.Join("out", "sample.wav") {
		t.Errorf("path = %q", path)
	}
	if got := len(w.writes[path]); got != 4*testFormat.ChunkBytes() {
		t.Errorf("wrote %d bytes, want %d", got, 4*testFormat.ChunkBytes())
	}
}

func TestChunksPerTask(t *testing.T) {
	tests := []struct {
		name          string
		format        contracts.AudioFormat
		sustain, tail time.Duration
		want          int
	}{
		{"even", testFormat, time.Second, time.Second, 4},
		{"tail only rounds up", testFormat, time.Second, 100 * time.Millisecond, 3},
		{"reference rig", contracts.AudioFormat{Channels: 1, SampleRate: 44100, SampleWidth: 2, ChunkSize: 1024}, 2 * time.Second, 2 * time.Second, 174},
		{"no tail", testFormat, 2 * time.Second, 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capt := devicetest.NewCapture(tt.format)
			session, _ := capt.Open()
			rec := New(Options{
				Control: &devicetest.Control{},
				Format:  tt.format,
				Writer:  &memWriter{},
				Logger:  logger.NewNopLogger(),
				Sustain: tt.sustain,
				Tail:    tt.tail,
			})

			if _, err := rec.Record(task(64), session); err != nil {
				t.Fatalf("Record: %v", err)
			}
			if rec.ChunksPerTask() != tt.want || capt.Reads != tt.want {
				t.Errorf("chunks = %d, reads = %d, want %d", rec.ChunksPerTask(), capt.Reads, tt.want)
			}
		})
	}
}

func TestCaptureErrorWritesNothing(t *testing.T) {
	ctrl := &devicetest.Control{}
	capt := devicetest.NewCapture(testFormat)
	capt.FailWhen = func() error {
		if capt.Reads == 3 {
			return errors.New("overflow")
		}
		return nil
	}
	w := &memWriter{}
	session, _ := capt.Open()

	_, err := newRecorder(ctrl, w, logger.NewNopLogger()).Record(task(61), session)
	if !errors.Is(err, contracts.ErrCapture) {
		t.Fatalf("err = %v, want ErrCapture", err)
	}
	if len(w.writes) != 0 {
		t.Errorf("artifact written after a capture error: %v", w.writes)
	}
	if got := ctrl.Sounding(); len(got) != 0 {
		t.Errorf("sounding notes = %v", got)
	}
}

func TestCaptureErrorDuringSustainLeavesNoteForCaller(t *testing.T) {
	ctrl := &devicetest.Control{}
	capt := devicetest.NewCapture(testFormat)
	capt.FailWhen = func() error { return errors.New("disconnected") }
	session, _ := capt.Open()

	if _, err := newRecorder(ctrl, &memWriter{}, logger.NewNopLogger()).Record(task(61), session); err == nil {
		t.Fatal("expected an error")
	}
	if got := ctrl.Count(devicetest.NoteOff); got != 0 {
		t.Errorf("recorder sent %d note offs", got)
	}
}

func TestControlErrorsDoNotStopCapture(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctrl := &devicetest.Control{SendErr: errors.New("port closed")}
	capt := devicetest.NewCapture(testFormat)
	w := &memWriter{}
	session, _ := capt.Open()

	path, err := newRecorder(ctrl, w, logger.NewZapLoggerFrom(zap.New(core))).Record(task(62), session)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, ok := w.writes[path]; !ok {
		t.Error("artifact not written")
	}
	if capt.Reads != 4 {
		t.Errorf("reads = %d, want 4", capt.Reads)
	}
	if got := logs.FilterLevelExact(zapcore.WarnLevel).Len(); got != 2 {
		t.Errorf("got %d warnings, want 2", got)
	}
}

func TestWriteErrorIsReturned(t *testing.T) {
	capt := devicetest.NewCapture(testFormat)
	session, _ := capt.Open()
	w := &memWriter{err: errors.New("disk full")}

	if _, err := newRecorder(&devicetest.Control{}, w, logger.NewNopLogger()).Record(task(60), session); err == nil {
		t.Fatal("expected an error")
	}
}

func TestRecordWritesWav(t *testing.T) {
	dir := t.TempDir()
	capt := devicetest.NewCapture(testFormat)
	session, _ := capt.Open()
	rec := New(Options{
		Control:   &devicetest.Control{},
		Format:    testFormat,
		Logger:    logger.NewNopLogger(),
		OutputDir: dir,
		Sustain:   time.Second,
		Tail:      time.Second,
	})

	path, err := rec.Record(task(60), session)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("artifact missing: %v", err)
	}
}
