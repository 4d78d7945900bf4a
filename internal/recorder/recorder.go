// Package recorder captures a single sample task.
package recorder

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/leandrodaf/midisampler/internal/grid"
	"github.com/leandrodaf/midisampler/internal/wavfile"
	"github.com/leandrodaf/midisampler/sdk/contracts"
)

// ArtifactWriter encodes captured PCM to a file.
type ArtifactWriter interface {
	Write(path string, pcm []byte, info wavfile.Info) error
}

// Options configures a Recorder.
type Options struct {
	Control   contracts.ControlChannel
	Format    contracts.AudioFormat
	Writer    ArtifactWriter
	Logger    contracts.Logger
	OutputDir string
	Sustain   time.Duration // Time between note on and note off.
	Tail      time.Duration // Time captured after note off.

	// Describe supplies the INFO tags of an artifact. Optional.
	Describe func(grid.Task) wavfile.Info
}

// Recorder plays one task on the instrument and writes what it captured.
// It holds no state between tasks.
type Recorder struct {
	opts         Options
	sustainReads int
	tailReads    int
}

// New returns a Recorder. A nil Writer encodes WAV files in opts.Format.
func New(opts Options) *Recorder {
	if opts.Writer == nil {
		opts.Writer = wavfile.NewWriter(opts.Format)
	}
	return &Recorder{
		opts:         opts,
		sustainReads: opts.Format.ChunksFor(opts.Sustain),
		tailReads:    opts.Format.ChunksFor(opts.Tail),
	}
}

// ChunksPerTask returns how many chunks every task reads.
func (r *Recorder) ChunksPerTask() int {
	return r.sustainReads + r.tailReads
}

// Path returns where the artifact of t is written.
func (r *Recorder) Path(t grid.Task) string {
	return filepath.Join(r.opts.OutputDir, t.Filename)
}

// Record applies the task's parameter settings, plays its note and captures
// the sustain and tail from session, then writes the artifact.
//
// Control messages are best effort: a failed send is logged and capture
// continues. A capture error is returned wrapped in contracts.ErrCapture and
// nothing is written. The note is not released on failure; that is up to
// the caller.
func (r *Recorder) Record(t grid.Task, session contracts.CaptureSession) (string, error) {
	for _, s := range t.Settings {
		r.warn(r.opts.Control.ControlChange(s.Control, s.Value), "control change", t)
	}

	r.warn(r.opts.Control.NoteOn(t.Note.Note, t.Note.Velocity), "note on", t)

	pcm := make([]byte, 0, r.ChunksPerTask()*r.opts.Format.ChunkBytes())
	pcm, err := r.read(session, pcm, r.sustainReads)
	if err != nil {
		return "", err
	}

	r.warn(r.opts.Control.NoteOff(t.Note.Note), "note off", t)

	pcm, err = r.read(session, pcm, r.tailReads)
	if err != nil {
		return "", err
	}

	path := r.Path(t)
	info := wavfile.Info{Title: t.Filename}
	if r.opts.Describe != nil {
		info = r.opts.Describe(t)
	}
	if err := r.opts.Writer.Write(path, pcm, info); err != nil {
		return "", fmt.Errorf("write %s: %w", t.Filename, err)
	}
	return path, nil
}

func (r *Recorder) read(session contracts.CaptureSession, pcm []byte, chunks int) ([]byte, error) {
	for i := 0; i < chunks; i++ {
		chunk, err := session.Read()
		if err != nil {
			if !errors.Is(err, contracts.ErrCapture) {
				err = fmt.Errorf("%w: %v", contracts.ErrCapture, err)
			}
			return nil, err
		}
		pcm = append(pcm, chunk...)
	}
	return pcm, nil
}

func (r *Recorder) warn(err error, what string, t grid.Task) {
	if err == nil {
		return
	}
	r.opts.Logger.Warn("Control message dropped",
		r.opts.Logger.Field().String("message", what),
		r.opts.Logger.Field().Uint8("note", t.Note.Note),
		r.opts.Logger.Field().Error("error", err))
}
