package runner

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/leandrodaf/midisampler/internal/orchestrator"
	"github.com/leandrodaf/midisampler/internal/progress"
	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user declines to start.
var ErrAborted = errors.New("aborted by user")

// Prompter asks one question. *promptui.Prompt implements it.
type Prompter interface {
	Run() (string, error)
}

// Estimate returns the capture time of every task in plans.
func Estimate(plans []orchestrator.Plan, perTask time.Duration) time.Duration {
	n := 0
	for _, p := range plans {
		n += len(p.Tasks)
	}
	return time.Duration(n) * perTask
}

// StartPrompt is the question asked before a bulk run.
func StartPrompt(plans []orchestrator.Plan, perTask time.Duration) string {
	return fmt.Sprintf("Will start sampling %d plan(s) taking approx %s, continue",
		len(plans), progress.Clock(Estimate(plans, perTask)))
}

// NewPrompt returns a yes/no question on in and out. Only "y" proceeds.
func NewPrompt(in io.Reader, out io.Writer, label string) *promptui.Prompt {
	return &promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     io.NopCloser(in),
		Stdout:    nopWriteCloser{out},
	}
}

// Confirm runs p. Declining, Ctrl+C and end of input are all ErrAborted.
func Confirm(p Prompter) error {
	_, err := p.Run()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, promptui.ErrAbort),
		errors.Is(err, promptui.ErrInterrupt),
		errors.Is(err, promptui.ErrEOF):
		return ErrAborted
	default:
		return fmt.Errorf("confirm: %w", err)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
