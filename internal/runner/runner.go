// Package runner retries each plan until a pass completes without failures
// and only then persists its metadata.
package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/leandrodaf/midisampler/internal/grid"
	"github.com/leandrodaf/midisampler/internal/metadata"
	"github.com/leandrodaf/midisampler/internal/orchestrator"
	"github.com/leandrodaf/midisampler/sdk/contracts"
)

// ErrPassLimit is returned when a plan still has failures after MaxPasses passes.
var ErrPassLimit = errors.New("pass limit reached")

// Orchestrator runs a single pass over a plan.
type Orchestrator interface {
	RunPass(ctx context.Context, plan orchestrator.Plan) (orchestrator.PassResult, error)
}

// Options configures a Controller.
type Options struct {
	Orchestrator Orchestrator
	Logger       contracts.Logger

	// MetadataDir receives the description exports; WriteMetadata turns them on.
	MetadataDir   string
	WriteMetadata bool
	// ExportName names the export of a plan. Required when WriteMetadata is set.
	ExportName func(kind grid.Kind, id int) string

	MaxPasses  int           // 0 retries until clean.
	RetryDelay time.Duration // Pause between passes of the same plan.
}

// Report summarizes a plan that completed cleanly.
type Report struct {
	Kind         grid.Kind
	ID           int
	Passes       int
	Recorded     int // Across all passes.
	Existing     int // On the final pass.
	Skipped      int // On the final pass; dry runs only.
	MetadataPath string
}

// Controller owns the retry loop.
type Controller struct {
	opts Options
}

// New returns a Controller.
func New(opts Options) *Controller {
	return &Controller{opts: opts}
}

// Run completes every plan in order and stops at the first error.
func (c *Controller) Run(ctx context.Context, plans []orchestrator.Plan) ([]Report, error) {
	reports := make([]Report, 0, len(plans))
	for _, plan := range plans {
		report, err := c.RunPlan(ctx, plan)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// RunPlan repeats passes over plan until one has no failures, then writes
// that pass's metadata rows. Rows from failed passes are discarded.
func (c *Controller) RunPlan(ctx context.Context, plan orchestrator.Plan) (Report, error) {
	log := c.opts.Logger
	report := Report{Kind: plan.Kind, ID: plan.ID}

	log.Info("Starting plan",
		log.Field().String("plan", fmt.Sprintf("%s %d", plan.Kind, plan.ID)),
		log.Field().Int("tasks", len(plan.Tasks)))

	for {
		if c.opts.MaxPasses > 0 && report.Passes >= c.opts.MaxPasses {
			return report, fmt.Errorf("%w: %s %d still failing after %d passes",
				ErrPassLimit, plan.Kind, plan.ID, report.Passes)
		}

		res, err := c.opts.Orchestrator.RunPass(ctx, plan)
		report.Passes++
		report.Recorded += len(res.Recorded)
		if err != nil {
			return report, err
		}

		if res.Clean() {
			report.Existing = len(res.Existing)
			report.Skipped = len(res.Skipped)
			if c.opts.WriteMetadata {
				path := filepath.Join(c.opts.MetadataDir, c.opts.ExportName(plan.Kind, plan.ID))
				if err := metadata.WriteCSV(path, res.Rows); err != nil {
					return report, fmt.Errorf("write metadata: %w", err)
				}
				report.MetadataPath = path
				log.Info("Metadata saved", log.Field().String("file", path), log.Field().Int("rows", len(res.Rows)))
			}
			return report, nil
		}

		log.Warn("Pass had failures, retrying",
			log.Field().String("plan", fmt.Sprintf("%s %d", plan.Kind, plan.ID)),
			log.Field().Int("pass", report.Passes),
			log.Field().Int("failed", len(res.Failed)))
		if err := wait(ctx, c.opts.RetryDelay); err != nil {
			return report, err
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
