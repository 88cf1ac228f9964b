// Package orchestrator renders segment plans on a bounded worker pool.
//
// Results are stored by the plan's position, so the returned outputs follow
// input order whatever order renders finish in. Each slot is written once by
// the goroutine that owns that index; no lock guards the slice.
//
// The first failure is returned to the caller. The errgroup context is
// cancelled at that point: plans that have not started are skipped, and
// renders already running see ctx.Done() (the ffmpeg adapter runs under
// exec.CommandContext, so the process is killed).
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/reelstitch/internal/domain/renderplan"
	"github.com/forPelevin/reelstitch/internal/errs"
	"github.com/forPelevin/reelstitch/internal/logging"
)

// DefaultWorkers caps concurrent render processes regardless of core count.
const DefaultWorkers = 4

// RenderFunc renders one plan and returns the path of the produced file.
type RenderFunc func(ctx context.Context, plan renderplan.RenderPlan) (string, error)

type Output struct {
	Index    int
	Path     string
	Duration float64
	Elapsed  time.Duration
}

type Orchestrator struct {
	workers int
	logger  *slog.Logger
}

// New returns an orchestrator running at most min(NumCPU, workers) renders
// at once. workers <= 0 selects DefaultWorkers.
func New(workers int, logger *slog.Logger) *Orchestrator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Orchestrator{workers: workers, logger: logging.NewComponentLogger(logger, "orchestrator")}
}

// PoolSize is the effective number of concurrent workers.
func (o *Orchestrator) PoolSize() int {
	return max(1, min(runtime.NumCPU(), o.workers))
}

func (o *Orchestrator) Run(ctx context.Context, plans []renderplan.RenderPlan, render RenderFunc) ([]Output, error) {
	results := make([]Output, len(plans))
	if len(plans) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.PoolSize())
	o.logger.Info("rendering segments",
		logging.Int("segments", len(plans)),
		logging.Int("workers", o.PoolSize()),
	)

	for i := range plans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plan := plans[i]
			start := time.Now()
			path, err := render(gctx, plan)
			if err != nil {
				return errs.Wrap(errs.ErrRender, fmt.Sprintf("segment %d", i), "", "", err)
			}
			results[i] = Output{
				Index:    i,
				Path:     path,
				Duration: plan.OutputDuration,
				Elapsed:  time.Since(start),
			}
			o.logger.Debug("segment rendered",
				logging.Int("segment", i),
				logging.String("path", path),
				logging.Duration("elapsed", results[i].Elapsed),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
