// Package batch fans companies out over a bounded worker pool and collects
// qualification results in input order.
package batch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sellence/leadfinder/internal/leads"
	"github.com/sellence/leadfinder/internal/progress"
)

// Config controls Runner behavior.
type Config struct {
	// Workers is the worker pool size (default 5).
	Workers int
}

// Runner dispatches Company Inspector calls across a worker pool. Each
// result slot is owned exclusively by the worker that produces it, so no
// locking is needed beyond the jobs channel and the wait group.
type Runner struct {
	cfg       Config
	inspector leads.Inspector
	emitter   progress.Emitter
	logger    *zap.Logger
}

// New constructs a Runner. emitter may be nil when progress reporting is
// not wanted.
func New(cfg Config, inspector leads.Inspector, emitter progress.Emitter, logger *zap.Logger) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, inspector: inspector, emitter: emitter, logger: logger}
}

// Run inspects every company and returns one result per input row, in
// input order. Cancelling ctx stops dispatching new work; in-flight
// inspections finish or time out, and their results are still returned.
// Rows with an empty website are marked skipped, never dropped.
func (r *Runner) Run(ctx context.Context, companies []leads.Company) []leads.Result {
	runID := uuid.New()
	start := time.Now()
	r.emit(progress.Event{RunID: runID, TS: start.UTC(), Stage: progress.StageBatchStart})

	results := make([]leads.Result, len(companies))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = r.runOne(ctx, runID, idx, companies[idx])
			}
		}()
	}

dispatch:
	for idx, company := range companies {
		if strings.TrimSpace(company.Website) == "" {
			results[idx] = leads.Result{
				Index:     idx,
				Company:   company,
				Skipped:   true,
				ErrDetail: "missing website",
			}
			r.emitDone(runID, company, results[idx])
			continue
		}
		select {
		case jobs <- idx:
		case <-ctx.Done():
			r.logger.Warn("batch interrupted, draining in-flight work",
				zap.String("run_id", runID.String()),
				zap.Int("dispatched", idx),
			)
			// Remaining rows are marked skipped so nothing is silently
			// dropped from the all-results output.
			for rest := idx; rest < len(companies); rest++ {
				if !results[rest].Skipped {
					results[rest] = leads.Result{
						Index:     rest,
						Company:   companies[rest],
						Skipped:   true,
						ErrDetail: "interrupted",
					}
				}
			}
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	r.emit(progress.Event{
		RunID: runID,
		TS:    time.Now().UTC(),
		Stage: progress.StageBatchDone,
		Dur:   time.Since(start),
	})
	return results
}

func (r *Runner) runOne(ctx context.Context, runID uuid.UUID, idx int, company leads.Company) leads.Result {
	r.emit(progress.Event{
		RunID:   runID,
		TS:      time.Now().UTC(),
		Stage:   progress.StageCompanyStart,
		Company: company.Name,
		Website: company.Website,
	})

	result := r.inspector.Inspect(ctx, company)
	result.Index = idx
	r.emitDone(runID, company, result)
	return result
}

func (r *Runner) emitDone(runID uuid.UUID, company leads.Company, result leads.Result) {
	verdict := progress.VerdictNegative
	switch {
	case result.Skipped:
		verdict = progress.VerdictSkipped
	case result.Err != nil:
		verdict = progress.VerdictError
	case result.HasPhoneField:
		verdict = progress.VerdictQualified
	}
	r.emit(progress.Event{
		RunID:   runID,
		TS:      time.Now().UTC(),
		Stage:   progress.StageCompanyDone,
		Company: company.Name,
		Website: company.Website,
		Verdict: verdict,
		Dur:     result.Elapsed,
		Note:    result.ErrDetail,
	})
}

func (r *Runner) emit(evt progress.Event) {
	if r.emitter == nil {
		return
	}
	r.emitter.Emit(evt)
}
