// Package batch runs per-item reconcilers over a source collection with a
// recoverable error boundary: item failures are recorded in the summary and
// the batch moves on. Cancellation is cooperative, checked between items, and
// the summary always reports the progress made so far.
package batch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"seeding-service/internal/errs"
)

// Outcome classifies what one successful reconciliation did.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeUpdated
	OutcomeSkipped
)

// Item is one unit of reconciliation work.
type Item struct {
	Name      string
	Reconcile func(ctx context.Context) (Outcome, error)
}

// ItemError records one failed item with enough detail to re-run only the
// failed subset. Kind separates bad seed data ("validation") from
// infrastructure failures ("unknown").
type ItemError struct {
	Item  string `json:"item"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// Summary accumulates the result of a batch run.
type Summary struct {
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Created   int         `json:"created"`
	Updated   int         `json:"updated"`
	Skipped   int         `json:"skipped"`
	Errors    []ItemError `json:"errors,omitempty"`
	Cancelled bool        `json:"cancelled,omitempty"`
}

// Merge folds another summary into this one (jobs with multiple phases
// report a single combined summary).
func (s *Summary) Merge(other *Summary) {
	if other == nil {
		return
	}
	s.Succeeded += other.Succeeded
	s.Failed += other.Failed
	s.Created += other.Created
	s.Updated += other.Updated
	s.Skipped += other.Skipped
	s.Errors = append(s.Errors, other.Errors...)
	s.Cancelled = s.Cancelled || other.Cancelled
}

// String renders the summary the way the jobs print it to stdout.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "succeeded=%d failed=%d (created=%d updated=%d skipped=%d)",
		s.Succeeded, s.Failed, s.Created, s.Updated, s.Skipped)
	if s.Cancelled {
		b.WriteString(" [cancelled]")
	}
	for _, e := range s.Errors {
		fmt.Fprintf(&b, "\n  FAILED %s: %s", e.Item, e.Error)
	}
	return b.String()
}

// Runner drives batches sequentially, or with a bounded worker pool when
// Workers > 1. Parallel runs are safe because every reconciler here is
// independently idempotent.
type Runner struct {
	workers int
	logger  *logrus.Entry
}

// NewRunner creates a batch runner. workers < 1 is treated as sequential.
func NewRunner(workers int, logger *logrus.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		workers: workers,
		logger:  logger.WithField("component", "batch-runner"),
	}
}

// Run reconciles every item. Item failures are recorded and the batch
// continues; a PreconditionError aborts immediately (these should be checked
// before the batch, surfacing one here means a prerequisite vanished
// mid-run). On cancellation the summary reports partial counts and the
// context error is returned alongside it.
func (r *Runner) Run(ctx context.Context, items []Item) (*Summary, error) {
	if r.workers > 1 {
		return r.runParallel(ctx, items)
	}

	summary := &Summary{}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			summary.Cancelled = true
			return summary, err
		}
		if err := r.reconcileOne(ctx, item, summary, nil); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (r *Runner) runParallel(ctx context.Context, items []Item) (*Summary, error) {
	summary := &Summary{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, item := range items {
		if err := gctx.Err(); err != nil {
			break
		}
		item := item
		g.Go(func() error {
			return r.reconcileOne(gctx, item, summary, &mu)
		})
	}

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		summary.Cancelled = true
		return summary, ctxErr
	}
	return summary, err
}

func (r *Runner) reconcileOne(ctx context.Context, item Item, summary *Summary, mu *sync.Mutex) error {
	outcome, err := item.Reconcile(ctx)

	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}

	if err != nil {
		if errs.IsPrecondition(err) {
			return err
		}
		kind := "unknown"
		entry := r.logger.WithError(err).WithField("item", item.Name)
		if errs.IsValidation(err) {
			kind = "validation"
			entry.Warn("Item reconciliation failed")
		} else {
			entry.Error("Item reconciliation failed")
		}
		summary.Failed++
		summary.Errors = append(summary.Errors, ItemError{Item: item.Name, Kind: kind, Error: err.Error()})
		return nil
	}

	summary.Succeeded++
	switch outcome {
	case OutcomeCreated:
		summary.Created++
	case OutcomeUpdated:
		summary.Updated++
	case OutcomeSkipped:
		summary.Skipped++
	}
	return nil
}
