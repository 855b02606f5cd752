package royalty

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"imprint/internal/core/id"
	"imprint/pkg/logger"
)

const defaultBatchWorkers = 8

// Outcome is the per-author result of a batch run. Exactly one of
// Calculations and Err is set.
type Outcome struct {
	AuthorID     id.ID
	ContractID   id.ID
	Calculations *StatementCalculations
	Err          error
}

// BatchResult aggregates a full run. Outcomes are ordered by author ID so
// repeated runs over the same population compare cleanly.
type BatchResult struct {
	Outcomes  []Outcome
	Succeeded int
	Failed    int
}

// Orchestrator fans a period run out across authors with a bounded worker
// pool. One author's failure never aborts the batch: the error is captured
// in that author's Outcome and the remaining authors proceed.
type Orchestrator struct {
	composer *Composer
	workers  int
}

// NewOrchestrator creates a batch runner over the given composer. A
// non-positive workers value falls back to defaultBatchWorkers.
func NewOrchestrator(composer *Composer, workers int) *Orchestrator {
	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	return &Orchestrator{composer: composer, workers: workers}
}

// Run composes one statement per request. Context cancellation stops new
// work from being scheduled; authors already in flight run to completion
// and their outcomes are kept. Requests never scheduled are reported as
// failed with ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, reqs []ComposeRequest) BatchResult {
	outcomes := make([]Outcome, len(reqs))
	var mu sync.Mutex

	g := &errgroup.Group{}
	g.SetLimit(o.workers)

	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			for j := i; j < len(reqs); j++ {
				outcomes[j] = Outcome{AuthorID: reqs[j].AuthorID, ContractID: reqs[j].ContractID, Err: err}
			}
			mu.Unlock()
			break
		}

		i, req := i, req
		g.Go(func() error {
			calc, err := o.composer.Compose(ctx, req)
			mu.Lock()
			outcomes[i] = Outcome{
				AuthorID:     req.AuthorID,
				ContractID:   req.ContractID,
				Calculations: calc,
				Err:          err,
			}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait() // workers never return errors; failures live in outcomes

	sort.SliceStable(outcomes, func(a, b int) bool {
		return outcomes[a].AuthorID.String() < outcomes[b].AuthorID.String()
	})

	result := BatchResult{Outcomes: outcomes}
	for _, out := range outcomes {
		if out.Err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}

	logger.Info(ctx, "statement batch finished",
		"requested", len(reqs),
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"workers", o.workers,
	)
	return result
}
