package enrich

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/outreach-labs/leadgen-cli/internal/fetch"
	"github.com/outreach-labs/leadgen-cli/internal/ledger"
	"github.com/outreach-labs/leadgen-cli/internal/model"
	"github.com/outreach-labs/leadgen-cli/internal/sink"
)

const (
	defaultWorkers = 10
	politeSleepMin = 50 * time.Millisecond
	politeSleepMax = 200 * time.Millisecond
)

// Stats summarizes one batch run.
type Stats struct {
	Received   int
	Persisted  int
	BigCompany int
	Duplicates int
}

// Runner enriches a batch of records concurrently, appending each finished
// record to the sink right away so an interrupted run loses at most the
// records still in flight.
type Runner struct {
	enricher   *Enricher
	sink       *sink.CSVSink
	ledger     *ledger.Ledger
	checkpoint *ledger.Checkpoint
	workers    int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets the number of concurrent enrichment workers.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithCheckpoint enables periodic ledger snapshots.
func WithCheckpoint(c *ledger.Checkpoint) RunnerOption {
	return func(r *Runner) { r.checkpoint = c }
}

// NewRunner wires an enricher to its output sink and dedup ledger.
func NewRunner(e *Enricher, s *sink.CSVSink, l *ledger.Ledger, opts ...RunnerOption) *Runner {
	r := &Runner{
		enricher: e,
		sink:     s,
		ledger:   l,
		workers:  defaultWorkers,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes all records. Filtering runs sequentially up front so the
// dedup check sees a stable ledger; enrichment fans out across workers.
// Individual record failures are counted, not fatal. Run returns an error
// only when the context is canceled or a record could not be persisted
// anywhere, not even in the sink's emergency sidecar.
func (r *Runner) Run(ctx context.Context, records []model.CompanyRecord) (Stats, error) {
	stats := Stats{Received: len(records)}

	var todo []*model.CompanyRecord
	batchSeen := make(map[[2]string]bool)
	for i := range records {
		rec := &records[i]
		switch r.enricher.Filter(rec, r.ledger) {
		case SkipBigCompany:
			stats.BigCompany++
			continue
		case SkipDuplicate:
			stats.Duplicates++
			continue
		}
		key := rec.Key()
		nc := [2]string{key.Nome, key.Comune}
		if batchSeen[nc] {
			stats.Duplicates++
			continue
		}
		batchSeen[nc] = true
		todo = append(todo, rec)
	}

	zap.L().Info("enrich: batch filtered",
		zap.Int("received", stats.Received),
		zap.Int("to_process", len(todo)),
		zap.Int("big_company", stats.BigCompany),
		zap.Int("duplicates", stats.Duplicates),
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	var persisted atomic.Int64
	for _, rec := range todo {
		g.Go(func() error {
			fetch.PoliteSleep(gCtx, politeSleepMin, politeSleepMax)
			if err := gCtx.Err(); err != nil {
				return err
			}

			r.enricher.Enrich(gCtx, rec)

			if err := r.sink.Append(rec); err != nil {
				return eris.Wrap(err, "enrich: persist record")
			}
			r.ledger.Add(rec.Key())
			persisted.Add(1)
			if r.checkpoint != nil {
				r.checkpoint.Tick(r.ledger)
			}
			return nil
		})
	}

	err := g.Wait()

	stats.Persisted = int(persisted.Load())
	if r.checkpoint != nil {
		if ferr := r.checkpoint.Flush(r.ledger); ferr != nil {
			zap.L().Warn("enrich: final checkpoint failed", zap.Error(ferr))
		}
	}
	if err != nil {
		return stats, eris.Wrap(err, "enrich: run batch")
	}
	return stats, nil
}
