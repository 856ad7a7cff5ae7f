package impl

import (
	"context"
	"log/slog"
	"time"

	"cleanops/internal/domain/repository"
	"cleanops/internal/errors"
	"cleanops/internal/usecase"

	"golang.org/x/sync/errgroup"
)

// batchCommitter groups staged writes into batches of at most maxWrites and
// commits every sealed batch in its own goroutine.
//
// Staging is single-goroutine. A failed batch never cancels the others; Wait
// returns once every commit has settled.
type batchCommitter struct {
	ctx       context.Context
	store     repository.DocumentStore
	logger    *slog.Logger
	maxWrites int
	now       func() time.Time

	group   errgroup.Group
	results []*usecase.BatchResult

	open      repository.WriteBatch
	openItems int
}

func newBatchCommitter(ctx context.Context, store repository.DocumentStore, logger *slog.Logger, maxWrites, concurrency int, now func() time.Time) *batchCommitter {
	c := &batchCommitter{
		ctx:       ctx,
		store:     store,
		logger:    logger,
		maxWrites: maxWrites,
		now:       now,
	}
	if concurrency > 0 {
		c.group.SetLimit(concurrency)
	}

	return c
}

// Stage adds one item whose writes must land in the same batch. writes is the
// number of operations stage will add.
func (c *batchCommitter) Stage(writes int, stage func(batch repository.WriteBatch)) {
	if c.open != nil && c.open.Len()+writes > c.maxWrites {
		c.seal()
	}
	if c.open == nil {
		c.open = c.store.NewBatch()
	}

	stage(c.open)
	c.openItems++

	if c.open.Len() >= c.maxWrites {
		c.seal()
	}
}

// seal starts the commit of the open batch.
func (c *batchCommitter) seal() {
	batch, items := c.open, c.openItems
	c.open, c.openItems = nil, 0

	result := &usecase.BatchResult{
		Index:  len(c.results),
		Writes: batch.Len(),
		Items:  items,
	}
	c.results = append(c.results, result)

	c.group.Go(func() error {
		start := c.now()
		err := batch.Commit(c.ctx)
		result.Duration = c.now().Sub(start)

		if err != nil {
			result.Err = errors.Wrapf(err, "batch %d", result.Index)
			result.Error = err.Error()
			c.logger.Error("Batch commit failed",
				slog.Int("batch", result.Index),
				slog.Int("writes", result.Writes),
				slog.Any("error", err),
			)

			return nil
		}

		c.logger.Debug("Batch committed",
			slog.Int("batch", result.Index),
			slog.Int("writes", result.Writes),
			slog.Duration("duration", result.Duration),
		)

		return nil
	})
}

// Wait seals the open batch, waits for all commits and returns their results in
// index order. The error joins ErrPartialCommit with every batch failure.
func (c *batchCommitter) Wait() ([]usecase.BatchResult, error) {
	if c.open != nil && c.open.Len() > 0 {
		c.seal()
	}
	_ = c.group.Wait()

	results := make([]usecase.BatchResult, 0, len(c.results))
	var failures []error
	for _, result := range c.results {
		results = append(results, *result)
		if result.Failed() {
			failures = append(failures, result.Err)
		}
	}
	if len(failures) > 0 {
		return results, errors.Join(append([]error{usecase.ErrPartialCommit}, failures...)...)
	}

	return results, nil
}

func countFailed(results []usecase.BatchResult) int {
	failed := 0
	for i := range results {
		if results[i].Failed() {
			failed++
		}
	}

	return failed
}
