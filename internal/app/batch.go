package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/okian/sppb/internal/adapters/batch"
	"github.com/okian/sppb/pkg/logger"
)

// BatchStats summarizes one batch run.
type BatchStats struct {
	Rows               int
	Pass               int
	Fail               int
	Errors             int
	GenerationFailures int
}

// RunBatch processes every row of in, in input order, and writes each row
// with its result columns to out. A failing row is recorded as ERROR and the
// batch continues; only output failures and cancellation stop it.
func (r *Runner) RunBatch(ctx context.Context, in io.Reader, out io.Writer) (BatchStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats BatchStats
	reader := batch.NewReader(in)
	writer := batch.NewWriter(out)
	r.logger.Info(ctx, "batch started")

	for {
		if err := ctx.Err(); err != nil {
			r.logger.Warn(ctx, "batch aborted", logger.Int("rows", stats.Rows), logger.Error(err))
			return stats, fmt.Errorf("batch aborted after %d rows: %w", stats.Rows, err)
		}
		row, readErr := reader.Next()
		if errors.Is(readErr, io.EOF) {
			break
		}

		res := r.processRow(ctx, row, readErr)
		if err := writer.Write(row, res.Result); err != nil {
			return stats, err
		}

		stats.Rows++
		switch res.Status {
		case batch.StatusPass:
			stats.Pass++
		case batch.StatusFail:
			stats.Fail++
		case batch.StatusError:
			stats.Errors++
		}
		if res.GenerationFailed {
			stats.GenerationFailures++
		}
		r.record(string(res.Status))

		if stats.Rows%r.progressEvery == 0 {
			r.logger.Info(ctx, "batch progress",
				logger.Int("row", row.Line),
				logger.String("status", string(res.Status)),
				logger.Int("composite", res.Composite),
			)
		}
	}

	r.logger.Info(ctx, "batch finished",
		logger.Int("rows", stats.Rows),
		logger.Int("pass", stats.Pass),
		logger.Int("fail", stats.Fail),
		logger.Int("errors", stats.Errors),
		logger.Int("generation_failures", stats.GenerationFailures),
	)
	return stats, nil
}

type rowResult struct {
	batch.Result
	GenerationFailed bool
}

func (r *Runner) processRow(ctx context.Context, row batch.Row, readErr error) rowResult {
	fail := func(err error) rowResult {
		r.logger.Warn(ctx, "batch row failed", logger.Int("row", row.Line), logger.Error(err))
		return rowResult{Result: batch.Result{Composite: 0, Status: batch.StatusError, Error: err.Error()}}
	}
	if readErr != nil {
		return fail(readErr)
	}
	c, expected, err := row.Parse()
	if err != nil {
		return fail(err)
	}
	outcome, err := r.assess(ctx, c)
	if err != nil {
		return fail(err)
	}

	res := rowResult{Result: batch.Result{
		Composite: outcome.Facts.Composite,
		Status:    batch.Verify(outcome.Facts.Composite, expected),
		Report:    outcome.Report,
	}}
	if outcome.GenerationErr != nil {
		res.GenerationFailed = true
		res.Report = "generation failed: " + GenerationCause(outcome.GenerationErr).Error()
	}
	return res
}
