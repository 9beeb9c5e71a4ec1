// Package service runs cases through fact aggregation and report synthesis,
// one case at a time.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/sppb/internal/domain/model"
	"github.com/okian/sppb/internal/domain/report"
	"github.com/okian/sppb/pkg/logger"
	"github.com/okian/sppb/pkg/metrics"
)

// Aggregator builds the fact set of a case.
type Aggregator interface {
	Aggregate(ctx context.Context, c model.Case) (model.FactSet, error)
	BalanceTotal(ctx context.Context, side, semi, tandem model.Measurement) (int, error)
}

// Synthesizer turns a fact set into report text.
type Synthesizer interface {
	Synthesize(ctx context.Context, fs model.FactSet) (string, error)
}

// Outcome is the result of assessing one case. A generation failure leaves
// the scores valid and is recorded in GenerationErr.
type Outcome struct {
	CaseID        string
	Facts         model.FactSet
	Report        string
	GenerationErr error
}

// Stats are the runner's counters since construction.
type Stats struct {
	Cases              int `json:"cases"`
	Pass               int `json:"pass"`
	Fail               int `json:"fail"`
	Errors             int `json:"errors"`
	GenerationFailures int `json:"generationFailures"`
	LastComposite      int `json:"lastComposite"`
}

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithLogger sets a custom logger for the runner.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithProgressEvery sets how many batch rows pass between progress logs.
func WithProgressEvery(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.progressEvery = n
		}
	}
}

// Runner processes cases sequentially. Its mutex makes concurrent callers
// take turns, so the pipeline never sees two cases at once.
type Runner struct {
	mu sync.Mutex

	aggregator    Aggregator
	synthesizer   Synthesizer
	progressEvery int
	logger        logger.Logger

	statsMu sync.RWMutex
	stats   Stats
}

// New constructs a Runner.
func New(agg Aggregator, syn Synthesizer, opts ...Option) *Runner {
	r := &Runner{
		aggregator:    agg,
		synthesizer:   syn,
		progressEvery: 1,
		logger:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Assess aggregates facts for c and synthesizes its report. Repository and
// input faults are returned; a generation failure is not.
func (r *Runner) Assess(ctx context.Context, c model.Case) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, err := r.assess(ctx, c)
	if err != nil {
		r.record(metrics.StatusError)
		return out, err
	}
	r.record(metrics.StatusScored)
	return out, nil
}

func (r *Runner) assess(ctx context.Context, c model.Case) (Outcome, error) {
	start := time.Now()
	defer func() {
		metrics.RecordCaseLatency(float64(time.Since(start).Milliseconds()))
	}()
	log := r.logger.With(logger.String("case_id", c.ID))

	fs, err := r.aggregator.Aggregate(ctx, c)
	if err != nil {
		log.Error(ctx, "fact retrieval failed", logger.Error(err))
		return Outcome{CaseID: c.ID}, err
	}
	metrics.RecordCompositeScore(fs.Composite)

	out := Outcome{CaseID: c.ID, Facts: fs}
	text, err := r.synthesizer.Synthesize(ctx, fs)
	if err != nil {
		out.GenerationErr = err
		r.bump(func(s *Stats) { s.GenerationFailures++ })
	} else {
		out.Report = text
	}
	r.bump(func(s *Stats) { s.LastComposite = fs.Composite })

	log.Info(ctx, "case assessed",
		logger.Int("composite", fs.Composite),
		logger.Bool("report", out.GenerationErr == nil),
		logger.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// GenerationCause returns the backend error behind a generation failure, or
// err itself when it is not one.
func GenerationCause(err error) error {
	var failure *report.GenerationFailure
	if errors.As(err, &failure) && failure.Err != nil {
		return failure.Err
	}
	return err
}

func (r *Runner) bump(f func(*Stats)) {
	r.statsMu.Lock()
	f(&r.stats)
	r.statsMu.Unlock()
}

func (r *Runner) record(status string) {
	metrics.RecordCase(status)
	r.bump(func(s *Stats) {
		s.Cases++
		switch status {
		case metrics.StatusPass:
			s.Pass++
		case metrics.StatusFail:
			s.Fail++
		case metrics.StatusError:
			s.Errors++
		}
	})
}

// GetStats returns a snapshot of the runner's counters.
func (r *Runner) GetStats() Stats {
	r.statsMu.RLock()
	defer r.statsMu.RUnlock()
	return r.stats
}
