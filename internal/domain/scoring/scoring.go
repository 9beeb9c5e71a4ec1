// Package scoring turns a single timed measurement into a sub-score and the
// pre-authored meaning of that sub-score.
package scoring

import (
	"context"
	"fmt"

	"github.com/okian/sppb/internal/adapters/repository"
	"github.com/okian/sppb/internal/domain/model"
	"github.com/okian/sppb/pkg/logger"
)

// Result contains the scored measurement.
type Result struct {
	Test    model.TestID
	Seconds float64
	Score   int
	Meaning string
}

// Scorer computes a sub-score from a measurement.
type Scorer interface {
	// Score resolves the measurement's sub-score and meaning, honoring ctx.
	Score(ctx context.Context, m model.Measurement) (Result, error)
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine implements Scorer on top of a rule store. It keeps no state between
// calls.
type Engine struct {
	store  repository.Store
	logger logger.Logger
}

var _ Scorer = (*Engine)(nil)

// NewEngine creates a scoring engine reading rules from store.
func NewEngine(store repository.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score looks up the interval score for m, then the meaning of that score.
// A duration no rule covers scores 0; only store faults are errors.
func (e *Engine) Score(ctx context.Context, m model.Measurement) (Result, error) {
	score, err := e.store.ScoreFor(ctx, m.Test, m.Seconds)
	if err != nil {
		return Result{}, fmt.Errorf("score %s: %w", m.Test, err)
	}
	meaning, err := e.store.MeaningFor(ctx, m.Test, score)
	if err != nil {
		return Result{}, fmt.Errorf("meaning %s: %w", m.Test, err)
	}

	e.logger.Debug(ctx, "measurement scored",
		logger.String("test", string(m.Test)),
		logger.Float64("seconds", m.Seconds),
		logger.Int("score", score),
	)

	return Result{
		Test:    m.Test,
		Seconds: m.Seconds,
		Score:   score,
		Meaning: meaning,
	}, nil
}
