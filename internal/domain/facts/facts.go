// Package facts drives the scoring engine across a full case and assembles
// the ordered fact set handed to report synthesis.
package facts

import (
	"context"
	"fmt"
	"strconv"

	"github.com/okian/sppb/internal/domain/model"
	"github.com/okian/sppb/internal/domain/scoring"
	"github.com/okian/sppb/pkg/logger"
)

// Interpreter resolves a composite score into interpretation text.
type Interpreter interface {
	InterpretationFor(ctx context.Context, composite int) (string, error)
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithLogger sets a custom logger for the aggregator.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// Aggregator builds a FactSet for one case at a time.
type Aggregator struct {
	scorer      scoring.Scorer
	interpreter Interpreter
	logger      logger.Logger
}

// NewAggregator creates an aggregator over scorer and interpreter.
func NewAggregator(scorer scoring.Scorer, interpreter Interpreter, opts ...Option) *Aggregator {
	a := &Aggregator{
		scorer:      scorer,
		interpreter: interpreter,
		logger:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BalanceTotal scores the three balance holds and returns their sum. It lets
// an interactive session show the balance result before gait and chair
// times are known.
func (a *Aggregator) BalanceTotal(ctx context.Context, side, semi, tandem model.Measurement) (int, error) {
	total := 0
	for _, m := range []model.Measurement{side, semi, tandem} {
		res, err := a.scorer.Score(ctx, m)
		if err != nil {
			return 0, fmt.Errorf("balance total: %w", err)
		}
		total += res.Score
	}
	return total, nil
}

// Aggregate scores the balance holds, then gait, then chair rise, sums the
// composite and resolves its interpretation. Facts are emitted in
// model.FactOrder. Coverage gaps never abort; store faults do.
func (a *Aggregator) Aggregate(ctx context.Context, c model.Case) (model.FactSet, error) {
	var scores model.SubScores
	steps := []struct {
		m     model.Measurement
		label model.Label
		dst   *int
	}{
		{c.Side, model.LabelBalanceSide, &scores.Side},
		{c.Semi, model.LabelBalanceSemi, &scores.Semi},
		{c.Tandem, model.LabelBalanceTandem, &scores.Tandem},
		{c.Gait, model.LabelGait, &scores.Gait},
		{c.Chair, model.LabelChair, &scores.Chair},
	}

	facts := make([]model.Fact, 0, len(model.FactOrder))
	for _, step := range steps {
		res, err := a.scorer.Score(ctx, step.m)
		if err != nil {
			return model.FactSet{}, fmt.Errorf("aggregate case %s: %w", c.ID, err)
		}
		*step.dst = res.Score
		facts = append(facts, model.Fact{Label: step.label, Value: res.Meaning})
	}

	composite := scores.Sum()
	interpretation, err := a.interpreter.InterpretationFor(ctx, composite)
	if err != nil {
		return model.FactSet{}, fmt.Errorf("aggregate case %s: interpretation: %w", c.ID, err)
	}
	facts = append(facts,
		model.Fact{Label: model.LabelTotalScore, Value: strconv.Itoa(composite)},
		model.Fact{Label: model.LabelInterpretation, Value: interpretation},
	)

	fs := model.NewFactSet(c.ID, scores, facts)
	a.logger.Info(ctx, "facts retrieved",
		logger.String("case_id", c.ID),
		logger.Int("balance_total", fs.BalanceTotal),
		logger.Int("composite", fs.Composite),
	)
	return fs, nil
}
