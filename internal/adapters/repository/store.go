// Package repository provides the read-only rule store the scoring pipeline
// queries, backed by SQLite.
package repository

import (
	"context"

	"github.com/okian/sppb/internal/domain/model"
)

// Fallback values for lookups that match no rule.
const (
	DefaultScore     = 0
	NoInterpretation = "no interpretation available"
)

// Lookup names used for metrics and logs.
const (
	lookupScore          = "score"
	lookupMeaning        = "meaning"
	lookupInterpretation = "interpretation"
)

// Store answers the three rule queries of the scoring pipeline. All methods
// are read-only and return identical results for identical arguments while
// the underlying tables are unchanged.
type Store interface {
	// ScoreFor returns the score of the rule for test whose inclusive
	// interval contains seconds, or DefaultScore when none does.
	ScoreFor(ctx context.Context, test model.TestID, seconds float64) (int, error)

	// MeaningFor returns the meaning text of (test, score), or
	// NoInterpretation when the pair has none.
	MeaningFor(ctx context.Context, test model.TestID, score int) (string, error)

	// InterpretationFor returns the meaning of the interpretation rule whose
	// inclusive interval contains composite, or NoInterpretation.
	InterpretationFor(ctx context.Context, composite int) (string, error)
}
