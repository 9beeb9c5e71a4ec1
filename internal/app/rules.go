package service

import (
	"context"
	"fmt"

	"github.com/okian/sppb/internal/domain/rules"
	"github.com/okian/sppb/pkg/logger"
	"github.com/okian/sppb/pkg/metrics"
)

// RuleStore is the part of the rule store that rule preparation needs.
type RuleStore interface {
	Count(ctx context.Context) (scores, interpretations int, err error)
	Seed(ctx context.Context, t rules.Table) error
	Table(ctx context.Context) (rules.Table, error)
}

// RuleSetup controls PrepareRules.
type RuleSetup struct {
	// File is a YAML rule table; empty means the embedded default.
	File string
	// Reseed replaces stored rules even when the store is not empty.
	Reseed bool
	// Strict turns coverage issues into an error.
	Strict bool
}

// PrepareRules seeds the store when it is empty or reseeding is requested,
// then validates what the store holds. Issues are logged and counted; in
// strict mode they are returned as an error wrapping ErrRules.
func PrepareRules(ctx context.Context, store RuleStore, setup RuleSetup, log logger.Logger) (rules.Issues, error) {
	if log == nil {
		log = logger.Discard()
	}

	scores, interps, err := store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if setup.Reseed || scores+interps == 0 {
		table, err := loadTable(setup.File)
		if err != nil {
			return nil, err
		}
		if err := store.Seed(ctx, table); err != nil {
			return nil, err
		}
	}

	table, err := store.Table(ctx)
	if err != nil {
		return nil, err
	}
	issues := rules.Validate(table)
	metrics.UpdateRuleIssues(len(issues))
	for _, issue := range issues {
		log.Warn(ctx, "rule coverage issue",
			logger.String("kind", string(issue.Kind)),
			logger.String("test", string(issue.Test)),
			logger.String("detail", issue.Detail),
		)
	}
	if setup.Strict && len(issues) > 0 {
		return issues, fmt.Errorf("%w: %w", ErrRules, issues)
	}
	log.Info(ctx, "rule tables ready",
		logger.Int("score_rules", len(table.Scores)),
		logger.Int("interpretation_rules", len(table.Interpretations)),
		logger.Int("issues", len(issues)),
	)
	return issues, nil
}

func loadTable(path string) (rules.Table, error) {
	if path == "" {
		return rules.Default()
	}
	return rules.LoadFile(path)
}
