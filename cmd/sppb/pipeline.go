package main

import (
	"context"

	"github.com/okian/sppb/internal/adapters/generation"
	"github.com/okian/sppb/internal/adapters/repository"
	service "github.com/okian/sppb/internal/app"
	"github.com/okian/sppb/internal/config"
	"github.com/okian/sppb/internal/domain/facts"
	"github.com/okian/sppb/internal/domain/report"
	"github.com/okian/sppb/internal/domain/scoring"
	"github.com/okian/sppb/pkg/logger"
)

// pipeline owns the rule store handle; Close must run on every exit path.
type pipeline struct {
	store  *repository.SQLiteStore
	runner *service.Runner
}

func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (*repository.SQLiteStore, error) {
	return repository.Open(ctx, cfg.DBPath, repository.WithLogger(log.Named("repository")))
}

func openPipeline(ctx context.Context, cfg *config.Config, log logger.Logger) (*pipeline, error) {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	setup := service.RuleSetup{File: cfg.RulesFile, Reseed: cfg.SeedRules, Strict: cfg.StrictRules}
	if _, err := service.PrepareRules(ctx, store, setup, log.Named("rules")); err != nil {
		_ = store.Close()
		return nil, err
	}

	engine := scoring.NewEngine(store, scoring.WithLogger(log.Named("scoring")))
	agg := facts.NewAggregator(engine, store, facts.WithLogger(log.Named("facts")))

	gen := generation.New(
		generation.WithBaseURL(cfg.OllamaURL),
		generation.WithTimeout(cfg.GenerationTimeout()),
		generation.WithLogger(log.Named("generation")),
	)
	opts := []report.Option{
		report.WithModel(cfg.Model),
		report.WithLanguage(cfg.Language),
		report.WithOpening(cfg.OpeningPhrase),
		report.WithForbiddenTerms(cfg.ForbiddenTerms),
		report.WithLogger(log.Named("report")),
	}
	if cfg.AuditReports {
		opts = append(opts, report.WithAuditor(report.NewAuditor(cfg.OpeningPhrase, cfg.ForbiddenTerms)))
	}
	syn := report.NewSynthesizer(gen, opts...)

	runner := service.New(agg, syn, service.WithLogger(log.Named("runner")))
	return &pipeline{store: store, runner: runner}, nil
}

func (p *pipeline) Close() error {
	return p.store.Close()
}
