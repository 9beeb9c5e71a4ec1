// Package report turns a fact set into a narrative through a constrained,
// single-turn call to a text-generation backend.
package report

import (
	"context"
	"time"

	"github.com/okian/sppb/internal/domain/model"
	"github.com/okian/sppb/pkg/logger"
	"github.com/okian/sppb/pkg/metrics"
)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "gemma3:1b"

// Generator performs one synchronous, non-streaming generation call.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Option applies a configuration option to the Synthesizer.
type Option func(*Synthesizer)

// WithModel sets the model identifier passed to the generator.
func WithModel(name string) Option {
	return func(s *Synthesizer) {
		if name != "" {
			s.model = name
		}
	}
}

// WithLanguage sets the language the narrative must be written in.
func WithLanguage(lang string) Option {
	return func(s *Synthesizer) {
		if lang != "" {
			s.prompt.Language = lang
		}
	}
}

// WithOpening sets the phrase the narrative must begin with.
func WithOpening(phrase string) Option {
	return func(s *Synthesizer) {
		if phrase != "" {
			s.prompt.Opening = phrase
		}
	}
}

// WithForbiddenTerms replaces the terms the narrative must not mention.
func WithForbiddenTerms(terms []string) Option {
	return func(s *Synthesizer) {
		if terms != nil {
			s.prompt.ForbiddenTerms = append([]string(nil), terms...)
		}
	}
}

// WithAuditor enables post-generation auditing.
func WithAuditor(a *Auditor) Option {
	return func(s *Synthesizer) {
		s.auditor = a
	}
}

// WithLogger sets a custom logger for the synthesizer.
func WithLogger(l logger.Logger) Option {
	return func(s *Synthesizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// Synthesizer builds the grounded prompt and calls the generator once.
type Synthesizer struct {
	gen     Generator
	model   string
	prompt  PromptConfig
	auditor *Auditor
	logger  logger.Logger
}

// NewSynthesizer creates a synthesizer over gen.
func NewSynthesizer(gen Generator, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		gen:   gen,
		model: DefaultModel,
		prompt: PromptConfig{
			Language:       DefaultLanguage,
			Opening:        DefaultOpening,
			ForbiddenTerms: append([]string(nil), DefaultForbiddenTerms...),
		},
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Model returns the configured model identifier.
func (s *Synthesizer) Model() string { return s.model }

// Prompt returns the prompt Synthesize would send for fs.
func (s *Synthesizer) Prompt(fs model.FactSet) string {
	return BuildPrompt(fs, s.prompt)
}

// Synthesize returns the generated text verbatim. Any backend error becomes
// a *GenerationFailure; there is no retry.
func (s *Synthesizer) Synthesize(ctx context.Context, fs model.FactSet) (string, error) {
	prompt := s.Prompt(fs)
	s.logger.Info(ctx, "generating report",
		logger.String("case_id", fs.CaseID),
		logger.String("model", s.model),
		logger.Int("facts", fs.Len()),
	)

	start := time.Now()
	text, err := s.gen.Generate(ctx, s.model, prompt)
	metrics.RecordGenerationLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordGenerationFailure()
		s.logger.Error(ctx, "report generation failed",
			logger.String("case_id", fs.CaseID),
			logger.String("model", s.model),
			logger.Error(err),
		)
		return "", &GenerationFailure{Model: s.model, Err: err}
	}

	if s.auditor != nil {
		for _, f := range s.auditor.Audit(fs, text) {
			metrics.RecordAuditFinding(string(f.Kind))
			s.logger.Warn(ctx, "generated report departs from its instructions",
				logger.String("case_id", fs.CaseID),
				logger.String("kind", string(f.Kind)),
				logger.String("label", string(f.Label)),
				logger.String("detail", f.Detail),
			)
		}
	}
	return text, nil
}
