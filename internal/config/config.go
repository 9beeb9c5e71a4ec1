// Package config defines process configuration and how it is loaded.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address of serve mode, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite rule store, a file path or ":memory:".
	DBPath string `koanf:"db_path"`

	// RulesFile is a YAML rule table used when seeding; empty means the
	// built-in rubric.
	RulesFile string `koanf:"rules_file"`

	// SeedRules replaces stored rules on startup even when present.
	SeedRules bool `koanf:"seed_rules"`

	// StrictRules refuses to start when the rule tables have coverage issues.
	StrictRules bool `koanf:"strict_rules"`

	// OllamaURL is the generation backend address.
	OllamaURL string `koanf:"ollama_url"`

	// Model is the generation model identifier.
	Model string `koanf:"model"`

	// Language is the language the report is written in.
	Language string `koanf:"language"`

	// OpeningPhrase is the phrase every report must begin with.
	OpeningPhrase string `koanf:"opening_phrase"`

	// ForbiddenTerms must never appear in a report.
	ForbiddenTerms []string `koanf:"forbidden_terms"`

	// GenerationTimeoutMS bounds one generation call.
	GenerationTimeoutMS int `koanf:"generation_timeout_ms"`

	// AuditReports enables post-generation checks of report text.
	AuditReports bool `koanf:"audit_reports"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		DBPath:              "sppb.db",
		OllamaURL:           "http://localhost:11434",
		Model:               "gemma3:1b",
		Language:            "English",
		OpeningPhrase:       "Hello",
		ForbiddenTerms:      []string{"knowledge graph", "KG", "database"},
		GenerationTimeoutMS: 120_000,
		AuditReports:        true,
	}
}

// GenerationTimeout returns GenerationTimeoutMS as a duration.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.GenerationTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DBPath) == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.Model) == "":
		return fmt.Errorf("%w: model must not be empty", ErrInvalidConfig)
	case !strings.HasPrefix(c.OllamaURL, "http://") && !strings.HasPrefix(c.OllamaURL, "https://"):
		return fmt.Errorf("%w: ollama_url %q must be an http(s) URL", ErrInvalidConfig, c.OllamaURL)
	case c.GenerationTimeoutMS <= 0:
		return fmt.Errorf("%w: generation_timeout_ms must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}
