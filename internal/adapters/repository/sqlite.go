package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okian/sppb/internal/domain/model"
	"github.com/okian/sppb/internal/domain/rules"
	"github.com/okian/sppb/pkg/logger"
	"github.com/okian/sppb/pkg/metrics"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const (
	defaultBusyTimeout = 5 * time.Second
	millisPerSecond    = 1e3
)

const schema = `
	CREATE TABLE IF NOT EXISTS score_rules (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		test     TEXT    NOT NULL,
		min_time REAL    NOT NULL,
		max_time REAL    NOT NULL,
		score    INTEGER NOT NULL,
		meaning  TEXT    NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_score_rules_test  ON score_rules(test, min_time, max_time);
	CREATE INDEX IF NOT EXISTS idx_score_rules_score ON score_rules(test, score);

	CREATE TABLE IF NOT EXISTS interpretation_rules (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		min_score INTEGER NOT NULL,
		max_score INTEGER NOT NULL,
		meaning   TEXT    NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_interpretation_rules ON interpretation_rules(min_score, max_score);
`

// When several rules match, the one starting latest wins, then the lowest
// score. A bound shared by adjacent rules therefore belongs to the rule that
// starts at it.
const (
	queryScore = `SELECT score FROM score_rules
		WHERE test = ? AND min_time <= ? AND max_time >= ?
		ORDER BY min_time DESC, score LIMIT 1`
	queryMeaning = `SELECT meaning FROM score_rules
		WHERE test = ? AND score = ? AND meaning <> ''
		ORDER BY min_time LIMIT 1`
	queryInterpretation = `SELECT meaning FROM interpretation_rules
		WHERE min_score <= ? AND max_score >= ?
		ORDER BY min_score, max_score LIMIT 1`
)

// SQLiteStore is the rule repository backed by a single SQLite connection.
// It is an owned handle: whoever opens it must Close it.
type SQLiteStore struct {
	db          *sql.DB
	logger      logger.Logger
	busyTimeout time.Duration
}

var _ Store = (*SQLiteStore)(nil)

// Open connects to the SQLite database at dsn (a file path or ":memory:"),
// verifies connectivity and creates the rule tables when missing.
func Open(ctx context.Context, dsn string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		logger:      logger.Discard(),
		busyTimeout: defaultBusyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := openDB("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %w", ErrUnavailable, dsn, err)
	}
	// One connection: an in-memory database lives per connection, and the
	// pipeline never issues concurrent queries.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping %q: %w", ErrUnavailable, dsn, err)
	}

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: pragma %q: %w", ErrUnavailable, p, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migration: %w", ErrUnavailable, err)
	}

	s.db = db
	s.logger.Info(ctx, "rule store connected", logger.String("dsn", dsn))
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ScoreFor implements Store.
func (s *SQLiteStore) ScoreFor(ctx context.Context, test model.TestID, seconds float64) (int, error) {
	var score int
	found, err := s.lookup(ctx, lookupScore, queryScore, []any{string(test), seconds, seconds}, &score)
	if err != nil {
		return DefaultScore, err
	}
	if !found {
		s.logger.Debug(ctx, "no score rule covers duration; using default",
			logger.String("test", string(test)),
			logger.Float64("seconds", seconds),
			logger.Int("score", DefaultScore),
		)
		return DefaultScore, nil
	}
	return score, nil
}

// MeaningFor implements Store.
func (s *SQLiteStore) MeaningFor(ctx context.Context, test model.TestID, score int) (string, error) {
	var meaning string
	found, err := s.lookup(ctx, lookupMeaning, queryMeaning, []any{string(test), score}, &meaning)
	if err != nil {
		return NoInterpretation, err
	}
	if !found {
		s.logger.Debug(ctx, "no meaning for score", logger.String("test", string(test)), logger.Int("score", score))
		return NoInterpretation, nil
	}
	return meaning, nil
}

// InterpretationFor implements Store.
func (s *SQLiteStore) InterpretationFor(ctx context.Context, composite int) (string, error) {
	var meaning string
	found, err := s.lookup(ctx, lookupInterpretation, queryInterpretation, []any{composite, composite}, &meaning)
	if err != nil {
		return NoInterpretation, err
	}
	if !found || meaning == "" {
		if found {
			metrics.RecordRuleFallback(lookupInterpretation)
		}
		s.logger.Debug(ctx, "no interpretation for composite", logger.Int("composite", composite))
		return NoInterpretation, nil
	}
	return meaning, nil
}

// lookup runs a single-row query. Only sql.ErrNoRows is a miss; every other
// failure is a store fault.
func (s *SQLiteStore) lookup(ctx context.Context, name, query string, args []any, dest any) (bool, error) {
	start := time.Now()
	err := s.db.QueryRowContext(ctx, query, args...).Scan(dest)
	metrics.RecordRepositoryQueryLatency(name, float64(time.Since(start).Microseconds())/millisPerSecond)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		metrics.RecordRuleFallback(name)
		return false, nil
	default:
		metrics.RecordRepositoryError(name)
		s.logger.Error(ctx, "rule lookup failed", logger.String("lookup", name), logger.Error(err))
		return false, fmt.Errorf("%w: %s lookup: %w", ErrUnavailable, name, err)
	}
}

// Seed replaces both rule tables with t in one transaction.
func (s *SQLiteStore) Seed(ctx context.Context, t rules.Table) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin seed: %w", ErrUnavailable, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM score_rules`); err != nil {
		return fmt.Errorf("%w: clear score rules: %w", ErrUnavailable, err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM interpretation_rules`); err != nil {
		return fmt.Errorf("%w: clear interpretation rules: %w", ErrUnavailable, err)
	}
	for _, r := range t.Scores {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO score_rules (test, min_time, max_time, score, meaning) VALUES (?, ?, ?, ?, ?)`,
			string(r.Test), r.MinTime, r.MaxTime, r.Score, r.Meaning,
		); err != nil {
			return fmt.Errorf("%w: insert score rule: %w", ErrUnavailable, err)
		}
	}
	for _, r := range t.Interpretations {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO interpretation_rules (min_score, max_score, meaning) VALUES (?, ?, ?)`,
			r.MinScore, r.MaxScore, r.Meaning,
		); err != nil {
			return fmt.Errorf("%w: insert interpretation rule: %w", ErrUnavailable, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit seed: %w", ErrUnavailable, err)
	}
	s.logger.Info(ctx, "rule tables seeded",
		logger.Int("score_rules", len(t.Scores)),
		logger.Int("interpretation_rules", len(t.Interpretations)),
	)
	return nil
}

// Table reads both rule tables back, ordered by test and interval start.
func (s *SQLiteStore) Table(ctx context.Context) (rules.Table, error) {
	var t rules.Table

	rows, err := s.db.QueryContext(ctx,
		`SELECT test, min_time, max_time, score, meaning FROM score_rules ORDER BY test, min_time, max_time`)
	if err != nil {
		return rules.Table{}, fmt.Errorf("%w: read score rules: %w", ErrUnavailable, err)
	}
	for rows.Next() {
		var r rules.ScoreRule
		var test string
		if err := rows.Scan(&test, &r.MinTime, &r.MaxTime, &r.Score, &r.Meaning); err != nil {
			_ = rows.Close()
			return rules.Table{}, fmt.Errorf("%w: scan score rule: %w", ErrUnavailable, err)
		}
		r.Test = model.TestID(test)
		t.Scores = append(t.Scores, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return rules.Table{}, fmt.Errorf("%w: read score rules: %w", ErrUnavailable, err)
	}
	_ = rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT min_score, max_score, meaning FROM interpretation_rules ORDER BY min_score, max_score`)
	if err != nil {
		return rules.Table{}, fmt.Errorf("%w: read interpretation rules: %w", ErrUnavailable, err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var r rules.InterpretationRule
		if err := rows.Scan(&r.MinScore, &r.MaxScore, &r.Meaning); err != nil {
			return rules.Table{}, fmt.Errorf("%w: scan interpretation rule: %w", ErrUnavailable, err)
		}
		t.Interpretations = append(t.Interpretations, r)
	}
	if err := rows.Err(); err != nil {
		return rules.Table{}, fmt.Errorf("%w: read interpretation rules: %w", ErrUnavailable, err)
	}
	return t, nil
}

// Count returns the number of score and interpretation rules stored.
func (s *SQLiteStore) Count(ctx context.Context) (scores, interpretations int, err error) {
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM score_rules`).Scan(&scores); err != nil {
		return 0, 0, fmt.Errorf("%w: count score rules: %w", ErrUnavailable, err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interpretation_rules`).Scan(&interpretations); err != nil {
		return 0, 0, fmt.Errorf("%w: count interpretation rules: %w", ErrUnavailable, err)
	}
	return scores, interpretations, nil
}
