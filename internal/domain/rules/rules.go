// Package rules defines the scoring and interpretation rule tables and their
// coverage validation.
package rules

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/okian/sppb/internal/domain/model"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTable []byte

// ScoreRule maps a duration interval of one test to a score and its meaning.
// Both bounds are inclusive.
type ScoreRule struct {
	Test    model.TestID `yaml:"test"`
	MinTime float64      `yaml:"min_time"`
	MaxTime float64      `yaml:"max_time"`
	Score   int          `yaml:"score"`
	Meaning string       `yaml:"meaning"`
}

// Contains reports whether seconds falls inside the rule interval.
func (r ScoreRule) Contains(seconds float64) bool {
	return r.MinTime <= seconds && seconds <= r.MaxTime
}

// InterpretationRule maps a composite score interval to a meaning. Both
// bounds are inclusive.
type InterpretationRule struct {
	MinScore int    `yaml:"min_score"`
	MaxScore int    `yaml:"max_score"`
	Meaning  string `yaml:"meaning"`
}

// Contains reports whether score falls inside the rule interval.
func (r InterpretationRule) Contains(score int) bool {
	return r.MinScore <= score && score <= r.MaxScore
}

// Table is the complete rule set a repository serves.
type Table struct {
	Scores          []ScoreRule          `yaml:"scores"`
	Interpretations []InterpretationRule `yaml:"interpretations"`
}

// ForTest returns the score rules of one test in table order.
func (t Table) ForTest(test model.TestID) []ScoreRule {
	var out []ScoreRule
	for _, r := range t.Scores {
		if r.Test == test {
			out = append(out, r)
		}
	}
	return out
}

// MaxScore is the highest score any rule of test can award.
func (t Table) MaxScore(test model.TestID) int {
	best := 0
	for _, r := range t.ForTest(test) {
		if r.Score > best {
			best = r.Score
		}
	}
	return best
}

// MaxComposite is the highest attainable composite score: the sum of every
// test's maximum score.
func (t Table) MaxComposite() int {
	total := 0
	for _, test := range model.BatteryOrder {
		total += t.MaxScore(test)
	}
	return total
}

// Default returns the embedded standard rubric.
func Default() (Table, error) {
	return Load(bytes.NewReader(defaultTable))
}

// Load decodes a YAML rule table.
func Load(r io.Reader) (Table, error) {
	var t Table
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return Table{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	for i, rule := range t.Scores {
		if !rule.Test.Valid() {
			return Table{}, fmt.Errorf("%w: score rule %d: %w %q", ErrDecode, i, model.ErrUnknownTest, rule.Test)
		}
	}
	return t, nil
}

// LoadFile decodes a YAML rule table from path.
func LoadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open rule file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}
