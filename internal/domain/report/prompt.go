package report

import (
	"fmt"
	"strings"

	"github.com/okian/sppb/internal/domain/model"
)

// Prompt defaults.
const (
	DefaultLanguage = "English"
	DefaultOpening  = "Hello"
)

// DefaultForbiddenTerms name the retrieval layer; the narrative must never
// mention them.
var DefaultForbiddenTerms = []string{"knowledge graph", "KG", "database"}

var factTitles = map[model.Label]string{
	model.LabelBalanceSide:    "Balance, side-by-side stand",
	model.LabelBalanceSemi:    "Balance, semi-tandem stand",
	model.LabelBalanceTandem:  "Balance, tandem stand",
	model.LabelGait:           "Gait speed",
	model.LabelChair:          "Chair rise",
	model.LabelTotalScore:     "Total score",
	model.LabelInterpretation: "Summary",
}

// PromptConfig holds the wording knobs of the generation instructions.
type PromptConfig struct {
	Language       string
	Opening        string
	ForbiddenTerms []string
}

// RenderFact returns the text given to the model for one fact. The composite
// and its interpretation are phrased as sentences, the meanings are verbatim.
func RenderFact(f model.Fact) string {
	switch f.Label {
	case model.LabelTotalScore:
		return fmt.Sprintf("Your SPPB total score is %s points", f.Value)
	case model.LabelInterpretation:
		return fmt.Sprintf("According to the scale rules, this score means: %s", f.Value)
	default:
		return f.Value
	}
}

func factTitle(l model.Label) string {
	if t, ok := factTitles[l]; ok {
		return t
	}
	return string(l)
}

// BuildPrompt renders the single-turn instruction for fs. Facts are listed
// in fs order and numbered from 1.
func BuildPrompt(fs model.FactSet, cfg PromptConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a language assistant. Your only task is to combine the fact list below into one fluent narrative report written in %s.\n\n", cfg.Language)
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "1. Begin the report with %q.\n", cfg.Opening)
	b.WriteString("2. Mention every fact in the list, in the order given.\n")
	rule := 3
	if len(cfg.ForbiddenTerms) > 0 {
		quoted := make([]string, len(cfg.ForbiddenTerms))
		for i, t := range cfg.ForbiddenTerms {
			quoted[i] = fmt.Sprintf("%q", t)
		}
		fmt.Fprintf(&b, "%d. Never mention %s, or where the facts came from.\n", rule, strings.Join(quoted, ", "))
		rule++
	}
	fmt.Fprintf(&b, "%d. Never add information, opinions or recommendations that are not in the fact list.\n", rule)
	fmt.Fprintf(&b, "%d. Do not invent anything.\n\n", rule+1)

	b.WriteString("Fact list (the only information you may use):\n")
	for i, f := range fs.Facts() {
		fmt.Fprintf(&b, "%d. %s [%s]: %q\n", i+1, factTitle(f.Label), f.Label, RenderFact(f))
	}
	b.WriteString("\nWrite the report now:\n")
	return b.String()
}
