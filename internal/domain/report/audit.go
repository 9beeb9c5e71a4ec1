package report

import (
	"strings"

	"github.com/okian/sppb/internal/domain/model"
)

// FindingKind classifies an audit finding.
type FindingKind string

// Finding kinds reported by the Auditor.
const (
	FindingForbiddenTerm FindingKind = "forbidden_term"
	FindingMissingFact   FindingKind = "missing_fact"
	FindingOpening       FindingKind = "opening"
)

// Finding is one place where generated text departs from its instructions.
type Finding struct {
	Kind   FindingKind
	Label  model.Label
	Detail string
}

// Auditor inspects generated text after the fact. It never alters or
// rejects the text; findings are only reported.
type Auditor struct {
	opening        string
	forbiddenTerms []string
}

// NewAuditor creates an auditor checking for the given opening phrase and
// forbidden terms.
func NewAuditor(opening string, forbiddenTerms []string) *Auditor {
	terms := make([]string, len(forbiddenTerms))
	copy(terms, forbiddenTerms)
	return &Auditor{opening: opening, forbiddenTerms: terms}
}

// Audit checks text against fs. Matching is case-insensitive. Short terms
// such as "KG" only match whole words.
func (a *Auditor) Audit(fs model.FactSet, text string) []Finding {
	var findings []Finding
	lower := strings.ToLower(text)

	if a.opening != "" && !strings.HasPrefix(strings.TrimSpace(lower), strings.ToLower(a.opening)) {
		findings = append(findings, Finding{Kind: FindingOpening, Detail: "text does not begin with " + a.opening})
	}
	for _, term := range a.forbiddenTerms {
		if containsWord(lower, strings.ToLower(term)) {
			findings = append(findings, Finding{Kind: FindingForbiddenTerm, Detail: term})
		}
	}
	for _, f := range fs.Facts() {
		if f.Value == "" || strings.Contains(lower, strings.ToLower(f.Value)) {
			continue
		}
		findings = append(findings, Finding{Kind: FindingMissingFact, Label: f.Label, Detail: f.Value})
	}
	return findings
}

func containsWord(s, word string) bool {
	if word == "" {
		return false
	}
	for i := 0; ; {
		j := strings.Index(s[i:], word)
		if j < 0 {
			return false
		}
		start, end := i+j, i+j+len(word)
		if boundary(s, start-1) && boundary(s, end) {
			return true
		}
		i = start + 1
	}
}

func boundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_')
}
