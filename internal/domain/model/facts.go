package model

// Label names one fact of a FactSet.
type Label string

// Fact labels in report order.
const (
	LabelBalanceSide    Label = "balance_side_meaning"
	LabelBalanceSemi    Label = "balance_semi_meaning"
	LabelBalanceTandem  Label = "balance_tandem_meaning"
	LabelGait           Label = "gait_meaning"
	LabelChair          Label = "chair_meaning"
	LabelTotalScore     Label = "total_score"
	LabelInterpretation Label = "interpretation"
)

// FactOrder is the fixed label order of every FactSet. The generation prompt
// enumerates facts in exactly this order.
var FactOrder = []Label{
	LabelBalanceSide,
	LabelBalanceSemi,
	LabelBalanceTandem,
	LabelGait,
	LabelChair,
	LabelTotalScore,
	LabelInterpretation,
}

// Fact is one resolved (label, value) pair.
type Fact struct {
	Label Label
	Value string
}

// SubScores holds the discrete score of each sub-test.
type SubScores struct {
	Side   int
	Semi   int
	Tandem int
	Gait   int
	Chair  int
}

// Sum is the plain arithmetic sum of the five sub-scores.
func (s SubScores) Sum() int {
	return s.Side + s.Semi + s.Tandem + s.Gait + s.Chair
}

// FactSet is the ordered, fully-populated fact collection of one case.
type FactSet struct {
	CaseID       string
	Scores       SubScores
	BalanceTotal int
	Composite    int
	facts        []Fact
}

// NewFactSet builds a FactSet. facts must follow FactOrder; the builder in
// package facts is the only producer.
func NewFactSet(caseID string, scores SubScores, facts []Fact) FactSet {
	cp := make([]Fact, len(facts))
	copy(cp, facts)
	return FactSet{
		CaseID:       caseID,
		Scores:       scores,
		BalanceTotal: scores.Side + scores.Semi + scores.Tandem,
		Composite:    scores.Sum(),
		facts:        cp,
	}
}

// Facts returns a copy of the facts in label order.
func (fs FactSet) Facts() []Fact {
	cp := make([]Fact, len(fs.facts))
	copy(cp, fs.facts)
	return cp
}

// Labels returns the labels in order.
func (fs FactSet) Labels() []Label {
	out := make([]Label, len(fs.facts))
	for i, f := range fs.facts {
		out[i] = f.Label
	}
	return out
}

// Value returns the value recorded under label.
func (fs FactSet) Value(label Label) (string, bool) {
	for _, f := range fs.facts {
		if f.Label == label {
			return f.Value, true
		}
	}
	return "", false
}

// Len is the number of facts.
func (fs FactSet) Len() int { return len(fs.facts) }
