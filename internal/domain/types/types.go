// Package types contains the wire shapes of the HTTP API
package types

// AssessRequest carries the five durations in seconds. Pointers distinguish
// a missing field from a zero duration.
type AssessRequest struct {
	Side   *float64 `json:"side"`
	Semi   *float64 `json:"semi"`
	Tandem *float64 `json:"tandem"`
	Gait   *float64 `json:"gait"`
	Chair  *float64 `json:"chair"`
}

// Scores are the five sub-scores of a case
type Scores struct {
	Side   int `json:"side"`
	Semi   int `json:"semi"`
	Tandem int `json:"tandem"`
	Gait   int `json:"gait"`
	Chair  int `json:"chair"`
}

// Fact is one labelled fact, in fact-set order
type Fact struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Assessment is the response of POST /assess
type Assessment struct {
	CaseID          string `json:"case_id"`
	Scores          Scores `json:"scores"`
	BalanceTotal    int    `json:"balance_total"`
	Composite       int    `json:"composite"`
	Facts           []Fact `json:"facts"`
	Report          string `json:"report,omitempty"`
	GenerationError string `json:"generation_error,omitempty"`
}

// RuleIssue is one coverage problem in the stored rules
type RuleIssue struct {
	Kind   string `json:"kind"`
	Test   string `json:"test,omitempty"`
	Detail string `json:"detail"`
}

// RuleValidation is the response of GET /rules/validate
type RuleValidation struct {
	Valid  bool        `json:"valid"`
	Issues []RuleIssue `json:"issues"`
}
