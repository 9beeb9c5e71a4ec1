package rules

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/sppb/internal/domain/model"
)

// IssueKind classifies a coverage problem.
type IssueKind string

// Issue kinds reported by Validate.
const (
	IssueMissingTest     IssueKind = "missing_test"
	IssueInverted        IssueKind = "inverted_interval"
	IssueGap             IssueKind = "gap"
	IssueOpenEnd         IssueKind = "open_end"
	IssueOverlap         IssueKind = "overlap"
	IssueMissingMeaning  IssueKind = "missing_meaning"
	IssueMeaningConflict IssueKind = "meaning_conflict"
)

// Issue is one coverage problem found in a rule table. Test is empty for
// interpretation issues.
type Issue struct {
	Kind   IssueKind
	Test   model.TestID
	Detail string
}

func (i Issue) String() string {
	scope := "interpretation"
	if i.Test != "" {
		scope = string(i.Test)
	}
	return fmt.Sprintf("%s: %s: %s", scope, i.Kind, i.Detail)
}

// Issues is the result of a validation pass.
type Issues []Issue

func (is Issues) Error() string {
	parts := make([]string, len(is))
	for i, issue := range is {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("%s: %d issue(s): %s", ErrCoverage, len(is), strings.Join(parts, "; "))
}

func (is Issues) Unwrap() error { return ErrCoverage }

// Err returns the issues as an error, or nil when there are none.
func (is Issues) Err() error {
	if len(is) == 0 {
		return nil
	}
	return is
}

type validator struct {
	issues Issues
}

func (v *validator) add(kind IssueKind, test model.TestID, format string, args ...any) {
	v.issues = append(v.issues, Issue{Kind: kind, Test: test, Detail: fmt.Sprintf(format, args...)})
}

// Validate checks that, for every test, the score rules cover [0, +Inf)
// without gaps or overlaps and that every score has meaning text, and that
// interpretation rules cover 0..MaxComposite the same way. Adjacent duration
// rules must share their bound; the shared point belongs to the rule that
// starts at it.
func Validate(t Table) Issues {
	v := &validator{}
	for _, test := range model.BatteryOrder {
		v.scoreRules(test, t.ForTest(test))
	}
	v.interpretations(t.Interpretations, t.MaxComposite())
	return v.issues
}

func (v *validator) scoreRules(test model.TestID, rs []ScoreRule) {
	if len(rs) == 0 {
		v.add(IssueMissingTest, test, "no score rules")
		return
	}

	meanings := make(map[int]string)
	valid := make([]ScoreRule, 0, len(rs))
	for _, r := range rs {
		if r.MinTime > r.MaxTime {
			v.add(IssueInverted, test, "[%g, %g] score %d", r.MinTime, r.MaxTime, r.Score)
			continue
		}
		if strings.TrimSpace(r.Meaning) == "" {
			v.add(IssueMissingMeaning, test, "score %d has no meaning text", r.Score)
		} else if prev, ok := meanings[r.Score]; ok && prev != r.Meaning {
			v.add(IssueMeaningConflict, test, "score %d has more than one meaning", r.Score)
		} else {
			meanings[r.Score] = r.Meaning
		}
		valid = append(valid, r)
	}
	if len(valid) == 0 {
		return
	}

	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].MinTime == valid[j].MinTime {
			return valid[i].MaxTime < valid[j].MaxTime
		}
		return valid[i].MinTime < valid[j].MinTime
	})

	if valid[0].MinTime > 0 {
		v.add(IssueGap, test, "[0, %g) is not covered", valid[0].MinTime)
	}
	end := valid[0].MaxTime
	for _, r := range valid[1:] {
		switch {
		case r.MinTime < end:
			v.add(IssueOverlap, test, "[%g, %g] overlaps a rule ending at %g", r.MinTime, r.MaxTime, end)
		case r.MinTime > end:
			v.add(IssueGap, test, "(%g, %g) is not covered", end, r.MinTime)
		}
		if r.MaxTime > end {
			end = r.MaxTime
		}
	}
	if !math.IsInf(end, 1) {
		v.add(IssueOpenEnd, test, "durations above %g are not covered", end)
	}
}

func (v *validator) interpretations(rs []InterpretationRule, maxComposite int) {
	if len(rs) == 0 {
		v.add(IssueGap, "", "no interpretation rules for 0..%d", maxComposite)
		return
	}

	valid := make([]InterpretationRule, 0, len(rs))
	for _, r := range rs {
		if r.MinScore > r.MaxScore {
			v.add(IssueInverted, "", "[%d, %d]", r.MinScore, r.MaxScore)
			continue
		}
		if strings.TrimSpace(r.Meaning) == "" {
			v.add(IssueMissingMeaning, "", "[%d, %d] has no meaning text", r.MinScore, r.MaxScore)
		}
		valid = append(valid, r)
	}
	if len(valid) == 0 {
		return
	}

	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].MinScore == valid[j].MinScore {
			return valid[i].MaxScore < valid[j].MaxScore
		}
		return valid[i].MinScore < valid[j].MinScore
	})

	if valid[0].MinScore > 0 {
		v.add(IssueGap, "", "scores 0..%d are not covered", valid[0].MinScore-1)
	}
	end := valid[0].MaxScore
	for _, r := range valid[1:] {
		switch {
		case r.MinScore <= end:
			v.add(IssueOverlap, "", "[%d, %d] overlaps a rule ending at %d", r.MinScore, r.MaxScore, end)
		case r.MinScore > end+1:
			v.add(IssueGap, "", "scores %d..%d are not covered", end+1, r.MinScore-1)
		}
		if r.MaxScore > end {
			end = r.MaxScore
		}
	}
	if end < maxComposite {
		v.add(IssueGap, "", "scores %d..%d are not covered", end+1, maxComposite)
	}
}
