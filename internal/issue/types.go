// Package issue defines the shared data model passed between the audit, fix,
// and judge phases: detected issues, per-file plans, fix outcomes, and judge
// verdicts.
package issue

import (
	"sort"
	"strings"
)

// Issue represents one detected problem in one file. Line 0 means the issue
// applies to the whole file.
type Issue struct {
	File           string   `json:"file"`
	Line           int      `json:"line,omitempty"`
	Category       Category `json:"category"`
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	FixInstruction string   `json:"fix_instruction,omitempty"`
}

// FixOutcome records what the fixer did to one file.
type FixOutcome struct {
	File            string    `json:"file"`
	Modified        bool      `json:"modified"`
	IssuesAddressed int       `json:"issues_addressed"`
	Status          FixStatus `json:"status"`
	Err             string    `json:"error,omitempty"`
}

// ModifiedCount returns how many outcomes actually changed a file.
func ModifiedCount(outcomes []FixOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Modified {
			n++
		}
	}
	return n
}

// Verdict is the judge phase's classification of the run so far.
type Verdict struct {
	AllPassed bool        `json:"all_passed"`
	Total     int         `json:"total"`
	Passed    int         `json:"passed"`
	Failed    int         `json:"failed"`
	Status    JudgeStatus `json:"status"`
	Action    Action      `json:"action"`
	Reason    string      `json:"reason,omitempty"`
}

// Consistent reports whether the verdict's counts satisfy
// total = passed + failed with no negative values.
func (v Verdict) Consistent() bool {
	return v.Total >= 0 && v.Passed >= 0 && v.Failed >= 0 && v.Total == v.Passed+v.Failed
}

// DisplayReason returns the reason capped at max runes for rendering.
// Decision-making always uses the full reason; only display truncates.
func (v Verdict) DisplayReason(max int) string {
	r := strings.TrimSpace(v.Reason)
	if max <= 0 || len([]rune(r)) <= max {
		return r
	}
	runes := []rune(r)
	return string(runes[:max]) + "..."
}

// SortIssues orders issues by severity (CRITICAL first), then by line number.
// The sort is stable so detection order breaks ties.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		oi, oj := issues[i].Severity.order(), issues[j].Severity.order()
		if oi != oj {
			return oi < oj
		}
		return issues[i].Line < issues[j].Line
	})
}
