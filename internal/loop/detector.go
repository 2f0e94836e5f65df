package loop

import (
	"fmt"

	"github.com/dshills/fixloop/internal/issue"
)

// Terminal classifies how a run ended.
type Terminal string

const (
	// TerminalNone means the loop should continue with another iteration.
	TerminalNone Terminal = ""
	// TerminalSuccess means no issues remain or the judge confirmed a pass.
	TerminalSuccess Terminal = "SUCCESS"
	// TerminalPartial means issues were detected but no file was modified:
	// the loop stalled and more iterations cannot make progress.
	TerminalPartial Terminal = "PARTIAL"
	// TerminalNeedsHuman means the judge escalated to manual review.
	TerminalNeedsHuman Terminal = "NEEDS_HUMAN"
	// TerminalStopped means the judge called a stop without a clean pass.
	TerminalStopped Terminal = "STOPPED"
	// TerminalMaxIterations means the iteration budget ran out.
	TerminalMaxIterations Terminal = "MAX_ITERATIONS"
)

// Decide evaluates the transition rules against the state after a completed
// phase and returns the terminal outcome, or TerminalNone to continue.
// Rules are evaluated in strict precedence order:
//
//  1. empty plan: nothing to fix, success regardless of anything else
//  2. judge escalation overrides even a clean pass
//  3. judge stop (a pass becomes SUCCESS, anything else STOPPED)
//  4. iteration budget exhausted
//  5. stall: issues detected but zero files modified
//
// Rule 5 is the loop's key safety property: a fixer that cannot act on
// detected issues is caught after one iteration instead of burning the
// remaining budget.
func Decide(s State) (Terminal, string) {
	if s.Plan.Empty() {
		return TerminalSuccess, "no issues found"
	}
	if s.Verdict.Action == issue.ActionRequireHuman {
		return TerminalNeedsHuman, reasonOr(s.Verdict, "judge requires human review")
	}
	if s.Verdict.Action == issue.ActionStop {
		if s.Verdict.AllPassed {
			return TerminalSuccess, reasonOr(s.Verdict, "all tests passed")
		}
		return TerminalStopped, reasonOr(s.Verdict, "judge stopped the run")
	}
	if s.Iteration >= s.MaxIterations {
		return TerminalMaxIterations, fmt.Sprintf("iteration budget exhausted after %d iterations", s.Iteration)
	}
	if issue.ModifiedCount(s.Outcomes) == 0 {
		return TerminalPartial, fmt.Sprintf("stall: %d issue(s) detected but no file was modified", s.Plan.Total())
	}
	return TerminalNone, ""
}

func reasonOr(v issue.Verdict, fallback string) string {
	if v.Reason != "" {
		return v.Reason
	}
	return fallback
}
