package loop

import (
	"strings"
	"testing"

	"github.com/dshills/fixloop/internal/issue"
)

func planWith(n int) *issue.Plan {
	p := issue.NewPlan()
	for i := 0; i < n; i++ {
		p.Add("a.py", issue.Issue{Description: "problem", Severity: issue.SeverityLow})
	}
	return p
}

func modified(n int) []issue.FixOutcome {
	var out []issue.FixOutcome
	for i := 0; i < n; i++ {
		out = append(out, issue.FixOutcome{File: "a.py", Modified: true, Status: issue.FixStatusFixed})
	}
	return out
}

func TestDecidePrecedence(t *testing.T) {
	tests := []struct {
		name string
		s    State
		want Terminal
	}{
		{
			"empty plan wins over everything",
			State{
				Iteration: 5, MaxIterations: 5,
				Plan:    issue.NewPlan(),
				Verdict: issue.Verdict{Action: issue.ActionRequireHuman},
			},
			TerminalSuccess,
		},
		{
			"require human beats all_passed",
			State{
				Iteration: 1, MaxIterations: 5,
				Plan:     planWith(1),
				Outcomes: modified(1),
				Verdict:  issue.Verdict{AllPassed: true, Action: issue.ActionRequireHuman},
			},
			TerminalNeedsHuman,
		},
		{
			"stop with pass is success",
			State{
				Iteration: 1, MaxIterations: 5,
				Plan:     planWith(1),
				Outcomes: modified(1),
				Verdict:  issue.Verdict{AllPassed: true, Status: issue.JudgePass, Action: issue.ActionStop},
			},
			TerminalSuccess,
		},
		{
			"stop without pass is stopped",
			State{
				Iteration: 1, MaxIterations: 5,
				Plan:     planWith(1),
				Outcomes: modified(1),
				Verdict:  issue.Verdict{AllPassed: false, Status: issue.JudgeFailUncertain, Action: issue.ActionStop},
			},
			TerminalStopped,
		},
		{
			"budget exhausted beats stall",
			State{
				Iteration: 3, MaxIterations: 3,
				Plan:    planWith(2),
				Verdict: issue.Verdict{Action: issue.ActionReturnToAudit},
			},
			TerminalMaxIterations,
		},
		{
			"stall with no progress",
			State{
				Iteration: 1, MaxIterations: 5,
				Plan: planWith(2),
				Outcomes: []issue.FixOutcome{
					{File: "a.py", Modified: false, Status: issue.FixStatusNoChange},
				},
				Verdict: issue.Verdict{Action: issue.ActionReturnToAudit},
			},
			TerminalPartial,
		},
		{
			"progress continues",
			State{
				Iteration: 1, MaxIterations: 5,
				Plan:     planWith(2),
				Outcomes: modified(1),
				Verdict:  issue.Verdict{Action: issue.ActionReturnToAudit},
			},
			TerminalNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := Decide(tt.s)
			if got != tt.want {
				t.Errorf("Decide() = %q (%s), want %q", got, msg, tt.want)
			}
			if got != TerminalNone && msg == "" {
				t.Error("terminal decision must carry a reason")
			}
		})
	}
}

func TestDecideStallMessageNamesIssueCount(t *testing.T) {
	s := State{
		Iteration: 1, MaxIterations: 9,
		Plan:    planWith(3),
		Verdict: issue.Verdict{Action: issue.ActionReturnToAudit},
	}
	got, msg := Decide(s)
	if got != TerminalPartial {
		t.Fatalf("Decide() = %q", got)
	}
	if !strings.Contains(msg, "3 issue(s)") {
		t.Errorf("msg = %q", msg)
	}
}

func TestApplyAuditResetsIterationScope(t *testing.T) {
	s := State{MaxIterations: 5}
	s = s.Apply(PhaseResult{Phase: PhaseAudit, Plan: planWith(2)})
	s = s.Apply(PhaseResult{Phase: PhaseFix, Outcomes: modified(1)})
	s = s.Apply(PhaseResult{Phase: PhaseJudge, Verdict: issue.Verdict{Action: issue.ActionReturnToAudit}})

	if s.Iteration != 1 || s.Stats.IssuesFound != 2 || s.Stats.FilesModified != 1 {
		t.Fatalf("after iteration 1: %+v", s)
	}

	// Second audit clears the previous iteration's fix and judge results.
	s = s.Apply(PhaseResult{Phase: PhaseAudit, Plan: planWith(1)})
	if s.Iteration != 2 {
		t.Errorf("Iteration = %d, want 2", s.Iteration)
	}
	if s.Outcomes != nil {
		t.Error("outcomes not cleared on new audit")
	}
	if s.Verdict.Action != "" {
		t.Error("verdict not cleared on new audit")
	}
	if s.Stats.IssuesFound != 3 {
		t.Errorf("IssuesFound = %d, want 3 (monotonic)", s.Stats.IssuesFound)
	}
	if s.Stats.FilesModified != 1 {
		t.Errorf("FilesModified = %d, want 1 (monotonic)", s.Stats.FilesModified)
	}
}

func TestApplyReturnsNewValue(t *testing.T) {
	orig := State{MaxIterations: 5}
	_ = orig.Apply(PhaseResult{Phase: PhaseAudit, Plan: planWith(1)})
	if orig.Iteration != 0 || orig.Plan != nil {
		t.Error("Apply mutated its receiver")
	}
}
