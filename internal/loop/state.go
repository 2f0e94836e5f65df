// Package loop drives the audit -> fix -> judge cycle until convergence, a
// stall, or the iteration budget runs out. It owns the loop state; worker
// adapters only see read-only inputs and return new values.
package loop

import (
	"time"

	"github.com/dshills/fixloop/internal/issue"
)

// Phase names the three stages of one iteration.
type Phase string

const (
	PhaseAudit Phase = "audit"
	PhaseFix   Phase = "fix"
	PhaseJudge Phase = "judge"
)

// Statistics accumulates monotonically across iterations.
type Statistics struct {
	IssuesFound   int
	FilesModified int
	StartTime     time.Time
}

// State is the loop's working memory: one immutable value per phase
// transition, advanced by Apply.
type State struct {
	Iteration     int
	MaxIterations int
	Plan          *issue.Plan
	Outcomes      []issue.FixOutcome
	Verdict       issue.Verdict
	Stats         Statistics
}

// PhaseResult carries one phase's output into the reducer.
type PhaseResult struct {
	Phase    Phase
	Plan     *issue.Plan
	Outcomes []issue.FixOutcome
	Verdict  issue.Verdict
}

// Apply folds a phase result into the state and returns the successor state.
// An audit result starts a new iteration: it bumps the counter, installs the
// new plan, clears the previous fix and judge results, and accumulates the
// issue count. Fix and judge results fill in their slot and accumulate stats.
func (s State) Apply(r PhaseResult) State {
	next := s
	switch r.Phase {
	case PhaseAudit:
		next.Iteration++
		next.Plan = r.Plan
		next.Outcomes = nil
		next.Verdict = issue.Verdict{}
		next.Stats.IssuesFound += r.Plan.Total()
	case PhaseFix:
		next.Outcomes = r.Outcomes
		next.Stats.FilesModified += issue.ModifiedCount(r.Outcomes)
	case PhaseJudge:
		next.Verdict = r.Verdict
	}
	return next
}
