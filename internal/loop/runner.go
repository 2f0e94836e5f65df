package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/fixloop/internal/issue"
	"github.com/dshills/fixloop/internal/sandbox"
)

// Auditor finds issues in the target and returns them as a plan. It fails
// closed: internal errors surface as an empty plan, not a crashed run.
type Auditor interface {
	Audit(ctx context.Context, targetDir string) (*issue.Plan, error)
}

// Fixer applies the plan and reports a per-file outcome. It must not touch
// files outside targetDir; a signaled violation is a fatal adapter error.
type Fixer interface {
	Fix(ctx context.Context, targetDir string, plan *issue.Plan) ([]issue.FixOutcome, error)
}

// Judge validates the target and classifies the result.
type Judge interface {
	Judge(ctx context.Context, targetDir string) (issue.Verdict, error)
}

// Result is the run artifact handed to reporting collaborators. The loop
// itself performs no file or network I/O.
type Result struct {
	RunID         string        `json:"run_id"`
	Tag           Terminal      `json:"state"`
	Message       string        `json:"message"`
	Iterations    int           `json:"iterations"`
	IssuesFound   int           `json:"issues_found"`
	FilesModified int           `json:"files_modified"`
	StartTime     time.Time     `json:"start_time"`
	Duration      time.Duration `json:"duration"`
}

// Runner executes iterations strictly sequentially: FIX depends on AUDIT's
// plan and JUDGE depends on FIX's writes, so there is no parallel phase
// execution by design of the data flow, not as an optimization choice.
type Runner struct {
	Auditor       Auditor
	Fixer         Fixer
	Judge         Judge
	MaxIterations int
	// PhaseTimeout bounds each adapter invocation; an overrun is treated as
	// an adapter failure, not an indefinite hang. Zero disables the bound.
	PhaseTimeout time.Duration
	Log          *slog.Logger
}

// Run drives the loop to a terminal state. Cancellation takes effect at phase
// boundaries only; a cancelled run returns ctx's error together with a result
// carrying the statistics accumulated through the last completed phase.
func (r *Runner) Run(ctx context.Context, targetDir string) (Result, error) {
	if r.MaxIterations <= 0 {
		return Result{}, fmt.Errorf("loop: max iterations must be positive, got %d", r.MaxIterations)
	}
	if r.Auditor == nil || r.Fixer == nil || r.Judge == nil {
		return Result{}, fmt.Errorf("loop: auditor, fixer, and judge are all required")
	}

	log := r.log()
	state := State{
		MaxIterations: r.MaxIterations,
		Stats:         Statistics{StartTime: time.Now()},
	}
	log.Info("run starting", slog.String("target", targetDir), slog.Int("max_iterations", r.MaxIterations))

	for {
		if err := ctx.Err(); err != nil {
			return r.result(state, TerminalStopped, "run cancelled"), err
		}

		// AUDIT
		plan, err := r.timedAudit(ctx, targetDir)
		if err != nil {
			// A cancellation of the run itself is not an adapter failure:
			// folding it into the empty-plan path would report an
			// interrupted run as SUCCESS.
			if ctx.Err() != nil {
				return r.result(state, TerminalStopped, "run cancelled"), ctx.Err()
			}
			// Fails closed: an audit failure reads as "nothing found" rather
			// than aborting the run.
			log.Warn("audit phase failed, treating as empty plan", slog.Any("error", err))
			plan = issue.NewPlan()
		}
		state = state.Apply(PhaseResult{Phase: PhaseAudit, Plan: plan})
		log.Info("phase complete",
			slog.String("phase", string(PhaseAudit)),
			slog.Int("iteration", state.Iteration),
			slog.Int("issues", plan.Total()),
			slog.Int("files", plan.FileCount()),
			slog.Int("critical", countCritical(plan)))

		if state.Plan.Empty() {
			tag, msg := Decide(state)
			return r.result(state, tag, msg), nil
		}
		if err := ctx.Err(); err != nil {
			return r.result(state, TerminalStopped, "run cancelled"), err
		}

		// FIX
		outcomes, fixErr := r.timedFix(ctx, targetDir, state.Plan)
		if fixErr != nil {
			if errors.Is(fixErr, sandbox.ErrOutsideRoot) {
				// A containment breach means the fixer cannot be trusted with
				// another iteration.
				state = state.Apply(PhaseResult{Phase: PhaseFix, Outcomes: outcomes})
				return r.result(state, TerminalNeedsHuman,
					fmt.Sprintf("fix phase attempted a write outside the target: %v", fixErr)), fixErr
			}
			log.Warn("fix phase failed", slog.Any("error", fixErr))
		}
		state = state.Apply(PhaseResult{Phase: PhaseFix, Outcomes: outcomes})
		log.Info("phase complete",
			slog.String("phase", string(PhaseFix)),
			slog.Int("iteration", state.Iteration),
			slog.Int("modified", issue.ModifiedCount(outcomes)))

		if err := ctx.Err(); err != nil {
			return r.result(state, TerminalStopped, "run cancelled"), err
		}

		// JUDGE
		verdict, judgeErr := r.timedJudge(ctx, targetDir)
		if judgeErr != nil {
			// A failed judge is never a pass: it escalates instead.
			log.Warn("judge phase failed, escalating", slog.Any("error", judgeErr))
			verdict = issue.Verdict{
				Status: issue.JudgeFailUncertain,
				Action: issue.ActionRequireHuman,
				Reason: fmt.Sprintf("judge phase failed: %v", judgeErr),
			}
		}
		state = state.Apply(PhaseResult{Phase: PhaseJudge, Verdict: verdict})
		log.Info("phase complete",
			slog.String("phase", string(PhaseJudge)),
			slog.Int("iteration", state.Iteration),
			slog.Bool("all_passed", verdict.AllPassed),
			slog.String("action", string(verdict.Action)),
			slog.String("reason", verdict.DisplayReason(reasonDisplayMax)))

		tag, msg := Decide(state)
		if tag != TerminalNone {
			if fixErr != nil && tag == TerminalPartial {
				msg = fmt.Sprintf("%s (fix phase error: %v)", msg, fixErr)
			}
			return r.result(state, tag, msg), nil
		}
		log.Info("iteration complete, continuing", slog.Int("iteration", state.Iteration))
	}
}

// reasonDisplayMax caps the judge reason in log lines. Decisions and the run
// result always carry the full reason.
const reasonDisplayMax = 200

func countCritical(p *issue.Plan) int {
	n := 0
	for _, iss := range p.AllIssues() {
		if iss.Severity == issue.SeverityCritical {
			n++
		}
	}
	return n
}

func (r *Runner) timedAudit(ctx context.Context, dir string) (*issue.Plan, error) {
	ctx, cancel := r.phaseContext(ctx)
	defer cancel()
	return r.Auditor.Audit(ctx, dir)
}

func (r *Runner) timedFix(ctx context.Context, dir string, plan *issue.Plan) ([]issue.FixOutcome, error) {
	ctx, cancel := r.phaseContext(ctx)
	defer cancel()
	return r.Fixer.Fix(ctx, dir, plan)
}

func (r *Runner) timedJudge(ctx context.Context, dir string) (issue.Verdict, error) {
	ctx, cancel := r.phaseContext(ctx)
	defer cancel()
	return r.Judge.Judge(ctx, dir)
}

func (r *Runner) phaseContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.PhaseTimeout > 0 {
		return context.WithTimeout(ctx, r.PhaseTimeout)
	}
	return context.WithCancel(ctx)
}

func (r *Runner) result(s State, tag Terminal, msg string) Result {
	res := Result{
		RunID:         uuid.NewString(),
		Tag:           tag,
		Message:       msg,
		Iterations:    s.Iteration,
		IssuesFound:   s.Stats.IssuesFound,
		FilesModified: s.Stats.FilesModified,
		StartTime:     s.Stats.StartTime,
		Duration:      time.Since(s.Stats.StartTime),
	}
	r.log().Info("run finished",
		slog.String("state", string(tag)),
		slog.Int("iterations", res.Iterations),
		slog.Int("issues_found", res.IssuesFound),
		slog.Int("files_modified", res.FilesModified),
		slog.Duration("duration", res.Duration))
	return res
}

func (r *Runner) log() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}
