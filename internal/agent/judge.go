package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dshills/fixloop/internal/issue"
	"github.com/dshills/fixloop/internal/llm"
	"github.com/dshills/fixloop/internal/normalize"
	"github.com/dshills/fixloop/internal/prompt"
	"github.com/dshills/fixloop/internal/testrun"
)

// Judge runs the target's test suite and asks the model to classify the
// outcome. When the model is unhelpful the verdict falls back to a
// deterministic reading of the raw pass/fail counts, so a flaky classifier
// can never turn a failing suite into a pass.
type Judge struct {
	Provider  llm.Provider
	Settings  llm.Settings
	Tests     *testrun.Runner
	SkipTests bool
	Retry     RetryPolicy
	Log       *slog.Logger
}

// judgeResponse is the strict JSON shape the judge prompt requests.
type judgeResponse struct {
	Status string `json:"status"`
	Total  int    `json:"total"`
	Passed int    `json:"passed"`
	Failed int    `json:"failed"`
	Reason string `json:"reason"`
	Action string `json:"action"`
}

// Judge validates targetDir and classifies the result.
func (j *Judge) Judge(ctx context.Context, targetDir string) (issue.Verdict, error) {
	if j.SkipTests {
		return issue.Verdict{
			AllPassed: true,
			Status:    issue.JudgePass,
			Action:    issue.ActionStop,
			Reason:    "test validation disabled",
		}, nil
	}
	if j.Tests == nil {
		return issue.Verdict{}, fmt.Errorf("agent: judge requires a test runner")
	}

	res, err := j.Tests.Run(ctx, targetDir)
	if err != nil {
		return issue.Verdict{}, fmt.Errorf("agent: judge tests: %w", err)
	}

	verdict, ok := j.classify(ctx, res)
	if !ok {
		verdict = verdictFromCounts(res)
		j.log().Warn("judge classification degraded to test counts",
			slog.String("status", string(verdict.Status)))
	}
	return verdict, nil
}

// classify asks the model to read the test output. ok is false when the
// response cannot be parsed into the expected shape.
func (j *Judge) classify(ctx context.Context, res testrun.Result) (issue.Verdict, bool) {
	resp, err := j.Retry.Generate(ctx, j.Provider, prompt.Judge(res.Output), j.Settings)
	if err != nil {
		j.log().Warn("judge model call failed", slog.Any("error", err))
		return issue.Verdict{}, false
	}

	obj, found := normalize.ExtractObject(resp)
	if !found {
		return issue.Verdict{}, false
	}
	var jr judgeResponse
	if err := json.Unmarshal([]byte(obj), &jr); err != nil {
		return issue.Verdict{}, false
	}

	status := issue.JudgeStatus(jr.Status)
	if !status.Valid() {
		return issue.Verdict{}, false
	}

	verdict := issue.Verdict{
		AllPassed: status == issue.JudgePass && res.Success,
		Total:     jr.Total,
		Passed:    jr.Passed,
		Failed:    jr.Failed,
		Status:    status,
		Action:    issue.ParseAction(jr.Action),
		Reason:    jr.Reason,
	}
	if !verdict.Consistent() {
		// The model's total is the least reliable of the three counts.
		verdict.Total = verdict.Passed + verdict.Failed
	}
	// The model may claim PASS against output it misread; the exit status of
	// the suite is authoritative.
	if status == issue.JudgePass && !res.Success {
		verdict.AllPassed = false
		verdict.Status = issue.JudgeFailUncertain
		verdict.Action = issue.ActionRequireHuman
		verdict.Reason = "classifier reported PASS but the test suite exited non-zero"
	}
	return verdict, true
}

// verdictFromCounts derives a verdict directly from the suite result.
func verdictFromCounts(res testrun.Result) issue.Verdict {
	if res.Success && res.Failed == 0 {
		return issue.Verdict{
			AllPassed: true,
			Total:     res.Total,
			Passed:    res.Passed,
			Status:    issue.JudgePass,
			Action:    issue.ActionStop,
			Reason:    "all tests passed",
		}
	}
	return issue.Verdict{
		Total:  res.Total,
		Passed: res.Passed,
		Failed: res.Failed,
		Status: issue.JudgeFailFixable,
		Action: issue.ActionReturnToAudit,
		Reason: fmt.Sprintf("%d of %d tests failed", res.Failed, res.Total),
	}
}

func (j *Judge) log() *slog.Logger {
	if j.Log != nil {
		return j.Log
	}
	return slog.Default()
}
