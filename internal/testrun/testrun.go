// Package testrun executes the target's test suite and extracts a pass/fail
// summary from its output.
package testrun

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"time"
)

// DefaultCommand is the test invocation used when none is configured.
var DefaultCommand = []string{"python", "-m", "pytest", ".", "-v"}

// Result captures one test-suite run.
type Result struct {
	Success bool
	Passed  int
	Failed  int
	Total   int
	Output  string
}

// Runner executes the configured test command inside the target directory.
type Runner struct {
	Command []string
	Timeout time.Duration
}

var (
	passedPattern = regexp.MustCompile(`(\d+)\s+passed`)
	failedPattern = regexp.MustCompile(`(\d+)\s+failed`)
)

// Run executes the test suite in dir. Failing tests are a successful run with
// Success=false; only start/timeout problems are errors.
func (r *Runner) Run(ctx context.Context, dir string) (Result, error) {
	argv := r.Command
	if len(argv) == 0 {
		argv = DefaultCommand
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || ctx.Err() != nil {
			if ctx.Err() != nil {
				return Result{}, fmt.Errorf("testrun: %s timed out: %w", argv[0], ctx.Err())
			}
			return Result{}, fmt.Errorf("testrun: run %s: %w", argv[0], err)
		}
	}

	passed, failed := ParseSummary(output)
	return Result{
		Success: err == nil,
		Passed:  passed,
		Failed:  failed,
		Total:   passed + failed,
		Output:  output,
	}, nil
}

// ParseSummary extracts "N passed" / "M failed" counts from test output.
// Missing counts read as zero.
func ParseSummary(output string) (passed, failed int) {
	if m := passedPattern.FindStringSubmatch(output); m != nil {
		fmt.Sscanf(m[1], "%d", &passed)
	}
	if m := failedPattern.FindStringSubmatch(output); m != nil {
		fmt.Sscanf(m[1], "%d", &failed)
	}
	return passed, failed
}
