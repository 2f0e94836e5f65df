// Package lint runs an external linter and captures its findings as context
// for the audit phase.
package lint

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultCommand is the linter used when none is configured.
var DefaultCommand = []string{"pylint", "--output-format=text"}

// Runner executes a linter against single files.
type Runner struct {
	// Command is the linter argv; the file path is appended per run.
	Command []string
	// Timeout bounds one linter invocation. Zero means no extra bound beyond
	// the caller's context.
	Timeout time.Duration
}

// Run lints one file and returns the combined output. A non-zero exit from
// the linter means findings, not failure; only start/timeout problems are
// errors.
func (r *Runner) Run(ctx context.Context, file string) (string, error) {
	argv := r.Command
	if len(argv) == 0 {
		argv = DefaultCommand
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], file)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			// Linters exit non-zero when they find issues.
			return string(out), nil
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("lint: %s timed out: %w", argv[0], ctx.Err())
		}
		return "", fmt.Errorf("lint: run %s: %w", argv[0], err)
	}
	return string(out), nil
}
