package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dshills/fixloop/internal/fsops"
	"github.com/dshills/fixloop/internal/issue"
	"github.com/dshills/fixloop/internal/llm"
	"github.com/dshills/fixloop/internal/prompt"
	"github.com/dshills/fixloop/internal/sandbox"
)

// Fixer rewrites each planned file. Mechanical syntax repairs are applied
// first; the model then rewrites the whole file against the remaining issue
// list. Writes go through the sandbox and land atomically. A write outside the
// sandbox root is a fatal adapter error, everything else degrades to a
// per-file ERROR outcome.
type Fixer struct {
	Provider llm.Provider
	Settings llm.Settings
	Root     *sandbox.Root
	Retry    RetryPolicy
	Log      *slog.Logger
}

// Fix applies the plan file by file and returns an outcome per file.
func (f *Fixer) Fix(ctx context.Context, targetDir string, plan *issue.Plan) ([]issue.FixOutcome, error) {
	if f.Root == nil {
		return nil, fmt.Errorf("agent: fixer requires a sandbox root")
	}

	var outcomes []issue.FixOutcome
	for _, file := range plan.Files() {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		outcome, err := f.fixFile(ctx, file, plan.Issues(file))
		if err != nil {
			if errors.Is(err, sandbox.ErrOutsideRoot) {
				return outcomes, fmt.Errorf("agent: fix %s: %w", file, err)
			}
			f.log().Warn("fix failed for file", slog.String("file", file), slog.Any("error", err))
			outcome = issue.FixOutcome{File: file, Status: issue.FixStatusError, Err: err.Error()}
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (f *Fixer) fixFile(ctx context.Context, file string, issues []issue.Issue) (issue.FixOutcome, error) {
	path, err := f.Root.Check(file)
	if err != nil {
		return issue.FixOutcome{}, err
	}

	orig, err := fsops.Load(path)
	if err != nil {
		return issue.FixOutcome{}, err
	}

	issue.SortIssues(issues)
	working, repaired := f.applyRepairs(orig, issues)

	fixed, llmErr := f.rewrite(ctx, working, issues)
	switch {
	case llmErr == nil && fixed != "":
		// Model produced a replacement file.
	case repaired:
		// Keep the mechanical repairs even though the model could not help.
		f.log().Warn("model rewrite failed, keeping mechanical repairs",
			slog.String("file", file), slog.Any("error", llmErr))
		fixed = working
	default:
		return issue.FixOutcome{}, fmt.Errorf("rewrite: %w", llmErr)
	}

	data := []byte(fixed)
	if len(data) > 0 && data[len(data)-1] != '\n' && strings.HasSuffix(orig.Raw, "\n") {
		data = append(data, '\n')
	}
	if fsops.Hash(data) == orig.Hash {
		return issue.FixOutcome{
			File:            file,
			IssuesAddressed: len(issues),
			Status:          issue.FixStatusNoChange,
		}, nil
	}

	if err := f.write(path, data); err != nil {
		return issue.FixOutcome{}, err
	}

	status := issue.FixStatusFixed
	if llmErr != nil {
		status = issue.FixStatusViaFallback
	}
	return issue.FixOutcome{
		File:            file,
		Modified:        true,
		IssuesAddressed: len(issues),
		Status:          status,
	}, nil
}

// applyRepairs runs the mechanical line fixes for SYNTAX findings so the
// model receives a file it can actually parse.
func (f *Fixer) applyRepairs(orig *fsops.File, issues []issue.Issue) (string, bool) {
	lines := make([]string, len(orig.Lines))
	copy(lines, orig.Lines)

	changed := false
	for _, iss := range issues {
		if iss.Category != issue.CategorySyntax || iss.Line < 1 || iss.Line > len(lines) {
			continue
		}
		if fixed, ok := repairLine(lines[iss.Line-1]); ok {
			lines[iss.Line-1] = fixed
			changed = true
		}
	}
	if !changed {
		return orig.Raw, false
	}
	return strings.Join(lines, "\n"), true
}

func (f *Fixer) rewrite(ctx context.Context, code string, issues []issue.Issue) (string, error) {
	resp, err := f.Retry.Generate(ctx, f.Provider, prompt.Fix(code, issues), f.Settings)
	if err != nil {
		return "", err
	}
	body, ok := extractFenced(resp)
	if !ok {
		return "", fmt.Errorf("agent: empty rewrite response")
	}
	return body, nil
}

// write replaces path atomically, preserving the original file mode.
func (f *Fixer) write(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return fsops.WriteAtomic(path, data, perm)
}

func (f *Fixer) log() *slog.Logger {
	if f.Log != nil {
		return f.Log
	}
	return slog.Default()
}
