package agent

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dshills/fixloop/internal/fsops"
	"github.com/dshills/fixloop/internal/issue"
	"github.com/dshills/fixloop/internal/lint"
	"github.com/dshills/fixloop/internal/llm"
	"github.com/dshills/fixloop/internal/normalize"
	"github.com/dshills/fixloop/internal/prompt"
	"github.com/dshills/fixloop/internal/redact"
)

// Auditor inspects every matching file in the target: a structural syntax
// scan first, then linter findings fed to the model as context, then the
// model's own analysis normalized into the issue plan. A failure on one file
// never aborts the audit; that file simply contributes no issues.
type Auditor struct {
	Provider llm.Provider
	Settings llm.Settings
	Linter   *lint.Runner
	Include  []string
	Retry    RetryPolicy
	Log      *slog.Logger
}

// reformatter adapts the provider to the normalizer's remediation hook.
type reformatter struct {
	provider llm.Provider
	settings llm.Settings
}

func (r reformatter) Reformat(ctx context.Context, raw string) (string, error) {
	return r.provider.Generate(ctx, prompt.Reformat(raw), r.settings)
}

// Audit walks targetDir and returns the combined plan for this iteration.
func (a *Auditor) Audit(ctx context.Context, targetDir string) (*issue.Plan, error) {
	files, err := a.collect(targetDir)
	if err != nil {
		return nil, fmt.Errorf("agent: audit walk: %w", err)
	}

	plan := issue.NewPlan()
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		issues, err := a.auditFile(ctx, targetDir, rel)
		if err != nil {
			a.log().Warn("audit skipped file", slog.String("file", rel), slog.Any("error", err))
			continue
		}
		plan.Add(rel, issues...)
	}
	return plan, nil
}

func (a *Auditor) auditFile(ctx context.Context, targetDir, rel string) ([]issue.Issue, error) {
	f, err := fsops.Load(filepath.Join(targetDir, rel))
	if err != nil {
		return nil, err
	}

	issues := scanSyntax(f.Lines)
	for i := range issues {
		issues[i].File = rel
	}
	if len(issues) > 0 {
		// A file the interpreter cannot parse gives the linter and the model
		// nothing useful to work with; fix structure first.
		a.log().Info("syntax findings, skipping deep analysis",
			slog.String("file", rel), slog.Int("count", len(issues)))
		return issues, nil
	}

	lintOut := a.lintContext(ctx, filepath.Join(targetDir, rel))

	resp, err := a.Retry.Generate(ctx, a.Provider, prompt.Audit(redact.Redact(f.Raw), lintOut), a.Settings)
	if err != nil {
		return nil, err
	}

	res := normalize.NormalizeWithRetry(ctx, resp, reformatter{a.Provider, a.Settings})
	if res.Partial() {
		a.log().Warn("audit response degraded",
			slog.String("file", rel), slog.String("mode", string(res.Mode)))
	}
	out := res.Issues
	for i := range out {
		out[i].File = rel
	}
	return out, nil
}

// lintContext runs the linter best effort; its output is advisory context for
// the model, so a broken or missing linter degrades to no context.
func (a *Auditor) lintContext(ctx context.Context, path string) string {
	if a.Linter == nil {
		return ""
	}
	out, err := a.Linter.Run(ctx, path)
	if err != nil {
		a.log().Warn("linter unavailable", slog.Any("error", err))
		return ""
	}
	return out
}

// collect returns the relative paths of files matching the include patterns.
// Hidden directories and __pycache__ are pruned.
func (a *Auditor) collect(targetDir string) ([]string, error) {
	patterns := a.Include
	if len(patterns) == 0 {
		patterns = []string{"*.py"}
	}

	var files []string
	err := filepath.WalkDir(targetDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != targetDir && (strings.HasPrefix(name, ".") || name == "__pycache__") {
				return filepath.SkipDir
			}
			return nil
		}
		for _, pat := range patterns {
			if ok, _ := filepath.Match(pat, name); ok {
				rel, relErr := filepath.Rel(targetDir, path)
				if relErr != nil {
					return relErr
				}
				files = append(files, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (a *Auditor) log() *slog.Logger {
	if a.Log != nil {
		return a.Log
	}
	return slog.Default()
}
