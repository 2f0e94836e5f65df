package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/fixloop/internal/agent"
	"github.com/dshills/fixloop/internal/config"
	"github.com/dshills/fixloop/internal/lint"
	"github.com/dshills/fixloop/internal/llm"
	"github.com/dshills/fixloop/internal/loop"
	"github.com/dshills/fixloop/internal/report"
	"github.com/dshills/fixloop/internal/sandbox"
	"github.com/dshills/fixloop/internal/testrun"
)

type runFlags struct {
	configPath    string
	maxIterations int
	model         string
	format        string
	out           string
	skipTests     bool
	failOnIssues  bool
	verbose       bool
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <target-dir>",
		Short: "Run the audit/fix/judge loop against a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(cmd.Context(), args[0], f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "Config file path (YAML)")
	flags.IntVar(&f.maxIterations, "max-iterations", 0, "Iteration budget (overrides config)")
	flags.StringVar(&f.model, "model", "", "Model selector (e.g., gemini-1.5-flash, mistral:large, gpt-4o)")
	flags.StringVar(&f.format, "format", "md", "Output format: json or md")
	flags.StringVar(&f.out, "out", "", "Report file path (default: stdout)")
	flags.BoolVar(&f.skipTests, "skip-tests", false, "Skip test-suite validation in the judge phase")
	flags.BoolVar(&f.failOnIssues, "fail-on-issues", false, "Exit non-zero unless the run ends in SUCCESS")
	flags.BoolVar(&f.verbose, "verbose", false, "Print phase progress to stderr")

	return cmd
}

func runLoop(parent context.Context, targetDir string, f *runFlags) error {
	logger := newLogger(f.verbose)

	info, err := os.Stat(targetDir)
	if err != nil || !info.IsDir() {
		return exitError(3, "target is not a directory: %s", targetDir)
	}

	config.LoadEnv()
	cfg := config.Default()
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath, cfg)
		if err != nil {
			return exitError(3, "failed to load config: %v", err)
		}
	}
	if f.maxIterations > 0 {
		cfg.MaxIterations = f.maxIterations
	}
	if f.model != "" {
		cfg.Model = f.model
	}
	if f.skipTests {
		cfg.SkipTests = true
	}
	if err := cfg.Validate(); err != nil {
		return exitError(3, "invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := llm.ResolveProvider(ctx, cfg.Model)
	if err != nil {
		return exitError(4, "model provider error: %v", err)
	}
	provider = llm.Throttle(provider, cfg.LLMInterval)
	logger.Info("provider resolved", slog.String("provider", provider.Name()))

	root, err := sandbox.New(targetDir)
	if err != nil {
		return exitError(3, "failed to resolve target: %v", err)
	}

	runner := &loop.Runner{
		Auditor: &agent.Auditor{
			Provider: provider,
			Linter:   &lint.Runner{Command: cfg.LintCommand, Timeout: cfg.PhaseTimeout},
			Include:  cfg.Include,
			Retry:    agent.DefaultRetry,
			Log:      logger,
		},
		Fixer: &agent.Fixer{
			Provider: provider,
			Root:     root,
			Retry:    agent.DefaultRetry,
			Log:      logger,
		},
		Judge: &agent.Judge{
			Provider:  provider,
			Tests:     &testrun.Runner{Command: cfg.TestCommand, Timeout: cfg.PhaseTimeout},
			SkipTests: cfg.SkipTests,
			Retry:     agent.DefaultRetry,
			Log:       logger,
		},
		MaxIterations: cfg.MaxIterations,
		PhaseTimeout:  cfg.PhaseTimeout,
		Log:           logger,
	}

	result, runErr := runner.Run(ctx, root.Dir())
	return finish(result, runErr, f)
}

// finish reports the run and maps its outcome to an exit code. An interrupt
// exits 130 no matter how early it landed; only non-interrupt failures with
// zero completed iterations skip the report.
func finish(result loop.Result, runErr error, f *runFlags) error {
	if runErr != nil {
		interrupted := errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded)
		if !interrupted && result.Iterations == 0 {
			return exitError(4, "run aborted: %v", runErr)
		}
		if err := emit(result, f); err != nil {
			return err
		}
		if interrupted {
			return exitError(130, "run interrupted: %v", runErr)
		}
		return exitError(4, "run failed: %v", runErr)
	}

	if err := emit(result, f); err != nil {
		return err
	}
	if f.failOnIssues && result.Tag != loop.TerminalSuccess {
		return exitError(2, "run ended %s: %s", result.Tag, result.Message)
	}
	return nil
}

func emit(result loop.Result, f *runFlags) error {
	var output string
	switch f.format {
	case "json":
		out, err := report.JSON(result)
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		output = out
	case "md":
		output = report.Markdown(result)
	default:
		return exitError(3, "unknown format: %s", f.format)
	}

	if f.out != "" {
		if err := os.WriteFile(f.out, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Print(output)
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}
