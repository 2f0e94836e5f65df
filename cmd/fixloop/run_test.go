package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/fixloop/internal/loop"
)

func TestEmitFormats(t *testing.T) {
	result := loop.Result{
		RunID:      "id",
		Tag:        loop.TerminalSuccess,
		Iterations: 1,
		StartTime:  time.Now(),
	}

	tests := []struct {
		format string
		want   string
	}{
		{"md", "# FixLoop Run Report"},
		{"json", `"state": "SUCCESS"`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "report")
			f := &runFlags{format: tt.format, out: out}
			if err := emit(result, f); err != nil {
				t.Fatal(err)
			}
			data, err := os.ReadFile(out)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, data)
			}
		})
	}
}

func TestEmitRejectsUnknownFormat(t *testing.T) {
	f := &runFlags{format: "yaml"}
	err := emit(loop.Result{}, f)
	var ee *exitErr
	if !errors.As(err, &ee) || ee.code != 3 {
		t.Fatalf("err = %v, want exit code 3", err)
	}
}

func TestExitError(t *testing.T) {
	err := exitError(4, "provider %s unavailable", "gemini")
	var ee *exitErr
	if !errors.As(err, &ee) {
		t.Fatal("not an exitErr")
	}
	if ee.code != 4 || ee.msg != "provider gemini unavailable" {
		t.Errorf("got code %d msg %q", ee.code, ee.msg)
	}
}

func TestFinishExitCodes(t *testing.T) {
	tests := []struct {
		name       string
		result     loop.Result
		runErr     error
		wantCode   int
		wantReport bool
	}{
		{
			name:     "interrupt before first iteration exits 130",
			result:   loop.Result{Tag: loop.TerminalStopped, Iterations: 0, StartTime: time.Now()},
			runErr:   context.Canceled,
			wantCode: 130, wantReport: true,
		},
		{
			name:     "interrupt mid-run exits 130",
			result:   loop.Result{Tag: loop.TerminalStopped, Iterations: 2, StartTime: time.Now()},
			runErr:   context.Canceled,
			wantCode: 130, wantReport: true,
		},
		{
			name:     "failure before first iteration aborts without report",
			result:   loop.Result{Iterations: 0, StartTime: time.Now()},
			runErr:   errors.New("sandbox breach"),
			wantCode: 4, wantReport: false,
		},
		{
			name:     "failure mid-run exits 4 with report",
			result:   loop.Result{Tag: loop.TerminalNeedsHuman, Iterations: 1, StartTime: time.Now()},
			runErr:   errors.New("sandbox breach"),
			wantCode: 4, wantReport: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "report")
			f := &runFlags{format: "md", out: out}

			err := finish(tt.result, tt.runErr, f)
			var ee *exitErr
			if !errors.As(err, &ee) || ee.code != tt.wantCode {
				t.Fatalf("err = %v, want exit code %d", err, tt.wantCode)
			}
			_, statErr := os.Stat(out)
			if gotReport := statErr == nil; gotReport != tt.wantReport {
				t.Errorf("report written = %v, want %v", gotReport, tt.wantReport)
			}
		})
	}
}

func TestFinishFailOnIssues(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report")
	f := &runFlags{format: "md", out: out, failOnIssues: true}
	result := loop.Result{Tag: loop.TerminalPartial, Iterations: 1, StartTime: time.Now()}

	err := finish(result, nil, f)
	var ee *exitErr
	if !errors.As(err, &ee) || ee.code != 2 {
		t.Fatalf("err = %v, want exit code 2", err)
	}

	result.Tag = loop.TerminalSuccess
	if err := finish(result, nil, f); err != nil {
		t.Fatalf("success with fail-on-issues should exit clean: %v", err)
	}
}

func TestRunLoopRejectsMissingTarget(t *testing.T) {
	err := runLoop(t.Context(), filepath.Join(t.TempDir(), "missing"), &runFlags{format: "md"})
	var ee *exitErr
	if !errors.As(err, &ee) || ee.code != 3 {
		t.Fatalf("err = %v, want exit code 3", err)
	}
}
