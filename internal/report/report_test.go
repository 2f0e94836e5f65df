package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dshills/fixloop/internal/loop"
)

func sampleResult() loop.Result {
	return loop.Result{
		RunID:         "3f2c0b1e-0000-4000-8000-000000000000",
		Tag:           loop.TerminalSuccess,
		Message:       "no issues detected",
		Iterations:    2,
		IssuesFound:   7,
		FilesModified: 3,
		StartTime:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Duration:      90 * time.Second,
	}
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sampleResult())

	for _, want := range []string{
		"# FixLoop Run Report",
		"**Outcome:** SUCCESS",
		"no issues detected",
		"Iterations: 2",
		"Issues found: 7",
		"Files modified: 3",
		"1m30s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownOmitsEmptyMessage(t *testing.T) {
	r := sampleResult()
	r.Message = ""
	if strings.Contains(Markdown(r), "**Detail:**") {
		t.Error("empty message must not render a detail line")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	out, err := JSON(sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	var decoded loop.Result
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Tag != loop.TerminalSuccess || decoded.Iterations != 2 {
		t.Errorf("round trip lost fields: %+v", decoded)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("JSON output must end with a newline")
	}
}

func TestOutcomeNoteCoversAllTerminals(t *testing.T) {
	tags := []loop.Terminal{
		loop.TerminalSuccess, loop.TerminalPartial, loop.TerminalNeedsHuman,
		loop.TerminalMaxIterations, loop.TerminalStopped,
	}
	seen := map[string]bool{}
	for _, tag := range tags {
		note := outcomeNote(tag)
		if note == "" {
			t.Errorf("no note for %s", tag)
		}
		if seen[note] {
			t.Errorf("duplicate note for %s", tag)
		}
		seen[note] = true
	}
}
