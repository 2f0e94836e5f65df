// Package report renders a finished run as Markdown or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/fixloop/internal/loop"
)

// Markdown renders the run result as a Markdown report.
func Markdown(r loop.Result) string {
	var b strings.Builder

	b.WriteString("# FixLoop Run Report\n\n")
	fmt.Fprintf(&b, "**Run:** %s\n", r.RunID)
	fmt.Fprintf(&b, "**Outcome:** %s\n", r.Tag)
	if r.Message != "" {
		fmt.Fprintf(&b, "**Detail:** %s\n", r.Message)
	}
	b.WriteString("\n## Statistics\n\n")
	fmt.Fprintf(&b, "- Iterations: %d\n", r.Iterations)
	fmt.Fprintf(&b, "- Issues found: %d\n", r.IssuesFound)
	fmt.Fprintf(&b, "- Files modified: %d\n", r.FilesModified)
	fmt.Fprintf(&b, "- Started: %s\n", r.StartTime.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Duration: %s\n", r.Duration.Round(time.Millisecond))

	b.WriteString("\n")
	b.WriteString(outcomeNote(r.Tag))
	b.WriteString("\n")
	return b.String()
}

// JSON renders the run result as indented JSON.
func JSON(r loop.Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: marshal result: %w", err)
	}
	return string(data) + "\n", nil
}

func outcomeNote(tag loop.Terminal) string {
	switch tag {
	case loop.TerminalSuccess:
		return "All detected issues were resolved."
	case loop.TerminalPartial:
		return "Issues remain but no further automatic progress is possible."
	case loop.TerminalNeedsHuman:
		return "Manual review is required before another run."
	case loop.TerminalMaxIterations:
		return "The iteration budget was exhausted; rerun to continue."
	case loop.TerminalStopped:
		return "The run was interrupted before reaching a conclusion."
	default:
		return "The run ended in an unrecognized state."
	}
}
