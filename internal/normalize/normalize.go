// Package normalize converts loosely structured worker output into the
// canonical issue model. Model responses arrive as free text, fenced code
// blocks, or malformed JSON; the normalizer tries a structured parse first and
// degrades to heuristic line extraction so a single malformed response never
// aborts a run.
package normalize

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dshills/fixloop/internal/issue"
)

// Mode tags how a result was obtained.
type Mode string

const (
	// ModeStructured means the JSON envelope parsed cleanly.
	ModeStructured Mode = "STRUCTURED"
	// ModeFallback means issues were recovered by line-based extraction.
	ModeFallback Mode = "FALLBACK"
	// ModeEmpty means nothing could be recovered. This is a partial result,
	// not an error.
	ModeEmpty Mode = "EMPTY"
)

// Result is the outcome of normalizing one worker response.
type Result struct {
	Mode    Mode
	Issues  []issue.Issue
	Summary string
}

// Partial reports whether the structured parse failed and the result came
// from a degraded path.
func (r Result) Partial() bool { return r.Mode != ModeStructured }

// Reformatter asks the worker to re-emit its previous response as strict JSON.
// Used for at most one remediation attempt per response.
type Reformatter interface {
	Reformat(ctx context.Context, raw string) (string, error)
}

// envelope is the structured shape the auditor prompt requests.
type envelope struct {
	Summary              string            `json:"summary"`
	Issues               []json.RawMessage `json:"issues"`
	GlobalRecommendation string            `json:"global_recommendation"`
}

// Normalize converts raw worker output into a Result without remediation.
func Normalize(raw string) Result {
	if res, ok := parseStructured(raw); ok {
		return res
	}
	return fallback(raw)
}

// NormalizeWithRetry behaves like Normalize but, when the structured parse
// fails and the response appears to contain a JSON object, asks the worker
// exactly once to reformat as strict JSON. A second parse failure stops
// retrying and accepts the fallback result from the original response.
func NormalizeWithRetry(ctx context.Context, raw string, rf Reformatter) Result {
	if res, ok := parseStructured(raw); ok {
		return res
	}
	if rf != nil && strings.Contains(raw, "{") {
		if retried, err := rf.Reformat(ctx, raw); err == nil {
			if res, ok := parseStructured(retried); ok {
				return res
			}
		}
	}
	return fallback(raw)
}

func parseStructured(raw string) (Result, bool) {
	obj, ok := ExtractObject(raw)
	if !ok {
		return Result{}, false
	}
	var env envelope
	if err := json.Unmarshal([]byte(obj), &env); err != nil {
		return Result{}, false
	}
	// An object without an issues key is not the auditor envelope; treating
	// it as structured would silently drop real findings elsewhere in the text.
	if !strings.Contains(obj, `"issues"`) {
		return Result{}, false
	}

	var issues []issue.Issue
	for _, entry := range env.Issues {
		if iss, ok := decodeEntry(entry); ok {
			issues = append(issues, iss)
		}
	}
	return Result{Mode: ModeStructured, Issues: issues, Summary: env.Summary}, true
}

// decodeEntry accepts both object entries and entries that are themselves
// JSON-encoded strings, which some models emit when double-serializing.
func decodeEntry(raw json.RawMessage) (issue.Issue, bool) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err == nil {
		return issueFromFields(fields)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return issue.Issue{}, false
	}
	if err := json.Unmarshal([]byte(s), &fields); err == nil {
		return issueFromFields(fields)
	}
	// Plain free-text entry.
	s = strings.TrimSpace(s)
	if s == "" {
		return issue.Issue{}, false
	}
	return issue.Issue{
		Category:    issue.CategoryUnknown,
		Severity:    issue.SeverityLow,
		Description: s,
	}, true
}

func issueFromFields(fields map[string]any) (issue.Issue, bool) {
	desc := firstString(fields, "description", "message", "issue")
	if desc == "" {
		return issue.Issue{}, false
	}
	return issue.Issue{
		File:           firstString(fields, "file", "filename", "path"),
		Line:           asLine(fields["line"]),
		Category:       issue.ParseCategory(firstString(fields, "category", "type")),
		Severity:       issue.ParseSeverity(firstString(fields, "severity", "priority")),
		Description:    desc,
		FixInstruction: firstString(fields, "fix_instruction", "fix", "recommendation"),
	}, true
}

func firstString(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := fields[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// asLine coerces a JSON number or numeric string to a non-negative line number.
func asLine(v any) int {
	switch n := v.(type) {
	case float64:
		if n > 0 {
			return int(n)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil && i > 0 {
			return i
		}
	}
	return 0
}

// fallback recovers free-text issues from list-marker lines. Each becomes an
// UNKNOWN-category, LOW-severity whole-file issue.
func fallback(raw string) Result {
	var issues []issue.Issue
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		var text string
		switch {
		case strings.HasPrefix(trimmed, "- "):
			text = strings.TrimSpace(trimmed[2:])
		case strings.HasPrefix(trimmed, "* "):
			text = strings.TrimSpace(trimmed[2:])
		}
		if text == "" {
			continue
		}
		issues = append(issues, issue.Issue{
			Category:    issue.CategoryUnknown,
			Severity:    issue.SeverityLow,
			Description: text,
		})
	}
	if len(issues) == 0 {
		return Result{Mode: ModeEmpty}
	}
	return Result{Mode: ModeFallback, Issues: issues}
}
