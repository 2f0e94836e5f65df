// Package prompt builds the model prompts for the audit, fix, and judge phases.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/fixloop/internal/issue"
)

// reformatRawLimit caps how much of a malformed response is echoed back in a
// remediation prompt.
const reformatRawLimit = 2000

// Audit builds the auditor prompt for one source file. lintOutput provides
// linter findings as context; empty means the linter reported nothing.
func Audit(code, lintOutput string) string {
	if strings.TrimSpace(lintOutput) == "" {
		lintOutput = "No issues detected"
	}

	var b strings.Builder
	b.WriteString("You are a software auditing agent.\n\n")
	fmt.Fprintf(&b, "Linter context:\n%s\n\n", lintOutput)
	fmt.Fprintf(&b, "CODE:\n```\n%s\n```\n\n", code)
	b.WriteString(`Your task:
- Analyze the provided source code.
- Identify bugs, bad practices, style violations, and design issues.
- Explain root causes and provide a prioritized list of issues.

Rules:
- DO NOT modify the code.
- DO NOT generate fixed code; only analysis and instructions.

Output format (MUST BE VALID JSON, NO EXTRA TEXT):
Provide exactly one JSON object and nothing else:
{
  "summary": "short global diagnosis",
  "issues": [
    {
      "file": "filename",
      "line": 0,
      "category": "SYNTAX | BUG | STYLE | DESIGN | DOC",
      "severity": "CRITICAL | HIGH | MEDIUM | LOW",
      "description": "clear explanation of the issue",
      "fix_instruction": "how to fix it"
    }
  ],
  "global_recommendation": "concise overall recommendation"
}

Example (no issues):
{"issues": []}

If you cannot follow this format, return only {"issues": []}.
`)
	return b.String()
}

// Fix builds the fixer prompt: rewrite code applying exactly the given issues.
func Fix(code string, issues []issue.Issue) string {
	issuesJSON, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		issuesJSON = []byte("[]")
	}

	var b strings.Builder
	b.WriteString(`You are a code refactoring agent.

Your task:
- Fix the code strictly according to the issue list below.
- Improve correctness and code quality.
- Do not change observable behavior.

Rules:
- ONLY address the listed issues.
- NEVER introduce new features.
- Preserve original functionality.
- Apply minimal and safe changes.

`)
	fmt.Fprintf(&b, "ISSUES:\n%s\n\n", issuesJSON)
	fmt.Fprintf(&b, "CODE:\n```\n%s\n```\n\n", code)
	b.WriteString("Return the COMPLETE corrected file in a single fenced code block and nothing else.\n")
	return b.String()
}

// Judge builds the judge prompt from captured test-suite output.
func Judge(testOutput string) string {
	var b strings.Builder
	b.WriteString("You are a software quality validator analyzing test-suite results.\n\n")
	fmt.Fprintf(&b, "TEST OUTPUT:\n```\n%s\n```\n\n", testOutput)
	b.WriteString(`ANALYSIS TASKS:
1. Determine if all tests passed successfully.
2. If failures exist, identify the root cause concisely (max 200 chars)
   and whether it is automatically fixable.

DECISION CRITERIA:
- PASS: all tests passed, no errors.
- FAIL_FIXABLE: tests failed but the error is fixable automatically.
- FAIL_UNCERTAIN: tests failed, unclear if code or tests are wrong.

ACTION GUIDELINES:
- STOP: all tests passed, work complete.
- RETURN_TO_AUDIT: fixable errors detected, run another iteration.
- REQUIRE_HUMAN: complex issue requiring manual intervention.

OUTPUT FORMAT (strict JSON, nothing else):
{
  "status": "PASS|FAIL_FIXABLE|FAIL_UNCERTAIN",
  "total": <number>,
  "passed": <number>,
  "failed": <number>,
  "reason": "brief explanation of the main issue (max 200 chars)",
  "action": "STOP|RETURN_TO_AUDIT|REQUIRE_HUMAN"
}

RULES:
- Be concise and specific in reason.
- Do NOT suggest fixes.
- Focus on diagnosis and decision-making.
- Include the file or function name if possible.

RESPOND ONLY WITH JSON. No explanations, no markdown, no extra text.
`)
	return b.String()
}

// Reformat asks the model to re-emit a previous malformed response as one
// strict JSON object. Used for at most one remediation attempt.
func Reformat(raw string) string {
	if len(raw) > reformatRawLimit {
		raw = raw[:reformatRawLimit]
	}
	var b strings.Builder
	b.WriteString("The previous response was not valid JSON. ")
	b.WriteString("Reformat the exact content of your previous reply as a single VALID JSON object matching the schema:\n")
	b.WriteString(`{"summary": "...", "issues": [...], "global_recommendation": "..."}` + "\n")
	b.WriteString("ONLY return the JSON object and nothing else.\n\n")
	fmt.Fprintf(&b, "Previous response:\n%s\n", raw)
	return b.String()
}
