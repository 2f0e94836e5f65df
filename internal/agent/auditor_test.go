package agent

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/fixloop/internal/issue"
	"github.com/dshills/fixloop/internal/llm"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAuditStructuredResponse(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", "def add(a, b):\n    return a+b\n")

	mock := &llm.MockProvider{Responses: []string{
		`{"summary": "style issues", "issues": [
			{"file": "app.py", "line": 2, "category": "STYLE", "severity": "LOW",
			 "description": "missing spaces around operator", "fix_instruction": "use a + b"}
		], "global_recommendation": "run a formatter"}`,
	}}
	a := &Auditor{Provider: mock, Include: []string{"*.py"}, Log: discard()}

	plan, err := a.Audit(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Total() != 1 {
		t.Fatalf("Total = %d, want 1", plan.Total())
	}
	issues := plan.Issues("app.py")
	if len(issues) != 1 {
		t.Fatalf("issues for app.py = %d, want 1", len(issues))
	}
	if issues[0].File != "app.py" || issues[0].Category != issue.CategoryStyle {
		t.Errorf("unexpected issue: %+v", issues[0])
	}
}

func TestAuditSyntaxFindingsSkipModel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.py", "def add(a, b)\n    return a + b\n")

	mock := &llm.MockProvider{Responses: []string{`{"issues": []}`}}
	a := &Auditor{Provider: mock, Include: []string{"*.py"}, Log: discard()}

	plan, err := a.Audit(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	issues := plan.Issues("broken.py")
	if len(issues) != 1 || issues[0].Category != issue.CategorySyntax {
		t.Fatalf("want one SYNTAX issue, got %+v", issues)
	}
	if mock.Calls() != 0 {
		t.Errorf("model consulted %d times for an unparseable file, want 0", mock.Calls())
	}
}

func TestAuditSkipsNonMatchingAndCacheDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.py", "x = 1\n")
	writeFile(t, dir, "notes.txt", "not code\n")
	writeFile(t, dir, "__pycache__/keep.cpython-312.py", "compiled\n")
	writeFile(t, dir, ".hidden/secret.py", "x = 1\n")

	mock := &llm.MockProvider{Responses: []string{`{"issues": []}`}}
	a := &Auditor{Provider: mock, Include: []string{"*.py"}, Log: discard()}

	plan, err := a.Audit(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if !plan.Empty() {
		t.Errorf("expected empty plan, got %d issues", plan.Total())
	}
	if mock.Calls() != 1 {
		t.Errorf("model calls = %d, want 1 (keep.py only)", mock.Calls())
	}
}

func TestAuditRedactsSecretsInPrompt(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cfg.py", "api_key = \"sk-supersecretvalue123456\"\nx = 1\n")

	mock := &llm.MockProvider{Responses: []string{`{"issues": []}`}}
	a := &Auditor{Provider: mock, Include: []string{"*.py"}, Log: discard()}

	if _, err := a.Audit(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	if len(mock.Prompts) != 1 {
		t.Fatalf("prompts = %d, want 1", len(mock.Prompts))
	}
	if strings.Contains(mock.Prompts[0], "sk-supersecretvalue123456") {
		t.Error("secret value leaked into the audit prompt")
	}
}

func TestAuditProviderFailureFailsClosed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", "x = 1\n")

	mock := &llm.MockProvider{Err: context.DeadlineExceeded}
	a := &Auditor{Provider: mock, Include: []string{"*.py"}, Log: discard()}

	plan, err := a.Audit(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if !plan.Empty() {
		t.Errorf("failed audit must contribute no issues, got %d", plan.Total())
	}
}

func TestAuditMalformedResponseTriggersReformat(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", "x = 1\n")

	mock := &llm.MockProvider{Responses: []string{
		`Sure! The issues are {"summary": "broken`,
		`{"summary": "fine", "issues": [{"file": "app.py", "description": "shadowed builtin"}]}`,
	}}
	a := &Auditor{Provider: mock, Include: []string{"*.py"}, Log: discard()}

	plan, err := a.Audit(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Total() != 1 {
		t.Fatalf("Total = %d, want 1 from reformatted response", plan.Total())
	}
	if mock.Calls() != 2 {
		t.Errorf("model calls = %d, want 2 (audit + reformat)", mock.Calls())
	}
}
