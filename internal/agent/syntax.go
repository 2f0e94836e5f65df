package agent

import (
	"fmt"
	"strings"

	"github.com/dshills/fixloop/internal/issue"
)

// blockKeywords are the Python statement openers that require a trailing colon.
var blockKeywords = []string{
	"def ", "class ", "if ", "elif ", "for ", "while ", "with ", "except ",
	"else", "try", "finally",
}

// scanSyntax performs a cheap structural check of Python source before any
// model is consulted. It catches the two breakages that make a file unlintable
// and unparseable: a block opener missing its colon, and a def or class header
// with unbalanced parentheses. Findings are CRITICAL because nothing downstream
// can reason about a file the interpreter cannot parse.
func scanSyntax(lines []string) []issue.Issue {
	var found []issue.Issue
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		code := stripTrailingComment(trimmed)

		if isHeaderLine(code) && unbalancedParens(code) {
			found = append(found, issue.Issue{
				Line:           i + 1,
				Category:       issue.CategorySyntax,
				Severity:       issue.SeverityCritical,
				Description:    fmt.Sprintf("unbalanced parentheses in declaration: %q", code),
				FixInstruction: "close the parenthesis in the declaration header",
			})
			continue
		}
		if opensBlock(code) && !strings.HasSuffix(code, ":") && !unbalancedParens(code) {
			found = append(found, issue.Issue{
				Line:           i + 1,
				Category:       issue.CategorySyntax,
				Severity:       issue.SeverityCritical,
				Description:    fmt.Sprintf("missing colon at end of block statement: %q", code),
				FixInstruction: "append ':' to the statement",
			})
		}
	}
	return found
}

// repairLine attempts the mechanical fix for a syntax finding on one line.
// It returns the repaired line and whether a repair applied.
func repairLine(line string) (string, bool) {
	trimmed := strings.TrimRight(line, " \t")
	code := stripTrailingComment(strings.TrimSpace(trimmed))
	if code == "" || code != strings.TrimSpace(trimmed) {
		// Appending after a trailing comment would put the repair inside the
		// comment; leave those lines to the model.
		return line, false
	}
	if isHeaderLine(code) && unbalancedParens(code) {
		return trimmed + ")" + colonIfMissing(code+")"), true
	}
	if opensBlock(code) && !strings.HasSuffix(code, ":") {
		return trimmed + ":", true
	}
	return line, false
}

func colonIfMissing(code string) string {
	if strings.HasSuffix(code, ":") {
		return ""
	}
	return ":"
}

func isHeaderLine(code string) bool {
	return strings.HasPrefix(code, "def ") || strings.HasPrefix(code, "class ")
}

func opensBlock(code string) bool {
	for _, kw := range blockKeywords {
		if code == strings.TrimSpace(kw) || strings.HasPrefix(code, kw) {
			return true
		}
	}
	return false
}

func unbalancedParens(code string) bool {
	depth := 0
	inString := byte(0)
	for i := 0; i < len(code); i++ {
		c := code[i]
		if inString != 0 {
			if c == '\\' {
				i++
			} else if c == inString {
				inString = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			inString = c
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return depth > 0
}

// stripTrailingComment removes an unquoted trailing # comment.
func stripTrailingComment(code string) string {
	inString := byte(0)
	for i := 0; i < len(code); i++ {
		c := code[i]
		if inString != 0 {
			if c == '\\' {
				i++
			} else if c == inString {
				inString = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			inString = c
		case '#':
			return strings.TrimSpace(code[:i])
		}
	}
	return code
}
