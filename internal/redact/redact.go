// Package redact replaces secrets in source text with [REDACTED] before it is
// sent to a model.
package redact

import "regexp"

var patterns []*regexp.Regexp

func init() {
	raw := []string{
		// AWS access key IDs
		`AKIA[0-9A-Z]{16}`,
		// Private key blocks
		`-----BEGIN [A-Z ]+PRIVATE KEY-----[\s\S]*?-----END [A-Z ]+PRIVATE KEY-----`,
		// Bearer tokens
		`Bearer\s+[A-Za-z0-9\-._~+/]+=*`,
		// Key/secret/token/password assignments, including quoted literals
		// in source ("API_KEY = 'sk-...'")
		`(?i)(api[_-]?key|api[_-]?secret|secret[_-]?key|auth[_-]?token|access[_-]?token|token|password|passwd|credentials)\s*[:=]\s*["']?[^\s"']+["']?`,
		// Connection strings with inline credentials
		`(?i)[a-z][a-z0-9+]*://[^\s/:@]+:[^\s@]+@`,
	}
	for _, r := range raw {
		patterns = append(patterns, regexp.MustCompile(r))
	}
}

// Redact replaces secret patterns in text with [REDACTED].
func Redact(text string) string {
	for _, p := range patterns {
		text = p.ReplaceAllString(text, "[REDACTED]")
	}
	return text
}
