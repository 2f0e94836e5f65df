package agent

import "strings"

// extractFenced pulls the contents of the first fenced code block out of a
// model response. The opening fence may carry a language tag. When the
// response contains no fence at all the whole trimmed response is returned,
// since some models comply with "return only the file" literally.
func extractFenced(raw string) (string, bool) {
	start := strings.Index(raw, "```")
	if start < 0 {
		body := strings.TrimSpace(raw)
		return body, body != ""
	}

	rest := raw[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// Drop the language tag line.
		rest = rest[nl+1:]
	} else {
		return "", false
	}

	end := strings.Index(rest, "```")
	if end < 0 {
		// Unterminated fence: take everything after the opener.
		body := strings.TrimRight(rest, "\n\t ")
		return body, body != ""
	}
	body := strings.TrimRight(rest[:end], "\n")
	return body, body != ""
}
