package normalize

// ExtractObject locates the first complete JSON object in text and returns it.
// It scans for balanced braces starting at the first '{', skipping brace
// characters that appear inside JSON strings, so descriptions containing
// stray braces do not break extraction. A naive first/last brace search fails
// on exactly that input. Returns ok=false when no balanced object exists.
func ExtractObject(text string) (string, bool) {
	start := -1
	for i, r := range text {
		if r == '{' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			if inString {
				escaped = true
			}
		case c == '"':
			inString = !inString
		case inString:
			// braces inside strings do not count
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
