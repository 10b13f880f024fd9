package utils

import "strings"

// CleanJSON removes markdown code blocks from a string to extract raw JSON.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		lines := strings.Split(s, "\n")
		if len(lines) >= 2 {
			if strings.HasPrefix(lines[0], "```") {
				lines = lines[1:]
			}
			if len(lines) > 0 && strings.HasPrefix(lines[len(lines)-1], "```") {
				lines = lines[:len(lines)-1]
			}
			s = strings.Join(lines, "\n")
		}
	}
	return strings.TrimSpace(s)
}

// StripReasoning drops a leading <think>...</think> block emitted by
// reasoning models before the actual answer.
func StripReasoning(s string) string {
	if strings.Contains(s, "<think>") {
		if idx := strings.LastIndex(s, "</think>"); idx != -1 {
			s = s[idx+len("</think>"):]
		}
	}
	return strings.TrimSpace(s)
}

// ExtractJSON trims leading explanatory prose ("Here is the JSON you asked
// for:") and trailing commentary around the outermost JSON object or array.
func ExtractJSON(s string) string {
	s = CleanJSON(StripReasoning(s))
	if s == "" {
		return s
	}

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}
	open := s[start]
	close := byte('}')
	if open == '[' {
		close = ']'
	}
	end := strings.LastIndexByte(s, close)
	if end <= start {
		return s[start:]
	}
	return s[start : end+1]
}

// CoerceEnum returns value if it is in allowed (case-insensitive, trimmed),
// otherwise def. Variant spellings can be mapped via aliases before lookup.
func CoerceEnum(value string, allowed []string, def string, aliases map[string]string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if alias, ok := aliases[v]; ok {
		v = alias
	}
	for _, a := range allowed {
		if v == a {
			return a
		}
	}
	return def
}
