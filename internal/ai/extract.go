package ai

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// ExtractJSON locates the JSON object inside a model reply that may be
// wrapped in markdown code fences or surrounded by prose. It strips
// triple-backtick fences (with or without a json tag), then brace-matches
// the first {...} span. The input is returned unchanged when no span is
// found.
func ExtractJSON(text string) string {
	if strings.Contains(text, "```json") {
		start := strings.Index(text, "```json")
		text = text[start+7:]
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
	} else if strings.Contains(text, "```") {
		start := strings.Index(text, "```")
		text = text[start+3:]
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
	}

	text = strings.TrimSpace(text)

	if idx := strings.Index(text, "{"); idx != -1 {
		depth := 0
		inString := false
		escaped := false
		for i := idx; i < len(text); i++ {
			ch := text[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case ch == '\\':
					escaped = true
				case ch == '"':
					inString = false
				}
				continue
			}
			switch ch {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return text[idx : i+1]
				}
			}
		}
	}

	return text
}

// DecodeOrFallback parses the first JSON object in text into T. Any
// failure returns the handler's documented fallback object instead of an
// error: the data is advisory, so a structured answer always beats a parse
// error surfaced to the user.
func DecodeOrFallback[T any](text string, fallback T) T {
	span := ExtractJSON(text)

	var result T
	if err := json.Unmarshal([]byte(span), &result); err != nil {
		slog.Warn("AI reply not parsable, using fallback", "error", err)
		return fallback
	}
	return result
}
