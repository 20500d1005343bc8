package ai

import (
	"regexp"
	"strings"
)

var codeFencePattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// extractJSON pulls the first top-level JSON object out of free-form model
// text. Tolerates markdown code fences and leading/trailing commentary.
// Returns empty string when no balanced object is present.
func extractJSON(text string) string {
	if matches := codeFencePattern.FindStringSubmatch(text); len(matches) > 1 {
		text = matches[1]
	}

	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
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
				return text[start : i+1]
			}
		}
	}

	return ""
}

// normalizeTickers uppercases symbols, strips any $ prefix, and drops
// empties and duplicates
func normalizeTickers(raw []string) []string {
	tickers := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, t := range raw {
		symbol := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "$")))
		if symbol == "" {
			continue
		}
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		tickers = append(tickers, symbol)
	}

	return tickers
}
