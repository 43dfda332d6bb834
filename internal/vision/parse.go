package vision

import (
	"encoding/json"
	"strings"

	apperrors "go-shipment-verifier/internal/errors"
)

// ExtractJSON finds the JSON object embedded in a free-text model
// reply. Models routinely wrap the payload in prose or code fences;
// the region from the first '{' to the last '}' is taken greedily and
// then checked for balanced braces before use.
func ExtractJSON(text string) (string, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return "", apperrors.NewParseError("failed to parse analysis: no JSON object in model reply", nil)
	}

	candidate := cleaned[start : end+1]
	if !bracesBalanced(candidate) {
		return "", apperrors.NewParseError("failed to parse analysis: unbalanced JSON in model reply", nil)
	}
	return candidate, nil
}

// ParseReply extracts the embedded JSON object and unmarshals it into
// out. Any failure is terminal for the stage that issued the request.
func ParseReply(text string, out interface{}) error {
	raw, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return apperrors.NewParseError("failed to parse analysis: malformed JSON in model reply", err)
	}
	return nil
}

// bracesBalanced scans the candidate region, tracking string literals
// and escapes so braces inside quoted values do not count.
func bracesBalanced(s string) bool {
	depth := 0
	inString := false
	escaped := false

	for _, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth < 0 {
					return false
				}
			}
		}
	}
	return depth == 0 && !inString
}
