package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON extracts and unmarshals a JSON object from model output.
// Models frequently wrap JSON in markdown fences or surround it with prose,
// so the object is located before decoding.
func DecodeJSON(text string, v any) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("empty response")
	}

	// Strip markdown code fences
	if idx := strings.Index(text, "```json"); idx != -1 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
	} else if strings.Contains(text, "```") {
		parts := strings.SplitN(text, "```", 3)
		if len(parts) >= 2 {
			text = parts[1]
			if strings.HasPrefix(strings.ToLower(text), "json") {
				text = text[4:]
			}
		}
	}

	text = strings.TrimSpace(text)

	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	// Fall back to the outermost object embedded in surrounding prose
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return fmt.Errorf("no JSON object in response")
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("decode response JSON: %w", err)
	}
	return nil
}
