// Package extract pulls structured data out of free-form model output.
//
// Generation backends are asked for JSON but routinely wrap it in markdown
// fences or surround it with prose. Every call site must supply its own
// fallback value when extraction fails; parse failure is an expected
// condition, not an error to propagate.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JSON unmarshals the first JSON object found in raw into v.
// It strips markdown code fences before parsing and, if the cleaned text
// still fails to parse, retries on the substring between the first '{'
// and the last '}'.
func JSON(raw string, v any) error {
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	if err := json.Unmarshal([]byte(clean), v); err == nil {
		return nil
	}

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON object in model output")
	}

	if err := json.Unmarshal([]byte(clean[start:end+1]), v); err != nil {
		return fmt.Errorf("malformed JSON in model output: %w", err)
	}
	return nil
}
