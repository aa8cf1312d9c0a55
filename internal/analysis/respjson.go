package analysis

import (
	"encoding/json"
	"log"
	"strings"
)

// StripCodeFence removes markdown code-fence markers the completion
// service tends to wrap JSON output in, so fenced and unfenced payloads
// parse identically.
func StripCodeFence(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// decodeOrDegrade is the recovery strategy for malformed completion
// output: fence-strip, then best-effort parse into v. It reports false
// on failure (logging the raw text for diagnosis) so the caller can
// substitute its stage's empty value instead of aborting the run.
func decodeOrDegrade(stage, raw string, v interface{}) bool {
	cleaned := StripCodeFence(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		log.Printf("analysis.%s: degrading to empty result, unparseable completion output: %v (raw: %s)", stage, err, truncate(cleaned, 500))
		return false
	}
	return true
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
