package pipeline

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject locates the first JSON object embedded in text and
// returns it. Decoding one value with a streaming decoder handles nested
// braces and brace characters inside strings; any failure reports false so
// the caller can keep the raw text instead.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	decoder := json.NewDecoder(strings.NewReader(text[start:]))
	var raw json.RawMessage
	if err := decoder.Decode(&raw); err != nil {
		return "", false
	}

	return string(raw), true
}
