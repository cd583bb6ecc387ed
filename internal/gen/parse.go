package gen

import (
	"encoding/json"
	"strings"
)

// The endpoint's success payload shape is not guaranteed stable. Extraction
// tries each known shape in fixed priority order and falls back to the raw
// body, so callers never see an unhandled-shape failure from this layer.

// shapeExtractor attempts to pull generated text out of one known response
// shape. The boolean reports whether the shape matched.
type shapeExtractor func(root map[string]any) (string, bool)

var shapeExtractors = []shapeExtractor{
	extractDirectText,
	extractCandidateText,
	extractOutputText,
}

// ExtractText returns the generated text from a successful response body.
// Unknown shapes degrade to the body itself rather than failing.
func ExtractText(body []byte) string {
	var root map[string]any
	if err := json.Unmarshal(body, &root); err != nil {
		return strings.TrimSpace(string(body))
	}

	for _, extract := range shapeExtractors {
		if text, ok := extract(root); ok {
			return strings.TrimSpace(text)
		}
	}

	return strings.TrimSpace(string(body))
}

// extractDirectText handles {"text": "..."}
func extractDirectText(root map[string]any) (string, bool) {
	text, ok := root["text"].(string)
	return text, ok
}

// extractCandidateText handles {"candidates": [{"content": ...}]} where the
// content value may be a plain string, an object with a parts list, or an
// object wrapping a message.
func extractCandidateText(root map[string]any) (string, bool) {
	candidates, ok := root["candidates"].([]any)
	if !ok || len(candidates) == 0 {
		return "", false
	}

	candidate, ok := candidates[0].(map[string]any)
	if !ok {
		return "", false
	}

	switch content := candidate["content"].(type) {
	case string:
		return content, true
	case map[string]any:
		if text, ok := extractParts(content); ok {
			return text, true
		}
		if message, ok := content["message"].(map[string]any); ok {
			if text, ok := message["content"].(string); ok {
				return text, true
			}
		}
		if text, ok := content["text"].(string); ok {
			return text, true
		}
	}

	return "", false
}

// extractParts joins the text runs of a {"parts": [{"text": ...}]} object
func extractParts(content map[string]any) (string, bool) {
	parts, ok := content["parts"].([]any)
	if !ok || len(parts) == 0 {
		return "", false
	}

	var sb strings.Builder
	found := false
	for _, p := range parts {
		part, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := part["text"].(string); ok {
			sb.WriteString(text)
			found = true
		}
	}

	return sb.String(), found
}

// extractOutputText handles {"output": [...]} where items are strings or
// objects carrying a text or content field.
func extractOutputText(root map[string]any) (string, bool) {
	output, ok := root["output"].([]any)
	if !ok || len(output) == 0 {
		return "", false
	}

	var texts []string
	for _, item := range output {
		switch v := item.(type) {
		case string:
			texts = append(texts, v)
		case map[string]any:
			if text, ok := v["text"].(string); ok {
				texts = append(texts, text)
			} else if text, ok := v["content"].(string); ok {
				texts = append(texts, text)
			}
		}
	}

	if len(texts) == 0 {
		return "", false
	}

	return strings.Join(texts, "\n"), true
}

// TokenUsage holds token counts reported by the endpoint
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ExtractUsage pulls token usage out of a response body, when present
func ExtractUsage(body []byte) *TokenUsage {
	var root struct {
		UsageMetadata *struct {
			PromptTokenCount     int64 `json:"promptTokenCount"`
			CandidatesTokenCount int64 `json:"candidatesTokenCount"`
			TotalTokenCount      int64 `json:"totalTokenCount"`
		} `json:"usageMetadata"`
	}

	if err := json.Unmarshal(body, &root); err != nil || root.UsageMetadata == nil {
		return nil
	}

	return &TokenUsage{
		InputTokens:  root.UsageMetadata.PromptTokenCount,
		OutputTokens: root.UsageMetadata.CandidatesTokenCount,
		TotalTokens:  root.UsageMetadata.TotalTokenCount,
	}
}
