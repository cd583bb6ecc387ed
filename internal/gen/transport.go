package gen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// CallKind classifies a failed generation call. The fallback decision is a
// match on this value, never on error-message text.
type CallKind string

const (
	// CallKindTransport covers network-level failures: connection errors,
	// timeouts, unreadable bodies.
	CallKindTransport CallKind = "transport"

	// CallKindRejectedField means the endpoint rejected the request with a
	// client error naming an offending payload field.
	CallKindRejectedField CallKind = "rejected_field"

	// CallKindStatus covers every other non-2xx response.
	CallKindStatus CallKind = "status"
)

// CallError is the structured failure result of a single generation call
type CallError struct {
	Kind       CallKind
	StatusCode int
	Field      string // Set when Kind is CallKindRejectedField
	Body       string // Raw response body, empty for transport failures
	Cause      error
}

func (e *CallError) Error() string {
	switch e.Kind {
	case CallKindTransport:
		return fmt.Sprintf("transport failure: %v", e.Cause)
	case CallKindRejectedField:
		return fmt.Sprintf("endpoint rejected field %q (status %d): %s", e.Field, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("endpoint returned status %d: %s", e.StatusCode, e.Body)
	}
}

func (e *CallError) Unwrap() error {
	return e.Cause
}

// Request is the generation request record for a single call. Constructed
// fresh per call and never mutated.
type Request struct {
	Prompt          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

type generatePayload struct {
	Contents         []payloadContent  `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type payloadContent struct {
	Parts []payloadPart `json:"parts"`
}

type payloadPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
}

// buildPayload builds the request body. The minimal form carries only the
// prompt, for the fallback attempt when the extended form is rejected.
func buildPayload(req Request, minimal bool) generatePayload {
	payload := generatePayload{
		Contents: []payloadContent{
			{Parts: []payloadPart{{Text: req.Prompt}}},
		},
	}

	if !minimal {
		payload.GenerationConfig = &generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxOutputTokens,
		}
	}

	return payload
}

// errorEnvelope is the standard error shape returned by the endpoint
type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type            string `json:"@type"`
			FieldViolations []struct {
				Field       string `json:"field"`
				Description string `json:"description"`
			} `json:"fieldViolations"`
		} `json:"details"`
	} `json:"error"`
}

// classifyFailure turns a non-2xx response into a CallError. A 4xx response
// whose error envelope names a violated field is a rejected-field failure;
// everything else is a plain status failure.
func classifyFailure(statusCode int, body []byte) *CallError {
	callErr := &CallError{
		Kind:       CallKindStatus,
		StatusCode: statusCode,
		Body:       string(body),
	}

	if statusCode < 400 || statusCode >= 500 {
		return callErr
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return callErr
	}

	for _, detail := range envelope.Error.Details {
		for _, violation := range detail.FieldViolations {
			if violation.Field != "" {
				callErr.Kind = CallKindRejectedField
				callErr.Field = violation.Field
				return callErr
			}
		}
	}

	return callErr
}

// transport performs single generation calls against the remote endpoint
type transport struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// call makes one HTTPS JSON POST to the model endpoint and returns the raw
// response body on success or a classified CallError on failure.
func (t *transport) call(ctx context.Context, req Request, minimal bool) ([]byte, *CallError) {
	body, err := json.Marshal(buildPayload(req, minimal))
	if err != nil {
		return nil, &CallError{Kind: CallKindTransport, Cause: err}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		t.baseURL, url.PathEscape(req.Model), url.QueryEscape(t.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &CallError{Kind: CallKindTransport, Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, &CallError{Kind: CallKindTransport, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CallError{Kind: CallKindTransport, StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyFailure(resp.StatusCode, respBody)
	}

	return respBody, nil
}
