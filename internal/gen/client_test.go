package gen

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/karnkeshav/automateresume/internal/config"
	apperrors "github.com/karnkeshav/automateresume/internal/errors"
)

func testClient(baseURL string) *Client {
	return NewClient(&config.AIConfig{
		BaseURL:         baseURL,
		Model:           "test-model",
		APIKey:          "test-key",
		Timeout:         5 * time.Second,
		Temperature:     0.4,
		MaxOutputTokens: 100,
	}, nil)
}

func testRequest(prompt string) Request {
	return Request{
		Prompt:          prompt,
		Model:           "test-model",
		Temperature:     0.4,
		MaxOutputTokens: 100,
	}
}

func TestGenerateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if !strings.HasPrefix(r.URL.Path, "/models/test-model:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("credential not passed as query parameter")
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("unreadable payload: %v", err)
		}
		if _, ok := payload["generationConfig"]; !ok {
			t.Error("first attempt must carry generation config")
		}

		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "tailored output"}]}}]}`))
	}))
	defer server.Close()

	got, err := testClient(server.URL).Generate(context.Background(), testRequest("prompt"))
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	if got != "tailored output" {
		t.Errorf("Generate() = %q, want %q", got, "tailored output")
	}
}

func TestGenerateFallbackOnRejectedField(t *testing.T) {
	var bodies []map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var payload map[string]any
		json.Unmarshal(raw, &payload)
		bodies = append(bodies, payload)

		if len(bodies) == 1 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": {"code": 400, "status": "INVALID_ARGUMENT", "details": [{"fieldViolations": [{"field": "generation_config", "description": "Unknown name"}]}]}}`))
			return
		}
		w.Write([]byte(`{"text": "fallback output"}`))
	}))
	defer server.Close()

	got, err := testClient(server.URL).Generate(context.Background(), testRequest("prompt"))
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	if got != "fallback output" {
		t.Errorf("Generate() = %q, want %q", got, "fallback output")
	}

	if len(bodies) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(bodies))
	}
	if _, ok := bodies[1]["generationConfig"]; ok {
		t.Error("fallback payload must not carry generation config")
	}
	if _, ok := bodies[1]["contents"]; !ok {
		t.Error("fallback payload must still carry the prompt contents")
	}
}

func TestGenerateFallbackOnServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error": {"code": 503, "message": "overloaded"}}`))
			return
		}
		w.Write([]byte(`{"text": "recovered"}`))
	}))
	defer server.Close()

	got, err := testClient(server.URL).Generate(context.Background(), testRequest("prompt"))
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	if got != "recovered" {
		t.Errorf("Generate() = %q, want %q", got, "recovered")
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestGenerateBothAttemptsFail(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		if calls == 1 {
			w.Write([]byte(`primary failure body`))
		} else {
			w.Write([]byte(`fallback failure body`))
		}
	}))
	defer server.Close()

	_, err := testClient(server.URL).Generate(context.Background(), testRequest("prompt"))
	if err == nil {
		t.Fatal("expected error when both attempts fail")
	}
	if calls != 2 {
		t.Errorf("expected exactly 2 calls, got %d", calls)
	}

	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected *AppError, got %T", err)
	}
	if appErr.Code != apperrors.ErrCodeGenerationFailed {
		t.Errorf("Code = %q, want %q", appErr.Code, apperrors.ErrCodeGenerationFailed)
	}
	if !strings.Contains(appErr.Message, "primary failure body") {
		t.Error("error message missing primary failure body")
	}
	if !strings.Contains(appErr.Message, "fallback failure body") {
		t.Error("error message missing fallback failure body")
	}
}

func TestGenerateOpaqueShape(t *testing.T) {
	raw := `{"novel": {"shape": true}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(raw))
	}))
	defer server.Close()

	got, err := testClient(server.URL).Generate(context.Background(), testRequest("prompt"))
	if err != nil {
		t.Fatalf("Generate() returned error: %v", err)
	}
	if got != raw {
		t.Errorf("unknown shapes must degrade to raw body, got %q", got)
	}
}

func TestCallBreakerPassThroughWhenDisabled(t *testing.T) {
	breaker := NewCallBreaker(config.CircuitBreakerConfig{Enabled: false}, nil)
	if breaker != nil {
		t.Fatal("disabled breaker must be nil")
	}

	got, err := breaker.Execute(func() ([]byte, error) {
		return []byte("ok"), nil
	})
	if err != nil || string(got) != "ok" {
		t.Errorf("nil breaker must pass through, got %q, %v", got, err)
	}
	if !breaker.IsHealthy() {
		t.Error("nil breaker must report healthy")
	}
}

func TestCallBreakerTrips(t *testing.T) {
	breaker := NewCallBreaker(config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}, nil)

	failing := func() ([]byte, error) {
		return nil, &CallError{Kind: CallKindStatus, StatusCode: 500}
	}

	for i := 0; i < 3; i++ {
		breaker.Execute(failing)
	}
	if breaker.IsHealthy() {
		t.Error("breaker should trip after repeated failures")
	}
}
