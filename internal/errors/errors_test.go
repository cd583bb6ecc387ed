package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "error without cause",
			err:      NewConfigError(ErrCodeMissingAPIKey, "API key is required", nil),
			expected: "MISSING_API_KEY: API key is required",
		},
		{
			name:     "error with cause",
			err:      NewIOError(ErrCodeResumeNotFound, "resume file missing", errors.New("open resume.docx: no such file")),
			expected: "RESUME_NOT_FOUND: resume file missing (caused by: open resume.docx: no such file)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewAIError(ErrCodeGenerationFailed, "generation failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to match the wrapped cause")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("expected errors.As to find *AppError")
	}
	if appErr.Code != ErrCodeGenerationFailed {
		t.Errorf("Code = %q, want %q", appErr.Code, ErrCodeGenerationFailed)
	}
	if appErr.Type != ErrorTypeAI {
		t.Errorf("Type = %q, want %q", appErr.Type, ErrorTypeAI)
	}
}

func TestWithContext(t *testing.T) {
	err := NewRenderError(ErrCodeRenderFailed, "pdf export failed", nil).
		WithContext("output_path", "output/resume.pdf").
		WithContext("stage", "render")

	if err.Context["output_path"] != "output/resume.pdf" {
		t.Errorf("Context[output_path] = %v, want output/resume.pdf", err.Context["output_path"])
	}
	if err.Context["stage"] != "render" {
		t.Errorf("Context[stage] = %v, want render", err.Context["stage"])
	}
}

func TestConstructorTypes(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected ErrorType
	}{
		{"validation", NewValidationError("C", "m", nil), ErrorTypeValidation},
		{"io", NewIOError("C", "m", nil), ErrorTypeIO},
		{"ai", NewAIError("C", "m", nil), ErrorTypeAI},
		{"render", NewRenderError("C", "m", nil), ErrorTypeRender},
		{"config", NewConfigError("C", "m", nil), ErrorTypeConfig},
		{"internal", NewInternalError("C", "m", nil), ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.expected {
				t.Errorf("Type = %q, want %q", tt.err.Type, tt.expected)
			}
		})
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New("verbose"); err == nil {
		t.Error("expected error for invalid log level")
	} else if !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("unexpected error message: %v", err)
	}

	for _, level := range []string{"debug", "info", "warn", "error"} {
		if _, err := New(level); err != nil {
			t.Errorf("New(%q) returned error: %v", level, err)
		}
	}
}
