package gen

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/karnkeshav/automateresume/internal/config"
	apperrors "github.com/karnkeshav/automateresume/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Client sends prompts to the generative-language endpoint and returns the
// generated text. Each invocation makes one call, plus at most one
// minimal-payload fallback call when the first attempt fails.
type Client struct {
	transport *transport
	limiter   *rate.Limiter
	breaker   *CallBreaker
	logger    *apperrors.Logger

	callCounter  metric.Int64Counter
	tokenCounter metric.Int64Counter
}

// NewClient creates a generation client from configuration
func NewClient(cfg *config.AIConfig, logger *apperrors.Logger) *Client {
	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}

	meter := otel.Meter("automateresume.gen")
	callCounter, err := meter.Int64Counter("generation.calls",
		metric.WithDescription("Number of generation endpoint calls"))
	if err != nil && logger != nil {
		logger.Warn("Failed to create call counter", "error", err)
	}
	tokenCounter, err := meter.Int64Counter("generation.tokens",
		metric.WithDescription("Token usage reported by the generation endpoint"))
	if err != nil && logger != nil {
		logger.Warn("Failed to create token counter", "error", err)
	}

	return &Client{
		transport: &transport{
			httpClient: httpClient,
			baseURL:    cfg.BaseURL,
			apiKey:     cfg.APIKey,
		},
		limiter:      rate.NewLimiter(limit, 1),
		breaker:      NewCallBreaker(cfg.CircuitBreaker, logger),
		logger:       logger,
		callCounter:  callCounter,
		tokenCounter: tokenCounter,
	}
}

// Generate sends the request and returns the generated text. When the first
// attempt fails, one retry is made with a minimal payload carrying only the
// prompt; the returned error carries both failure bodies if that also fails.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	tracer := otel.Tracer("automateresume.gen")
	ctx, span := tracer.Start(ctx, "gen.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("gen.model", req.Model),
		attribute.Float64("gen.temperature", float64(req.Temperature)),
		attribute.Int("gen.max_output_tokens", int(req.MaxOutputTokens)),
		attribute.Int("gen.prompt_length", len(req.Prompt)),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return "", apperrors.NewAIError(apperrors.ErrCodeGenerationFailed,
			"Generation call canceled while waiting for rate limiter", err)
	}

	body, primaryErr := c.attempt(ctx, req, false)
	if primaryErr == nil {
		return c.finish(ctx, span, body)
	}

	if c.logger != nil {
		c.logger.Warn("Primary generation attempt failed, retrying with minimal payload",
			"kind", string(primaryErr.Kind),
			"status", primaryErr.StatusCode,
			"field", primaryErr.Field)
	}
	span.AddEvent("fallback_attempt")
	c.addCall(ctx, "fallback")

	body, fallbackErr := c.attempt(ctx, req, true)
	if fallbackErr == nil {
		return c.finish(ctx, span, body)
	}

	span.RecordError(fallbackErr)
	span.SetAttributes(attribute.Bool("success", false))

	return "", apperrors.NewAIError(apperrors.ErrCodeGenerationFailed,
		fmt.Sprintf("Generation failed on both attempts; primary: %s; fallback: %s",
			primaryErr.Error(), fallbackErr.Error()), fallbackErr).
		WithContext("primary_kind", string(primaryErr.Kind)).
		WithContext("primary_body", primaryErr.Body).
		WithContext("fallback_kind", string(fallbackErr.Kind)).
		WithContext("fallback_body", fallbackErr.Body)
}

// attempt makes one protected call and normalizes every failure to CallError
func (c *Client) attempt(ctx context.Context, req Request, minimal bool) ([]byte, *CallError) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		body, callErr := c.transport.call(ctx, req, minimal)
		if callErr != nil {
			return nil, callErr
		}
		return body, nil
	})
	if err != nil {
		var callErr *CallError
		if errors.As(err, &callErr) {
			return nil, callErr
		}
		// Breaker rejection or other non-transport error
		return nil, &CallError{Kind: CallKindTransport, Cause: err}
	}
	return body, nil
}

// finish extracts text and usage from a successful response body
func (c *Client) finish(ctx context.Context, span trace.Span, body []byte) (string, error) {
	c.addCall(ctx, "success")

	text := ExtractText(body)
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("gen.response_length", len(text)),
	)

	if usage := ExtractUsage(body); usage != nil {
		span.SetAttributes(
			attribute.Int64("gen.tokens.input", usage.InputTokens),
			attribute.Int64("gen.tokens.output", usage.OutputTokens),
			attribute.Int64("gen.tokens.total", usage.TotalTokens),
		)
		if c.tokenCounter != nil {
			c.tokenCounter.Add(ctx, usage.InputTokens,
				metric.WithAttributes(attribute.String("direction", "input")))
			c.tokenCounter.Add(ctx, usage.OutputTokens,
				metric.WithAttributes(attribute.String("direction", "output")))
		}
	}

	return text, nil
}

// addCall increments the call counter with an outcome attribute
func (c *Client) addCall(ctx context.Context, outcome string) {
	if c.callCounter != nil {
		c.callCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}
