package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Generation endpoint - global defaults
	v.SetDefault("ai.baseURL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.timeout", 120*time.Second)
	v.SetDefault("ai.temperature", 0.4)
	v.SetDefault("ai.maxOutputTokens", 4096)
	v.SetDefault("ai.requestsPerMinute", 30)

	// Stage defaults; empty model falls back to the global model
	v.SetDefault("ai.tailor.model", "")
	v.SetDefault("ai.tailor.temperature", 0.4)

	v.SetDefault("ai.critique.model", "")
	v.SetDefault("ai.critique.temperature", 0.2) // Low temperature for factual gap analysis

	v.SetDefault("ai.revise.model", "")
	v.SetDefault("ai.revise.temperature", 0.3)

	// Circuit breaker defaults
	v.SetDefault("ai.circuitBreaker.enabled", true)
	v.SetDefault("ai.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.circuitBreaker.failureThreshold", 0.6)

	// Render configuration
	v.SetDefault("render.templateFile", "")
	v.SetDefault("render.timeout", 60*time.Second)
	v.SetDefault("render.marginInches", 0.4)

	// App configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.outputDir", "output")
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Vault configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.keyPath", "")
	v.SetDefault("vault.keyField", "apiKey")

	// Observability configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "automateresume")
	v.SetDefault("observability.serviceVersion", "") // Will use app version if empty
	v.SetDefault("observability.consoleOutput", false)

	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
