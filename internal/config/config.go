package config

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/karnkeshav/automateresume/internal/errors"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (GEMINI_API_KEY / AUTORESUME_AI_APIKEY)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Render        RenderConfig        `mapstructure:"render"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds generation endpoint configuration
type AIConfig struct {
	// Global/fallback configuration for all pipeline stages
	BaseURL           string        `mapstructure:"baseURL"`
	Model             string        `mapstructure:"model"`
	APIKey            string        `mapstructure:"apiKey"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Temperature       float32       `mapstructure:"temperature"`
	MaxOutputTokens   int32         `mapstructure:"maxOutputTokens"`
	RequestsPerMinute int           `mapstructure:"requestsPerMinute"`

	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`

	// Stage-specific configurations
	Tailor   StageAIConfig `mapstructure:"tailor"`
	Critique StageAIConfig `mapstructure:"critique"`
	Revise   StageAIConfig `mapstructure:"revise"`
}

// StageAIConfig holds generation configuration for a single pipeline stage
type StageAIConfig struct {
	Model           string   `mapstructure:"model"`
	Temperature     *float32 `mapstructure:"temperature"`
	MaxOutputTokens *int32   `mapstructure:"maxOutputTokens"`

	// PromptTemplate overrides the built-in prompt template for the stage.
	// PromptTemplateFile points at an external template file; file content
	// wins over the inline value.
	PromptTemplate     string `mapstructure:"promptTemplate"`
	PromptTemplateFile string `mapstructure:"promptTemplateFile"`

	loadedTemplate string
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// RenderConfig holds PDF rendering configuration
type RenderConfig struct {
	TemplateFile string        `mapstructure:"templateFile"` // External HTML template; built-in when empty
	Timeout      time.Duration `mapstructure:"timeout"`
	MarginInches float64       `mapstructure:"marginInches"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel    string `mapstructure:"logLevel"`
	OutputDir   string `mapstructure:"outputDir"`
	MaxFileSize int64  `mapstructure:"maxFileSize"`
}

// VaultConfig holds the optional Vault credential source configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`
	KeyPath   string `mapstructure:"keyPath"`  // KVv2 path of the generation API key secret
	KeyField  string `mapstructure:"keyField"` // Field within the secret holding the key
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"serviceName"`
	ServiceVersion string        `mapstructure:"serviceVersion"`
	ConsoleOutput  bool          `mapstructure:"consoleOutput"`
	Tracing        TracingConfig `mapstructure:"tracing"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
	OTLP           OTLPConfig    `mapstructure:"otlp"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig loads configuration from defaults, an optional config file, and
// environment variables. Components never read the environment themselves;
// everything ambient is resolved here, once, at startup.
func LoadConfig(logger *apperrors.Logger) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("AUTORESUME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The credential and its overrides predate the viper layer; honor them
	// under their original names too.
	_ = v.BindEnv("ai.apiKey", "AUTORESUME_AI_APIKEY", "GEMINI_API_KEY")
	_ = v.BindEnv("ai.model", "AUTORESUME_AI_MODEL", "GEMINI_MODEL")
	_ = v.BindEnv("ai.maxOutputTokens", "AUTORESUME_AI_MAXOUTPUTTOKENS", "GEMINI_MAX_OUTPUT_TOKENS")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/automateresume/")
	v.AddConfigPath("$HOME/.automateresume")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Vault.Enabled {
		if err := ApplyVaultSecrets(&config, logger); err != nil {
			return nil, fmt.Errorf("failed to load secrets from vault: %w", err)
		}
	}

	if err := config.loadPromptTemplates(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.AI.APIKey == "" {
		return apperrors.NewConfigError(apperrors.ErrCodeMissingAPIKey,
			"generation API key is required (set GEMINI_API_KEY environment variable)", nil)
	}

	if c.AI.BaseURL == "" {
		return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			"generation base URL is required", nil)
	}

	if c.AI.Timeout <= 0 {
		return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			"generation timeout must be positive", nil)
	}

	if c.AI.Temperature < 0 || c.AI.Temperature > 1 {
		return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			fmt.Sprintf("temperature must be between 0.0 and 1.0, got %v", c.AI.Temperature), nil)
	}

	if c.AI.MaxOutputTokens <= 0 {
		return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			"maxOutputTokens must be positive", nil)
	}

	if c.App.OutputDir == "" {
		return apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			"output directory is required", nil)
	}

	return nil
}

// StageConfig is the resolved generation configuration for one pipeline stage,
// with global fallbacks already applied.
type StageConfig struct {
	Name            string
	Model           string
	Temperature     float32
	MaxOutputTokens int32

	// Template is the resolved prompt template override (file content wins
	// over inline config). Empty means the built-in default applies.
	Template string
}

// resolveStage applies global defaults to a stage-specific configuration
func (c *Config) resolveStage(name string, stage *StageAIConfig) StageConfig {
	resolved := StageConfig{
		Name:            name,
		Model:           stage.Model,
		Temperature:     c.AI.Temperature,
		MaxOutputTokens: c.AI.MaxOutputTokens,
	}

	if resolved.Model == "" {
		resolved.Model = c.AI.Model
	}
	if stage.Temperature != nil {
		resolved.Temperature = *stage.Temperature
	}
	if stage.MaxOutputTokens != nil {
		resolved.MaxOutputTokens = *stage.MaxOutputTokens
	}

	// Priority: loaded file content, then inline config value. The prompt
	// package falls back to its built-in default when both are empty.
	resolved.Template = stage.loadedTemplate
	if resolved.Template == "" {
		resolved.Template = stage.PromptTemplate
	}

	return resolved
}

// TailorStage returns the resolved configuration for the tailor stage
func (c *Config) TailorStage() StageConfig {
	return c.resolveStage("tailor", &c.AI.Tailor)
}

// CritiqueStage returns the resolved configuration for the critique stage
func (c *Config) CritiqueStage() StageConfig {
	return c.resolveStage("critique", &c.AI.Critique)
}

// ReviseStage returns the resolved configuration for the revise stage
func (c *Config) ReviseStage() StageConfig {
	return c.resolveStage("revise", &c.AI.Revise)
}
