package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported AI providers
const (
	ProviderGrok   = "grok"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Version is reported by the root route and the CLI
const Version = "1.0.0"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type providerDefaults struct {
	baseURL   string
	model     string
	testModel string
}

var defaults = map[string]providerDefaults{
	ProviderGrok:   {baseURL: "https://api.x.ai/v1", model: "grok-2-vision-1212", testModel: "grok-4-latest"},
	ProviderOpenAI: {baseURL: "https://api.openai.com/v1", model: "gpt-4o", testModel: "gpt-4o-mini"},
	ProviderGemini: {model: "gemini-1.5-flash", testModel: "gemini-1.5-flash"},
}

type Config struct {
	Host        string
	Port        string
	Environment string
	LogLevel    string

	AIProvider         string
	AIAPIKey           string
	AIModel            string
	AITestModel        string
	AIBaseURL          string
	AIMaxTokens        int
	AITemperature      float64
	AIRetryAttempts    int
	AIRetryBaseDelay   time.Duration
	AITimeout          time.Duration
	AIStructuredOutput bool

	RequestTimeout    time.Duration
	ImageFetchTimeout time.Duration
	MaxUploadSize     int64

	// Requests per hour per IP across all routes
	RateLimitGeneral int
	// Analysis requests per hour per IP
	RateLimitAnalysis int
	// Analysis requests per minute per IP
	RateLimitBurst int

	AzureStorageAccount string
	AzureStorageKey     string

	TelegramBotToken string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// IsDevelopment reports whether relaxed development limits apply
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// AzureEnabled reports whether azblob:// sources can be served
func (c *Config) AzureEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

// MaxUploadSizeMB is the upload cap in whole mebibytes
func (c *Config) MaxUploadSizeMB() int64 {
	return c.MaxUploadSize / (1024 * 1024)
}

func LoadFromEnv() (*Config, error) {
	provider := strings.ToLower(strings.TrimSpace(getEnvOrDefault("AI_PROVIDER", ProviderGrok)))
	d, ok := defaults[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported AI_PROVIDER: %q", provider)
	}

	env := getEnvOrDefault("APP_ENV", getEnvOrDefault("NODE_ENV", EnvProduction))

	cfg := &Config{
		Host:        getEnvOrDefault("HOST", "0.0.0.0"),
		Port:        getEnvOrDefault("PORT", "3000"),
		Environment: strings.ToLower(strings.TrimSpace(env)),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),

		AIProvider:         provider,
		AIAPIKey:           strings.TrimSpace(os.Getenv(strings.ToUpper(provider) + "_API_KEY")),
		AIModel:            getEnvOrDefault("AI_MODEL", d.model),
		AITestModel:        getEnvOrDefault("AI_TEST_MODEL", d.testModel),
		AIBaseURL:          strings.TrimRight(getEnvOrDefault("AI_BASE_URL", d.baseURL), "/"),
		AIMaxTokens:        int(parseIntOrDefault("AI_MAX_TOKENS", 2000)),
		AITemperature:      parseFloatOrDefault("AI_TEMPERATURE", 0.7),
		AIRetryAttempts:    int(parseIntOrDefault("AI_RETRY_ATTEMPTS", 3)),
		AIRetryBaseDelay:   parseDurationOrDefault("AI_RETRY_BASE_DELAY", time.Second),
		AITimeout:          parseDurationOrDefault("AI_TIMEOUT", 60*time.Second),
		AIStructuredOutput: parseBoolOrDefault("AI_STRUCTURED_OUTPUT", false),

		RequestTimeout:    parseDurationOrDefault("REQUEST_TIMEOUT", 120*time.Second),
		ImageFetchTimeout: parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		MaxUploadSize:     parseIntOrDefault("MAX_UPLOAD_SIZE", 10*1024*1024), // 10MB

		RateLimitGeneral:  int(parseIntOrDefault("RATE_LIMIT_GENERAL", 100)),
		RateLimitAnalysis: int(parseIntOrDefault("RATE_LIMIT_ANALYSIS", 50)),
		RateLimitBurst:    int(parseIntOrDefault("RATE_LIMIT_BURST", 10)),

		AzureStorageAccount: os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:     os.Getenv("AZURE_STORAGE_KEY"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges; a missing API key is not an error here and is reported per request
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be > 0 (got %d)", c.MaxUploadSize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.AITimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, ai=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.AITimeout)
	}
	if c.AIRetryAttempts < 1 {
		return fmt.Errorf("AI_RETRY_ATTEMPTS must be >= 1 (got %d)", c.AIRetryAttempts)
	}
	if c.AIMaxTokens <= 0 {
		return fmt.Errorf("AI_MAX_TOKENS must be > 0 (got %d)", c.AIMaxTokens)
	}
	if c.RateLimitGeneral <= 0 || c.RateLimitAnalysis <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limits must be > 0 (got general=%d, analysis=%d, burst=%d)",
			c.RateLimitGeneral, c.RateLimitAnalysis, c.RateLimitBurst)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
