package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultModel is the identifier used when no model sequence is configured.
const DefaultModel = "gemini-2.5-flash-image-preview"

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	GoogleAPIKey       string
	GeminiBaseURL      string
	MainModel          string
	FallbackModel      string
	MaxStreamCount     int
	MaxRetryAttempts   int
	RetryDelay         time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and applies defaults
// where needed. A missing API key is not an error at load time: the service
// starts and reports the unconfigured credential on first use instead.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		GoogleAPIKey:       getEnv("GOOGLE_API_KEY", os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		MainModel:          getEnv("MAIN_MODEL", DefaultModel),
		FallbackModel:      os.Getenv("FALLBACK_MODEL"),
		MaxStreamCount:     getEnvInt("MAX_STREAM_COUNT", 6),
		MaxRetryAttempts:   getEnvInt("MAX_STREAM_RETRY_ATTEMPTS", 0),
		RetryDelay:         getEnvSeconds("STREAM_RETRY_DELAY_SECONDS", time.Second),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 600)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	return cfg, nil
}

// Models returns the ordered fallback sequence of model identifiers. The result
// is never empty.
func (c *Config) Models() []string {
	models := make([]string, 0, 2)
	if m := strings.TrimSpace(c.MainModel); m != "" {
		models = append(models, m)
	}
	if m := strings.TrimSpace(c.FallbackModel); m != "" {
		models = append(models, m)
	}
	if len(models) == 0 {
		models = append(models, DefaultModel)
	}
	return models
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvSeconds parses a duration expressed as (possibly fractional) seconds.
func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return time.Duration(f * float64(time.Second))
		}
	}
	return fallback
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
