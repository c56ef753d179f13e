package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	AI           AIConfig
	Redis        RedisConfig
	Realtime     RealtimeConfig
	Logger       LoggerConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	StaticDir             string
	SeedSampleTicket      bool
	RequestTimeoutSeconds int
	ShutdownGraceSeconds  int
}

// AI providers understood by the triage adapter.
const (
	AIProviderHuggingFace = "huggingface"
	AIProviderOpenAI      = "openai"
	AIProviderNone        = "none"
)

// AIConfig selects and tunes the text-generation backend.
type AIConfig struct {
	Provider       string
	ModelURL       string
	APIToken       string
	TimeoutSeconds int
	OpenAIBaseURL  string
	OpenAIModel    string
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// RealtimeConfig tunes websocket fan-out.
type RealtimeConfig struct {
	SendBuffer int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// NotificationConfig holds outbound notification endpoints.
type NotificationConfig struct {
	WebhookURL string
}

const defaultModelURL = "https://api-inference.huggingface.co/models/google/flan-t5-small"

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	provider := strings.ToLower(getEnv("AI_PROVIDER", AIProviderHuggingFace))
	switch provider {
	case AIProviderHuggingFace, AIProviderOpenAI, AIProviderNone:
	default:
		return nil, fmt.Errorf("invalid AI_PROVIDER %q", provider)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "supportops"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("PORT", getEnv("APP_PORT", "4000")),
			Version:               getEnv("APP_VERSION", "dev"),
			StaticDir:             os.Getenv("STATIC_DIR"),
			SeedSampleTicket:      getEnvAsBool("SEED_SAMPLE_TICKET", true),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 0),
			ShutdownGraceSeconds:  getEnvAsInt("SHUTDOWN_GRACE_SECONDS", 10),
		},
		AI: AIConfig{
			Provider:       provider,
			ModelURL:       getEnv("AI_MODEL_URL", defaultModelURL),
			APIToken:       os.Getenv("AI_API_TOKEN"),
			TimeoutSeconds: getEnvAsInt("AI_TIMEOUT_SECONDS", 25),
			OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
			OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			Channel:  getEnv("REDIS_CHANNEL", "supportops:tickets"),
		},
		Realtime: RealtimeConfig{
			SendBuffer: getEnvAsInt("WS_SEND_BUFFER", 16),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ShutdownGrace is how long graceful shutdown may take before the process is forced down.
func (a AppConfig) ShutdownGrace() time.Duration {
	if a.ShutdownGraceSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(a.ShutdownGraceSeconds) * time.Second
}

// Timeout bounds each outbound model call.
func (a AIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 25 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
