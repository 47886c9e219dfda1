package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabaseURL string
	DBUser      string
	DBPassword  string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	RedisURL           string
	CacheTTL           time.Duration
	CacheReconnectStep time.Duration
	CacheReconnectMax  time.Duration

	LLMProvider     string
	ClaudeAPIKey    string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	LLMModel        string
	LLMMaxTokens    int
	PersonaFile     string
	ContextWindow   int
	HistoryPageSize int

	Port        string
	FrontendURL string
	Environment string
	JWTSecret   string
	LogDir      string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
}

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

func LoadConfig() Config {
	// a missing .env is fine, the process environment wins anyway
	_ = godotenv.Load()

	return Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBUser:      getEnv("DB_USER", ""),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBName:      getEnv("DB_NAME", ""),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		CacheTTL:           getEnvDuration("CACHE_TTL", 24*time.Hour),
		CacheReconnectStep: getEnvDuration("CACHE_RECONNECT_STEP", 50*time.Millisecond),
		CacheReconnectMax:  getEnvDuration("CACHE_RECONNECT_MAX", 2*time.Second),

		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderAnthropic)),
		ClaudeAPIKey:    getEnv("CLAUDE_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		LLMModel:        getEnv("LLM_MODEL", "claude-3-haiku-20240307"),
		LLMMaxTokens:    getEnvInt("LLM_MAX_TOKENS", 100),
		PersonaFile:     getEnv("PERSONA_FILE", ""),
		ContextWindow:   getEnvInt("CONTEXT_WINDOW", 10),
		HistoryPageSize: getEnvInt("HISTORY_PAGE_SIZE", 20),

		Port:        getEnv("PORT", "3000"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		Environment: getEnv("ENVIRONMENT", "development"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		LogDir:      getEnv("LOG_DIR", "./logs"),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "transcripts"),
		MinIOUseSSL:    getEnvBool("MINIO_USE_SSL", false),
	}
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderAnthropic:
		if c.ClaudeAPIKey == "" {
			return errors.New("CLAUDE_API_KEY environment variable not set")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY environment variable not set")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.DatabaseURL == "" && c.DBName == "" {
		return errors.New("either DATABASE_URL or DB_NAME must be set")
	}
	if c.ContextWindow <= 0 || c.HistoryPageSize <= 0 {
		return errors.New("CONTEXT_WINDOW and HISTORY_PAGE_SIZE must be positive")
	}
	return nil
}

// CacheEnabled reports whether a cache endpoint is configured at all.
func (c Config) CacheEnabled() bool {
	return c.RedisURL != "" && c.RedisURL != "off"
}

func (c Config) ArchiveEnabled() bool {
	return c.MinIOEndpoint != ""
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Persona is the fixed system instruction plus the user-facing fallback
// strings. It is loaded once at startup.
type Persona struct {
	SystemPrompt string    `yaml:"system_prompt"`
	Fallbacks    Fallbacks `yaml:"fallbacks"`
}

type Fallbacks struct {
	RateLimit   string `yaml:"rate_limit"`
	Timeout     string `yaml:"timeout"`
	Auth        string `yaml:"auth"`
	Unavailable string `yaml:"unavailable"`
}

// LoadPersona reads a YAML persona file. Fields left empty keep the values in
// base.
func LoadPersona(path string, base Persona) (Persona, error) {
	if path == "" {
		return base, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read persona file: %w", err)
	}
	var p Persona
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return base, fmt.Errorf("parse persona file: %w", err)
	}
	out := base
	if strings.TrimSpace(p.SystemPrompt) != "" {
		out.SystemPrompt = p.SystemPrompt
	}
	if p.Fallbacks.RateLimit != "" {
		out.Fallbacks.RateLimit = p.Fallbacks.RateLimit
	}
	if p.Fallbacks.Timeout != "" {
		out.Fallbacks.Timeout = p.Fallbacks.Timeout
	}
	if p.Fallbacks.Auth != "" {
		out.Fallbacks.Auth = p.Fallbacks.Auth
	}
	if p.Fallbacks.Unavailable != "" {
		out.Fallbacks.Unavailable = p.Fallbacks.Unavailable
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
