package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderMock       = "mock"
	ProviderPeopleData = "peopledata"
)

type Config struct {
	Server     ServerConfig
	Enrichment EnrichmentConfig
	PeopleData PeopleDataConfig
	Redis      RedisConfig
	Database   DatabaseConfig
	RabbitMQ   RabbitMQConfig
	Directus   DirectusConfig
	Mail       MailConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Port           string
	SiteURL        string
	AllowedOrigins []string
	Version        string
}

type EnrichmentConfig struct {
	Provider         string
	MockDelay        time.Duration
	ProviderTimeout  time.Duration
	StrictEmail      bool
	RateLimit        int
	RateWindow       time.Duration
	CacheTTL         time.Duration
	BreakerThreshold int
	BreakerReset     time.Duration
}

type PeopleDataConfig struct {
	BaseURL string
	APIKey  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool { return c.Host != "" }

type DatabaseConfig struct {
	URL string
	// ContactRetention prunes contacts idle longer than this; zero keeps them forever.
	ContactRetention time.Duration
}

func (c DatabaseConfig) Enabled() bool { return c.URL != "" }

type RabbitMQConfig struct {
	Host              string
	Port              string
	User              string
	Password          string
	WorkerConcurrency int
}

func (c RabbitMQConfig) Enabled() bool { return c.Host != "" }

type DirectusConfig struct {
	URL   string
	Token string
}

func (c DirectusConfig) Enabled() bool { return c.URL != "" }

type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	NotifyTo string
}

func (c MailConfig) Enabled() bool { return c.Host != "" && c.NotifyTo != "" }

type LoggingConfig struct {
	Level string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	siteURL := getEnv("NUXT_PUBLIC_SITE_URL", "http://localhost:3000")

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			SiteURL:        siteURL,
			AllowedOrigins: parseCommaSeparated(getEnv("CORS_ALLOWED_ORIGINS", siteURL)),
			Version:        getEnv("APP_VERSION", "dev"),
		},
		Enrichment: EnrichmentConfig{
			Provider:         strings.ToLower(getEnv("ENRICH_PROVIDER", ProviderMock)),
			MockDelay:        getEnvDuration("ENRICH_MOCK_DELAY", 800*time.Millisecond),
			ProviderTimeout:  getEnvDuration("ENRICH_PROVIDER_TIMEOUT", 5*time.Second),
			StrictEmail:      getEnvBool("ENRICH_STRICT_EMAIL", false),
			RateLimit:        getEnvInt("ENRICH_RATE_LIMIT", 30),
			RateWindow:       getEnvDuration("ENRICH_RATE_WINDOW", time.Minute),
			CacheTTL:         getEnvDuration("ENRICH_CACHE_TTL", 24*time.Hour),
			BreakerThreshold: getEnvInt("ENRICH_BREAKER_THRESHOLD", 5),
			BreakerReset:     getEnvDuration("ENRICH_BREAKER_RESET", 30*time.Second),
		},
		PeopleData: PeopleDataConfig{
			BaseURL: getEnv("PEOPLEDATA_URL", "https://api.peopledatalabs.com/v5"),
			APIKey:  getEnv("PEOPLEDATA_API_KEY", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			URL:              getEnv("DATABASE_URL", ""),
			ContactRetention: getEnvDuration("DATABASE_CONTACT_RETENTION", 0),
		},
		RabbitMQ: RabbitMQConfig{
			Host:              getEnv("RABBITMQ_HOST", ""),
			Port:              getEnv("RABBITMQ_PORT", "5672"),
			User:              getEnv("RABBITMQ_USER", "guest"),
			Password:          getEnv("RABBITMQ_PASSWORD", "guest"),
			WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),
		},
		Directus: DirectusConfig{
			URL:   getEnv("DIRECTUS_URL", ""),
			Token: getEnv("DIRECTUS_TOKEN", ""),
		},
		Mail: MailConfig{
			Host:     getEnv("MAIL_HOST", ""),
			Port:     getEnvInt("MAIL_PORT", 587),
			User:     getEnv("MAIL_USER", ""),
			Password: getEnv("MAIL_PASS", ""),
			From:     getEnv("MAIL_FROM", "no-reply@agencyos.dev"),
			NotifyTo: getEnv("MAIL_NOTIFY_TO", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch c.Enrichment.Provider {
	case ProviderMock:
	case ProviderPeopleData:
		if c.PeopleData.APIKey == "" {
			return fmt.Errorf("PEOPLEDATA_API_KEY is required when ENRICH_PROVIDER=%s", ProviderPeopleData)
		}
		if c.PeopleData.BaseURL == "" {
			return fmt.Errorf("PEOPLEDATA_URL is required when ENRICH_PROVIDER=%s", ProviderPeopleData)
		}
	default:
		return fmt.Errorf("unknown ENRICH_PROVIDER %q", c.Enrichment.Provider)
	}
	if c.Enrichment.ProviderTimeout <= 0 {
		return fmt.Errorf("ENRICH_PROVIDER_TIMEOUT must be positive")
	}
	if c.Enrichment.RateWindow <= 0 {
		return fmt.Errorf("ENRICH_RATE_WINDOW must be positive")
	}
	if c.Enrichment.MockDelay < 0 {
		return fmt.Errorf("ENRICH_MOCK_DELAY must not be negative")
	}
	if c.RabbitMQ.Enabled() && c.RabbitMQ.WorkerConcurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
