package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	App       AppConfig
	Content   ContentConfig
	LockDB    LockDBConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Search    SearchConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"focusai-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// ContentConfig tunes the per-profession content cache.
type ContentConfig struct {
	// DisplayCount is how many cards one request returns.
	DisplayCount int `envconfig:"CONTENT_DISPLAY_COUNT" default:"6"`
	// FetchCount is how many cards one upstream call asks for.
	// The surplus beyond DisplayCount is retained for later requests.
	FetchCount int `envconfig:"CONTENT_FETCH_COUNT" default:"18"`
	// TTL is how long a retained surplus stays servable.
	TTL time.Duration `envconfig:"CONTENT_CACHE_TTL" default:"30m"`
}

// LockDBConfig holds daily lock store settings.
type LockDBConfig struct {
	Type string `envconfig:"LOCK_DB_TYPE" default:"sqlite"` // sqlite, redis, or memory
	Path string `envconfig:"LOCK_DB_PATH" default:"./data/focusai.db"`
	// RetentionDays > 0 enables periodic cleanup of lock records older
	// than that many days. 0 keeps everything (the share page reads
	// old records).
	RetentionDays   int           `envconfig:"LOCK_RETENTION_DAYS" default:"0"`
	CleanupInterval time.Duration `envconfig:"LOCK_CLEANUP_INTERVAL" default:"24h"`
}

// DatabaseConfig holds MySQL connection settings (for premium_users).
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	Name     string `envconfig:"DB_NAME" default:"focusai"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASS" default:""`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// SearchConfig holds upstream search and LLM settings.
type SearchConfig struct {
	// TavilyAPIKeys is a comma-separated key list; keys are rotated
	// per call to spread free-tier quota.
	TavilyAPIKeys  string        `envconfig:"TAVILY_API_KEYS" default:""`
	TavilyBaseURL  string        `envconfig:"TAVILY_BASE_URL" default:"https://api.tavily.com"`
	LLMAPIKey      string        `envconfig:"LLM_API_KEY" default:""`
	LLMBaseURL     string        `envconfig:"LLM_BASE_URL" default:"https://api.siliconflow.cn/v1"`
	LLMModel       string        `envconfig:"LLM_MODEL" default:"deepseek-ai/DeepSeek-V3"`
	RequestTimeout time.Duration `envconfig:"SEARCH_REQUEST_TIMEOUT" default:"90s"`
}

// RateLimitConfig holds per-user rate limit settings for the generate endpoint.
type RateLimitConfig struct {
	GeneratePerMinute int `envconfig:"RATE_LIMIT_GENERATE_PER_MIN" default:"10"`
	GenerateBurst     int `envconfig:"RATE_LIMIT_GENERATE_BURST" default:"5"`
}

// TavilyKeys returns the parsed credential list, empty entries dropped.
func (s *SearchConfig) TavilyKeys() []string {
	if s.TavilyAPIKeys == "" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(s.TavilyAPIKeys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Address returns the Redis address in host:port format.
func (r *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// DSN returns the MySQL data source name.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Content.DisplayCount < 1 {
		return nil, fmt.Errorf("CONTENT_DISPLAY_COUNT must be positive, got %d", cfg.Content.DisplayCount)
	}
	if cfg.Content.FetchCount < cfg.Content.DisplayCount {
		return nil, fmt.Errorf("CONTENT_FETCH_COUNT (%d) must be >= CONTENT_DISPLAY_COUNT (%d)",
			cfg.Content.FetchCount, cfg.Content.DisplayCount)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
