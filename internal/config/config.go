// Package config provides configuration loading for the web tools server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Quota    QuotaConfig    `mapstructure:"quota"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Calendar CalendarConfig `mapstructure:"calendar"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	Host           string        `mapstructure:"host"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Environment    string        `mapstructure:"environment"` // dev, staging, prod
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RateLimitRPM   int           `mapstructure:"rate_limit_rpm"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

// DatabaseConfig holds PostgreSQL configuration.
// URL wins over the discrete fields when set.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// MigrationURL returns the postgres:// URL golang-migrate expects.
func (c DatabaseConfig) MigrationURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthConfig holds authentication configuration. Sign-in is OAuth only.
type AuthConfig struct {
	SessionSecret     string        `mapstructure:"session_secret"`
	SessionExpiry     time.Duration `mapstructure:"session_expiry"`
	SecureCookies     bool          `mapstructure:"secure_cookies"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
	JWTExpiry         time.Duration `mapstructure:"jwt_expiry"`
	OAuthGitHubID     string        `mapstructure:"oauth_github_id"`
	OAuthGitHubSecret string        `mapstructure:"oauth_github_secret"`
	OAuthGoogleID     string        `mapstructure:"oauth_google_id"`
	OAuthGoogleSecret string        `mapstructure:"oauth_google_secret"`
	OAuthCallbackURL  string        `mapstructure:"oauth_callback_url"`
	DashboardURL      string        `mapstructure:"dashboard_url"`
	AdminEmails       []string      `mapstructure:"admin_emails"`
}

// QuotaConfig holds the daily allowances for metered actions.
type QuotaConfig struct {
	AIChatDailyLimit int `mapstructure:"ai_chat_daily_limit"`
}

// ChatConfig points the chat relay at an OpenAI-compatible upstream.
type ChatConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	DefaultModel string        `mapstructure:"default_model"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Temperature  float64       `mapstructure:"temperature"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// CatalogConfig locates the JSON files describing tools, home and calendars.
type CatalogConfig struct {
	Dir string `mapstructure:"dir"`
}

// CalendarConfig controls iCalendar feed fetching.
type CalendarConfig struct {
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	MaxFeedBytes int64         `mapstructure:"max_feed_bytes"`
}

// Development-only signing keys. Validate refuses them in prod.
const (
	devSessionSecret = "dev-session-secret-change-me"
	devJWTSecret     = "dev-jwt-secret-change-me"
)

// Load reads configuration from files and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/webtools")

	v.SetEnvPrefix("WEBTOOLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// AutomaticEnv only sees keys viper already knows about; secrets have no
	// defaults, so bind them explicitly.
	v.BindEnv("database.url", "WEBTOOLS_DATABASE_URL", "DATABASE_URL")
	v.BindEnv("auth.session_secret", "WEBTOOLS_AUTH_SESSION_SECRET")
	v.BindEnv("auth.jwt_secret", "WEBTOOLS_AUTH_JWT_SECRET")
	v.BindEnv("auth.oauth_github_id", "WEBTOOLS_AUTH_OAUTH_GITHUB_ID", "GITHUB_ID")
	v.BindEnv("auth.oauth_github_secret", "WEBTOOLS_AUTH_OAUTH_GITHUB_SECRET", "GITHUB_SECRET")
	v.BindEnv("auth.oauth_google_id", "WEBTOOLS_AUTH_OAUTH_GOOGLE_ID", "GOOGLE_CLIENT_ID")
	v.BindEnv("auth.oauth_google_secret", "WEBTOOLS_AUTH_OAUTH_GOOGLE_SECRET", "GOOGLE_CLIENT_SECRET")
	v.BindEnv("chat.api_key", "WEBTOOLS_CHAT_API_KEY", "OPENAI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Quota.AIChatDailyLimit <= 0 {
		return fmt.Errorf("quota.ai_chat_daily_limit must be positive, got %d", c.Quota.AIChatDailyLimit)
	}
	if c.Server.Environment == "prod" {
		if c.Auth.SessionSecret == "" || c.Auth.SessionSecret == devSessionSecret {
			return fmt.Errorf("auth.session_secret is required in prod")
		}
		if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == devJWTSecret {
			return fmt.Errorf("auth.jwt_secret is required in prod")
		}
	}
	return nil
}

// setDefaults configures default values for all settings.
func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "190s")
	v.SetDefault("server.request_timeout", "90s")
	v.SetDefault("server.environment", "dev")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.rate_limit_rpm", 60)
	v.SetDefault("server.rate_limit_burst", 10)

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "webtools")
	v.SetDefault("database.password", "webtools")
	v.SetDefault("database.database", "webtools")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Auth
	v.SetDefault("auth.session_secret", devSessionSecret)
	v.SetDefault("auth.session_expiry", "168h") // 7 days
	v.SetDefault("auth.secure_cookies", false)
	v.SetDefault("auth.jwt_secret", devJWTSecret)
	v.SetDefault("auth.jwt_expiry", "168h")
	v.SetDefault("auth.oauth_callback_url", "http://localhost:8080")
	v.SetDefault("auth.dashboard_url", "http://localhost:3000")
	v.SetDefault("auth.admin_emails", []string{})

	// Quota
	v.SetDefault("quota.ai_chat_daily_limit", 10)

	// Chat
	v.SetDefault("chat.base_url", "https://api.openai.com/v1")
	v.SetDefault("chat.default_model", "gpt-4o-mini")
	v.SetDefault("chat.max_tokens", 4000)
	v.SetDefault("chat.temperature", 0.7)
	v.SetDefault("chat.timeout", "180s")

	// Catalog
	v.SetDefault("catalog.dir", "./config")

	// Calendar
	v.SetDefault("calendar.cache_ttl", "10m")
	v.SetDefault("calendar.fetch_timeout", "15s")
	v.SetDefault("calendar.max_feed_bytes", 5<<20)
}
