package config

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

// AppConfig holds the application configuration
type AppConfig struct {
	Port     string `mapstructure:"PORT" json:"PORT"`
	Env      string `mapstructure:"ENV" json:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL" json:"LOG_LEVEL"`

	DBURL        string `mapstructure:"DB_URL" json:"DB_URL"`
	BearerToken  string `mapstructure:"BEARER_TOKEN" json:"BEARER_TOKEN"`
	// SymmetricKey verifies PASETO access tokens issued by the identity provider.
	SymmetricKey string `mapstructure:"SYMMETRIC_KEY" json:"SYMMETRIC_KEY"`

	RedisConfig `mapstructure:",squash"`

	CORSOrigins    []string `mapstructure:"CORS_ORIGINS" json:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS" json:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST" json:"RATE_LIMIT_BURST"`

	SMTPHost        string   `mapstructure:"SMTP_HOST" json:"SMTP_HOST"`
	SMTPPort        int      `mapstructure:"SMTP_PORT" json:"SMTP_PORT"`
	SMTPUser        string   `mapstructure:"SMTP_USER" json:"SMTP_USER"`
	SMTPPass        string   `mapstructure:"SMTP_PASS" json:"SMTP_PASS"`
	AlertRecipients []string `mapstructure:"ALERT_RECIPIENTS" json:"ALERT_RECIPIENTS"`

	KafkaBrokers []string `mapstructure:"KAFKA_BROKERS" json:"KAFKA_BROKERS"`
	KafkaTopic   string   `mapstructure:"KAFKA_TOPIC" json:"KAFKA_TOPIC"`
}

// RedisConfig configures the shared cache. An empty URL selects the in-process cache.
type RedisConfig struct {
	URL          string        `mapstructure:"REDIS_URL"`
	PoolSize     int           `mapstructure:"REDIS_POOL_SIZE"`
	DialTimeout  time.Duration `mapstructure:"REDIS_DIAL_TIMEOUT"`
	MinIdleConns int           `mapstructure:"REDIS_MIN_IDLE_CONNS"`
	ReadTimeout  time.Duration `mapstructure:"REDIS_READ_TIMEOUT"`
	MaxRetries   int           `mapstructure:"REDIS_MAX_RETRIES"`
}

var envKeys = []string{
	"PORT", "ENV", "LOG_LEVEL", "DB_URL", "BEARER_TOKEN", "SYMMETRIC_KEY",
	"REDIS_URL", "REDIS_POOL_SIZE", "REDIS_DIAL_TIMEOUT", "REDIS_MIN_IDLE_CONNS",
	"REDIS_READ_TIMEOUT", "REDIS_MAX_RETRIES",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "ALERT_RECIPIENTS",
	"KAFKA_BROKERS", "KAFKA_TOPIC",
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8930")
	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_DIAL_TIMEOUT", 30*time.Second)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 5)
	v.SetDefault("REDIS_READ_TIMEOUT", 10*time.Second)
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 15)
	v.SetDefault("RATE_LIMIT_BURST", 30)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("KAFKA_TOPIC", "symptom-alerts")

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	// A missing .env is fine; the environment is authoritative.
	_ = v.ReadInConfig()

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(cfg.CORSOrigins, v.GetString("CORS_ORIGINS"))
	cfg.AlertRecipients = splitList(cfg.AlertRecipients, v.GetString("ALERT_RECIPIENTS"))
	cfg.KafkaBrokers = splitList(cfg.KafkaBrokers, v.GetString("KAFKA_BROKERS"))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c AppConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.DBURL, validation.Required),
		validation.Field(&c.BearerToken, validation.Required),
		validation.Field(&c.SymmetricKey, validation.Required, validation.Length(32, 32)),
		validation.Field(&c.Env, validation.In("development", "production", "test")),
		validation.Field(&c.RateLimitRPS, validation.Min(0.0)),
		validation.Field(&c.SMTPPort, validation.Min(1), validation.Max(65535)),
	)
}

func splitList(current []string, raw string) []string {
	items := current
	if raw != "" {
		items = strings.Split(raw, ",")
	}
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// IsDev reports whether the server runs with development logging and gorm query logs.
func (c *AppConfig) IsDev() bool {
	return c.Env == "development"
}

// GetBearerToken returns the BearerToken from the config
func (c *AppConfig) GetBearerToken() string {
	return c.BearerToken
}

// EmailAlertsEnabled reports whether high-severity email alerts can be sent.
func (c *AppConfig) EmailAlertsEnabled() bool {
	return c.SMTPHost != "" && len(c.AlertRecipients) > 0
}

// StreamAlertsEnabled reports whether alerts are also published to Kafka.
func (c *AppConfig) StreamAlertsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
