package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	JWT       JWTConfig
	Remote    RemoteConfig
	DB        DBConfig
	Redis     RedisConfig
	Alerts    AlertsConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

// RemoteConfig points at the remote catalog service. An empty BaseURL runs
// the ledger in local-only mode.
type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
	// UnitID is the measurement unit sent with every product the ledger
	// creates remotely.
	UnitID int
}

func (c RemoteConfig) Enabled() bool {
	return c.BaseURL != ""
}

// DBConfig configures the Postgres snapshot archive. An empty URL disables it.
type DBConfig struct {
	URL              string
	SnapshotInterval time.Duration
}

func (c DBConfig) Enabled() bool {
	return c.URL != ""
}

// RedisConfig configures the alert list. An empty Addr falls back to log alerts.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type AlertsConfig struct {
	Key string
	Max int
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Load reads configuration from an optional .env or config.env file and the
// environment. Environment variables win.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "stock-ledger")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("JWT_ISSUER", "stock-ledger")
	v.SetDefault("JWT_EXPIRATION_MINUTES", 60)
	v.SetDefault("REMOTE_TIMEOUT", "10s")
	v.SetDefault("REMOTE_UNIT_ID", 1)
	v.SetDefault("SNAPSHOT_INTERVAL", "5m")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ALERTS_KEY", "ledger:alerts:low_stock")
	v.SetDefault("ALERTS_MAX", 100)
	v.SetDefault("RATE_LIMIT_RPS", 5.0)
	v.SetDefault("RATE_LIMIT_BURST", 10)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Name:     v.GetString("APP_NAME"),
			LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),
		},
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Issuer:     v.GetString("JWT_ISSUER"),
			Expiration: time.Duration(v.GetInt("JWT_EXPIRATION_MINUTES")) * time.Minute,
		},
		Remote: RemoteConfig{
			BaseURL: strings.TrimRight(v.GetString("REMOTE_BASE_URL"), "/"),
			Timeout: v.GetDuration("REMOTE_TIMEOUT"),
			UnitID:  v.GetInt("REMOTE_UNIT_ID"),
		},
		DB: DBConfig{
			URL:              v.GetString("DATABASE_URL"),
			SnapshotInterval: v.GetDuration("SNAPSHOT_INTERVAL"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Alerts: AlertsConfig{
			Key: v.GetString("ALERTS_KEY"),
			Max: v.GetInt("ALERTS_MAX"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		if c.App.Env == "production" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		c.JWT.Secret = "dev-secret-change-me"
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT %d is out of range", c.HTTP.Port)
	}
	if c.JWT.Expiration <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_MINUTES must be positive")
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT must be positive")
	}
	if c.Remote.UnitID < 0 {
		return fmt.Errorf("REMOTE_UNIT_ID must not be negative")
	}
	if c.DB.Enabled() && c.DB.SnapshotInterval <= 0 {
		return fmt.Errorf("SNAPSHOT_INTERVAL must be positive")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}
