package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	BaseURL       string        `mapstructure:"api_base_url"`
	IsNative      bool          `mapstructure:"api_native"`
	TimeoutMillis int64         `mapstructure:"api_timeout_ms"`
	Timeout       time.Duration `mapstructure:"-"`

	TokenStorageType string        `mapstructure:"token_storage"`
	TokenPath        string        `mapstructure:"token_path"`
	TokenTTLSeconds  int64         `mapstructure:"token_ttl_seconds"`
	TokenTTL         time.Duration `mapstructure:"-"`

	NotifiersFile string `mapstructure:"notifiers_file"`
}

// Load reads configuration from environment variables and config files.
// Every key can be overridden with a HUB_ prefixed environment variable
// (HUB_API_BASE_URL, HUB_TOKEN_STORAGE, ...).
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	v.SetEnvPrefix("hub")

	v.SetDefault("app_name", "hubctl")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_base_url", "")
	v.SetDefault("api_native", true)
	v.SetDefault("api_timeout_ms", 60000)
	v.SetDefault("token_storage", "bbolt")
	v.SetDefault("token_path", "./data/token.db")
	v.SetDefault("token_ttl_seconds", int64((365*24*time.Hour)/time.Second))
	v.SetDefault("notifiers_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.BaseURL == "" {
		return fmt.Errorf("api_base_url is required (set HUB_API_BASE_URL)")
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api_base_url %q (must be an absolute URL)", c.BaseURL)
	}

	if c.TimeoutMillis <= 0 {
		return fmt.Errorf("invalid api_timeout_ms (must be positive milliseconds)")
	}
	c.Timeout = time.Duration(c.TimeoutMillis) * time.Millisecond

	if c.TokenTTLSeconds <= 0 {
		return fmt.Errorf("invalid token_ttl_seconds (must be positive seconds)")
	}
	c.TokenTTL = time.Duration(c.TokenTTLSeconds) * time.Second

	c.TokenStorageType = strings.ToLower(strings.TrimSpace(c.TokenStorageType))
	c.NotifiersFile = strings.TrimSpace(c.NotifiersFile)
	return nil
}

// Production reports whether the app runs with app_env=production.
func (c *Config) Production() bool {
	return c != nil && strings.EqualFold(strings.TrimSpace(c.Env), "production")
}
