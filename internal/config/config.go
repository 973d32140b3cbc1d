package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultAPIURL is used when no api_url override is configured.
const DefaultAPIURL = "/productos"

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	APIURL             string        `mapstructure:"api_url"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	TokenSource    string `mapstructure:"token_source"`
	AccessToken    string `mapstructure:"access_token" json:"-"`
	CookieJarPath  string `mapstructure:"cookie_jar_path"`
	KeyringService string `mapstructure:"keyring_service"`

	PublishersFile      string        `mapstructure:"publishers_file"`
	SyncIntervalSeconds int64         `mapstructure:"sync_interval_seconds"`
	SyncInterval        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-catalog-client")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("http_timeout_seconds", 0) // no timeout
	v.SetDefault("token_source", "cookie")
	v.SetDefault("access_token", "")
	v.SetDefault("cookie_jar_path", "./data/cookies.db")
	v.SetDefault("keyring_service", "samvad-catalog-client")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("sync_interval_seconds", 0) // single pass

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.APIURL = strings.TrimSpace(cfg.APIURL)
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}

	if cfg.HTTPTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.SyncIntervalSeconds < 0 {
		return nil, fmt.Errorf("invalid sync_interval_seconds (must be zero or positive seconds)")
	}
	cfg.SyncInterval = time.Duration(cfg.SyncIntervalSeconds) * time.Second

	cfg.TokenSource = strings.ToLower(strings.TrimSpace(cfg.TokenSource))
	cfg.AccessToken = strings.TrimSpace(cfg.AccessToken)

	return &cfg, nil
}
