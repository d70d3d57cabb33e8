package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Credential store backends.
const (
	StoreBackendFile  = "file"
	StoreBackendRedis = "redis"
)

type Config struct {
	Env string

	API         APIConfig
	Credentials CredentialsConfig
	Redis       RedisConfig
	Log         LogConfig
	Export      ExportConfig
	Metrics     MetricsConfig
}

// APIConfig locates the attendance backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CredentialsConfig selects and parameterises the token store.
type CredentialsConfig struct {
	Backend string
	File    string
	Secret  string
	Key     string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

// ExportConfig controls where rendered summaries land.
type ExportConfig struct {
	Dir string
}

// MetricsConfig toggles the local debug listener.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.API = APIConfig{
		BaseURL: strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("HTTP_TIMEOUT"), 10*time.Second),
	}

	cfg.Credentials = CredentialsConfig{
		Backend: v.GetString("CREDENTIALS_BACKEND"),
		File:    v.GetString("CREDENTIALS_FILE"),
		Secret:  v.GetString("CREDENTIALS_SECRET"),
		Key:     v.GetString("CREDENTIALS_KEY"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Export = ExportConfig{
		Dir: v.GetString("EXPORT_DIR"),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
		Addr:    v.GetString("METRICS_ADDR"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate fails fast on configuration the process cannot run with.
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid API_BASE_URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL must be http or https, got %q", c.API.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("API_BASE_URL is missing a host: %q", c.API.BaseURL)
	}

	switch c.Credentials.Backend {
	case StoreBackendFile, StoreBackendRedis:
	default:
		return fmt.Errorf("unknown CREDENTIALS_BACKEND %q", c.Credentials.Backend)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("API_BASE_URL", "http://192.168.0.100:8000/api")
	v.SetDefault("HTTP_TIMEOUT", "10s")

	v.SetDefault("CREDENTIALS_BACKEND", StoreBackendFile)
	v.SetDefault("CREDENTIALS_FILE", ".attendance/credentials")
	v.SetDefault("CREDENTIALS_SECRET", "dev_credentials_secret")
	v.SetDefault("CREDENTIALS_KEY", "access_token")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("EXPORT_DIR", "./exports")

	v.SetDefault("ENABLE_METRICS", false)
	v.SetDefault("METRICS_ADDR", ":9180")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
