package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const minAdminTokenLength = 8

// Config is the main config struct
type Config struct {
	Environment string         `yaml:"environment" env:"ENVIRONMENT" env-default:"production" env-description:"Environment name"`
	Verbose     string         `yaml:"verbose" env:"VERBOSE" env-default:"info" env-description:"Verbose mode for debug output"`
	AdminToken  string         `yaml:"admin_token" env:"ADMIN_TOKEN" env-required:"true" env-description:"Secret token used to authenticate bot admins"`
	Secret      string         `yaml:"secret" env:"SECRET" env-default:"" env-description:"Bearer token for the admin HTTP API"`
	Database    DatabaseConfig `yaml:"database"`
	Telegram    TelegramConfig `yaml:"telegram"`
	API         APIConfig      `yaml:"api"`
	Proxy       ProxyConfig    `yaml:"proxy"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}

// Telegram config
type TelegramConfig struct {
	Token   string        `yaml:"token" env:"TELEGRAM_TOKEN" env-required:"true" env-description:"Telegram bot token"`
	Timeout time.Duration `yaml:"timeout" env:"TELEGRAM_TIMEOUT" env-default:"10s" env-description:"Telegram long polling timeout"`
}

// API config
type APIConfig struct {
	Host         string        `yaml:"host" env:"API_HOST" env-default:"localhost" env-description:"API host address to bind to"`
	Port         int           `yaml:"port" env:"API_PORT" env-default:"8080" env-description:"API port to bind to"`
	Timeout      time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"30s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"API_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"API_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"API_IDLE_TIMEOUT" env-default:"15s"`
}

// SQLite, PostgreSQL or MySQL config
type DatabaseConfig struct {
	// Driver is the database driver to use. Supported drivers are "sqlite3", "postgres" and "mysql".
	Driver     string `yaml:"driver" env:"DATABASE_DRIVER" env-default:"sqlite3" env-description:"Database driver to use"`
	Connection string `yaml:"connection" env:"DATABASE_CONNECTION" env-default:":memory:" env-description:"Database connection string"`
}

// SOCKS5 proxy config for the Telegram Bot API client
type ProxyConfig struct {
	Address  string `yaml:"address" env:"PROXY_ADDRESS" env-default:"" env-description:"SOCKS5 proxy address"`
	Port     int    `yaml:"port" env:"PROXY_PORT" env-default:"0" env-description:"SOCKS5 proxy port"`
	Username string `yaml:"username" env:"PROXY_USERNAME" env-default:""`
	Password string `yaml:"password" env:"PROXY_PASSWORD" env-default:""`
}

// InfluxDB metrics config
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"false" env-description:"Enable InfluxDB metrics"`
	URL     string `yaml:"url" env:"METRICS_URL" env-default:""`
	Token   string `yaml:"token" env:"METRICS_TOKEN" env-default:""`
	Org     string `yaml:"org" env:"METRICS_ORG" env-default:""`
	Bucket  string `yaml:"bucket" env:"METRICS_BUCKET" env-default:""`
}

// ConfigError - config loading or validation error
type ConfigError struct {
	Message string
}

// Error - implement the error interface for ConfigError
func (e *ConfigError) Error() string {
	return e.Message
}

// MustLoadConfig loads the config from CONFIG_PATH (default "config.yml") and the
// environment. When no config file is present, the environment alone is used.
func MustLoadConfig() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yml"
	}

	var config Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := cleanenv.ReadEnv(&config); err != nil {
			return nil, &ConfigError{
				Message: fmt.Sprintf("Cannot read config from environment: %s", err),
			}
		}
	} else if err := cleanenv.ReadConfig(configPath, &config); err != nil {
		return nil, &ConfigError{
			Message: fmt.Sprintf("Cannot read config file: %s", err),
		}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (config *Config) validate() error {
	if len(config.AdminToken) < minAdminTokenLength {
		return &ConfigError{
			Message: fmt.Sprintf("ADMIN_TOKEN must be at least %d characters long", minAdminTokenLength),
		}
	}

	if config.Metrics.Enabled && config.Metrics.URL == "" {
		return &ConfigError{
			Message: "METRICS_URL is required when metrics are enabled",
		}
	}

	return nil
}
