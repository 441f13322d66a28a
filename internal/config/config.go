package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Web     WebConfig     `mapstructure:"web"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Host            string `mapstructure:"host"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

// CatalogConfig holds character catalog API configuration
type CatalogConfig struct {
	InitialURL           string   `mapstructure:"initial_url"`
	Timeout              int      `mapstructure:"timeout"` // seconds, 0 disables
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	Proxies              []string `mapstructure:"proxies"`
	UserAgent            string   `mapstructure:"user_agent"`
}

// WebConfig holds settings of the rendered list/detail pages
type WebConfig struct {
	LoadMoreRate   float64 `mapstructure:"load_more_rate"` // triggers per second
	LoadMoreBurst  int     `mapstructure:"load_more_burst"`
	RefreshSeconds int     `mapstructure:"refresh_seconds"` // page refresh while loading
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

func (c CatalogConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Load loads configuration from an optional YAML file with environment variable overrides.
// An empty path looks for config.yaml in the current directory.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// No config file is fine unless one was asked for explicitly
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Catalog.InitialURL == "" {
		return fmt.Errorf("catalog.initial_url must not be empty")
	}
	if c.Catalog.Timeout < 0 {
		return fmt.Errorf("catalog.timeout must not be negative, got %d", c.Catalog.Timeout)
	}
	if c.Catalog.MaxRequestsPerSecond < 0 {
		return fmt.Errorf("catalog.max_requests_per_second must not be negative, got %d", c.Catalog.MaxRequestsPerSecond)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("catalog.initial_url", "https://rickandmortyapi.com/api/character")
	v.SetDefault("catalog.timeout", 0)
	v.SetDefault("catalog.max_requests_per_second", 0)
	v.SetDefault("catalog.proxies", []string{})
	v.SetDefault("catalog.user_agent", "character-viewer/1.0")

	v.SetDefault("web.load_more_rate", 2.0)
	v.SetDefault("web.load_more_burst", 4)
	v.SetDefault("web.refresh_seconds", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
