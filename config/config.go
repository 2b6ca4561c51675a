// Package config loads the YAML configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type FeedConfig struct {
	StaticURL        string            `yaml:"static_url" validate:"required,url"`
	RealtimeURL      string            `yaml:"realtime_url" validate:"required,url"`
	Headers          map[string]string `yaml:"headers"`
	StaticTimeout    time.Duration     `yaml:"static_timeout" validate:"gt=0"`
	RealtimeTimeout  time.Duration     `yaml:"realtime_timeout" validate:"gt=0"`
	StaticMaxSize    int               `yaml:"static_max_size" validate:"gte=0"`
	RealtimeMaxSize  int               `yaml:"realtime_max_size" validate:"gte=0"`
	RealtimeCacheTTL time.Duration     `yaml:"realtime_cache_ttl" validate:"gte=0"`
}

// With the sqlite backend, a blank Directory keeps the database in
// memory.
type StorageConfig struct {
	Backend     string `yaml:"backend" validate:"oneof=memory sqlite postgres"`
	Directory   string `yaml:"directory"`
	PostgresURL string `yaml:"postgres_url" validate:"required_if=Backend postgres"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

type SentryConfig struct {
	DSN         string `yaml:"dsn" validate:"omitempty,url"`
	Environment string `yaml:"environment"`
}

type Config struct {
	Feed    FeedConfig    `yaml:"feed"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Sentry  SentryConfig  `yaml:"sentry"`
}

// Defaults for everything but the feed URLs.
func Default() Config {
	return Config{
		Feed: FeedConfig{
			Headers:         map[string]string{},
			StaticTimeout:   60 * time.Second,
			RealtimeTimeout: 30 * time.Second,
			StaticMaxSize:   800 << 20,
			RealtimeMaxSize: 1 << 20,
		},
		Storage: StorageConfig{
			Backend: "memory",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Sentry: SentryConfig{
			Environment: "development",
		},
	}
}

// Reads and validates the config file at path. Values missing from
// the file keep their defaults.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", path, err)
	}

	return cfg, nil
}

// Like Load, but without validation. For callers that override
// values before validating.
func Read(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, err := Decode(data)
	if err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", path, err)
	}

	return cfg, nil
}

func Parse(data []byte) (Config, error) {
	cfg, err := Decode(data)
	if err != nil {
		return Config{}, err
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Unmarshals data over the defaults.
func Decode(data []byte) (Config, error) {
	cfg := Default()

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("unmarshaling: %w", err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}
	return nil
}
