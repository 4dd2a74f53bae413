// Package config loads service settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port    string        `yaml:"port"`
	LogMode string        `yaml:"log_mode"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// RedisConfig enables Redis event publishing when Addr is set.
type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

func defaults() Config {
	return Config{
		Port:    "8081",
		LogMode: "production",
		Storage: StorageConfig{Driver: DriverMemory},
		Redis:   RedisConfig{Channel: "sales.events"},
	}
}

// Load reads CONFIG_FILE when set and then applies PORT, LOG_MODE,
// STORAGE_DRIVER, DATABASE_DSN, REDIS_ADDR and REDIS_CHANNEL.
func Load() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	override(&cfg.Port, "PORT")
	override(&cfg.LogMode, "LOG_MODE")
	override(&cfg.Storage.Driver, "STORAGE_DRIVER")
	override(&cfg.Storage.DSN, "DATABASE_DSN")
	override(&cfg.Redis.Addr, "REDIS_ADDR")
	override(&cfg.Redis.Channel, "REDIS_CHANNEL")

	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)
	switch cfg.Storage.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if cfg.Storage.DSN == "" {
			return Config{}, fmt.Errorf("storage driver %q requires DATABASE_DSN", cfg.Storage.Driver)
		}
	default:
		return Config{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

func override(dst *string, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// NewLogger builds a zap logger for the configured mode.
func (c Config) NewLogger() (*zap.Logger, error) {
	var zcfg zap.Config
	switch strings.ToLower(c.LogMode) {
	case "dev", "development":
		zcfg = zap.NewDevelopmentConfig()
	default:
		zcfg = zap.NewProductionConfig()
	}
	return zcfg.Build()
}
