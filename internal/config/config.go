package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Generator struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"generator"`
}

// Load reads YAML config from path and overlays environment variables. A
// missing file is not an error; env vars and defaults carry the day then.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overlay(&cfg.Server.Port, "PORT")
	overlay(&cfg.Database.Host, "DB_HOST")
	overlay(&cfg.Database.Port, "DB_PORT")
	overlay(&cfg.Database.User, "DB_USER")
	overlay(&cfg.Database.Password, "DB_PASSWORD")
	overlay(&cfg.Database.Name, "DB_NAME")
	overlay(&cfg.Database.SSLMode, "DB_SSLMODE")
	overlay(&cfg.Redis.Addr, "REDIS_ADDR")
	overlay(&cfg.Generator.Provider, "GENERATOR_PROVIDER")
	overlay(&cfg.Generator.Model, "GENERATOR_MODEL")
	overlay(&cfg.Generator.Endpoint, "GENERATOR_ENDPOINT")
}

func overlay(target *string, key string) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*target = value
	}
}

// DatabaseConfigured reports whether a Postgres connection should be
// attempted; without it the server falls back to in-memory stores.
func (c Config) DatabaseConfigured() bool {
	return c.Database.Host != ""
}

// DSN builds the Postgres connection string, filling unset fields with the
// usual local defaults.
func (c Config) DSN() string {
	port := c.Database.Port
	if port == "" {
		port = "5432"
	}
	sslmode := c.Database.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, port, c.Database.User, c.Database.Password, c.Database.Name, sslmode,
	)
}

// TTLDuration parses a duration string or returns the fallback if empty or
// malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
