package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres | sqlite | memory
	DSN    string `yaml:"url"`
}

type ReportsConfig struct {
	FontPath string `yaml:"font_path"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	App      struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"app"`
	Reports ReportsConfig `yaml:"reports"`
}

// Load reads the YAML file at path, applies environment overrides and defaults.
// A missing file is not an error; the defaults are used instead.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads from TASKS_CONFIG (or DefaultPath) and panics on failure.
func LoadConfig() *Config {
	cfg, err := Load(EnvOrDefault("TASKS_CONFIG", DefaultPath))
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return cfg
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TASKS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TASKS_PORT: %w", err)
		}
		c.Server.Port = port
	}
	c.Database.Driver = EnvOrDefault("TASKS_DB_DRIVER", c.Database.Driver)
	c.Database.DSN = EnvOrDefault("TASKS_DB_URL", c.Database.DSN)
	c.App.Timezone = EnvOrDefault("TASKS_TIMEZONE", c.App.Timezone)
	c.Reports.FontPath = EnvOrDefault("TASKS_REPORT_FONT", c.Reports.FontPath)
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "data/tasks.db"
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "Local"
	}
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.url is required for driver %q", c.Database.Driver)
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured time zone used to decide what "today" is.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.App.Timezone, err)
	}
	return loc, nil
}

// EnvOrDefault returns the environment variable value or fallback when it is empty.
func EnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
