package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// History backends.
const (
	HistoryMemory   = "memory"
	HistoryPostgres = "postgres"
	HistorySQLite   = "sqlite"
)

// Question pool sources.
const (
	QuestionsFile     = "file"
	QuestionsPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"maxSizeMB"`
		MaxBackups int    `yaml:"maxBackups"`
		MaxAgeDays int    `yaml:"maxAgeDays"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	History struct {
		Driver string `yaml:"driver"`
	} `yaml:"history"`
	Questions struct {
		Source string `yaml:"source"`
		Dir    string `yaml:"dir"`
		TTL    string `yaml:"ttl"`
	} `yaml:"questions"`
	Session struct {
		TTL string `yaml:"ttl"`
	} `yaml:"session"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
		Issuer    string `yaml:"issuer"`
	} `yaml:"auth"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rateLimit"`
	KeepAlive struct {
		URL      string `yaml:"url"`
		Interval string `yaml:"interval"`
	} `yaml:"keepAlive"`
}

// Load reads YAML config from path and applies environment overrides.
// A missing file yields the defaults plus overrides.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, cfg.Validate()
}

// Validate checks the selected backends have what they need.
func (c Config) Validate() error {
	switch c.Questions.Source {
	case QuestionsFile:
	case QuestionsPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("questions source %q requires postgres.url", c.Questions.Source)
		}
	default:
		return fmt.Errorf("unknown questions source %q", c.Questions.Source)
	}
	switch c.History.Driver {
	case HistoryMemory:
	case HistoryPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("history driver %q requires postgres.url", c.History.Driver)
		}
	case HistorySQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("history driver %q requires sqlite.path", c.History.Driver)
		}
	default:
		return fmt.Errorf("unknown history driver %q", c.History.Driver)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.History.Driver == "" {
		if cfg.Postgres.URL != "" {
			cfg.History.Driver = HistoryPostgres
		} else {
			cfg.History.Driver = HistoryMemory
		}
	}
	if cfg.Questions.Source == "" {
		cfg.Questions.Source = QuestionsFile
	}
	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = int(cfg.RateLimit.RPS) + 1
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
