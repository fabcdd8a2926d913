package app

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/kladdkaka/internal/scoring"
)

type HeaderConfig struct {
	Name  string `toml:"name"`
	Value string `toml:"value"`
}

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	API struct {
		RequiredHeaders []HeaderConfig `toml:"required_headers"`
	} `toml:"api"`

	Auth struct {
		RedisURL         string `toml:"redis_url"`
		TokenKeyTemplate string `toml:"token_key_template"`
		TokenTTLMinutes  int    `toml:"token_ttl_minutes"`
	} `toml:"auth"`

	Database struct {
		DSN string `toml:"dsn"`
	} `toml:"database"`

	Sync struct {
		IntervalSeconds int `toml:"interval_seconds"`
	} `toml:"sync"`

	Bus struct {
		RedisURL string `toml:"redis_url"`
		Channel  string `toml:"channel"`
	} `toml:"bus"`

	Seed struct {
		Generation string `toml:"generation"`
	} `toml:"seed"`

	Scoring struct {
		Weights            scoring.Weights `toml:"weights"`
		LateDaysModifiers  map[int]int     `toml:"late_days_modifiers"`
		DefaultLatePenalty float64         `toml:"default_late_penalty"`
		MaxLateDays        int             `toml:"max_late_days"`
		ExtraLatePenalty   int             `toml:"extra_late_penalty"`
	} `toml:"scoring"`
}

func (c *Config) SyncInterval() time.Duration {
	if c.Sync.IntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Sync.IntervalSeconds) * time.Second
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("server port is not specified in config, use a value like :9999")
	}
	if config.Database.DSN == "" {
		return nil, fmt.Errorf("database DSN is not specified in config")
	}
	if err := config.Scoring.Weights.Validate(); err != nil {
		return nil, err
	}
	if config.Bus.Channel == "" {
		config.Bus.Channel = "kladdkaka:changes"
	}

	logger.Debug.Printf("Loaded scoring config: %+v", config.Scoring)

	return &config, nil
}
