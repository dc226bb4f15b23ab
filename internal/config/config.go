// Package config loads the service configuration from YAML, environment overrides and defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	CoinGecko CoinGeckoConfig `yaml:"coingecko"`
	Cohere    CohereConfig    `yaml:"cohere"`
	Chart     ChartConfig     `yaml:"chart"`
	Display   DisplayConfig   `yaml:"display"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding" validate:"oneof=json console"`
}

type CoinGeckoConfig struct {
	BaseURL        string        `yaml:"base_url" validate:"required,url"`
	APIKey         string        `yaml:"api_key"`
	CoinTimeout    time.Duration `yaml:"coin_timeout" validate:"gt=0"`
	RefreshTimeout time.Duration `yaml:"refresh_timeout" validate:"gt=0"`
	ChartTimeout   time.Duration `yaml:"chart_timeout" validate:"gt=0"`
}

// CohereConfig configures the summary generator. An empty APIKey disables it.
type CohereConfig struct {
	BaseURL     string        `yaml:"base_url" validate:"required,url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model" validate:"required"`
	MaxTokens   int           `yaml:"max_tokens" validate:"min=1"`
	Temperature float64       `yaml:"temperature" validate:"min=0,max=1"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
}

type ChartConfig struct {
	WidthInches  float64 `yaml:"width_inches" validate:"gt=0"`
	HeightInches float64 `yaml:"height_inches" validate:"gt=0"`
	DPI          int     `yaml:"dpi" validate:"min=10,max=600"`
}

type DisplayConfig struct {
	TimeZone string `yaml:"time_zone" validate:"required"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5001,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Encoding: "json"},
		CoinGecko: CoinGeckoConfig{
			BaseURL:        "https://api.coingecko.com/api/v3",
			CoinTimeout:    15 * time.Second,
			RefreshTimeout: 10 * time.Second,
			ChartTimeout:   15 * time.Second,
		},
		Cohere: CohereConfig{
			BaseURL:     "https://api.cohere.com",
			Model:       "command-a-03-2025",
			MaxTokens:   1024,
			Temperature: 0.1,
			Timeout:     15 * time.Second,
		},
		Chart:   ChartConfig{WidthInches: 7, HeightInches: 3, DPI: 130},
		Display: DisplayConfig{TimeZone: "Europe/Amsterdam"},
		Metrics: MetricsConfig{Enabled: true, Namespace: "coin_dashboard"},
	}
}

// Load reads the YAML file at path over the defaults, applies environment overrides and validates.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, err
	default:
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides secrets and deployment settings from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("COHERE_API_KEY"); v != "" {
		c.Cohere.APIKey = v
	}
	if v := getenv("COINGECKO_API_KEY"); v != "" {
		c.CoinGecko.APIKey = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(c.Display.TimeZone); err != nil {
		return fmt.Errorf("invalid config: time_zone: %w", err)
	}
	return nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Display.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
