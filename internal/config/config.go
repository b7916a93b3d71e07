package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Store   StoreConfig   `yaml:"store"`
	Market  MarketConfig  `yaml:"market"`
	Session SessionConfig `yaml:"session"`
	Advisor AdvisorConfig `yaml:"advisor"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type StoreConfig struct {
	Sqlite SqliteConfig `yaml:"sqlite"`
}

type SqliteConfig struct {
	Path string `yaml:"path"`
}

type MarketConfig struct {
	Provider     string             `yaml:"provider"`
	Fallback     string             `yaml:"fallback"`
	TimeoutMs    int                `yaml:"timeout_ms"`
	SeriesPoints int                `yaml:"series_points"`
	AlphaVantage AlphaVantageConfig `yaml:"alpha_vantage"`
	Yahoo        YahooConfig        `yaml:"yahoo"`
}

type AlphaVantageConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type YahooConfig struct {
	BaseURL string `yaml:"base_url"`
}

type SessionConfig struct {
	IdleTTLSec  int    `yaml:"idle_ttl_sec"`
	SweepSpec   string `yaml:"sweep_spec"`
	MaxSessions int    `yaml:"max_sessions"`
}

type AdvisorConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	ByAzure    bool   `yaml:"by_azure"`
	APIVersion string `yaml:"api_version"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

const (
	ProviderAlphaVantage = "alphavantage"
	ProviderYahoo        = "yahoo"
)

func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info"},
		Store: StoreConfig{
			Sqlite: SqliteConfig{Path: "data/assist.db"},
		},
		Market: MarketConfig{
			Provider:     ProviderAlphaVantage,
			TimeoutMs:    10000,
			SeriesPoints: 30,
			AlphaVantage: AlphaVantageConfig{
				BaseURL: "https://www.alphavantage.co/query",
			},
			Yahoo: YahooConfig{
				BaseURL: "https://query1.finance.yahoo.com",
			},
		},
		Session: SessionConfig{
			IdleTTLSec:  1800,
			SweepSpec:   "@every 1m",
			MaxSessions: 10000,
		},
		Advisor: AdvisorConfig{
			Enabled:   false,
			Model:     "gpt-4.1-mini",
			TimeoutMs: 10000,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail late at request time.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if !knownProvider(c.Market.Provider) {
		return fmt.Errorf("market.provider unknown: %q", c.Market.Provider)
	}
	if c.Market.Fallback != "" && !knownProvider(c.Market.Fallback) {
		return fmt.Errorf("market.fallback unknown: %q", c.Market.Fallback)
	}
	if c.Market.Fallback == c.Market.Provider {
		c.Market.Fallback = ""
	}
	if c.Market.SeriesPoints <= 0 {
		c.Market.SeriesPoints = 30
	}
	if c.Session.IdleTTLSec <= 0 {
		return fmt.Errorf("session.idle_ttl_sec must be positive")
	}
	return nil
}

func knownProvider(name string) bool {
	switch name {
	case ProviderAlphaVantage, ProviderYahoo:
		return true
	}
	return false
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.Server.Port = p
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.Market.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_BASE_URL"); v != "" {
		cfg.Market.AlphaVantage.BaseURL = v
	}
	if v := os.Getenv("MARKET_PROVIDER"); v != "" {
		cfg.Market.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Store.Sqlite.Path = v
	}
	return nil
}
