package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rmarchant/daysim/market"
)

// Config represents one complete playback setup: where bars come from,
// which session and day to replay, the instrument universe, the accounts
// to fund and where trade records go.
type Config struct {
	Data     DataConfig      `json:"data" yaml:"data"`
	Session  SessionConfig   `json:"session" yaml:"session"`
	Date     string          `json:"date,omitempty" yaml:"date,omitempty"`
	Assets   []AssetConfig   `json:"assets" yaml:"assets"`
	Accounts []AccountConfig `json:"accounts" yaml:"accounts"`
	Journal  JournalConfig   `json:"journal" yaml:"journal"`
}

// DataConfig selects the bar source.
type DataConfig struct {
	Provider string `json:"provider" yaml:"provider"` // "csv" or "alpaca"
	Dir      string `json:"dir,omitempty" yaml:"dir,omitempty"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// SessionConfig describes the trading session window as local wall times.
type SessionConfig struct {
	Open     string `json:"open" yaml:"open"`   // "09:30"
	Close    string `json:"close" yaml:"close"` // "16:00"
	Timezone string `json:"timezone" yaml:"timezone"`
}

// AssetConfig is one tradable instrument and its fixed spread.
type AssetConfig struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Spread float64 `json:"spread" yaml:"spread"`
}

// AccountConfig funds one named account at startup.
type AccountConfig struct {
	Name    string  `json:"name" yaml:"name"`
	Deposit float64 `json:"deposit" yaml:"deposit"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type         string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	ClosesFile   string `json:"closes_file,omitempty" yaml:"closes_file,omitempty"`
	BalancesFile string `json:"balances_file,omitempty" yaml:"balances_file,omitempty"`
	DBPath       string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file, choosing the format by
// extension (.yaml/.yml for YAML, anything else JSON).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Data.Provider {
	case "csv":
		if c.Data.Dir == "" {
			return fmt.Errorf("data.dir is required for the csv provider")
		}
	case "alpaca":
		// Credentials come from the environment, nothing to check here.
	default:
		return fmt.Errorf("data.provider must be 'csv' or 'alpaca'")
	}

	if _, err := c.TradingSession(); err != nil {
		return err
	}
	if c.Date != "" {
		if _, err := time.Parse("2006-01-02", c.Date); err != nil {
			return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
		}
	}

	if len(c.Assets) == 0 {
		return fmt.Errorf("at least one asset is required")
	}
	for _, a := range c.Assets {
		if a.Symbol == "" {
			return fmt.Errorf("asset symbol is required")
		}
		if a.Spread < 0 {
			return fmt.Errorf("asset %s: spread must not be negative", a.Symbol)
		}
	}

	if len(c.Accounts) == 0 {
		return fmt.Errorf("at least one account is required")
	}
	for _, a := range c.Accounts {
		if a.Name == "" {
			return fmt.Errorf("account name is required")
		}
		if a.Deposit <= 0 {
			return fmt.Errorf("account %s: deposit must be positive", a.Name)
		}
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.ClosesFile == "" || c.Journal.BalancesFile == "" {
			return fmt.Errorf("journal closes_file and balances_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// TradingSession builds the market.Session the config describes.
func (c *Config) TradingSession() (market.Session, error) {
	loc, err := time.LoadLocation(c.Session.Timezone)
	if err != nil {
		return market.Session{}, fmt.Errorf("session.timezone: %w", err)
	}
	open, err := parseWallTime(c.Session.Open)
	if err != nil {
		return market.Session{}, fmt.Errorf("session.open: %w", err)
	}
	close, err := parseWallTime(c.Session.Close)
	if err != nil {
		return market.Session{}, fmt.Errorf("session.close: %w", err)
	}
	if close <= open {
		return market.Session{}, fmt.Errorf("session.close must be after session.open")
	}
	return market.Session{Open: open, Close: close, Loc: loc}, nil
}

// Day returns the configured trading day as local midnight in the session
// timezone, or the zero time when no date is set (meaning "today").
func (c *Config) Day() (time.Time, error) {
	if c.Date == "" {
		return time.Time{}, nil
	}
	s, err := c.TradingSession()
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation("2006-01-02", c.Date, s.Loc)
}

// MarketAssets converts the asset list for the broker.
func (c *Config) MarketAssets() []market.Asset {
	assets := make([]market.Asset, 0, len(c.Assets))
	for _, a := range c.Assets {
		assets = append(assets, market.Asset{Symbol: a.Symbol, Spread: a.Spread})
	}
	return assets
}

func parseWallTime(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("want HH:MM: %w", err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Provider: "csv",
			Dir:      "./data",
		},
		Session: SessionConfig{
			Open:     "09:30",
			Close:    "16:00",
			Timezone: "America/New_York",
		},
		Assets: []AssetConfig{
			{Symbol: "AAPL", Spread: 0.02},
			{Symbol: "MSFT", Spread: 0.02},
		},
		Accounts: []AccountConfig{
			{Name: "main", Deposit: 100000},
		},
		Journal: JournalConfig{
			Type:         "csv",
			ClosesFile:   "./closes.csv",
			BalancesFile: "./balances.csv",
		},
	}
}
