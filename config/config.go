package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents a complete backtest run configuration
type Config struct {
	Broker     BrokerConfig     `json:"broker" yaml:"broker"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Assets     []AssetConfig    `json:"assets" yaml:"assets"`
	Strategy   StrategyConfig   `json:"strategy" yaml:"strategy"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
}

// BrokerConfig contains account initialization parameters
type BrokerConfig struct {
	Cash       float64 `json:"cash" yaml:"cash"`
	Margin     float64 `json:"margin,omitempty" yaml:"margin,omitempty"`
	AllowShort bool    `json:"allow_short,omitempty" yaml:"allow_short,omitempty"`
	Commission string  `json:"commission" yaml:"commission"` // "free" or "ib_pro"
}

// SimulationConfig bounds the run calendar
type SimulationConfig struct {
	Start string `json:"start" yaml:"start"` // YYYY-MM-DD
	End   string `json:"end" yaml:"end"`
}

// AssetConfig names one tradeable asset and its bar file. The loader
// accepts .csv, .csv.xz and .zip paths.
type AssetConfig struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Bars   string `json:"bars" yaml:"bars"`
}

// StrategyConfig selects a registered strategy and its parameters
type StrategyConfig struct {
	Name   string         `json:"name" yaml:"name"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// JournalConfig contains persistence parameters
type JournalConfig struct {
	Type       string `json:"type,omitempty" yaml:"type,omitempty"` // "", "csv" or "sqlite"
	FillsFile  string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	GainsFile  string `json:"gains_file,omitempty" yaml:"gains_file,omitempty"`
	ValuesFile string `json:"values_file,omitempty" yaml:"values_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// StartDate parses the simulation start bound.
func (c *Config) StartDate() (time.Time, error) {
	return time.Parse("2006-01-02", c.Simulation.Start)
}

// EndDate parses the simulation end bound.
func (c *Config) EndDate() (time.Time, error) {
	return time.Parse("2006-01-02", c.Simulation.End)
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
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

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Broker.Cash <= 0 {
		return fmt.Errorf("broker.cash must be positive")
	}
	if c.Broker.Margin < 0 {
		return fmt.Errorf("broker.margin must not be negative")
	}
	if c.Broker.Commission != "" && c.Broker.Commission != "free" && c.Broker.Commission != "ib_pro" {
		return fmt.Errorf("broker.commission must be 'free' or 'ib_pro'")
	}
	start, err := c.StartDate()
	if err != nil {
		return fmt.Errorf("simulation.start: %w", err)
	}
	end, err := c.EndDate()
	if err != nil {
		return fmt.Errorf("simulation.end: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("simulation.end must not precede simulation.start")
	}
	if len(c.Assets) == 0 {
		return fmt.Errorf("at least one asset is required")
	}
	seen := make(map[string]bool)
	for i, a := range c.Assets {
		if a.Symbol == "" {
			return fmt.Errorf("assets[%d].symbol is required", i)
		}
		if seen[a.Symbol] {
			return fmt.Errorf("duplicate asset symbol %q", a.Symbol)
		}
		seen[a.Symbol] = true
		if a.Bars == "" {
			return fmt.Errorf("assets[%d].bars is required", i)
		}
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	switch c.Journal.Type {
	case "":
	case "csv":
		if c.Journal.FillsFile == "" || c.Journal.GainsFile == "" || c.Journal.ValuesFile == "" {
			return fmt.Errorf("journal fills_file, gains_file and values_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a runnable starting configuration.
func Default() *Config {
	return &Config{
		Broker: BrokerConfig{
			Cash:       100000,
			Commission: "ib_pro",
		},
		Simulation: SimulationConfig{
			Start: "2004-08-19",
			End:   "2004-12-31",
		},
		Assets: []AssetConfig{
			{Symbol: "GOOG", Bars: "goog.csv"},
		},
		Strategy: StrategyConfig{
			Name: "buy_and_hold",
			Params: map[string]any{
				"symbol": "GOOG",
				"size":   10.0,
			},
		},
		Journal: JournalConfig{},
	}
}
