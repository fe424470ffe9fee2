// Package config holds the settings of the dashboard: where the tables live,
// which remote series are refreshed and where the HTTP server listens.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Duddu64/economia/internal/fetch"
	"github.com/Duddu64/economia/internal/normalize"
)

// Config is the full configuration.
type Config struct {
	DataDir string      `yaml:"data_dir"`
	Server  ServerConf  `yaml:"server"`
	IBGE    IBGEConf    `yaml:"ibge"`
	BCB     BCBConf     `yaml:"bcb"`
	Refresh RefreshConf `yaml:"refresh"`
}

// ServerConf configures the HTTP dashboard.
type ServerConf struct {
	Addr string `yaml:"addr"`
}

// IBGEConf selects the aggregates table refreshed from SIDRA.
type IBGEConf struct {
	BaseURL          string   `yaml:"base_url"`
	Table            string   `yaml:"table"`
	Variables        []string `yaml:"variables"`
	OccupiedVariable string   `yaml:"occupied_variable"`
	Periods          string   `yaml:"periods"`
	Epoch            int      `yaml:"epoch"`
}

// BCBConf selects the interest series read from SGS.
type BCBConf struct {
	BaseURL     string `yaml:"base_url"`
	Series      string `yaml:"series"`
	HistoryDays int    `yaml:"history_days"`
}

// RefreshConf configures the remote calls and the scheduled mode.
type RefreshConf struct {
	Timeout   string `yaml:"timeout"`
	Every     string `yaml:"every"`
	UserAgent string `yaml:"user_agent"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DataDir: ".",
		Server:  ServerConf{Addr: ":8501"},
		IBGE: IBGEConf{
			BaseURL:          fetch.DefaultIBGEBaseURL,
			Table:            "6318",
			Variables:        []string{"4099", "4110", "10606"},
			OccupiedVariable: "4099",
			Epoch:            normalize.DefaultEpoch,
		},
		BCB: BCBConf{
			BaseURL:     fetch.DefaultBCBBaseURL,
			Series:      fetch.FinancingRateSeries,
			HistoryDays: 3650,
		},
		Refresh: RefreshConf{
			Timeout: fetch.Timeout.String(),
		},
	}
}

// Load reads the YAML file at path over the defaults and applies the
// environment overrides. An empty path or a missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("error reading config (%s): %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("error parsing config (%s): %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config folder: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config (%s): %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if url := os.Getenv("IBGE_BASE_URL"); url != "" {
		c.IBGE.BaseURL = url
	}
	if url := os.Getenv("BCB_BASE_URL"); url != "" {
		c.BCB.BaseURL = url
	}
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
}

// Validate checks the fields the refresh pipeline cannot do without.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("invalid config: data_dir is empty")
	}
	if c.IBGE.Table == "" || len(c.IBGE.Variables) == 0 {
		return fmt.Errorf("invalid config: ibge table and variables are required")
	}
	if c.IBGE.Epoch < 1900 {
		return fmt.Errorf("invalid config: ibge epoch %d", c.IBGE.Epoch)
	}
	if _, err := c.timeout(); err != nil {
		return fmt.Errorf("invalid config: refresh timeout: %w", err)
	}
	if c.Refresh.Every != "" {
		if _, err := time.ParseDuration(c.Refresh.Every); err != nil {
			return fmt.Errorf("invalid config: refresh every: %w", err)
		}
	}
	return nil
}

func (c *Config) timeout() (time.Duration, error) {
	if c.Refresh.Timeout == "" {
		return fetch.Timeout, nil
	}
	return time.ParseDuration(c.Refresh.Timeout)
}

// Timeout is the time bound of every remote call.
func (c *Config) Timeout() time.Duration {
	d, err := c.timeout()
	if err != nil || d <= 0 {
		return fetch.Timeout
	}
	return d
}

// Every is the interval of the scheduled refresh, zero when unset.
func (c *Config) Every() time.Duration {
	d, err := time.ParseDuration(c.Refresh.Every)
	if err != nil {
		return 0
	}
	return d
}

// History is the date window of the interest series ending at now.
func (c *Config) History(now time.Time) *fetch.DateWindow {
	if c.BCB.HistoryDays <= 0 {
		return nil
	}
	return &fetch.DateWindow{From: now.AddDate(0, 0, -c.BCB.HistoryDays), To: now}
}

// ClientOptions are the fetch options derived from the configuration.
func (c *Config) ClientOptions() []fetch.Option {
	return []fetch.Option{
		fetch.WithIBGEBaseURL(c.IBGE.BaseURL),
		fetch.WithBCBBaseURL(c.BCB.BaseURL),
		fetch.WithTimeout(c.Timeout()),
		fetch.WithUserAgent(c.Refresh.UserAgent),
	}
}

// Aggregates is the SIDRA request of the refresh pipeline.
func (c *Config) Aggregates() fetch.AggregateRequest {
	return fetch.AggregateRequest{
		Table:     c.IBGE.Table,
		Variables: c.IBGE.Variables,
		Periods:   c.IBGE.Periods,
	}
}
