package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"MarketLens/internal/model"
)

// DateLayout is the calendar-date format used in config, flags and env.
const DateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	Index       model.Instrument   `yaml:"index"`
	Instruments []model.Instrument `yaml:"instruments"`
	Analysis    struct {
		StartDate string   `yaml:"start_date"`
		EndDate   string   `yaml:"end_date"`
		Selected  []string `yaml:"selected"`
	} `yaml:"analysis"`
	DataSource struct {
		BaseURL           string        `yaml:"base_url"`
		APIKey            string        `yaml:"api_key"`
		Timeout           time.Duration `yaml:"timeout"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
	} `yaml:"data_source"`
	Cache struct {
		MaxEntries int           `yaml:"max_entries"`
		TTL        time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
		MaxAge int    `yaml:"max_age"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LENS_DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("LENS_DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LENS_START"); v != "" {
		cfg.Analysis.StartDate = v
	}
	if v := os.Getenv("LENS_END"); v != "" {
		cfg.Analysis.EndDate = v
	}
	if v := os.Getenv("LENS_SELECT"); v != "" {
		cfg.Analysis.Selected = SplitNames(v)
	}

	// Defaults
	defaults := model.DefaultInstrumentSet()
	if cfg.Index.Ticker == "" && cfg.Index.Name == "" {
		cfg.Index = defaults.Index
	}
	if len(cfg.Instruments) == 0 {
		cfg.Instruments = defaults.Commodities
	}
	if cfg.Analysis.StartDate == "" {
		cfg.Analysis.StartDate = "2004-01-01"
	}
	if cfg.Analysis.EndDate == "" {
		cfg.Analysis.EndDate = "2024-01-01"
	}
	if len(cfg.Analysis.Selected) == 0 && len(cfg.Instruments) > 0 {
		cfg.Analysis.Selected = []string{cfg.Instruments[0].Name}
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 30 * time.Second
	}
	if cfg.DataSource.RequestsPerSecond == 0 {
		cfg.DataSource.RequestsPerSecond = 2
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 64
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Index.Ticker == "" {
		return fmt.Errorf("index.ticker is required")
	}
	if c.Index.Name == "" {
		return fmt.Errorf("index.name is required")
	}
	if len(c.Instruments) == 0 {
		return fmt.Errorf("at least one instrument is required")
	}
	seen := map[string]bool{c.Index.Name: true}
	for i, in := range c.Instruments {
		if in.Name == "" || in.Ticker == "" {
			return fmt.Errorf("instruments[%d]: name and ticker are required", i)
		}
		if seen[in.Name] {
			return fmt.Errorf("instruments[%d]: duplicate name %q", i, in.Name)
		}
		seen[in.Name] = true
	}
	start, end, err := c.DateRange()
	if err != nil {
		return err
	}
	if start.After(end) {
		return fmt.Errorf("analysis.start_date %s is after end_date %s",
			c.Analysis.StartDate, c.Analysis.EndDate)
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if c.DataSource.Timeout <= 0 {
		return fmt.Errorf("data_source.timeout must be positive")
	}
	return nil
}

// ValidateTelegram checks the fields needed to deliver reports.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// InstrumentSet returns the configured universe.
func (c *Config) InstrumentSet() model.InstrumentSet {
	return model.InstrumentSet{Index: c.Index, Commodities: c.Instruments}
}

// DateRange parses the configured analysis dates.
func (c *Config) DateRange() (start, end time.Time, err error) {
	if start, err = ParseDate(c.Analysis.StartDate); err != nil {
		return start, end, fmt.Errorf("analysis.start_date: %w", err)
	}
	if end, err = ParseDate(c.Analysis.EndDate); err != nil {
		return start, end, fmt.Errorf("analysis.end_date: %w", err)
	}
	return start, end, nil
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// SplitNames splits a comma-separated instrument list, dropping blanks.
func SplitNames(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
