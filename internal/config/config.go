package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// DefaultBaseURL is the hosted analysis service.
const DefaultBaseURL = "https://smart-structure.onrender.com/api/v1"

// Config holds application configuration.
type Config struct {
	API      APIConfig      `toml:"api"`
	Store    StoreConfig    `toml:"store"`
	Log      LogConfig      `toml:"log"`
	Notify   NotifyConfig   `toml:"notify"`
	UI       UIConfig       `toml:"ui"`
	Workflow WorkflowConfig `toml:"workflow"`
}

// APIConfig holds remote service settings.
type APIConfig struct {
	BaseURL string        `toml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `toml:"timeout"`
	Retries int           `toml:"retries"`
}

// StoreConfig holds sqlite settings for the local session store.
type StoreConfig struct {
	Path string `toml:"path"`
}

// LogConfig holds log sink settings.
type LogConfig struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

// NotifyConfig holds toast settings.
type NotifyConfig struct {
	Lifetime time.Duration `toml:"lifetime"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat string `toml:"date_format" mapstructure:"date_format"`
}

// WorkflowConfig holds workflow policy switches.
type WorkflowConfig struct {
	// VerifySurvey requires a persisted survey id to be present in the
	// service's survey list before a building is created against it.
	VerifySurvey bool `toml:"verify_survey" mapstructure:"verify_survey"`
}

// Load reads configuration from file and env. Env var overrides use prefix SITEASSESS_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SITEASSESS_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "siteassess"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SITEASSESS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.Retries < 0 {
		c.API.Retries = 0
	}
	if c.Notify.Lifetime <= 0 {
		c.Notify.Lifetime = 3 * time.Second
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	return c, nil
}

func setDefaults(v *viper.Viper) {
	home := os.Getenv("HOME")
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.retries", 0)
	v.SetDefault("store.path", filepath.Join(home, ".local", "share", "siteassess", "session.db"))
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "siteassess", "siteassess.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("notify.lifetime", "3s")
	v.SetDefault("ui.date_format", "1/2/2006")
	v.SetDefault("workflow.verify_survey", false)
}

// fileConfig mirrors Config with durations as strings so the TOML stays readable.
type fileConfig struct {
	API struct {
		BaseURL string `toml:"base_url"`
		Timeout string `toml:"timeout"`
		Retries int    `toml:"retries"`
	} `toml:"api"`
	Store    StoreConfig `toml:"store"`
	Log      LogConfig   `toml:"log"`
	Notify   struct {
		Lifetime string `toml:"lifetime"`
	} `toml:"notify"`
	UI       UIConfig       `toml:"ui"`
	Workflow WorkflowConfig `toml:"workflow"`
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("SITEASSESS_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "siteassess", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	var fc fileConfig
	fc.API.BaseURL = cfg.API.BaseURL
	fc.API.Timeout = cfg.API.Timeout.String()
	fc.API.Retries = cfg.API.Retries
	fc.Store = cfg.Store
	fc.Log = cfg.Log
	fc.Notify.Lifetime = cfg.Notify.Lifetime.String()
	fc.UI = cfg.UI
	fc.Workflow = cfg.Workflow

	f, err := os.OpenFile(path+".tmp", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(fc); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(path+".tmp", path)
}
