// internal/config/config.go - YAML settings with defaults and validation
package config

import (
    "fmt"
    "os"
    "path/filepath"
    "time"

    "gopkg.in/yaml.v3"
)

type Config struct {
    Logging    LoggingConfig    `yaml:"logging"`
    Web        WebConfig        `yaml:"web"`
    History    HistoryConfig    `yaml:"history"`
    Monitoring MonitoringConfig `yaml:"monitoring"`
    Checks     map[string]bool  `yaml:"checks"`
    Theme      string           `yaml:"theme"`
}

type LoggingConfig struct {
    Level  string `yaml:"level"`
    Format string `yaml:"format"`
}

type WebConfig struct {
    Enabled      bool          `yaml:"enabled"`
    Listen       string        `yaml:"listen"`
    ReadTimeout  time.Duration `yaml:"read_timeout"`
    WriteTimeout time.Duration `yaml:"write_timeout"`
}

type HistoryConfig struct {
    Path      string `yaml:"path"`
    MaxPasses int    `yaml:"max_passes"`
}

type MonitoringConfig struct {
    ProbeTimeout    time.Duration `yaml:"probe_timeout"`
    AutoRefresh     bool          `yaml:"auto_refresh"`
    RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// DefaultPath is the settings file location when --config is not given.
func DefaultPath() string {
    dir, err := os.UserConfigDir()
    if err != nil {
        return "config.yaml"
    }
    return filepath.Join(dir, "aidiag", "config.yaml")
}

// Load reads the config file, applies defaults and validates. A missing
// file is not an error: defaults apply, so first runs work out of the box.
func Load(filename string) (*Config, error) {
    config := &Config{}

    data, err := os.ReadFile(filename)
    if err == nil {
        if err := yaml.Unmarshal(data, config); err != nil {
            return nil, fmt.Errorf("failed to parse YAML: %w", err)
        }
    } else if !os.IsNotExist(err) {
        return nil, fmt.Errorf("failed to read config file: %w", err)
    }

    setDefaults(config)

    if err := validate(config); err != nil {
        return nil, fmt.Errorf("invalid configuration: %w", err)
    }

    return config, nil
}

// Save writes the configuration back, creating the directory if needed.
func Save(filename string, config *Config) error {
    if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
        return fmt.Errorf("failed to create config directory: %w", err)
    }

    data, err := yaml.Marshal(config)
    if err != nil {
        return fmt.Errorf("failed to marshal config: %w", err)
    }

    if err := os.WriteFile(filename, data, 0644); err != nil {
        return fmt.Errorf("failed to write config file: %w", err)
    }

    return nil
}

func setDefaults(config *Config) {
    if config.Logging.Level == "" {
        config.Logging.Level = "info"
    }
    if config.Logging.Format == "" {
        config.Logging.Format = "text"
    }

    if config.Web.Listen == "" {
        config.Web.Listen = ":8321"
    }
    if config.Web.ReadTimeout == 0 {
        config.Web.ReadTimeout = 15 * time.Second
    }
    if config.Web.WriteTimeout == 0 {
        config.Web.WriteTimeout = 15 * time.Second
    }

    if config.History.Path == "" {
        config.History.Path = filepath.Join(filepath.Dir(DefaultPath()), "history.db")
    }
    if config.History.MaxPasses == 0 {
        config.History.MaxPasses = 10
    }

    if config.Monitoring.ProbeTimeout == 0 {
        config.Monitoring.ProbeTimeout = 10 * time.Second
    }
    if config.Monitoring.RefreshInterval == 0 {
        config.Monitoring.RefreshInterval = time.Minute
    }

    if config.Checks == nil {
        config.Checks = make(map[string]bool)
    }

    if config.Theme == "" {
        config.Theme = "dark"
    }
}

func validate(config *Config) error {
    switch config.Logging.Format {
    case "text", "json":
    default:
        return fmt.Errorf("unknown logging format %q", config.Logging.Format)
    }

    switch config.Theme {
    case "dark", "light":
    default:
        return fmt.Errorf("unknown theme %q", config.Theme)
    }

    if config.Monitoring.ProbeTimeout < time.Second {
        return fmt.Errorf("probe_timeout %s too small, minimum 1s", config.Monitoring.ProbeTimeout)
    }
    if config.History.MaxPasses < 1 {
        return fmt.Errorf("history.max_passes must be at least 1")
    }

    return nil
}

// EffectiveRefreshInterval returns the auto-refresh interval actually in
// force: zero when auto-refresh is off.
func (c *Config) EffectiveRefreshInterval() time.Duration {
    if !c.Monitoring.AutoRefresh {
        return 0
    }
    return c.Monitoring.RefreshInterval
}

// CheckOverride reports whether the settings file pins a check on or off.
func (c *Config) CheckOverride(id string) (enabled, ok bool) {
    enabled, ok = c.Checks[id]
    return enabled, ok
}
