// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	appName        = "voicecheck"
	configFileName = "config.json"
)

// Config represents the application configuration.
type Config struct {
	// DataDir holds the shared persistent store.
	DataDir string `json:"data_dir"`

	// Remote backend. Calls fall back to local storage on failure.
	APIBaseURL        string `json:"api_base_url"`
	APITimeoutSeconds int    `json:"api_timeout_seconds"`

	// Capture sample rate in Hz. Opus supports 8/12/16/24/48 kHz.
	SampleRate int `json:"sample_rate"`
}

// Load loads configuration from the config file, applying defaults for
// missing values and environment overrides on top. Returns the default
// config if no file exists.
func Load() (*Config, error) {
	// A .env next to the binary is a development convenience; a missing
	// one is not an error.
	_ = godotenv.Load()

	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, configFileName), nil
}

func defaultConfig() *Config {
	return &Config{
		APIBaseURL:        "http://localhost:5000/api",
		APITimeoutSeconds: 10,
		SampleRate:        48000,
	}
}

func (c *Config) applyDefaults() {
	def := defaultConfig()
	if c.APIBaseURL == "" {
		c.APIBaseURL = def.APIBaseURL
	}
	if c.APITimeoutSeconds <= 0 {
		c.APITimeoutSeconds = def.APITimeoutSeconds
	}
	if c.SampleRate <= 0 {
		c.SampleRate = def.SampleRate
	}
	if c.DataDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			c.DataDir = filepath.Join(dir, appName, "data")
		}
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VOICECHECK_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("VOICECHECK_API_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("VOICECHECK_API_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.APITimeoutSeconds = secs
		}
	}
	if v := os.Getenv("VOICECHECK_SAMPLE_RATE"); v != "" {
		if rate, err := strconv.Atoi(v); err == nil && rate > 0 {
			c.SampleRate = rate
		}
	}
}
