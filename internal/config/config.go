package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds cclog settings. Loaded from a JSON file with defaults
// written on first run; environment variables take highest precedence.
type Config struct {
	LogDir   string `json:"log_dir"`
	LogLevel string `json:"log_level"`
	// Timezone is an IANA zone name used when localizing transcript
	// timestamps; empty means the system zone.
	Timezone string `json:"timezone"`
	Server   struct {
		Host     string `json:"host"`
		Port     int    `json:"port"`
		CertFile string `json:"cert_file"`
		KeyFile  string `json:"key_file"`
	} `json:"server"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".cclog", "config.json")
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		LogDir:   filepath.Join(".claude", "logs"),
		LogLevel: "info",
	}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 9443
	return cfg
}

// Load reads config from path, writing defaults there first if the file
// doesn't exist yet.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := writeDefaults(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if tz := os.Getenv("CCLOG_TZ"); tz != "" {
		cfg.Timezone = tz
	} else if cfg.Timezone == "" {
		cfg.Timezone = os.Getenv("TZ")
	}
	if dir := os.Getenv("CCLOG_LOG_DIR"); dir != "" {
		cfg.LogDir = dir
	}

	return cfg, nil
}

func writeDefaults(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename default config: %w", err)
	}
	return nil
}
