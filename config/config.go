// Package config loads and persists the gateway daemon configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

const (
	configSubdir   = "config"
	configFileName = "dgateway_config.json"

	// envPrefix scopes environment overrides, e.g. DGATEWAY_NODE_RPC_URL.
	envPrefix = "DGATEWAY"
)

func validateConfig(cfg *Config) error {
	if cfg.LogLevel < -1 || cfg.LogLevel > 5 {
		return fmt.Errorf("log level must be between -1 and 5")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}
	if cfg.NodeRPCURL == "" {
		return fmt.Errorf("node RPC URL is required")
	}
	if cfg.NodeWSURL == "" {
		return fmt.Errorf("node websocket URL is required")
	}
	if cfg.SignatureAlgo == "" {
		return fmt.Errorf("signature algorithm identifier is required")
	}

	// Defaults for zero-valued numeric fields.
	if cfg.ReconnectDelaySeconds == 0 {
		cfg.ReconnectDelaySeconds = 3
	}
	if cfg.BroadcastTimeoutSeconds == 0 {
		cfg.BroadcastTimeoutSeconds = 30
	}
	if cfg.APIPort == 0 {
		cfg.APIPort = 8080
	}
	if cfg.DBFileName == "" {
		cfg.DBFileName = "gateway.db"
	}

	return nil
}

// Load reads the config file under basePath, applies DGATEWAY_* environment
// overrides, fills defaults, and validates. A missing file yields the
// defaults (still subject to environment overrides).
func Load(basePath string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(basePath, configSubdir, configFileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Fall through to defaults.
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the given config to <basePath>/config/dgateway_config.json.
func Save(cfg *Config, basePath string) error {
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	configDir := filepath.Join(basePath, configSubdir)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(configDir, configFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
