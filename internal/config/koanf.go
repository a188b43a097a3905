// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/gridwatch/config.yaml",
	"/etc/gridwatch/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "GRIDWATCH_CONFIG_PATH"

// envPrefix namespaces Gridwatch environment variables:
// GRIDWATCH_SERVER_PORT -> server.port
const envPrefix = "GRIDWATCH_"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      5820,
			Timeout:   30 * time.Second,
			RateLimit: 600,
		},
		Database: DatabaseConfig{
			Path:      "/data/gridwatch.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = runtime.NumCPU()
		},
		Consolidator: ConsolidatorConfig{
			Debounce: 10 * time.Second,
		},
		Security: SecurityConfig{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration with layered sources: defaults, then an
// optional YAML file, then environment variables (highest priority).
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// GRIDWATCH_SERVER_RATE_LIMIT -> server.rate_limit etc. The first
	// underscore separates the section; the rest stay in the key.
	envProvider := env.Provider(envPrefix, ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	// Only the leading section name becomes a path segment; key names
	// themselves contain underscores (rate_limit, max_memory).
	parts := strings.SplitN(s, "_", 2)
	if len(parts) == 2 {
		return parts[0] + "." + parts[1]
	}
	return s
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths are parsed as
// comma-separated slices when supplied through the environment.
var sliceConfigPaths = []string{
	"security.access_all_data",
	"security.read_listings",
	"security.access_watch_log",
	"security.modify_parental_controls",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		// Already a slice when it came from YAML.
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("config %s: expected string or list, got %T", path, val)
		}
		var items []string
		for _, item := range strings.Split(s, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if err := k.Set(path, items); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
	}
	return nil
}
