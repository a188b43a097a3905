// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 5820 {
		t.Errorf("Server.Port = %d, want 5820", cfg.Server.Port)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("Server.Timeout = %v, want 30s", cfg.Server.Timeout)
	}
	if cfg.Database.Path != "/data/gridwatch.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Consolidator.Debounce != 10*time.Second {
		t.Errorf("Consolidator.Debounce = %v, want 10s", cfg.Consolidator.Debounce)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json", cfg.Logging)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GRIDWATCH_SERVER_PORT", "9100")
	t.Setenv("GRIDWATCH_SERVER_RATE_LIMIT", "50")
	t.Setenv("GRIDWATCH_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Server.RateLimit != 50 {
		t.Errorf("Server.RateLimit = %d, want 50", cfg.Server.RateLimit)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadEnvSliceFields(t *testing.T) {
	t.Setenv("GRIDWATCH_SECURITY_ACCESS_ALL_DATA", "com.example.tuner, com.example.epg")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := []string{"com.example.tuner", "com.example.epg"}
	if len(cfg.Security.AccessAllData) != len(want) {
		t.Fatalf("AccessAllData = %v, want %v", cfg.Security.AccessAllData, want)
	}
	for i := range want {
		if cfg.Security.AccessAllData[i] != want[i] {
			t.Errorf("AccessAllData[%d] = %q, want %q", i, cfg.Security.AccessAllData[i], want[i])
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
server:
  port: 7000
database:
  path: /tmp/test.duckdb
security:
  read_listings:
    - com.example.guide
`
	if err := os.WriteFile(path, []byte(yamlBody), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/test.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if len(cfg.Security.ReadListings) != 1 || cfg.Security.ReadListings[0] != "com.example.guide" {
		t.Errorf("ReadListings = %v", cfg.Security.ReadListings)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"negative timeout", func(c *Config) { c.Server.Timeout = -time.Second }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"GRIDWATCH_SERVER_PORT", "server.port"},
		{"GRIDWATCH_SERVER_RATE_LIMIT", "server.rate_limit"},
		{"GRIDWATCH_DATABASE_MAX_MEMORY", "database.max_memory"},
		{"GRIDWATCH_SECURITY_ACCESS_ALL_DATA", "security.access_all_data"},
		{"GRIDWATCH_LOGGING_LEVEL", "logging.level"},
	}
	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
