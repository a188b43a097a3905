// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

// Package config provides configuration management for Gridwatch.
//
// Configuration loading order (koanf v2):
//  1. Defaults: built-in values for every optional setting
//  2. Config file: optional YAML file (config.yaml)
//  3. Environment variables: GRIDWATCH_SERVER_PORT and friends
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Database     DatabaseConfig     `koanf:"database"`
	Consolidator ConsolidatorConfig `koanf:"consolidator"`
	Security     SecurityConfig     `koanf:"security"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// RateLimit is the per-caller request budget per minute. 0 disables
	// rate limiting (tests, trusted meshes).
	RateLimit int `koanf:"rate_limit" validate:"gte=0"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file, or ":memory:" for tests.
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory"`

	// Threads caps DuckDB worker threads. 0 = runtime.NumCPU().
	Threads int `koanf:"threads" validate:"gte=0"`
}

// ConsolidatorConfig holds watch log consolidation settings.
type ConsolidatorConfig struct {
	// Debounce is the delay between a raw watch event arriving and the
	// consolidation pass it triggers. Batches rapid successive events
	// from one session and gives program data time to land.
	Debounce time.Duration `koanf:"debounce" validate:"gt=0"`
}

// SecurityConfig holds capability grants consumed by the access control
// gate. Each list names caller package identities.
type SecurityConfig struct {
	// AccessAllData callers bypass ownership scoping entirely.
	AccessAllData []string `koanf:"access_all_data"`

	// ReadListings callers may read searchable rows owned by others.
	ReadListings []string `koanf:"read_listings"`

	// AccessWatchLog callers may read consolidated watch log rows.
	AccessWatchLog []string `koanf:"access_watch_log"`

	// ModifyParentalControls callers may write the locked column.
	ModifyParentalControls []string `koanf:"modify_parental_controls"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
