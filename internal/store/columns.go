// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package store

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gridwatch/gridwatch/internal/logging"
)

// columnNameRe restricts dynamic column names to safe identifiers.
var columnNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// columnTypes maps the external column data types onto DuckDB types.
var columnTypes = map[string]string{
	"integer": "BIGINT",
	"real":    "DOUBLE",
	"text":    "TEXT",
	"blob":    "BLOB",
}

// TableColumns returns the live column names of a table, discovered
// from the engine rather than a compiled-in list so columns added at
// runtime are included.
func (s *Store) TableColumns(ctx context.Context, table string) ([]string, error) {
	start := time.Now()
	// LIMIT 0 returns the header without scanning rows.
	rows, err := s.conn.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", table))
	observe("columns", table, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer closeWithLog(rows, "rows")

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}

// AddColumn extends a table with a new nullable column. The data type
// must be one of integer, real, text, or blob; defaultValue, when
// non-empty, must parse as the declared type.
func (s *Store) AddColumn(ctx context.Context, table, name, dataType, defaultValue string) error {
	if !columnNameRe.MatchString(name) {
		return fmt.Errorf("illegal column name %q", name)
	}
	duckType, ok := columnTypes[strings.ToLower(dataType)]
	if !ok {
		return fmt.Errorf("illegal data type %q", dataType)
	}

	query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, name, duckType)
	if defaultValue != "" {
		defaultClause, err := buildDefaultClause(dataType, defaultValue)
		if err != nil {
			return err
		}
		query += defaultClause
	}

	start := time.Now()
	_, err := s.conn.ExecContext(ctx, query)
	observe("add_column", table, start, err)
	if err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, name, err)
	}
	logging.Info().Str("table", table).Str("column", name).Str("type", dataType).Msg("Added column")
	return nil
}

func buildDefaultClause(dataType, defaultValue string) (string, error) {
	switch strings.ToLower(dataType) {
	case "integer":
		if _, err := strconv.ParseInt(defaultValue, 10, 64); err != nil {
			return "", fmt.Errorf("illegal integer default %q", defaultValue)
		}
		return " DEFAULT " + defaultValue, nil
	case "real":
		if _, err := strconv.ParseFloat(defaultValue, 64); err != nil {
			return "", fmt.Errorf("illegal real default %q", defaultValue)
		}
		return " DEFAULT " + defaultValue, nil
	case "text", "blob":
		return " DEFAULT " + quoteLiteral(defaultValue), nil
	default:
		return "", fmt.Errorf("illegal data type %q", dataType)
	}
}

// quoteLiteral quotes a string for embedding in DDL, doubling any
// embedded single quotes.
func quoteLiteral(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
