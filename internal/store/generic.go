// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
)

// execer is satisfied by both *sql.DB and *sql.Tx so writes can run
// standalone or inside an enclosing transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// QueryRows runs a SELECT over a table and returns the result set as
// ordered column maps. selectCols entries are emitted verbatim, so the
// caller may pass projection expressions such as `NULL AS foo`; where
// and orderBy are likewise caller-built and must already be validated.
func (s *Store) QueryRows(ctx context.Context, table string, selectCols []string, where string, args []any, orderBy string, limit int) ([]map[string]any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(selectCols) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(selectCols, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(table)
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	if orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderBy)
	}
	if limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", limit)
	}

	start := time.Now()
	rows, err := s.conn.QueryContext(ctx, sb.String(), args...)
	observe("query", table, start, err)
	if err != nil {
		return nil, fmt.Errorf("query on %s failed: %w", table, err)
	}
	defer closeWithLog(rows, "rows")

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		ptrs := make([]any, len(cols))
		for i := range ptrs {
			ptrs[i] = new(any)
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan on %s failed: %w", table, err)
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = *(ptrs[i].(*any))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertRow inserts a single row built from a column map. Columns are
// emitted in sorted order so generated SQL is deterministic.
func (s *Store) InsertRow(ctx context.Context, table string, values map[string]any) error {
	return s.insertRow(ctx, s.conn, table, values)
}

// InsertRowTx is InsertRow running on an open transaction.
func (s *Store) InsertRowTx(ctx context.Context, tx *sql.Tx, table string, values map[string]any) error {
	return s.insertRow(ctx, tx, table, values)
}

func (s *Store) insertRow(ctx context.Context, ex execer, table string, values map[string]any) error {
	if len(values) == 0 {
		return fmt.Errorf("insert into %s: no values", table)
	}
	cols := make([]string, 0, len(values))
	for col := range values {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		placeholders[i] = "?"
		args[i] = values[col]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	start := time.Now()
	_, err := ex.ExecContext(ctx, query, args...)
	observe("insert", table, start, err)
	if err != nil {
		return fmt.Errorf("insert into %s failed: %w", table, err)
	}
	return nil
}

// UpdateRows applies a column map to all rows matching where and
// returns the number of rows changed.
func (s *Store) UpdateRows(ctx context.Context, table string, values map[string]any, where string, args []any) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}
	cols := make([]string, 0, len(values))
	for col := range values {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, len(cols))
	setArgs := make([]any, 0, len(cols)+len(args))
	for i, col := range cols {
		sets[i] = col + " = ?"
		setArgs = append(setArgs, values[col])
	}
	setArgs = append(setArgs, args...)

	query := fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(sets, ", "))
	if where != "" {
		query += " WHERE " + where
	}

	start := time.Now()
	res, err := s.conn.ExecContext(ctx, query, setArgs...)
	observe("update", table, start, err)
	if err != nil {
		return 0, fmt.Errorf("update on %s failed: %w", table, err)
	}
	return res.RowsAffected()
}

// DeleteRows deletes all rows matching where and returns the count.
func (s *Store) DeleteRows(ctx context.Context, table, where string, args []any) (int64, error) {
	query := "DELETE FROM " + table
	if where != "" {
		query += " WHERE " + where
	}

	start := time.Now()
	res, err := s.conn.ExecContext(ctx, query, args...)
	observe("delete", table, start, err)
	if err != nil {
		return 0, fmt.Errorf("delete on %s failed: %w", table, err)
	}
	return res.RowsAffected()
}
