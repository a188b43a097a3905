// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gridwatch/gridwatch/internal/models"
)

// BlockedPackages returns the current preview-content denylist.
func (s *Store) BlockedPackages(ctx context.Context) ([]models.BlockedPackage, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx,
		`SELECT package_name, blocked_at_utc_millis FROM blocked_packages ORDER BY package_name`)
	observe("query", TableBlockedPackages, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked packages: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var out []models.BlockedPackage
	for rows.Next() {
		var b models.BlockedPackage
		if err := rows.Scan(&b.Package, &b.BlockedAtUTC); err != nil {
			return nil, fmt.Errorf("failed to scan blocked package: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// IsPackageBlocked reports whether a package is on the denylist.
func (s *Store) IsPackageBlocked(ctx context.Context, pkg string) (bool, error) {
	start := time.Now()
	row := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blocked_packages WHERE package_name = ?`, pkg)
	var n int
	err := row.Scan(&n)
	observe("query", TableBlockedPackages, start, err)
	if err != nil {
		return false, fmt.Errorf("failed to check denylist: %w", err)
	}
	return n > 0, nil
}

// BlockPackage adds a package to the denylist and purges all of its
// preview content: preview channels (with every program, preview
// program, and watch-log row attached to them), preview programs, and
// watch-next entries. Repeated blocks are idempotent.
func (s *Store) BlockPackage(ctx context.Context, pkg string, now int64) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO blocked_packages (package_name, blocked_at_utc_millis) VALUES (?, ?)
			 ON CONFLICT DO NOTHING`, pkg, now); err != nil {
			return fmt.Errorf("failed to block package: %w", err)
		}
		previewChannels := `SELECT id FROM channels WHERE package_name = ? AND type = ?`
		cascades := []string{
			`DELETE FROM programs WHERE channel_id IN (` + previewChannels + `)`,
			`DELETE FROM watched_programs WHERE channel_id IN (` + previewChannels + `)`,
			`DELETE FROM preview_programs WHERE channel_id IN (` + previewChannels + `)`,
			`DELETE FROM channels WHERE package_name = ? AND type = ?`,
		}
		for _, q := range cascades {
			if _, err := tx.ExecContext(ctx, q, pkg, ChannelTypePreview); err != nil {
				return fmt.Errorf("failed to purge preview channels: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM preview_programs WHERE package_name = ?`, pkg); err != nil {
			return fmt.Errorf("failed to purge preview programs: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM watch_next_programs WHERE package_name = ?`, pkg); err != nil {
			return fmt.Errorf("failed to purge watch-next programs: %w", err)
		}
		return nil
	})
}

// UnblockPackage removes a package from the denylist.
func (s *Store) UnblockPackage(ctx context.Context, pkg string) (bool, error) {
	start := time.Now()
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM blocked_packages WHERE package_name = ?`, pkg)
	observe("delete", TableBlockedPackages, start, err)
	if err != nil {
		return false, fmt.Errorf("failed to unblock package: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
