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
)

// DeleteChannelsCascade deletes the channels matching where together
// with their dependents: programs, watch-log rows, and preview
// programs go away, recorded programs survive with channel_id cleared.
// The where clause references channel columns unqualified.
func (s *Store) DeleteChannelsCascade(ctx context.Context, where string, args []any) (int64, error) {
	sub := `SELECT id FROM channels`
	if where != "" {
		sub += " WHERE " + where
	}

	var deleted int64
	start := time.Now()
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		cascades := []string{
			`DELETE FROM programs WHERE channel_id IN (` + sub + `)`,
			`DELETE FROM watched_programs WHERE channel_id IN (` + sub + `)`,
			`DELETE FROM preview_programs WHERE channel_id IN (` + sub + `)`,
			`UPDATE recorded_programs SET channel_id = NULL WHERE channel_id IN (` + sub + `)`,
		}
		for _, q := range cascades {
			if _, err := tx.ExecContext(ctx, q, args...); err != nil {
				return fmt.Errorf("channel cascade failed: %w", err)
			}
		}

		q := `DELETE FROM channels`
		if where != "" {
			q += " WHERE " + where
		}
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("channel delete failed: %w", err)
		}
		deleted, err = res.RowsAffected()
		return err
	})
	observe("delete", TableChannels, start, err)
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
