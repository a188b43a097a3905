// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by typed lookups when no row matches.
var ErrNotFound = errors.New("not found")

// ChannelLogo returns the stored logo bytes for a channel.
// ErrNotFound covers both a missing channel and a channel without a
// logo.
func (s *Store) ChannelLogo(ctx context.Context, channelID string) ([]byte, error) {
	start := time.Now()
	row := s.conn.QueryRowContext(ctx, `SELECT logo FROM channels WHERE id = ?`, channelID)

	var logo []byte
	err := row.Scan(&logo)
	observe("query", TableChannels, start, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read channel logo: %w", err)
	}
	if len(logo) == 0 {
		return nil, ErrNotFound
	}
	return logo, nil
}

// SetChannelLogo stores logo bytes on a channel; nil clears the logo.
func (s *Store) SetChannelLogo(ctx context.Context, channelID string, logo []byte) error {
	start := time.Now()
	res, err := s.conn.ExecContext(ctx, `UPDATE channels SET logo = ? WHERE id = ?`, logo, channelID)
	observe("update", TableChannels, start, err)
	if err != nil {
		return fmt.Errorf("failed to store channel logo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
