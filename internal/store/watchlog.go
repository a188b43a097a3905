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

	"github.com/google/uuid"

	"github.com/gridwatch/gridwatch/internal/models"
)

// WatchedRow is the slice of a watch-log row the consolidation engine
// needs: identity, session, and the current watch start time.
type WatchedRow struct {
	ID                      string
	Package                 string
	ChannelID               string
	SessionToken            string
	WatchStartTimeUTCMillis int64
}

// ProgramSnapshot holds the program fields copied onto a watch-log row
// during consolidation. Found is false when no program covered the
// watch start time.
type ProgramSnapshot struct {
	Found              bool
	Title              string
	StartTimeUTCMillis int64
	EndTimeUTCMillis   int64
	Description        string
}

// InsertWatchEvent appends an unconsolidated watch-log row. A fresh
// row id is assigned when the entry has none.
func (s *Store) InsertWatchEvent(ctx context.Context, e *models.WatchedEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	start := time.Now()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO watched_programs (id, package_name, watch_start_time_utc_millis, channel_id, tune_params, session_token, consolidated)
		 VALUES (?, ?, ?, ?, ?, ?, FALSE)`,
		e.ID, e.Package, e.WatchStartTimeUTCMillis, e.ChannelID, nullIfEmpty(e.TuneParams), e.SessionToken)
	observe("insert", TableWatchedPrograms, start, err)
	if err != nil {
		return fmt.Errorf("failed to insert watch event: %w", err)
	}
	return nil
}

// UnconsolidatedBySession returns the open rows of one session, most
// recent watch start first.
func (s *Store) UnconsolidatedBySession(ctx context.Context, sessionToken string) ([]WatchedRow, error) {
	return s.watchedRows(ctx,
		`SELECT id, package_name, channel_id, session_token, watch_start_time_utc_millis
		 FROM watched_programs
		 WHERE consolidated = FALSE AND session_token = ?
		 ORDER BY watch_start_time_utc_millis DESC`, sessionToken)
}

// AllUnconsolidated returns every open row grouped by session with the
// most recent watch start on top of each group.
func (s *Store) AllUnconsolidated(ctx context.Context) ([]WatchedRow, error) {
	return s.watchedRows(ctx,
		`SELECT id, package_name, channel_id, session_token, watch_start_time_utc_millis
		 FROM watched_programs
		 WHERE consolidated = FALSE
		 ORDER BY session_token DESC, watch_start_time_utc_millis DESC`)
}

func (s *Store) watchedRows(ctx context.Context, query string, args ...any) ([]WatchedRow, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx, query, args...)
	observe("query", TableWatchedPrograms, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch log: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var out []WatchedRow
	for rows.Next() {
		var r WatchedRow
		var channel sql.NullString
		if err := rows.Scan(&r.ID, &r.Package, &channel, &r.SessionToken, &r.WatchStartTimeUTCMillis); err != nil {
			return nil, fmt.Errorf("failed to scan watch-log row: %w", err)
		}
		r.ChannelID = channel.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// ProgramAt returns the program airing on a channel at the given time,
// or Found=false when the schedule has a gap there.
func (s *Store) ProgramAt(ctx context.Context, channelID string, t int64) (ProgramSnapshot, error) {
	start := time.Now()
	row := s.conn.QueryRowContext(ctx,
		`SELECT title, start_time_utc_millis, end_time_utc_millis, short_description
		 FROM programs
		 WHERE channel_id = ? AND start_time_utc_millis <= ? AND end_time_utc_millis > ?
		 ORDER BY start_time_utc_millis ASC
		 LIMIT 1`, channelID, t, t)

	var snap ProgramSnapshot
	var title, desc sql.NullString
	err := row.Scan(&title, &snap.StartTimeUTCMillis, &snap.EndTimeUTCMillis, &desc)
	observe("query", TablePrograms, start, err)
	if errors.Is(err, sql.ErrNoRows) {
		return ProgramSnapshot{}, nil
	}
	if err != nil {
		return ProgramSnapshot{}, fmt.Errorf("failed to resolve program: %w", err)
	}
	snap.Found = true
	snap.Title = title.String
	snap.Description = desc.String
	return snap, nil
}

// UpdateWatchedSnapshot refreshes the watch start and program snapshot
// of an open row without consolidating it.
func (s *Store) UpdateWatchedSnapshot(ctx context.Context, id string, watchStart int64, snap ProgramSnapshot) error {
	start := time.Now()
	_, err := s.conn.ExecContext(ctx,
		`UPDATE watched_programs
		 SET watch_start_time_utc_millis = ?, title = ?, start_time_utc_millis = ?, end_time_utc_millis = ?, description = ?
		 WHERE id = ?`,
		watchStart, snapTitle(snap), snapStart(snap), snapEnd(snap), snapDesc(snap), id)
	observe("update", TableWatchedPrograms, start, err)
	if err != nil {
		return fmt.Errorf("failed to update watch-log snapshot: %w", err)
	}
	return nil
}

// FinalizeWatchedRow completes a row: watch interval, program
// snapshot, and the consolidated flag all land in one update.
func (s *Store) FinalizeWatchedRow(ctx context.Context, id string, watchStart, watchEnd int64, snap ProgramSnapshot) error {
	start := time.Now()
	_, err := s.conn.ExecContext(ctx,
		`UPDATE watched_programs
		 SET watch_start_time_utc_millis = ?, watch_end_time_utc_millis = ?, title = ?, start_time_utc_millis = ?, end_time_utc_millis = ?, description = ?, consolidated = TRUE
		 WHERE id = ?`,
		watchStart, watchEnd, snapTitle(snap), snapStart(snap), snapEnd(snap), snapDesc(snap), id)
	observe("update", TableWatchedPrograms, start, err)
	if err != nil {
		return fmt.Errorf("failed to finalize watch-log row: %w", err)
	}
	return nil
}

// DuplicateWatchedRow copies the session and channel identity of a row
// into a new open row starting at newStart. Returns the new row id.
func (s *Store) DuplicateWatchedRow(ctx context.Context, id string, newStart int64) (string, error) {
	newID := uuid.New().String()
	start := time.Now()
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO watched_programs (id, package_name, watch_start_time_utc_millis, channel_id, session_token, consolidated)
		 SELECT ?, package_name, ?, channel_id, session_token, FALSE
		 FROM watched_programs WHERE id = ?`, newID, newStart, id)
	observe("insert", TableWatchedPrograms, start, err)
	if err != nil {
		return "", fmt.Errorf("failed to duplicate watch-log row: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", fmt.Errorf("watch-log row %s not found", id)
	}
	return newID, nil
}

// DeleteWatchedRow removes a single row by id.
func (s *Store) DeleteWatchedRow(ctx context.Context, id string) error {
	start := time.Now()
	_, err := s.conn.ExecContext(ctx, `DELETE FROM watched_programs WHERE id = ?`, id)
	observe("delete", TableWatchedPrograms, start, err)
	if err != nil {
		return fmt.Errorf("failed to delete watch-log row: %w", err)
	}
	return nil
}

// DeleteConsolidatedUnsearchable removes consolidated history from
// channels flagged unsearchable. Open rows are never touched.
func (s *Store) DeleteConsolidatedUnsearchable(ctx context.Context) (int64, error) {
	start := time.Now()
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM watched_programs
		 WHERE consolidated = TRUE
		   AND channel_id IN (SELECT id FROM channels WHERE searchable = FALSE)`)
	observe("delete", TableWatchedPrograms, start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to delete unsearchable history: %w", err)
	}
	return res.RowsAffected()
}

// PurgeUnconsolidated drops all open watch-log rows. Runs once at
// startup: open rows from a previous process are unfinishable because
// their sessions are gone.
func (s *Store) PurgeUnconsolidated(ctx context.Context) (int64, error) {
	start := time.Now()
	res, err := s.conn.ExecContext(ctx, `DELETE FROM watched_programs WHERE consolidated = FALSE`)
	observe("delete", TableWatchedPrograms, start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to purge unconsolidated rows: %w", err)
	}
	return res.RowsAffected()
}

// EarliestFutureProgramEnd finds the soonest moment after now at which
// any program currently covering an open watch-log row ends. Returns
// ok=false when no open row sits inside a program that ends in the
// future.
func (s *Store) EarliestFutureProgramEnd(ctx context.Context, now int64) (int64, bool, error) {
	start := time.Now()
	row := s.conn.QueryRowContext(ctx,
		`SELECT MIN(p.end_time_utc_millis)
		 FROM watched_programs w
		 JOIN programs p
		   ON p.channel_id = w.channel_id
		  AND p.start_time_utc_millis <= w.watch_start_time_utc_millis
		  AND p.end_time_utc_millis > w.watch_start_time_utc_millis
		 WHERE w.consolidated = FALSE
		   AND p.end_time_utc_millis > ?`, now)

	var minEnd sql.NullInt64
	err := row.Scan(&minEnd)
	observe("query", TableWatchedPrograms, start, err)
	if err != nil {
		return 0, false, fmt.Errorf("failed to compute next consolidation time: %w", err)
	}
	if !minEnd.Valid {
		return 0, false, nil
	}
	return minEnd.Int64, true, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func snapTitle(s ProgramSnapshot) any {
	if !s.Found {
		return nil
	}
	return s.Title
}

func snapStart(s ProgramSnapshot) any {
	if !s.Found {
		return nil
	}
	return s.StartTimeUTCMillis
}

func snapEnd(s ProgramSnapshot) any {
	if !s.Found {
		return nil
	}
	return s.EndTimeUTCMillis
}

func snapDesc(s ProgramSnapshot) any {
	if !s.Found {
		return nil
	}
	return s.Description
}
