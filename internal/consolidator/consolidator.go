// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

// Package consolidator turns raw watch-log rows into consolidated,
// non-overlapping watched intervals.
//
// A row is consolidated once its channel, watch start, and watch end
// are all known with watch start <= watch end. Program data on the row
// is best effort: the engine snapshots whatever program covered the
// watch start, and a watch that spans several programs is split into
// one consolidated row per program.
package consolidator

import (
	"context"
	"time"

	"github.com/gridwatch/gridwatch/internal/logging"
	"github.com/gridwatch/gridwatch/internal/metrics"
	"github.com/gridwatch/gridwatch/internal/notify"
	"github.com/gridwatch/gridwatch/internal/store"
)

// Engine runs consolidation passes. All methods are driven from the
// scheduler's single goroutine; the engine itself keeps no state
// beyond its dependencies.
type Engine struct {
	store    *store.Store
	notifier *notify.Notifier
	clock    func() time.Time
}

// New creates an Engine.
func New(st *store.Store, notifier *notify.Notifier) *Engine {
	return &Engine{store: st, notifier: notifier, clock: time.Now}
}

// ConsolidateSession finalizes every open row of one session using the
// watch end time of the session's final event. Each older row's end is
// the next row's start: the user left that channel exactly when the
// next tune landed. Afterwards only consolidated rows remain for the
// session.
func (e *Engine) ConsolidateSession(ctx context.Context, sessionToken string, watchEndTime int64) error {
	rows, err := e.store.UnconsolidatedBySession(ctx, sessionToken)
	if err != nil {
		return err
	}

	metrics.ConsolidationPasses.WithLabelValues("session").Inc()
	count := 0
	terminal := watchEndTime
	for _, row := range rows {
		n, err := e.consolidateRow(ctx, row.ID, row.WatchStartTimeUTCMillis, terminal, row.ChannelID, false)
		if err != nil {
			return err
		}
		count += n
		terminal = row.WatchStartTimeUTCMillis
	}
	if count > 0 {
		if err := e.deleteUnsearchable(ctx); err != nil {
			return err
		}
	}
	return nil
}

// SweepAll consolidates every session's backlog, leaving at most one
// open row per session for the ongoing watch. The newest row of each
// session gets a dry run against the current time, which finalizes
// only the program-boundary splits of a long-running watch. Returns
// the time the next sweep should run, when one is needed: the earliest
// future end of any program still being watched.
func (e *Engine) SweepAll(ctx context.Context) (nextWake int64, ok bool, err error) {
	rows, err := e.store.AllUnconsolidated(ctx)
	if err != nil {
		return 0, false, err
	}

	metrics.ConsolidationPasses.WithLabelValues("sweep").Inc()
	now := e.clock().UnixMilli()
	count := 0
	var prevStart int64
	prevSession := ""
	for _, row := range rows {
		var n int
		var cErr error
		if row.SessionToken != prevSession {
			// Most recent row of this session; may still be active.
			n, cErr = e.consolidateRow(ctx, row.ID, row.WatchStartTimeUTCMillis, now, row.ChannelID, true)
			prevSession = row.SessionToken
		} else {
			// An older row ended exactly when the next one started.
			n, cErr = e.consolidateRow(ctx, row.ID, row.WatchStartTimeUTCMillis, prevStart, row.ChannelID, false)
		}
		if cErr != nil {
			return 0, false, cErr
		}
		count += n
		prevStart = row.WatchStartTimeUTCMillis
	}
	if count > 0 {
		if err := e.deleteUnsearchable(ctx); err != nil {
			return 0, false, err
		}
	}
	return e.store.EarliestFutureProgramEnd(ctx, now)
}

// consolidateRow completes one row against a terminal time. The row is
// guaranteed to be consolidated or deleted afterwards, except in a dry
// run where a row that needs no split only has its snapshot refreshed.
//
// Splitting is iterative: when the program under the row ends before
// the terminal, the row is finalized at the program boundary, a
// duplicate open row starting there is queued, and the loop continues
// until a row reaches the terminal. Returns the number of rows
// finalized, which a dry run always reports as zero.
func (e *Engine) consolidateRow(ctx context.Context, id string, watchStart, terminal int64, channelID string, dryRun bool) (int, error) {
	count := 0
	type pending struct {
		id    string
		start int64
	}
	work := []pending{{id: id, start: watchStart}}

	for len(work) > 0 {
		item := work[0]
		work = work[1:]

		if item.start > terminal {
			logging.Warn().Str("id", item.id).Int64("watch_start", item.start).Int64("watch_end", terminal).
				Msg("Dropping watch-log row with start after end")
			metrics.DroppedInvariantRows.Inc()
			if err := e.store.DeleteWatchedRow(ctx, item.id); err != nil {
				return count, err
			}
			continue
		}

		snap, err := e.store.ProgramAt(ctx, channelID, item.start)
		if err != nil {
			return count, err
		}
		needsSplit := snap.Found && snap.EndTimeUTCMillis < terminal

		if !dryRun || needsSplit {
			end := terminal
			if needsSplit {
				end = snap.EndTimeUTCMillis
			}
			if err := e.store.FinalizeWatchedRow(ctx, item.id, item.start, end, snap); err != nil {
				return count, err
			}
			// The watched program exists, externally, from the moment
			// it consolidates.
			e.notifier.Publish(notify.Event{Entity: "watched-programs", ID: item.id, Operation: notify.OpInsert})
			metrics.ConsolidatedRows.Inc()
		} else {
			if err := e.store.UpdateWatchedSnapshot(ctx, item.id, item.start, snap); err != nil {
				return count, err
			}
		}
		if !dryRun {
			count++
		}

		if needsSplit {
			newID, err := e.store.DuplicateWatchedRow(ctx, item.id, snap.EndTimeUTCMillis)
			if err != nil {
				return count, err
			}
			metrics.SplitRows.Inc()
			work = append(work, pending{id: newID, start: snap.EndTimeUTCMillis})
		}
	}
	return count, nil
}

// deleteUnsearchable drops consolidated history of channels that have
// become unsearchable. Only consolidated rows are safe to delete; an
// open row's visibility is still pending.
func (e *Engine) deleteUnsearchable(ctx context.Context) error {
	n, err := e.store.DeleteConsolidatedUnsearchable(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		metrics.UnsearchableCleanupRows.Add(float64(n))
		logging.Debug().Int64("rows", n).Msg("Removed history of unsearchable channels")
	}
	return nil
}
