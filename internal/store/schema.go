// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

/*
schema.go - Database Schema Management

This file manages the DuckDB schema for the TV content store.

Tables:
  - channels: TV channels, one row per channel, owned by the inserting
    package. Carries the channel logo as a BLOB column.
  - programs: broadcast programs scheduled on channels, keyed by a
    half-open [start, end) interval in UTC milliseconds.
  - watched_programs: the watch log. Rows are inserted unconsolidated
    when a session tunes a channel and consolidated later by the
    consolidation engine.
  - recorded_programs: completed or in-progress recordings. A recording
    survives deletion of its originating channel (channel_id cleared).
  - preview_programs / watch_next_programs: promotional and
    continue-watching surfaces.
  - blocked_packages: packages barred from writing preview content.

DuckDB does not enforce cascading foreign keys, so referential cleanup
(deleting a channel deletes its programs, preview programs, and watch
log; recorded programs keep the row with channel_id cleared) happens in
the provider's delete path inside a transaction.
*/
package store

import (
	"context"
	"fmt"
	"time"
)

// ChannelTypePreview marks promotional channels that are not backed by
// a broadcast input. Preview channels are subject to the denylist.
const ChannelTypePreview = "TYPE_PREVIEW"

// Table names used across the store.
const (
	TableChannels         = "channels"
	TablePrograms         = "programs"
	TableWatchedPrograms  = "watched_programs"
	TableRecordedPrograms = "recorded_programs"
	TablePreviewPrograms  = "preview_programs"
	TableWatchNext        = "watch_next_programs"
	TableBlockedPackages  = "blocked_packages"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (s *Store) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := s.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS channels (
			id TEXT PRIMARY KEY,
			package_name TEXT NOT NULL,
			type TEXT NOT NULL,
			service_type TEXT,
			input_id TEXT,
			transport_stream_id BIGINT,
			original_network_id BIGINT,
			service_id BIGINT,
			display_number TEXT,
			display_name TEXT,
			network_affiliation TEXT,
			description TEXT,
			video_format TEXT,
			browsable BOOLEAN NOT NULL DEFAULT FALSE,
			searchable BOOLEAN NOT NULL DEFAULT TRUE,
			locked BOOLEAN NOT NULL DEFAULT FALSE,
			app_link_icon_uri TEXT,
			app_link_poster_art_uri TEXT,
			app_link_text TEXT,
			app_link_color BIGINT,
			app_link_intent_uri TEXT,
			internal_provider_data BLOB,
			internal_provider_flag1 BIGINT,
			internal_provider_flag2 BIGINT,
			internal_provider_flag3 BIGINT,
			internal_provider_flag4 BIGINT,
			logo BLOB,
			version_number BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS programs (
			id TEXT PRIMARY KEY,
			package_name TEXT NOT NULL,
			channel_id TEXT,
			title TEXT,
			season_display_number TEXT,
			season_title TEXT,
			episode_display_number TEXT,
			episode_title TEXT,
			start_time_utc_millis BIGINT,
			end_time_utc_millis BIGINT,
			broadcast_genre TEXT,
			canonical_genre TEXT,
			short_description TEXT,
			long_description TEXT,
			video_width BIGINT,
			video_height BIGINT,
			audio_language TEXT,
			content_rating TEXT,
			poster_art_uri TEXT,
			thumbnail_uri TEXT,
			searchable BOOLEAN NOT NULL DEFAULT TRUE,
			recording_prohibited BOOLEAN NOT NULL DEFAULT FALSE,
			internal_provider_data BLOB,
			internal_provider_flag1 BIGINT,
			internal_provider_flag2 BIGINT,
			internal_provider_flag3 BIGINT,
			internal_provider_flag4 BIGINT,
			version_number BIGINT NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS watched_programs (
			id TEXT PRIMARY KEY,
			package_name TEXT NOT NULL,
			watch_start_time_utc_millis BIGINT NOT NULL,
			watch_end_time_utc_millis BIGINT,
			channel_id TEXT,
			title TEXT,
			start_time_utc_millis BIGINT,
			end_time_utc_millis BIGINT,
			description TEXT,
			tune_params TEXT,
			session_token TEXT NOT NULL,
			consolidated BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		`CREATE TABLE IF NOT EXISTS recorded_programs (
			id TEXT PRIMARY KEY,
			package_name TEXT NOT NULL,
			channel_id TEXT,
			input_id TEXT,
			title TEXT,
			season_display_number TEXT,
			season_title TEXT,
			episode_display_number TEXT,
			episode_title TEXT,
			start_time_utc_millis BIGINT,
			end_time_utc_millis BIGINT,
			broadcast_genre TEXT,
			canonical_genre TEXT,
			short_description TEXT,
			long_description TEXT,
			audio_language TEXT,
			content_rating TEXT,
			poster_art_uri TEXT,
			thumbnail_uri TEXT,
			searchable BOOLEAN NOT NULL DEFAULT TRUE,
			recording_data_uri TEXT,
			recording_data_bytes BIGINT,
			recording_duration_millis BIGINT,
			recording_expire_time_utc_millis BIGINT,
			internal_provider_data BLOB,
			internal_provider_flag1 BIGINT,
			internal_provider_flag2 BIGINT,
			internal_provider_flag3 BIGINT,
			internal_provider_flag4 BIGINT,
			version_number BIGINT NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS preview_programs (
			id TEXT PRIMARY KEY,
			package_name TEXT NOT NULL,
			channel_id TEXT,
			type BIGINT,
			title TEXT,
			season_display_number TEXT,
			episode_display_number TEXT,
			episode_title TEXT,
			short_description TEXT,
			long_description TEXT,
			poster_art_uri TEXT,
			thumbnail_uri TEXT,
			intent_uri TEXT,
			preview_video_uri TEXT,
			duration_millis BIGINT,
			browsable BOOLEAN NOT NULL DEFAULT TRUE,
			searchable BOOLEAN NOT NULL DEFAULT TRUE,
			content_id TEXT,
			weight BIGINT,
			internal_provider_data BLOB,
			version_number BIGINT NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS watch_next_programs (
			id TEXT PRIMARY KEY,
			package_name TEXT NOT NULL,
			type BIGINT,
			watch_next_type BIGINT,
			last_engagement_time_utc_millis BIGINT,
			title TEXT,
			season_display_number TEXT,
			episode_display_number TEXT,
			episode_title TEXT,
			short_description TEXT,
			long_description TEXT,
			poster_art_uri TEXT,
			thumbnail_uri TEXT,
			intent_uri TEXT,
			preview_video_uri TEXT,
			duration_millis BIGINT,
			last_playback_position_millis BIGINT,
			browsable BOOLEAN NOT NULL DEFAULT TRUE,
			searchable BOOLEAN NOT NULL DEFAULT TRUE,
			content_id TEXT,
			internal_provider_data BLOB,
			version_number BIGINT NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS blocked_packages (
			package_name TEXT PRIMARY KEY,
			blocked_at_utc_millis BIGINT NOT NULL
		)`,
	}
}

func (s *Store) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_channels_package ON channels(package_name)`,
		`CREATE INDEX IF NOT EXISTS idx_programs_channel_window ON programs(channel_id, start_time_utc_millis, end_time_utc_millis)`,
		`CREATE INDEX IF NOT EXISTS idx_programs_package ON programs(package_name)`,
		`CREATE INDEX IF NOT EXISTS idx_watched_session ON watched_programs(session_token, watch_start_time_utc_millis)`,
		`CREATE INDEX IF NOT EXISTS idx_watched_consolidated ON watched_programs(consolidated)`,
		`CREATE INDEX IF NOT EXISTS idx_recorded_channel ON recorded_programs(channel_id)`,
		`CREATE INDEX IF NOT EXISTS idx_preview_channel ON preview_programs(channel_id)`,
	}
	for _, query := range indexes {
		if _, err := s.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}
