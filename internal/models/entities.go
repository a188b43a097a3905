// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

// Package models defines the entity types stored by Gridwatch and the
// canonical genre vocabulary shared by the program tables.
package models

// Channel represents a TV channel row. Each channel is owned by the
// package that inserted it; `Type` is immutable after insert.
type Channel struct {
	ID                 string `json:"id"`
	Package            string `json:"package_name"`
	Type               string `json:"type"`
	ServiceType        string `json:"service_type,omitempty"`
	InputID            string `json:"input_id,omitempty"`
	TransportStreamID  int64  `json:"transport_stream_id,omitempty"`
	OriginalNetworkID  int64  `json:"original_network_id,omitempty"`
	ServiceID          int64  `json:"service_id,omitempty"`
	DisplayNumber      string `json:"display_number,omitempty"`
	DisplayName        string `json:"display_name,omitempty"`
	NetworkAffiliation string `json:"network_affiliation,omitempty"`
	Description        string `json:"description,omitempty"`
	VideoFormat        string `json:"video_format,omitempty"`
	Browsable          bool   `json:"browsable"`
	Searchable         bool   `json:"searchable"`
	Locked             bool   `json:"locked"`
	AppLinkIconURI     string `json:"app_link_icon_uri,omitempty"`
	AppLinkPosterURI   string `json:"app_link_poster_art_uri,omitempty"`
	AppLinkText        string `json:"app_link_text,omitempty"`
	AppLinkColor       int64  `json:"app_link_color,omitempty"`
	AppLinkIntentURI   string `json:"app_link_intent_uri,omitempty"`
	InternalData       []byte `json:"internal_provider_data,omitempty"`
	InternalFlag1      int64  `json:"internal_provider_flag1,omitempty"`
	InternalFlag2      int64  `json:"internal_provider_flag2,omitempty"`
	InternalFlag3      int64  `json:"internal_provider_flag3,omitempty"`
	InternalFlag4      int64  `json:"internal_provider_flag4,omitempty"`
	Version            int64  `json:"version_number,omitempty"`
}

// Program represents a broadcast program scheduled on a channel.
// Times are UTC milliseconds and form a half-open interval
// [StartTimeUTCMillis, EndTimeUTCMillis).
type Program struct {
	ID                   string `json:"id"`
	Package              string `json:"package_name"`
	ChannelID            string `json:"channel_id"`
	Title                string `json:"title,omitempty"`
	SeasonDisplayNumber  string `json:"season_display_number,omitempty"`
	SeasonTitle          string `json:"season_title,omitempty"`
	EpisodeDisplayNumber string `json:"episode_display_number,omitempty"`
	EpisodeTitle         string `json:"episode_title,omitempty"`
	StartTimeUTCMillis   int64  `json:"start_time_utc_millis"`
	EndTimeUTCMillis     int64  `json:"end_time_utc_millis"`
	BroadcastGenre       string `json:"broadcast_genre,omitempty"`
	CanonicalGenre       string `json:"canonical_genre,omitempty"`
	ShortDescription     string `json:"short_description,omitempty"`
	LongDescription      string `json:"long_description,omitempty"`
	VideoWidth           int64  `json:"video_width,omitempty"`
	VideoHeight          int64  `json:"video_height,omitempty"`
	AudioLanguage        string `json:"audio_language,omitempty"`
	ContentRating        string `json:"content_rating,omitempty"`
	PosterArtURI         string `json:"poster_art_uri,omitempty"`
	ThumbnailURI         string `json:"thumbnail_uri,omitempty"`
	Searchable           bool   `json:"searchable"`
	RecordingProhibited  bool   `json:"recording_prohibited,omitempty"`
	InternalData         []byte `json:"internal_provider_data,omitempty"`
	Version              int64  `json:"version_number,omitempty"`
}

// WatchedEntry is one watch-log row. Rows are inserted unconsolidated
// when a watch session starts; the consolidation engine later fills in
// WatchEndTimeUTCMillis and the program snapshot fields and flips
// Consolidated. A zero WatchEndTimeUTCMillis means "still open".
type WatchedEntry struct {
	ID                      string `json:"id"`
	Package                 string `json:"package_name"`
	WatchStartTimeUTCMillis int64  `json:"watch_start_time_utc_millis"`
	WatchEndTimeUTCMillis   int64  `json:"watch_end_time_utc_millis,omitempty"`
	ChannelID               string `json:"channel_id"`
	Title                   string `json:"title,omitempty"`
	StartTimeUTCMillis      int64  `json:"start_time_utc_millis,omitempty"`
	EndTimeUTCMillis        int64  `json:"end_time_utc_millis,omitempty"`
	Description             string `json:"description,omitempty"`
	TuneParams              string `json:"tune_params,omitempty"`
	SessionToken            string `json:"session_token,omitempty"`
	Consolidated            bool   `json:"-"`
}

// WatchEvent is the ingest shape of the watch log. The time fields
// are pointers so an explicit epoch-zero timestamp stays
// distinguishable from an absent one: exactly one of the two must be
// set.
type WatchEvent struct {
	SessionToken            string `json:"session_token"`
	ChannelID               string `json:"channel_id,omitempty"`
	TuneParams              string `json:"tune_params,omitempty"`
	WatchStartTimeUTCMillis *int64 `json:"watch_start_time_utc_millis,omitempty"`
	WatchEndTimeUTCMillis   *int64 `json:"watch_end_time_utc_millis,omitempty"`
}

// RecordedProgram is a completed or in-progress recording. ChannelID
// may be empty when the originating channel has been deleted.
type RecordedProgram struct {
	ID                      string `json:"id"`
	Package                 string `json:"package_name"`
	ChannelID               string `json:"channel_id,omitempty"`
	InputID                 string `json:"input_id,omitempty"`
	Title                   string `json:"title,omitempty"`
	SeasonDisplayNumber     string `json:"season_display_number,omitempty"`
	SeasonTitle             string `json:"season_title,omitempty"`
	EpisodeDisplayNumber    string `json:"episode_display_number,omitempty"`
	EpisodeTitle            string `json:"episode_title,omitempty"`
	StartTimeUTCMillis      int64  `json:"start_time_utc_millis,omitempty"`
	EndTimeUTCMillis        int64  `json:"end_time_utc_millis,omitempty"`
	BroadcastGenre          string `json:"broadcast_genre,omitempty"`
	CanonicalGenre          string `json:"canonical_genre,omitempty"`
	ShortDescription        string `json:"short_description,omitempty"`
	LongDescription         string `json:"long_description,omitempty"`
	AudioLanguage           string `json:"audio_language,omitempty"`
	ContentRating           string `json:"content_rating,omitempty"`
	PosterArtURI            string `json:"poster_art_uri,omitempty"`
	ThumbnailURI            string `json:"thumbnail_uri,omitempty"`
	Searchable              bool   `json:"searchable"`
	RecordingDataURI        string `json:"recording_data_uri,omitempty"`
	RecordingDataBytes      int64  `json:"recording_data_bytes,omitempty"`
	RecordingDurationMillis int64  `json:"recording_duration_millis,omitempty"`
	RecordingExpireMillis   int64  `json:"recording_expire_time_utc_millis,omitempty"`
	Version                 int64  `json:"version_number,omitempty"`
}

// PreviewProgram is a promotional program attached to a preview
// channel. ChannelID is immutable after insert.
type PreviewProgram struct {
	ID                   string `json:"id"`
	Package              string `json:"package_name"`
	ChannelID            string `json:"channel_id"`
	Type                 int64  `json:"type"`
	Title                string `json:"title,omitempty"`
	SeasonDisplayNumber  string `json:"season_display_number,omitempty"`
	EpisodeDisplayNumber string `json:"episode_display_number,omitempty"`
	EpisodeTitle         string `json:"episode_title,omitempty"`
	ShortDescription     string `json:"short_description,omitempty"`
	LongDescription      string `json:"long_description,omitempty"`
	PosterArtURI         string `json:"poster_art_uri,omitempty"`
	ThumbnailURI         string `json:"thumbnail_uri,omitempty"`
	IntentURI            string `json:"intent_uri,omitempty"`
	PreviewVideoURI      string `json:"preview_video_uri,omitempty"`
	DurationMillis       int64  `json:"duration_millis,omitempty"`
	Browsable            bool   `json:"browsable"`
	Searchable           bool   `json:"searchable"`
	ContentID            string `json:"content_id,omitempty"`
	Weight               int64  `json:"weight,omitempty"`
	Version              int64  `json:"version_number,omitempty"`
}

// WatchNextProgram is a continue-watching entry surfaced outside any
// channel.
type WatchNextProgram struct {
	ID                       string `json:"id"`
	Package                  string `json:"package_name"`
	Type                     int64  `json:"type"`
	WatchNextType            int64  `json:"watch_next_type"`
	LastEngagementTimeMillis int64  `json:"last_engagement_time_utc_millis,omitempty"`
	Title                    string `json:"title,omitempty"`
	SeasonDisplayNumber      string `json:"season_display_number,omitempty"`
	EpisodeDisplayNumber     string `json:"episode_display_number,omitempty"`
	EpisodeTitle             string `json:"episode_title,omitempty"`
	ShortDescription         string `json:"short_description,omitempty"`
	LongDescription          string `json:"long_description,omitempty"`
	PosterArtURI             string `json:"poster_art_uri,omitempty"`
	ThumbnailURI             string `json:"thumbnail_uri,omitempty"`
	IntentURI                string `json:"intent_uri,omitempty"`
	PreviewVideoURI          string `json:"preview_video_uri,omitempty"`
	DurationMillis           int64  `json:"duration_millis,omitempty"`
	LastPlaybackPosition     int64  `json:"last_playback_position_millis,omitempty"`
	Browsable                bool   `json:"browsable"`
	Searchable               bool   `json:"searchable"`
	ContentID                string `json:"content_id,omitempty"`
	Version                  int64  `json:"version_number,omitempty"`
}

// BlockedPackage records a package barred from writing preview content.
type BlockedPackage struct {
	Package      string `json:"package_name"`
	BlockedAtUTC int64  `json:"blocked_at_utc_millis"`
}
