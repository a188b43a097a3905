// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

// Package provider routes entity requests through access control,
// projection filtering, and the store. It is the single write path for
// every table.
package provider

import "github.com/gridwatch/gridwatch/internal/store"

// Kind identifies one of the stored entity kinds.
type Kind int

const (
	KindChannel Kind = iota
	KindProgram
	KindWatched
	KindRecorded
	KindPreview
	KindWatchNext
)

// Table returns the backing table name.
func (k Kind) Table() string {
	switch k {
	case KindChannel:
		return store.TableChannels
	case KindProgram:
		return store.TablePrograms
	case KindWatched:
		return store.TableWatchedPrograms
	case KindRecorded:
		return store.TableRecordedPrograms
	case KindPreview:
		return store.TablePreviewPrograms
	case KindWatchNext:
		return store.TableWatchNext
	}
	return ""
}

// Entity returns the external name used in routes and change events.
func (k Kind) Entity() string {
	switch k {
	case KindChannel:
		return "channels"
	case KindProgram:
		return "programs"
	case KindWatched:
		return "watched-programs"
	case KindRecorded:
		return "recorded-programs"
	case KindPreview:
		return "preview-programs"
	case KindWatchNext:
		return "watch-next-programs"
	}
	return ""
}

// KindFromEntity resolves an external entity name.
func KindFromEntity(name string) (Kind, bool) {
	switch name {
	case "channels":
		return KindChannel, true
	case "programs":
		return KindProgram, true
	case "watched-programs":
		return KindWatched, true
	case "recorded-programs":
		return KindRecorded, true
	case "preview-programs":
		return KindPreview, true
	case "watch-next-programs":
		return KindWatchNext, true
	}
	return 0, false
}

// previewKind reports whether writes to this kind are subject to the
// package denylist.
func (k Kind) previewKind() bool {
	return k == KindPreview || k == KindWatchNext
}

// defaultSortOrder returns the sort applied when the caller supplies
// none. Kinds without a natural order return "".
func (k Kind) defaultSortOrder() string {
	switch k {
	case KindProgram:
		return "start_time_utc_millis ASC"
	case KindWatched:
		return "watch_start_time_utc_millis DESC"
	}
	return ""
}
