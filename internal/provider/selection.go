// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/gridwatch/gridwatch/internal/models"
	"github.com/gridwatch/gridwatch/internal/store"
)

type operation string

const (
	opQuery  operation = "query"
	opUpdate operation = "update"
	opDelete operation = "delete"
)

// QueryOptions carries the request filters of a single entity request.
type QueryOptions struct {
	// ID selects a single row.
	ID string
	// Package filters by owning package.
	Package string
	// ChannelID scopes programs, recorded programs, and preview
	// programs to one channel.
	ChannelID string
	// InputID scopes channels to one input service.
	InputID string
	// StartTime/EndTime select rows whose program interval overlaps
	// [StartTime, EndTime]. Both must be set together.
	StartTime *int64
	EndTime   *int64
	// CanonicalGenre lists channels currently airing a program of the
	// genre. Query-only.
	CanonicalGenre string
	// BrowsableOnly keeps only browsable channels.
	BrowsableOnly bool
	// Preview filters channels by preview type: true keeps preview
	// channels only, false excludes them.
	Preview *bool
	// Columns is the requested projection; empty means all columns.
	Columns []string
	// Sort is a caller-supplied sort order.
	Sort string
	// Selection is an explicit SQL restriction. Privileged callers
	// only.
	Selection     string
	SelectionArgs []any
	// Limit caps the result set; 0 means no cap.
	Limit int
}

// sqlParams accumulates WHERE fragments the way the request router
// builds them: every fragment is ANDed, fragments with OR inside are
// parenthesized by their builder.
type sqlParams struct {
	tables string
	where  []string
	args   []any
}

func (p *sqlParams) append(where string, args ...any) {
	p.where = append(p.where, where)
	p.args = append(p.args, args...)
}

func (p *sqlParams) clause() string {
	return strings.Join(p.where, " AND ")
}

// buildParams produces the scoped selection for one operation. It
// implements the access rules:
//   - watch-log access requires the watch-log capability and always
//     pins consolidated rows;
//   - non-privileged callers may not pass explicit selections and are
//     scoped to their own rows, widened to searchable rows for reads
//     when they hold the listing capability;
//   - the canonical-genre channel join is query-only.
func (p *Provider) buildParams(op operation, kind Kind, caller Caller, opts QueryOptions) (*sqlParams, error) {
	params := &sqlParams{tables: kind.Table()}
	privileged := p.gate.Allows(caller.Package, CapAccessAllData)

	genreJoin := kind == KindChannel && opts.CanonicalGenre != ""
	// Qualify the shared column names when the genre join is active.
	prefix := ""
	if genreJoin {
		prefix = store.TableChannels + "."
	}

	if kind == KindWatched {
		if !p.gate.Allows(caller.Package, CapAccessWatchLog) {
			return nil, fmt.Errorf("%w: watch log requires capability %s", ErrSecurity, CapAccessWatchLog)
		}
		if opts.Selection != "" && !privileged {
			return nil, fmt.Errorf("%w: explicit selection not allowed", ErrSecurity)
		}
		params.append("consolidated = ?", true)
	} else if !privileged {
		if opts.Selection != "" {
			return nil, fmt.Errorf("%w: explicit selection not allowed", ErrSecurity)
		}
		if op == opQuery && p.gate.Allows(caller.Package, CapReadListings) {
			params.append("("+prefix+"package_name = ? OR "+prefix+"searchable = ?)", caller.Package, true)
		} else {
			params.append(prefix+"package_name = ?", caller.Package)
		}
	}

	if opts.Selection != "" {
		params.append("("+opts.Selection+")", opts.SelectionArgs...)
	}
	if opts.Package != "" {
		params.append(prefix+"package_name = ?", opts.Package)
	}

	switch kind {
	case KindChannel:
		if genreJoin {
			if op != opQuery {
				return nil, fmt.Errorf("%w: %s not allowed with a genre filter", ErrSecurity, op)
			}
			if !models.IsCanonicalGenre(opts.CanonicalGenre) {
				return nil, fmt.Errorf("%w: not a canonical genre: %s", ErrInvalidArgument, opts.CanonicalGenre)
			}
			params.tables = store.TableChannels + " INNER JOIN " + store.TablePrograms +
				" ON (" + store.TableChannels + ".id = " + store.TablePrograms + ".channel_id)"
			now := p.now().UnixMilli()
			params.append("programs.canonical_genre LIKE ? AND programs.start_time_utc_millis <= ? AND programs.end_time_utc_millis >= ?",
				"%"+opts.CanonicalGenre+"%", now, now)
		}
		if opts.InputID != "" {
			params.append(prefix+"input_id = ?", opts.InputID)
		}
		if opts.BrowsableOnly {
			params.append(prefix+"browsable = ?", true)
		}
		if opts.Preview != nil {
			if *opts.Preview {
				params.append(prefix+"type = ?", store.ChannelTypePreview)
			} else {
				params.append(prefix+"type != ?", store.ChannelTypePreview)
			}
		}
	case KindProgram:
		if opts.ChannelID != "" {
			params.append("channel_id = ?", opts.ChannelID)
		}
		if opts.StartTime != nil && opts.EndTime != nil {
			if *opts.StartTime > *opts.EndTime {
				return nil, fmt.Errorf("%w: start_time after end_time", ErrInvalidArgument)
			}
			params.append("start_time_utc_millis <= ? AND end_time_utc_millis >= ?",
				*opts.EndTime, *opts.StartTime)
		}
	case KindRecorded, KindPreview:
		if opts.ChannelID != "" {
			params.append("channel_id = ?", opts.ChannelID)
		}
	}

	if opts.ID != "" {
		params.append(prefix+"id = ?", opts.ID)
	}
	return params, nil
}

// validateSortOrder rejects sort fields outside the known column set.
func validateSortOrder(sort string, columns map[string]struct{}) error {
	if sort == "" || len(columns) == 0 {
		return nil
	}
	for _, order := range strings.Split(sort, ",") {
		field := strings.Join(strings.Fields(order), " ")
		field = strings.ToLower(strings.TrimSpace(field))
		field = strings.TrimSuffix(field, " asc")
		field = strings.TrimSuffix(field, " desc")
		if _, ok := columns[field]; !ok {
			return fmt.Errorf("%w: illegal field in sort order %q", ErrInvalidArgument, order)
		}
	}
	return nil
}

// now is replaceable in tests.
var timeNow = time.Now

func (p *Provider) now() time.Time {
	if p.clock != nil {
		return p.clock()
	}
	return timeNow()
}
