// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package provider

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
)

var identifierRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// loadColumns discovers the live column set of every table so the
// projection layer tracks columns added at runtime.
func (p *Provider) loadColumns(ctx context.Context) error {
	kinds := []Kind{KindChannel, KindProgram, KindWatched, KindRecorded, KindPreview, KindWatchNext}
	cols := make(map[Kind]map[string]struct{}, len(kinds))
	for _, kind := range kinds {
		names, err := p.store.TableColumns(ctx, kind.Table())
		if err != nil {
			return err
		}
		set := make(map[string]struct{}, len(names))
		for _, name := range names {
			set[name] = struct{}{}
		}
		cols[kind] = set
	}
	p.mu.Lock()
	p.columns = cols
	p.mu.Unlock()
	return nil
}

// Columns returns the live column names of a kind, sorted.
func (p *Provider) Columns(kind Kind) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.columns[kind]))
	for name := range p.columns[kind] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (p *Provider) columnSet(kind Kind) map[string]struct{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.columns[kind]
}

// projectionFor maps a requested projection onto SELECT expressions.
// Known columns pass through (qualified when prefix is set for the
// genre join); unknown names surface as NULL so a caller probing for a
// column it expects gets a well-formed row instead of an error.
func (p *Provider) projectionFor(kind Kind, requested []string, prefix string) ([]string, error) {
	if len(requested) == 0 {
		if prefix != "" {
			return []string{prefix + "*"}, nil
		}
		return nil, nil
	}
	known := p.columnSet(kind)
	out := make([]string, 0, len(requested))
	for _, name := range requested {
		if !identifierRe.MatchString(name) {
			return nil, fmt.Errorf("%w: illegal column name %q", ErrInvalidArgument, name)
		}
		if _, ok := known[name]; ok {
			out = append(out, prefix+name)
		} else {
			out = append(out, "NULL AS "+name)
		}
	}
	return out, nil
}

// filterWriteValues drops unknown keys from a write payload. Unknown
// columns are silently ignored, matching read-side NULL backfill.
// Integral float64 values are converted to int64: JSON decoding turns
// every number into a float64, but most numeric columns hold
// millisecond timestamps and counts.
func (p *Provider) filterWriteValues(kind Kind, values map[string]any) {
	known := p.columnSet(kind)
	for name, value := range values {
		if _, ok := known[name]; !ok {
			delete(values, name)
			continue
		}
		if f, ok := value.(float64); ok && f == math.Trunc(f) {
			values[name] = int64(f)
		}
	}
}

// AddColumn extends a kind's table with a caller-defined column and
// refreshes the projection maps. Privileged callers only.
func (p *Provider) AddColumn(ctx context.Context, caller Caller, kind Kind, name, dataType, defaultValue string) error {
	if !p.gate.Allows(caller.Package, CapAccessAllData) {
		p.rejected(kind, "add-column")
		return fmt.Errorf("%w: extending columns requires capability %s", ErrSecurity, CapAccessAllData)
	}
	if err := p.store.AddColumn(ctx, kind.Table(), name, dataType, defaultValue); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return p.loadColumns(ctx)
}
