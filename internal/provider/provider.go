// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package provider

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gridwatch/gridwatch/internal/logging"
	"github.com/gridwatch/gridwatch/internal/metrics"
	"github.com/gridwatch/gridwatch/internal/models"
	"github.com/gridwatch/gridwatch/internal/notify"
	"github.com/gridwatch/gridwatch/internal/store"
)

// Caller identifies the requesting package.
type Caller struct {
	Package string
}

// ConsolidationTrigger is how the provider pokes the consolidation
// scheduler. A start event debounces a global sweep so program data
// has time to land; an end event consolidates one session.
type ConsolidationTrigger interface {
	TriggerSweepAfter(delay time.Duration)
	TriggerSession(sessionToken string, watchEndTime int64)
}

// watchEventDelay gives EPG writers a window to fill in program data
// before the triggered consolidation runs.
const watchEventDelay = 10 * time.Second

// Provider routes entity operations through access control and the
// store, and publishes change notifications after each write.
type Provider struct {
	store    *store.Store
	gate     *Gate
	notifier *notify.Notifier
	trigger  ConsolidationTrigger
	clock    func() time.Time

	mu      sync.RWMutex
	columns map[Kind]map[string]struct{}
}

// New builds a Provider and discovers the live column sets.
func New(ctx context.Context, st *store.Store, gate *Gate, notifier *notify.Notifier) (*Provider, error) {
	p := &Provider{store: st, gate: gate, notifier: notifier}
	if err := p.loadColumns(ctx); err != nil {
		return nil, fmt.Errorf("failed to load projection maps: %w", err)
	}
	return p, nil
}

// SetTrigger wires the consolidation scheduler. Called once at startup
// after the scheduler exists.
func (p *Provider) SetTrigger(t ConsolidationTrigger) {
	p.trigger = t
}

func (p *Provider) rejected(kind Kind, reason string) {
	metrics.SecurityRejections.WithLabelValues(kind.Entity(), reason).Inc()
}

// Query returns the rows of a kind visible to the caller.
func (p *Provider) Query(ctx context.Context, kind Kind, caller Caller, opts QueryOptions) ([]map[string]any, error) {
	params, err := p.buildParams(opQuery, kind, caller, opts)
	if err != nil {
		p.rejected(kind, "query-scope")
		return nil, err
	}

	privileged := p.gate.Allows(caller.Package, CapAccessAllData)
	if !privileged {
		if err := validateSortOrder(opts.Sort, p.columnSet(kind)); err != nil {
			return nil, err
		}
	}
	orderBy := opts.Sort
	if orderBy == "" {
		orderBy = kind.defaultSortOrder()
	}

	prefix := ""
	if params.tables != kind.Table() {
		prefix = kind.Table() + "."
	}
	projection, err := p.projectionFor(kind, opts.Columns, prefix)
	if err != nil {
		return nil, err
	}

	rows, err := p.store.QueryRows(ctx, params.tables, projection, params.clause(), params.args, orderBy, opts.Limit)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Get returns a single row by id, or ErrNotFound.
func (p *Provider) Get(ctx context.Context, kind Kind, caller Caller, id string, columns []string) (map[string]any, error) {
	rows, err := p.Query(ctx, kind, caller, QueryOptions{ID: id, Columns: columns, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Insert creates one row of a kind and returns the new row id. The
// watch log has its own insert path (InsertWatchEvent).
func (p *Provider) Insert(ctx context.Context, kind Kind, caller Caller, values map[string]any) (string, error) {
	id, err := p.prepareInsert(ctx, kind, caller, values)
	if err != nil {
		return "", err
	}

	if err := p.store.InsertRow(ctx, kind.Table(), values); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	batch := p.notifier.NewBatch()
	batch.Add(kind.Entity(), id, notify.OpInsert)
	batch.Flush()
	return id, nil
}

// prepareInsert runs the access checks for one insert and shapes
// values into a ready-to-write row, returning its assigned id. It
// performs no writes, so a bulk caller can prepare and write each row
// inside one transaction.
func (p *Provider) prepareInsert(ctx context.Context, kind Kind, caller Caller, values map[string]any) (string, error) {
	if kind == KindWatched {
		return "", fmt.Errorf("%w: watch-log rows are inserted through watch events", ErrInvalidArgument)
	}

	if kind.previewKind() {
		if err := p.requireNotBlocked(ctx, kind, caller); err != nil {
			return "", err
		}
		if _, ok := values["type"]; !ok {
			return "", fmt.Errorf("%w: missing the required column: type", ErrInvalidArgument)
		}
	}

	privileged := p.gate.Allows(caller.Package, CapAccessAllData)

	switch kind {
	case KindChannel:
		channelType, _ := values["type"].(string)
		if channelType == "" {
			return "", fmt.Errorf("%w: missing the required column: type", ErrInvalidArgument)
		}
		if channelType == store.ChannelTypePreview {
			if err := p.requireNotBlocked(ctx, kind, caller); err != nil {
				return "", err
			}
			// Preview channels are not backed by an input service.
			if _, ok := values["input_id"]; !ok {
				values["input_id"] = ""
			}
		}
		values["package_name"] = caller.Package
		if err := p.checkChannelSystemColumns(caller, values); err != nil {
			return "", err
		}
	case KindProgram, KindWatchNext:
		// A privileged caller may create rows on behalf of another
		// package.
		if !privileged || values["package_name"] == nil {
			values["package_name"] = caller.Package
		}
		if kind == KindProgram {
			convertGenres(values)
		} else if err := p.checkPreviewSystemColumns(caller, values); err != nil {
			return "", err
		}
	case KindRecorded:
		values["package_name"] = caller.Package
		convertGenres(values)
	case KindPreview:
		values["package_name"] = caller.Package
		if err := p.checkPreviewSystemColumns(caller, values); err != nil {
			return "", err
		}
	}

	p.filterWriteValues(kind, values)
	id := uuid.New().String()
	values["id"] = id
	return id, nil
}

// BulkInsert inserts many rows of one kind in a single transaction:
// any failing row rolls the whole batch back, and the change events
// for all rows flush together after the commit.
func (p *Provider) BulkInsert(ctx context.Context, kind Kind, caller Caller, rows []map[string]any) ([]string, error) {
	ids := make([]string, 0, len(rows))
	batch := p.notifier.NewBatch()
	err := p.store.WithTx(ctx, func(tx *sql.Tx) error {
		for i, values := range rows {
			id, err := p.prepareInsert(ctx, kind, caller, values)
			if err != nil {
				return fmt.Errorf("bulk insert failed at row %d: %w", i, err)
			}
			if err := p.store.InsertRowTx(ctx, tx, kind.Table(), values); err != nil {
				return fmt.Errorf("bulk insert failed at row %d: %w: %v", i, ErrWriteFailed, err)
			}
			ids = append(ids, id)
			batch.Add(kind.Entity(), id, notify.OpInsert)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	batch.Flush()
	return ids, nil
}

// Update modifies the rows of a kind matching the scoped selection and
// returns the number of rows changed. Immutable columns (channel type,
// preview program channel binding) never change: a single-item update
// carrying one restricts the match to rows that already hold the same
// value, and a collection update carrying one is refused.
func (p *Provider) Update(ctx context.Context, kind Kind, caller Caller, values map[string]any, opts QueryOptions) (int64, error) {
	params, err := p.buildParams(opUpdate, kind, caller, opts)
	if err != nil {
		p.rejected(kind, "update-scope")
		return 0, err
	}
	if err := p.checkIDAndPackageWrites(caller, values); err != nil {
		return 0, err
	}
	if kind.previewKind() {
		if err := p.requireNotBlocked(ctx, kind, caller); err != nil {
			return 0, err
		}
	}

	immutable := false
	switch kind {
	case KindChannel:
		p.filterWriteValues(kind, values)
		if v, ok := values["type"]; ok {
			if opts.ID == "" {
				logging.Info().Msg("Update refused: attempt to change immutable channel type")
				return 0, nil
			}
			params.append("type = ?", v)
			delete(values, "type")
			immutable = true
		}
		if err := p.checkChannelSystemColumns(caller, values); err != nil {
			return 0, err
		}
	case KindProgram:
		p.filterWriteValues(kind, values)
		convertGenres(values)
	case KindRecorded:
		p.filterWriteValues(kind, values)
		convertGenres(values)
	case KindPreview:
		p.filterWriteValues(kind, values)
		if v, ok := values["channel_id"]; ok {
			if opts.ID == "" {
				logging.Info().Msg("Update refused: attempt to change preview program channel")
				return 0, nil
			}
			params.append("channel_id = ?", v)
			delete(values, "channel_id")
			immutable = true
		}
		if err := p.checkPreviewSystemColumns(caller, values); err != nil {
			return 0, err
		}
	case KindWatchNext:
		p.filterWriteValues(kind, values)
		if err := p.checkPreviewSystemColumns(caller, values); err != nil {
			return 0, err
		}
	}

	if len(values) == 0 {
		return 0, nil
	}

	count, err := p.store.UpdateRows(ctx, kind.Table(), values, params.clause(), params.args)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if count > 0 {
		batch := p.notifier.NewBatch()
		batch.Add(kind.Entity(), opts.ID, notify.OpUpdate)
		batch.Flush()
	} else if immutable {
		logging.Info().Msg("Update matched nothing: row missing or immutable column mismatch")
	}
	return count, nil
}

// Delete removes the rows of a kind matching the scoped selection.
// Channel deletes cascade to dependents.
func (p *Provider) Delete(ctx context.Context, kind Kind, caller Caller, opts QueryOptions) (int64, error) {
	params, err := p.buildParams(opDelete, kind, caller, opts)
	if err != nil {
		p.rejected(kind, "delete-scope")
		return 0, err
	}

	var count int64
	if kind == KindChannel {
		count, err = p.store.DeleteChannelsCascade(ctx, params.clause(), params.args)
	} else {
		count, err = p.store.DeleteRows(ctx, kind.Table(), params.clause(), params.args)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if count > 0 {
		batch := p.notifier.NewBatch()
		batch.Add(kind.Entity(), opts.ID, notify.OpDelete)
		batch.Flush()
	}
	return count, nil
}

// InsertWatchEvent accepts a watch event. A start event (watch start
// set, no end) creates an unconsolidated row and debounces a global
// sweep. An end event (watch end set, no start) creates no row; it
// triggers consolidation of its session. Any other shape is invalid.
func (p *Provider) InsertWatchEvent(ctx context.Context, caller Caller, e models.WatchEvent) (string, error) {
	if !p.gate.Allows(caller.Package, CapAccessWatchLog) {
		p.rejected(KindWatched, "watch-event")
		return "", fmt.Errorf("%w: watch events require capability %s", ErrSecurity, CapAccessWatchLog)
	}
	if e.SessionToken == "" {
		return "", fmt.Errorf("%w: missing session token", ErrInvalidArgument)
	}

	switch {
	case e.WatchStartTimeUTCMillis != nil && e.WatchEndTimeUTCMillis == nil:
		entry := models.WatchedEntry{
			Package:                 caller.Package,
			WatchStartTimeUTCMillis: *e.WatchStartTimeUTCMillis,
			ChannelID:               e.ChannelID,
			TuneParams:              e.TuneParams,
			SessionToken:            e.SessionToken,
		}
		if err := p.store.InsertWatchEvent(ctx, &entry); err != nil {
			return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
		}
		if p.trigger != nil {
			p.trigger.TriggerSweepAfter(watchEventDelay)
		}
		return entry.ID, nil
	case e.WatchEndTimeUTCMillis != nil && e.WatchStartTimeUTCMillis == nil:
		if p.trigger != nil {
			p.trigger.TriggerSession(e.SessionToken, *e.WatchEndTimeUTCMillis)
		}
		return "", nil
	default:
		return "", fmt.Errorf("%w: exactly one of watch start and watch end must be set", ErrInvalidArgument)
	}
}

// ChannelLogo reads a channel logo under the caller's read scope.
func (p *Provider) ChannelLogo(ctx context.Context, caller Caller, channelID string) ([]byte, error) {
	if err := p.requireChannelInScope(ctx, opQuery, caller, channelID); err != nil {
		return nil, err
	}
	logo, err := p.store.ChannelLogo(ctx, channelID)
	if err == store.ErrNotFound {
		return nil, ErrNotFound
	}
	return logo, err
}

// SetChannelLogo stores a logo for a channel the caller may write.
func (p *Provider) SetChannelLogo(ctx context.Context, caller Caller, channelID string, logo []byte) error {
	if err := p.requireChannelInScope(ctx, opUpdate, caller, channelID); err != nil {
		return err
	}
	if err := p.store.SetChannelLogo(ctx, channelID, logo); err != nil {
		if err == store.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	batch := p.notifier.NewBatch()
	batch.Add(KindChannel.Entity(), channelID, notify.OpUpdate)
	batch.Flush()
	return nil
}

// DeleteChannelLogo clears the logo of a channel the caller may write.
func (p *Provider) DeleteChannelLogo(ctx context.Context, caller Caller, channelID string) error {
	return p.SetChannelLogo(ctx, caller, channelID, nil)
}

// requireChannelInScope checks that the channel exists inside the
// caller's scope for the operation.
func (p *Provider) requireChannelInScope(ctx context.Context, op operation, caller Caller, channelID string) error {
	params, err := p.buildParams(op, KindChannel, caller, QueryOptions{ID: channelID})
	if err != nil {
		return err
	}
	rows, err := p.store.QueryRows(ctx, params.tables, []string{"id"}, params.clause(), params.args, "", 1)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

// BlockedPackages lists the denylist. Privileged callers only.
func (p *Provider) BlockedPackages(ctx context.Context, caller Caller) ([]models.BlockedPackage, error) {
	if !p.gate.Allows(caller.Package, CapAccessAllData) {
		p.rejected(KindPreview, "denylist-read")
		return nil, fmt.Errorf("%w: reading the denylist requires capability %s", ErrSecurity, CapAccessAllData)
	}
	return p.store.BlockedPackages(ctx)
}

// BlockPackage denylists a package and purges its preview content.
func (p *Provider) BlockPackage(ctx context.Context, caller Caller, pkg string) error {
	if !p.gate.Allows(caller.Package, CapAccessAllData) {
		p.rejected(KindPreview, "denylist-write")
		return fmt.Errorf("%w: blocking packages requires capability %s", ErrSecurity, CapAccessAllData)
	}
	if pkg == "" {
		return fmt.Errorf("%w: missing package name", ErrInvalidArgument)
	}
	if err := p.store.BlockPackage(ctx, pkg, p.now().UnixMilli()); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	batch := p.notifier.NewBatch()
	batch.Add(KindChannel.Entity(), "", notify.OpDelete)
	batch.Add(KindPreview.Entity(), "", notify.OpDelete)
	batch.Add(KindWatchNext.Entity(), "", notify.OpDelete)
	batch.Flush()
	logging.Info().Str("package", pkg).Msg("Package blocked")
	return nil
}

// UnblockPackage removes a package from the denylist.
func (p *Provider) UnblockPackage(ctx context.Context, caller Caller, pkg string) error {
	if !p.gate.Allows(caller.Package, CapAccessAllData) {
		p.rejected(KindPreview, "denylist-write")
		return fmt.Errorf("%w: unblocking packages requires capability %s", ErrSecurity, CapAccessAllData)
	}
	removed, err := p.store.UnblockPackage(ctx, pkg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if !removed {
		return ErrNotFound
	}
	logging.Info().Str("package", pkg).Msg("Package unblocked")
	return nil
}

func (p *Provider) requireNotBlocked(ctx context.Context, kind Kind, caller Caller) error {
	blocked, err := p.store.IsPackageBlocked(ctx, caller.Package)
	if err != nil {
		return err
	}
	if blocked {
		p.rejected(kind, "blocked-package")
		return fmt.Errorf("%w: package %s is blocked", ErrSecurity, caller.Package)
	}
	return nil
}

// checkIDAndPackageWrites enforces that updates never move a row to a
// new id, and only privileged callers may reassign ownership.
func (p *Provider) checkIDAndPackageWrites(caller Caller, values map[string]any) error {
	if _, ok := values["id"]; ok {
		return fmt.Errorf("%w: not allowed to change id", ErrInvalidArgument)
	}
	if pkg, ok := values["package_name"]; ok {
		if !p.gate.Allows(caller.Package, CapAccessAllData) && pkg != caller.Package {
			p.rejected(KindChannel, "package-reassign")
			return fmt.Errorf("%w: not allowed to change package name", ErrSecurity)
		}
	}
	return nil
}

// checkChannelSystemColumns enforces capability-guarded channel
// columns: locked needs the parental-controls capability, browsable
// needs full data access. A payload carrying one without the
// capability is a hard failure, never a silent drop.
func (p *Provider) checkChannelSystemColumns(caller Caller, values map[string]any) error {
	if _, ok := values["locked"]; ok {
		if !p.gate.Allows(caller.Package, CapModifyParentalControls) {
			p.rejected(KindChannel, "locked-write")
			return fmt.Errorf("%w: not allowed to access channels.locked", ErrSecurity)
		}
	}
	if _, ok := values["browsable"]; ok {
		if !p.gate.Allows(caller.Package, CapAccessAllData) {
			p.rejected(KindChannel, "browsable-write")
			return fmt.Errorf("%w: not allowed to access channels.browsable", ErrSecurity)
		}
	}
	return nil
}

// checkPreviewSystemColumns guards browsable on preview and watch-next
// programs.
func (p *Provider) checkPreviewSystemColumns(caller Caller, values map[string]any) error {
	if _, ok := values["browsable"]; ok {
		if !p.gate.Allows(caller.Package, CapAccessAllData) {
			p.rejected(KindPreview, "browsable-write")
			return fmt.Errorf("%w: not allowed to access browsable", ErrSecurity)
		}
	}
	return nil
}

// convertGenres validates a supplied canonical genre (clearing it when
// invalid rather than rejecting the write) and otherwise derives one
// from the broadcast genre when possible.
func convertGenres(values map[string]any) {
	canonical, _ := values["canonical_genre"].(string)
	if canonical != "" && !models.ValidateCanonicalGenres(canonical) {
		values["canonical_genre"] = nil
		canonical = ""
	}
	if canonical == "" {
		if broadcast, _ := values["broadcast_genre"].(string); broadcast != "" {
			if mapped := models.MapBroadcastGenres(broadcast); mapped != "" {
				values["canonical_genre"] = mapped
			}
		}
	}
}
