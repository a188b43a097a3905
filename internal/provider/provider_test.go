// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gridwatch/gridwatch/internal/config"
	"github.com/gridwatch/gridwatch/internal/models"
	"github.com/gridwatch/gridwatch/internal/notify"
	"github.com/gridwatch/gridwatch/internal/store"
)

var (
	sysCaller     = Caller{Package: "com.gridwatch.system"}
	readerCaller  = Caller{Package: "com.example.reader"}
	plainCaller   = Caller{Package: "com.example.app"}
	watcherCaller = Caller{Package: "com.example.tuner"}
)

func newTestProvider(t *testing.T) (*Provider, *store.Store) {
	t.Helper()
	s, err := store.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 2})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	gate, err := NewGate(config.SecurityConfig{
		AccessAllData:          []string{sysCaller.Package},
		ReadListings:           []string{readerCaller.Package},
		AccessWatchLog:         []string{sysCaller.Package, watcherCaller.Package},
		ModifyParentalControls: []string{sysCaller.Package},
	})
	if err != nil {
		t.Fatalf("failed to build gate: %v", err)
	}
	n := notify.New()
	t.Cleanup(func() {
		_ = n.Close()
		_ = s.Close()
	})

	p, err := New(context.Background(), s, gate, n)
	if err != nil {
		t.Fatalf("failed to build provider: %v", err)
	}
	return p, s
}

func insertChannel(t *testing.T, p *Provider, caller Caller, values map[string]any) string {
	t.Helper()
	if values == nil {
		values = map[string]any{}
	}
	if values["type"] == nil {
		values["type"] = "TYPE_DVB_T"
	}
	id, err := p.Insert(context.Background(), KindChannel, caller, values)
	if err != nil {
		t.Fatalf("channel insert failed: %v", err)
	}
	return id
}

func TestInsertForcesOwnership(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	id := insertChannel(t, p, plainCaller, map[string]any{
		"package_name": "com.somebody.else",
		"display_name": "News 24",
	})

	row, err := p.Get(ctx, KindChannel, plainCaller, id, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := row["package_name"]; got != plainCaller.Package {
		t.Errorf("package_name = %v, want the caller's own package", got)
	}
}

func TestQueryScopedToOwnerWithoutListings(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	insertChannel(t, p, plainCaller, nil)
	insertChannel(t, p, watcherCaller, map[string]any{"searchable": true})

	rows, err := p.Query(ctx, KindChannel, plainCaller, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d channels, want only the caller's own", len(rows))
	}
}

func TestReadListingsWidensToSearchable(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	insertChannel(t, p, plainCaller, map[string]any{"searchable": true})
	insertChannel(t, p, plainCaller, map[string]any{"searchable": false})

	rows, err := p.Query(ctx, KindChannel, readerCaller, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d channels, want just the searchable one", len(rows))
	}

	// The widening applies to reads only: a delete by the reader must
	// not touch anybody else's rows.
	count, err := p.Delete(ctx, KindChannel, readerCaller, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("reader deleted %d foreign rows", count)
	}
}

func TestExplicitSelectionIsPrivileged(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	insertChannel(t, p, plainCaller, map[string]any{"display_name": "Alpha"})

	_, err := p.Query(ctx, KindChannel, plainCaller, QueryOptions{Selection: "display_name = ?", SelectionArgs: []any{"Alpha"}})
	if !errors.Is(err, ErrSecurity) {
		t.Fatalf("err = %v, want ErrSecurity", err)
	}

	rows, err := p.Query(ctx, KindChannel, sysCaller, QueryOptions{Selection: "display_name = ?", SelectionArgs: []any{"Alpha"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("privileged selection returned %d rows, want 1", len(rows))
	}
}

func TestWatchLogRequiresCapabilityAndPinsConsolidated(t *testing.T) {
	p, s := newTestProvider(t)
	ctx := context.Background()
	ch := insertChannel(t, p, watcherCaller, nil)

	open := &models.WatchedEntry{Package: watcherCaller.Package, ChannelID: ch, SessionToken: "s1", WatchStartTimeUTCMillis: 100}
	if err := s.InsertWatchEvent(ctx, open); err != nil {
		t.Fatal(err)
	}
	if err := s.FinalizeWatchedRow(ctx, open.ID, 100, 500, store.ProgramSnapshot{}); err != nil {
		t.Fatal(err)
	}
	other := &models.WatchedEntry{Package: watcherCaller.Package, ChannelID: ch, SessionToken: "s2", WatchStartTimeUTCMillis: 600}
	if err := s.InsertWatchEvent(ctx, other); err != nil {
		t.Fatal(err)
	}

	if _, err := p.Query(ctx, KindWatched, plainCaller, QueryOptions{}); !errors.Is(err, ErrSecurity) {
		t.Fatalf("err = %v, want ErrSecurity for a caller without watch log access", err)
	}

	// Even a fully privileged caller only ever sees consolidated rows.
	rows, err := p.Query(ctx, KindWatched, sysCaller, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d watch rows, want only the consolidated one", len(rows))
	}
}

func TestLockedAndBrowsableAreHardFailures(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := p.Insert(ctx, KindChannel, plainCaller, map[string]any{"type": "TYPE_DVB_T", "locked": true})
	if !errors.Is(err, ErrSecurity) {
		t.Errorf("locked insert err = %v, want ErrSecurity", err)
	}
	_, err = p.Insert(ctx, KindChannel, plainCaller, map[string]any{"type": "TYPE_DVB_T", "browsable": true})
	if !errors.Is(err, ErrSecurity) {
		t.Errorf("browsable insert err = %v, want ErrSecurity", err)
	}

	id := insertChannel(t, p, plainCaller, nil)
	_, err = p.Update(ctx, KindChannel, plainCaller, map[string]any{"locked": true}, QueryOptions{ID: id})
	if !errors.Is(err, ErrSecurity) {
		t.Errorf("locked update err = %v, want ErrSecurity", err)
	}

	// The system caller holds both capabilities.
	count, err := p.Update(ctx, KindChannel, sysCaller, map[string]any{"locked": true, "browsable": true}, QueryOptions{ID: id})
	if err != nil || count != 1 {
		t.Errorf("privileged system column update = (%d, %v), want (1, nil)", count, err)
	}
}

func TestChannelTypeIsImmutable(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()
	id := insertChannel(t, p, plainCaller, map[string]any{"type": "TYPE_DVB_T"})

	// Collection update carrying type is refused outright.
	count, err := p.Update(ctx, KindChannel, plainCaller, map[string]any{"type": "TYPE_ATSC_T"}, QueryOptions{})
	if err != nil || count != 0 {
		t.Errorf("collection type update = (%d, %v), want (0, nil)", count, err)
	}

	// Single-row update with a different type matches nothing.
	count, err = p.Update(ctx, KindChannel, plainCaller,
		map[string]any{"type": "TYPE_ATSC_T", "display_name": "X"}, QueryOptions{ID: id})
	if err != nil || count != 0 {
		t.Errorf("mismatched type update = (%d, %v), want (0, nil)", count, err)
	}

	// Same type passes through as a no-op on the column.
	count, err = p.Update(ctx, KindChannel, plainCaller,
		map[string]any{"type": "TYPE_DVB_T", "display_name": "News"}, QueryOptions{ID: id})
	if err != nil || count != 1 {
		t.Errorf("matching type update = (%d, %v), want (1, nil)", count, err)
	}
	row, err := p.Get(ctx, KindChannel, plainCaller, id, nil)
	if err != nil {
		t.Fatal(err)
	}
	if row["type"] != "TYPE_DVB_T" || row["display_name"] != "News" {
		t.Errorf("row after update = %v", row)
	}
}

func TestProjectionBackfillsUnknownColumns(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()
	id := insertChannel(t, p, plainCaller, map[string]any{"display_name": "News"})

	row, err := p.Get(ctx, KindChannel, plainCaller, id, []string{"display_name", "made_up_column"})
	if err != nil {
		t.Fatal(err)
	}
	if row["display_name"] != "News" {
		t.Errorf("display_name = %v", row["display_name"])
	}
	v, present := row["made_up_column"]
	if !present || v != nil {
		t.Errorf("made_up_column = (%v, %v), want a NULL placeholder", v, present)
	}

	if _, err := p.Get(ctx, KindChannel, plainCaller, id, []string{"name; DROP TABLE channels"}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument for a malformed column name", err)
	}
}

func TestUnknownWriteColumnsAreDropped(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	id := insertChannel(t, p, plainCaller, map[string]any{
		"display_name":   "News",
		"made_up_column": "ignored",
	})
	row, err := p.Get(ctx, KindChannel, plainCaller, id, nil)
	if err != nil {
		t.Fatal(err)
	}
	if row["display_name"] != "News" {
		t.Errorf("row = %v", row)
	}
}

func TestUpdateCannotChangeIDOrOwnership(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()
	id := insertChannel(t, p, plainCaller, nil)

	_, err := p.Update(ctx, KindChannel, plainCaller, map[string]any{"id": "other"}, QueryOptions{ID: id})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("id rewrite err = %v, want ErrInvalidArgument", err)
	}
	_, err = p.Update(ctx, KindChannel, plainCaller, map[string]any{"package_name": "com.else"}, QueryOptions{ID: id})
	if !errors.Is(err, ErrSecurity) {
		t.Errorf("ownership reassign err = %v, want ErrSecurity", err)
	}
	count, err := p.Update(ctx, KindChannel, sysCaller, map[string]any{"package_name": "com.else"}, QueryOptions{ID: id})
	if err != nil || count != 1 {
		t.Errorf("privileged reassign = (%d, %v), want (1, nil)", count, err)
	}
}

func TestBlockedPackageLosesPreviewAccess(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	if err := p.BlockPackage(ctx, plainCaller, plainCaller.Package); !errors.Is(err, ErrSecurity) {
		t.Fatalf("unprivileged block err = %v, want ErrSecurity", err)
	}
	if err := p.BlockPackage(ctx, sysCaller, plainCaller.Package); err != nil {
		t.Fatal(err)
	}

	_, err := p.Insert(ctx, KindWatchNext, plainCaller, map[string]any{"type": "TYPE_MOVIE", "title": "Film"})
	if !errors.Is(err, ErrSecurity) {
		t.Errorf("blocked watch-next insert err = %v, want ErrSecurity", err)
	}
	_, err = p.Insert(ctx, KindChannel, plainCaller, map[string]any{"type": store.ChannelTypePreview})
	if !errors.Is(err, ErrSecurity) {
		t.Errorf("blocked preview channel insert err = %v, want ErrSecurity", err)
	}

	// Regular broadcast channels are unaffected by the denylist.
	insertChannel(t, p, plainCaller, nil)

	if err := p.UnblockPackage(ctx, sysCaller, plainCaller.Package); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Insert(ctx, KindWatchNext, plainCaller, map[string]any{"type": "TYPE_MOVIE", "title": "Film"}); err != nil {
		t.Errorf("insert after unblock failed: %v", err)
	}
}

func TestPreviewChannelBackfillsInputID(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	id := insertChannel(t, p, plainCaller, map[string]any{"type": store.ChannelTypePreview})
	row, err := p.Get(ctx, KindChannel, plainCaller, id, nil)
	if err != nil {
		t.Fatal(err)
	}
	if row["input_id"] != "" {
		t.Errorf("input_id = %v, want empty string backfill", row["input_id"])
	}
}

func TestGenreConversionOnProgramWrites(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()
	ch := insertChannel(t, p, plainCaller, nil)

	// A bogus canonical genre is cleared, not rejected.
	id, err := p.Insert(ctx, KindProgram, plainCaller, map[string]any{
		"channel_id": ch, "title": "Show", "canonical_genre": "NOT_A_GENRE",
		"start_time_utc_millis": int64(0), "end_time_utc_millis": int64(100),
	})
	if err != nil {
		t.Fatal(err)
	}
	row, err := p.Get(ctx, KindProgram, plainCaller, id, nil)
	if err != nil {
		t.Fatal(err)
	}
	if row["canonical_genre"] != nil {
		t.Errorf("canonical_genre = %v, want NULL", row["canonical_genre"])
	}

	// A recognized broadcast genre maps to its canonical equivalent.
	id, err = p.Insert(ctx, KindProgram, plainCaller, map[string]any{
		"channel_id": ch, "title": "Kickoff", "broadcast_genre": "SPORTS",
		"start_time_utc_millis": int64(100), "end_time_utc_millis": int64(200),
	})
	if err != nil {
		t.Fatal(err)
	}
	row, err = p.Get(ctx, KindProgram, plainCaller, id, nil)
	if err != nil {
		t.Fatal(err)
	}
	if row["canonical_genre"] != models.GenreSports {
		t.Errorf("canonical_genre = %v, want %s", row["canonical_genre"], models.GenreSports)
	}
}

func TestProgramTimeRangeQuery(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()
	ch := insertChannel(t, p, plainCaller, nil)

	mk := func(title string, start, end int64) {
		t.Helper()
		_, err := p.Insert(ctx, KindProgram, plainCaller, map[string]any{
			"channel_id": ch, "title": title,
			"start_time_utc_millis": start, "end_time_utc_millis": end,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	mk("Early", 0, 100)
	mk("Overlap", 50, 150)
	mk("Late", 200, 300)

	from, to := int64(100), int64(180)
	rows, err := p.Query(ctx, KindProgram, plainCaller, QueryOptions{ChannelID: ch, StartTime: &from, EndTime: &to})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d programs, want the two touching [100,180]", len(rows))
	}
	// Default program ordering is by start time ascending.
	if rows[0]["title"] != "Early" || rows[1]["title"] != "Overlap" {
		t.Errorf("rows = %v, %v", rows[0]["title"], rows[1]["title"])
	}

	bad := int64(50)
	if _, err := p.Query(ctx, KindProgram, plainCaller, QueryOptions{StartTime: &from, EndTime: &bad}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("inverted range err = %v, want ErrInvalidArgument", err)
	}
}

func TestGenreFilterListsAiringChannels(t *testing.T) {
	p, _ := newTestProvider(t)
	p.clock = func() time.Time { return time.UnixMilli(1000) }
	ctx := context.Background()

	sports := insertChannel(t, p, plainCaller, nil)
	news := insertChannel(t, p, plainCaller, nil)
	mk := func(ch, genre string, start, end int64) {
		t.Helper()
		_, err := p.Insert(ctx, KindProgram, plainCaller, map[string]any{
			"channel_id": ch, "canonical_genre": genre,
			"start_time_utc_millis": start, "end_time_utc_millis": end,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	mk(sports, models.GenreSports, 500, 1500) // airing now
	mk(news, models.GenreNews, 500, 1500)
	mk(news, models.GenreSports, 2000, 3000) // later, must not match

	rows, err := p.Query(ctx, KindChannel, plainCaller, QueryOptions{CanonicalGenre: models.GenreSports, Columns: []string{"id"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0]["id"] != sports {
		t.Fatalf("rows = %v, want just the channel airing sports", rows)
	}

	if _, err := p.Query(ctx, KindChannel, plainCaller, QueryOptions{CanonicalGenre: "NOT_A_GENRE"}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bogus genre err = %v, want ErrInvalidArgument", err)
	}
	if _, err := p.Delete(ctx, KindChannel, sysCaller, QueryOptions{CanonicalGenre: models.GenreSports}); !errors.Is(err, ErrSecurity) {
		t.Errorf("genre-scoped delete err = %v, want ErrSecurity", err)
	}
}

func TestSortOrderValidation(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()
	insertChannel(t, p, plainCaller, nil)

	if _, err := p.Query(ctx, KindChannel, plainCaller, QueryOptions{Sort: "display_name DESC"}); err != nil {
		t.Errorf("known sort column rejected: %v", err)
	}
	if _, err := p.Query(ctx, KindChannel, plainCaller, QueryOptions{Sort: "bogus; --"}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument for an unknown sort field", err)
	}
}

func TestDeleteChannelCascades(t *testing.T) {
	p, s := newTestProvider(t)
	ctx := context.Background()
	ch := insertChannel(t, p, plainCaller, nil)
	if _, err := p.Insert(ctx, KindProgram, plainCaller, map[string]any{
		"channel_id": ch, "title": "Show",
		"start_time_utc_millis": int64(0), "end_time_utc_millis": int64(100),
	}); err != nil {
		t.Fatal(err)
	}

	count, err := p.Delete(ctx, KindChannel, plainCaller, QueryOptions{ID: ch})
	if err != nil || count != 1 {
		t.Fatalf("delete = (%d, %v)", count, err)
	}
	left, err := s.QueryRows(ctx, store.TablePrograms, []string{"id"}, "channel_id = ?", []any{ch}, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("%d orphaned programs survived the cascade", len(left))
	}
}

func TestBulkInsertIsAtomic(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	rows := []map[string]any{
		{"type": "TYPE_DVB_T", "display_name": "First"},
		{"display_name": "Second"}, // no type
	}
	ids, err := p.BulkInsert(ctx, KindChannel, plainCaller, rows)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument for the bad row", err)
	}
	if len(ids) != 0 {
		t.Fatalf("failed batch returned %d ids, want none", len(ids))
	}

	left, err := p.Query(ctx, KindChannel, sysCaller, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Fatalf("%d row(s) survived a failed batch, want a full rollback", len(left))
	}
}

type recordingTrigger struct {
	sweeps   []time.Duration
	sessions []string
}

func (r *recordingTrigger) TriggerSweepAfter(d time.Duration) { r.sweeps = append(r.sweeps, d) }
func (r *recordingTrigger) TriggerSession(token string, _ int64) {
	r.sessions = append(r.sessions, token)
}

func TestInsertWatchEventRouting(t *testing.T) {
	p, s := newTestProvider(t)
	trigger := &recordingTrigger{}
	p.SetTrigger(trigger)
	ctx := context.Background()
	ch := insertChannel(t, p, watcherCaller, nil)

	millis := func(v int64) *int64 { return &v }

	if _, err := p.InsertWatchEvent(ctx, plainCaller, models.WatchEvent{SessionToken: "s1", WatchStartTimeUTCMillis: millis(100)}); !errors.Is(err, ErrSecurity) {
		t.Fatalf("err = %v, want ErrSecurity without watch log access", err)
	}
	if _, err := p.InsertWatchEvent(ctx, watcherCaller, models.WatchEvent{WatchStartTimeUTCMillis: millis(100)}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("missing session token err = %v, want ErrInvalidArgument", err)
	}
	if _, err := p.InsertWatchEvent(ctx, watcherCaller, models.WatchEvent{SessionToken: "s1"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty event err = %v, want ErrInvalidArgument", err)
	}

	// An explicit epoch-zero start is a valid start event, not an
	// absent field.
	id, err := p.InsertWatchEvent(ctx, watcherCaller, models.WatchEvent{
		SessionToken: "s0", ChannelID: ch, WatchStartTimeUTCMillis: millis(0),
	})
	if err != nil {
		t.Fatalf("epoch-zero start err = %v, want a created row", err)
	}
	if id == "" {
		t.Error("epoch-zero start returned no row id")
	}

	id, err = p.InsertWatchEvent(ctx, watcherCaller, models.WatchEvent{
		SessionToken: "s1", ChannelID: ch, WatchStartTimeUTCMillis: millis(100),
	})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Error("start event returned no row id")
	}
	if len(trigger.sweeps) != 2 {
		t.Errorf("start events armed %d sweeps, want 2", len(trigger.sweeps))
	}

	open, err := s.UnconsolidatedBySession(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 1 || open[0].Package != watcherCaller.Package {
		t.Fatalf("open rows = %+v, want one owned by the event sender", open)
	}

	id, err = p.InsertWatchEvent(ctx, watcherCaller, models.WatchEvent{
		SessionToken: "s1", WatchEndTimeUTCMillis: millis(500),
	})
	if err != nil {
		t.Fatal(err)
	}
	if id != "" {
		t.Error("end event created a row")
	}
	if len(trigger.sessions) != 1 || trigger.sessions[0] != "s1" {
		t.Errorf("end event triggered sessions %v, want [s1]", trigger.sessions)
	}
}

func TestChannelLogoScoping(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()
	ch := insertChannel(t, p, plainCaller, map[string]any{"searchable": true})

	logo := []byte{0x89, 0x50, 0x4e, 0x47}
	if err := p.SetChannelLogo(ctx, plainCaller, ch, logo); err != nil {
		t.Fatal(err)
	}

	// Readers with the listing capability can fetch the logo but not
	// replace it.
	got, err := p.ChannelLogo(ctx, readerCaller, ch)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(logo) {
		t.Errorf("logo = %v", got)
	}
	if err := p.SetChannelLogo(ctx, readerCaller, ch, []byte{1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign logo write err = %v, want ErrNotFound", err)
	}

	if err := p.DeleteChannelLogo(ctx, plainCaller, ch); err != nil {
		t.Fatal(err)
	}
	if _, err := p.ChannelLogo(ctx, plainCaller, ch); !errors.Is(err, ErrNotFound) {
		t.Errorf("cleared logo err = %v, want ErrNotFound", err)
	}
}
