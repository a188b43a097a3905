// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package store

import (
	"context"
	"testing"

	"github.com/gridwatch/gridwatch/internal/models"
)

func insertTestWatchEvent(t *testing.T, s *Store, session, channelID string, start int64) string {
	t.Helper()
	e := &models.WatchedEntry{
		Package:                 "com.example.tuner",
		WatchStartTimeUTCMillis: start,
		ChannelID:               channelID,
		SessionToken:            session,
	}
	if err := s.InsertWatchEvent(context.Background(), e); err != nil {
		t.Fatalf("InsertWatchEvent: %v", err)
	}
	return e.ID
}

func TestUnconsolidatedOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ch := insertTestChannel(t, s, "com.example.tuner", true)

	insertTestWatchEvent(t, s, "session-a", ch, 100)
	insertTestWatchEvent(t, s, "session-a", ch, 300)
	insertTestWatchEvent(t, s, "session-a", ch, 200)

	rows, err := s.UnconsolidatedBySession(ctx, "session-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	want := []int64{300, 200, 100}
	for i, w := range want {
		if rows[i].WatchStartTimeUTCMillis != w {
			t.Errorf("row %d start = %d, want %d", i, rows[i].WatchStartTimeUTCMillis, w)
		}
	}
}

func TestAllUnconsolidatedGroupsBySession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ch := insertTestChannel(t, s, "com.example.tuner", true)

	insertTestWatchEvent(t, s, "session-a", ch, 100)
	insertTestWatchEvent(t, s, "session-b", ch, 50)
	insertTestWatchEvent(t, s, "session-b", ch, 150)

	rows, err := s.AllUnconsolidated(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	// session_token DESC, then watch start DESC within a session.
	if rows[0].SessionToken != "session-b" || rows[0].WatchStartTimeUTCMillis != 150 {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].SessionToken != "session-b" || rows[1].WatchStartTimeUTCMillis != 50 {
		t.Errorf("row 1 = %+v", rows[1])
	}
	if rows[2].SessionToken != "session-a" {
		t.Errorf("row 2 = %+v", rows[2])
	}
}

func TestProgramAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ch := insertTestChannel(t, s, "com.example.tuner", true)
	insertTestProgram(t, s, ch, 1000, 2000, "Evening News")

	snap, err := s.ProgramAt(ctx, ch, 1500)
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Found || snap.Title != "Evening News" || snap.EndTimeUTCMillis != 2000 {
		t.Errorf("snap = %+v", snap)
	}

	// End of the interval is exclusive.
	snap, err = s.ProgramAt(ctx, ch, 2000)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Found {
		t.Errorf("program found at exclusive end: %+v", snap)
	}

	// Start is inclusive.
	snap, err = s.ProgramAt(ctx, ch, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Found {
		t.Error("program not found at inclusive start")
	}
}

func TestFinalizeAndDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ch := insertTestChannel(t, s, "com.example.tuner", true)
	id := insertTestWatchEvent(t, s, "session-a", ch, 100)

	snap := ProgramSnapshot{Found: true, Title: "Evening News", StartTimeUTCMillis: 50, EndTimeUTCMillis: 150, Description: "headlines"}
	if err := s.FinalizeWatchedRow(ctx, id, 100, 150, snap); err != nil {
		t.Fatalf("FinalizeWatchedRow: %v", err)
	}

	rows, err := s.QueryRows(ctx, TableWatchedPrograms,
		[]string{"consolidated", "watch_end_time_utc_millis", "title"}, "id = ?", []any{id}, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0]["consolidated"] != true {
		t.Error("row not consolidated")
	}
	if rows[0]["watch_end_time_utc_millis"] != int64(150) {
		t.Errorf("watch end = %v", rows[0]["watch_end_time_utc_millis"])
	}
	if rows[0]["title"] != "Evening News" {
		t.Errorf("title = %v", rows[0]["title"])
	}

	newID, err := s.DuplicateWatchedRow(ctx, id, 150)
	if err != nil {
		t.Fatalf("DuplicateWatchedRow: %v", err)
	}
	dup, err := s.UnconsolidatedBySession(ctx, "session-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(dup) != 1 || dup[0].ID != newID || dup[0].WatchStartTimeUTCMillis != 150 {
		t.Errorf("duplicated rows = %+v", dup)
	}
	if dup[0].ChannelID != ch || dup[0].Package != "com.example.tuner" {
		t.Errorf("duplicate lost identity: %+v", dup[0])
	}

	if _, err := s.DuplicateWatchedRow(ctx, "no-such-row", 0); err == nil {
		t.Error("duplicating a missing row should fail")
	}
}

func TestDeleteConsolidatedUnsearchable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	hidden := insertTestChannel(t, s, "com.example.tuner", false)
	visible := insertTestChannel(t, s, "com.example.tuner", true)

	hiddenDone := insertTestWatchEvent(t, s, "s1", hidden, 100)
	hiddenOpen := insertTestWatchEvent(t, s, "s1", hidden, 200)
	visibleDone := insertTestWatchEvent(t, s, "s2", visible, 100)

	snap := ProgramSnapshot{}
	if err := s.FinalizeWatchedRow(ctx, hiddenDone, 100, 150, snap); err != nil {
		t.Fatal(err)
	}
	if err := s.FinalizeWatchedRow(ctx, visibleDone, 100, 150, snap); err != nil {
		t.Fatal(err)
	}

	n, err := s.DeleteConsolidatedUnsearchable(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("deleted %d rows, want 1", n)
	}

	// The open row on the unsearchable channel survives.
	rows, err := s.UnconsolidatedBySession(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != hiddenOpen {
		t.Errorf("open row lost: %+v", rows)
	}
}

func TestPurgeUnconsolidated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ch := insertTestChannel(t, s, "com.example.tuner", true)

	done := insertTestWatchEvent(t, s, "s1", ch, 100)
	insertTestWatchEvent(t, s, "s1", ch, 200)
	if err := s.FinalizeWatchedRow(ctx, done, 100, 150, ProgramSnapshot{}); err != nil {
		t.Fatal(err)
	}

	n, err := s.PurgeUnconsolidated(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("purged %d rows, want 1", n)
	}
}

func TestEarliestFutureProgramEnd(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ch := insertTestChannel(t, s, "com.example.tuner", true)
	ch2 := insertTestChannel(t, s, "com.example.tuner", true)

	insertTestProgram(t, s, ch, 0, 500, "Early Show")
	insertTestProgram(t, s, ch2, 0, 300, "Earlier Show")

	insertTestWatchEvent(t, s, "s1", ch, 100)
	insertTestWatchEvent(t, s, "s2", ch2, 100)

	end, ok, err := s.EarliestFutureProgramEnd(ctx, 200)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || end != 300 {
		t.Errorf("next end = %d, %v; want 300, true", end, ok)
	}

	// Ends in the past are ignored.
	end, ok, err = s.EarliestFutureProgramEnd(ctx, 400)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || end != 500 {
		t.Errorf("next end = %d, %v; want 500, true", end, ok)
	}

	_, ok, err = s.EarliestFutureProgramEnd(ctx, 600)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected no future program end")
	}
}
