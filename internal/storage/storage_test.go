package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lotas/tabdedupe/internal/types"
)

// testDB creates a temporary database for testing.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenDB(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "tabdedupe.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file not found: %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != len(migrations) {
		t.Errorf("applied %d migrations, want %d", n, len(migrations))
	}
}

func TestOpenDB_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "again.db")
	for i := 0; i < 2; i++ {
		db, err := OpenDB(dbPath)
		if err != nil {
			t.Fatalf("OpenDB #%d: %v", i+1, err)
		}
		db.Close()
	}

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	var rows int
	db.QueryRow("SELECT COUNT(*) FROM review_state").Scan(&rows)
	if rows != 1 {
		t.Errorf("review_state rows = %d, want 1", rows)
	}
}

func TestPreferencesDefaults(t *testing.T) {
	db := testDB(t)
	prefs, err := LoadPreferences(db)
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if prefs != types.DefaultPreferences() {
		t.Errorf("got %+v, want defaults", prefs)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	db := testDB(t)
	want := types.Preferences{MatchMode: types.MatchHostPathQuery, ViewMode: types.ViewAll, WindowOverviewExpanded: false}
	if err := SavePreferences(db, want); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}
	got, err := LoadPreferences(db)
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	want.MatchMode = types.MatchHostPath
	if err := SavePreferences(db, want); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, _ = LoadPreferences(db)
	if got.MatchMode != types.MatchHostPath {
		t.Errorf("match mode = %s after overwrite", got.MatchMode)
	}
}

func TestPreferencesInvalidStoredValues(t *testing.T) {
	db := testDB(t)
	_, err := db.Exec(`INSERT INTO preferences (key, value) VALUES
		('matchMode', 'fuzzy'), ('viewMode', 'all'), ('windowOverviewExpanded', 'maybe')`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := LoadPreferences(db)
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	want := types.Preferences{MatchMode: types.MatchHost, ViewMode: types.ViewAll, WindowOverviewExpanded: true}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSavePreferencesRejectsInvalid(t *testing.T) {
	db := testDB(t)
	if err := SavePreferences(db, types.Preferences{MatchMode: "nope", ViewMode: types.ViewAll}); err == nil {
		t.Error("expected error for unknown match mode")
	}
}

func TestReviewStateRoundTrip(t *testing.T) {
	db := testDB(t)

	st, err := LoadReviewState(db)
	if err != nil {
		t.Fatalf("LoadReviewState: %v", err)
	}
	if st != (types.ReviewState{}) {
		t.Errorf("fresh state = %+v, want zero", st)
	}

	when := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	want := types.ReviewState{SuccessfulActions: 6, LastPromptAt: when, Dismissed: true}
	if err := SaveReviewState(db, want); err != nil {
		t.Fatalf("SaveReviewState: %v", err)
	}
	got, err := LoadReviewState(db)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.SuccessfulActions != 6 || !got.Dismissed || got.Given || got.Disabled {
		t.Errorf("got %+v", got)
	}
	if !got.LastPromptAt.Equal(when) {
		t.Errorf("last prompt = %v, want %v", got.LastPromptAt, when)
	}
}

func TestActionLog(t *testing.T) {
	db := testDB(t)

	if err := RecordAction(db, types.Outcome{Operation: types.OpKeepFirst, NoOp: true}, 0); err != nil {
		t.Fatalf("record no-op: %v", err)
	}
	if err := RecordAction(db, types.Outcome{Operation: types.OpKeepFirst, Closed: []int{2, 3}}, 0); err != nil {
		t.Fatalf("record keep-first: %v", err)
	}
	out := types.Outcome{Operation: types.OpConsolidateGroup, Moved: []int{4}, Failed: map[int]string{5: "gone"}}
	if err := RecordAction(db, out, 11); err != nil {
		t.Fatalf("record consolidate: %v", err)
	}

	got, err := ListActions(db, 10)
	if err != nil {
		t.Fatalf("ListActions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d actions, want 2 (no-op skipped)", len(got))
	}
	if got[0].Operation != types.OpConsolidateGroup || got[0].Moved != 1 || got[0].Failed != 1 || got[0].Destination != 11 {
		t.Errorf("latest = %+v", got[0])
	}
	if got[1].Operation != types.OpKeepFirst || got[1].Closed != 2 || got[1].Destination != 0 {
		t.Errorf("first = %+v", got[1])
	}

	if got, _ := ListActions(db, 1); len(got) != 1 {
		t.Errorf("limit 1 returned %d rows", len(got))
	}
}
