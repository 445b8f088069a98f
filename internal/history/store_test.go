package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"captiontrans/internal/history"
)

func openStore(t *testing.T) (*history.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	rec, err := store.Record(ctx, history.Record{
		Filename:  "clip.mp3",
		SizeBytes: 2048,
		Mode:      "translate",
		Format:    "srt",
		Backend:   "openai",
		Cues:      3,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp, got %+v", rec)
	}
	if rec.Outcome != history.OutcomeSuccess || !rec.Succeeded() {
		t.Fatalf("expected success outcome, got %q", rec.Outcome)
	}

	failed, err := store.Record(ctx, history.Record{Filename: "notes.txt", Mode: "transcribe", ErrorCode: "invalid_input"})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if failed.Outcome != history.OutcomeFailure {
		t.Fatalf("expected failure outcome when error code set, got %q", failed.Outcome)
	}
}

func TestRecentOrdersNewestFirstAndLimits(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"a.mp3", "b.mp3", "c.mp3"} {
		if _, err := store.Record(ctx, history.Record{
			Filename:   name,
			Mode:       "transcribe",
			CreatedAt:  base.Add(time.Duration(i) * 1500 * time.Millisecond),
			DurationMS: int64(100 * (i + 1)),
		}); err != nil {
			t.Fatalf("Record %s failed: %v", name, err)
		}
	}

	records, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Filename != "c.mp3" || records[1].Filename != "b.mp3" {
		t.Fatalf("unexpected order: %s, %s", records[0].Filename, records[1].Filename)
	}
	if !records[1].CreatedAt.Equal(base.Add(1500 * time.Millisecond)) {
		t.Fatalf("timestamp did not round-trip: %v", records[1].CreatedAt)
	}
	if records[0].Duration() != 300*time.Millisecond {
		t.Fatalf("unexpected duration %v", records[0].Duration())
	}

	all, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected default limit to return all 3 records, got %d", len(all))
	}
}

func TestPruneRemovesOldRecords(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, age := range []time.Duration{40 * 24 * time.Hour, 31 * 24 * time.Hour, time.Hour} {
		if _, err := store.Record(ctx, history.Record{Mode: "transcribe", CreatedAt: now.Add(-age)}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	removed, err := store.Prune(ctx, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 records pruned, got %d", removed)
	}
	remaining, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 remaining record, got %d", len(remaining))
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	store, path := openStore(t)
	if _, err := store.Record(context.Background(), history.Record{Mode: "translate"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	records, err := reopened.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected record to persist, got %d", len(records))
	}
}

func TestOpenStampsUserVersion(t *testing.T) {
	store, path := openStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	_ = db.Close()
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_ = reopened.Close()
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	store, path := openStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := history.Open(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := history.Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
