package catalog

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/enrollmap/enrollmap/dbopen"
)

func TestRegisterAndLatest(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	ctx := context.Background()

	id, err := Register(ctx, db, Entry{
		Period: "2026-07", Kind: "current", Path: "data/processed/enrollment-current.json",
		TotalEnrollment: 1000, RecordCount: 50, CountyCount: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("empty snapshot id")
	}
	// Back-date the first row; created_at has second precision and both
	// registrations land within the same second.
	if _, err := db.Exec("UPDATE snapshots SET created_at = created_at - 60 WHERE snapshot_id = ?", id); err != nil {
		t.Fatal(err)
	}

	// A later registration of the same kind supersedes the first.
	if _, err := Register(ctx, db, Entry{
		ID: "snap_explicit", Period: "2026-08", Kind: "current",
		Path: "data/processed/enrollment-current.json", TotalEnrollment: 1100,
	}); err != nil {
		t.Fatal(err)
	}

	got, err := Latest(ctx, db, "current")
	if err != nil {
		t.Fatal(err)
	}
	if got.Period != "2026-08" || got.ID != "snap_explicit" {
		t.Fatalf("latest: %+v", got)
	}
	if got.TotalEnrollment != 1100 {
		t.Fatalf("total: %d", got.TotalEnrollment)
	}
}

func TestLatestNoRows(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	_, err := Latest(context.Background(), db, "december")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("got %v, want sql.ErrNoRows", err)
	}
}

func TestRegisterRejectsUnknownKind(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	_, err := Register(context.Background(), db, Entry{Period: "2026-08", Kind: "bogus", Path: "x"})
	if err == nil {
		t.Fatal("expected CHECK constraint failure")
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	ctx := context.Background()

	// created_at has second precision; force distinct ordering via the
	// snapshot_id tiebreak by registering in id order.
	for _, id := range []string{"snap_a", "snap_b", "snap_c"} {
		if _, err := Register(ctx, db, Entry{ID: id, Period: "2026-08", Kind: "changes", Path: id + ".json"}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := History(ctx, db, "changes", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("limit: got %d entries", len(got))
	}
	if got[0].ID != "snap_a" || got[1].ID != "snap_b" {
		t.Fatalf("order: %+v", got)
	}
}

func TestWatcherFiresOnRegistration(t *testing.T) {
	// data_version only moves when another connection commits, so the
	// watcher and the writer need separate handles on a shared file.
	path := filepath.Join(t.TempDir(), "catalog.db")
	watchDB, err := dbopen.Open(path, dbopen.WithSchema(Schema))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { watchDB.Close() })
	writeDB, err := dbopen.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { writeDB.Close() })

	var reloads atomic.Int32
	w := NewWatcher(watchDB, WatcherOptions{
		Interval: 10 * time.Millisecond,
		Debounce: 20 * time.Millisecond,
		Logger:   slog.New(slog.DiscardHandler),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, func() error {
			reloads.Add(1)
			return nil
		})
	}()

	// Let the watcher take its initial version reading before writing.
	time.Sleep(50 * time.Millisecond)
	if _, err := Register(context.Background(), writeDB, Entry{
		Period: "2026-08", Kind: "current", Path: "current.json",
	}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for reloads.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("watcher never fired")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	<-done
}
