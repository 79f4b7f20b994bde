package history

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/unkn0wn-root/loxterm/internal/lox"
)

func openStore(t *testing.T, max int) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"), max)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestStoreRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, 10)

	t1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(2 * time.Minute)

	if _, err := store.Append(ctx, Entry{ID: "1", StartedAt: t1, Source: "a.lox"}); err != nil {
		t.Fatalf("append entry 1: %v", err)
	}
	if _, err := store.Append(ctx, Entry{ID: "2", StartedAt: t2, Source: "a.lox"}); err != nil {
		t.Fatalf("append entry 2: %v", err)
	}
	if _, err := store.Append(ctx, Entry{ID: "3", StartedAt: t1, Source: "b.lox"}); err != nil {
		t.Fatalf("append entry 3: %v", err)
	}

	got, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].ID != "2" || got[1].ID != "3" || got[2].ID != "1" {
		t.Fatalf("expected newest-first order, got %q %q %q", got[0].ID, got[1].ID, got[2].ID)
	}
	if !got[0].StartedAt.Equal(t2) {
		t.Fatalf("expected start time to round-trip, got %v", got[0].StartedAt)
	}

	top, err := store.Recent(ctx, 1)
	if err != nil || len(top) != 1 || top[0].ID != "2" {
		t.Fatalf("expected only the newest entry, got %+v (%v)", top, err)
	}
}

func TestStoreAssignsIDAndCaps(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, 10)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		e, err := store.Append(ctx, Entry{StartedAt: base.Add(time.Duration(i) * time.Second)})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if e.ID == "" {
			t.Fatalf("expected an ID to be assigned")
		}
	}

	got, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("expected the store to keep 10 entries, got %d", len(got))
	}
	if !got[9].StartedAt.Equal(base.Add(5 * time.Second)) {
		t.Fatalf("expected the oldest entries to be pruned, oldest kept %v", got[9].StartedAt)
	}

	removed, err := store.Prune(ctx, 4)
	if err != nil || removed != 6 {
		t.Fatalf("expected 6 entries pruned, got %d (%v)", removed, err)
	}
}

func TestStoreAppendRollsBackWhenTrimFails(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, 2)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := range 2 {
		if _, err := store.Append(ctx, Entry{StartedAt: base.Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if _, err := store.db.Exec(`
		CREATE TRIGGER keep_runs BEFORE DELETE ON runs
		BEGIN SELECT RAISE(ABORT, 'runs are read only'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	_, err := store.Append(ctx, Entry{ID: "third", StartedAt: base.Add(time.Minute)})
	if err == nil || !strings.Contains(err.Error(), "prune history") {
		t.Fatalf("expected the trim to fail, got %v", err)
	}
	got, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected the failed append to leave 2 rows, got %d", len(got))
	}
	for _, e := range got {
		if e.ID == "third" {
			t.Fatalf("a failed append must not keep its row")
		}
	}
}

func TestStoreClose(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, 10)

	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := store.Recent(ctx, 1); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, err := store.Append(ctx, Entry{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed on append, got %v", err)
	}
}

func TestStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path, 10)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.Append(ctx, Entry{ID: "keep", Mode: "file"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err = Open(path, 10)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	got, err := store.Recent(ctx, 0)
	if err != nil || len(got) != 1 || got[0].ID != "keep" || got[0].Mode != "file" {
		t.Fatalf("expected the entry to survive reopening, got %+v (%v)", got, err)
	}
}

func TestNewEntryStripsStyling(t *testing.T) {
	res := lox.Result{
		Stmts:   2,
		Runtime: 1,
		Diags: []lox.Diagnostic{{
			Kind: lox.InterpreterError,
			Span: lox.At(lox.Pos{Line: 3, Col: 7}),
			Msg:  "\x1b[31mUndefined variable 'x'\x1b[0m",
		}},
	}
	e := NewEntry("demo.lox", "file", time.Now(), 3*time.Millisecond, res)
	if e.FirstDiag != "3:7 Undefined variable 'x'" {
		t.Fatalf("unexpected first diagnostic %q", e.FirstDiag)
	}
	if e.Status() != "runtime error" {
		t.Fatalf("unexpected status %q", e.Status())
	}
	line := e.Line()
	if !strings.Contains(line, "demo.lox") || !strings.Contains(line, "runtime error") {
		t.Fatalf("unexpected listing line %q", line)
	}
}
