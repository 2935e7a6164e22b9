package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"financeiro/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "ledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleEntry(id, desc string, due core.Date, cents int64) core.Entry {
	return core.Entry{
		ID:          id,
		DueDate:     due,
		Description: desc,
		Note:        "nota, com vírgula",
		Category:    core.CategoryFixedCost,
		Kind:        core.KindExpense,
		Amount:      core.Cents(cents),
		Status:      core.StatusOpen,
	}
}

func TestSQLiteRepositoryInsertList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	want := []core.Entry{
		sampleEntry("b", "Luz", mustDate("2025-01-15"), 15000),
		sampleEntry("a", "Sem data", core.Date{}, 999),
	}
	if err := repo.Insert(ctx, want...); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := repo.Insert(ctx, sampleEntry("c", "Água", mustDate("2024-12-01"), 100)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for i, id := range []string{"b", "a", "c"} {
		if got[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
	if got[0] != want[0] {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got[0], want[0])
	}
	if !got[1].DueDate.IsZero() {
		t.Errorf("expected undated entry to stay undated, got %s", got[1].DueDate)
	}
}

func TestSQLiteRepositoryInsertIsAtomic(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.Insert(ctx,
		sampleEntry("x", "Primeiro", core.Date{}, 100),
		sampleEntry("x", "Duplicado", core.Date{}, 100),
	)
	if err == nil {
		t.Fatal("expected duplicate id to fail")
	}
	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected rollback, found %d entries", len(got))
	}
}

func TestSQLiteRepositoryUpdateDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := sampleEntry("e1", "Internet", mustDate("2025-02-10"), 9990)
	if err := repo.Insert(ctx, e); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	e.Status = core.StatusClosed
	e.DueDate = core.Date{}
	if err := repo.Update(ctx, e); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := repo.List(ctx)
	if got[0].Status != core.StatusClosed || !got[0].DueDate.IsZero() {
		t.Fatalf("update not persisted: %+v", got[0])
	}

	if err := repo.Update(ctx, sampleEntry("missing", "x", core.Date{}, 1)); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if err := repo.Delete(ctx, "e1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, "e1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSQLiteRepositoryReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.Insert(ctx, sampleEntry("p", "Persistido", core.Date{}, 1)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	got, err := repo.List(ctx)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected 1 entry after reopen, got %d (%v)", len(got), err)
	}
}

func mustDate(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
