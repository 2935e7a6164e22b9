package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"financeiro/internal/codec"
	"financeiro/internal/core"
)

func TestNewFromFileMissingIsEmpty(t *testing.T) {
	r, err := NewFromFile(filepath.Join(t.TempDir(), "absent.csv"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := r.List(context.Background())
	if len(got) != 0 {
		t.Fatalf("expected empty repository, got %d", len(got))
	}
}

func TestNewFromFileSeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.csv")
	if err := os.WriteFile(path, []byte(codec.TemplateText()), 0o600); err != nil {
		t.Fatal(err)
	}
	r, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	got, _ := r.List(context.Background())
	if len(got) != 1 || got[0].Description != "Example - Electricity Bill" || got[0].ID == "" {
		t.Fatalf("unexpected seed %+v", got)
	}
}

func TestNewFromFileRejectsBadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	os.WriteFile(path, []byte("header\n,2025-01-01,,n,FixedCost,Expense,1,Open,\n"), 0o600)
	if _, err := NewFromFile(path); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	r := New()
	a := core.Entry{ID: "a", Description: "Luz", Category: core.CategoryFixedCost, Kind: core.KindExpense, Amount: core.Cents(100), Status: core.StatusOpen}
	b := a
	b.ID = "b"

	if err := r.Insert(ctx, a, b); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := r.Insert(ctx, a); err == nil {
		t.Fatal("expected duplicate id to fail")
	}

	a.Status = core.StatusClosed
	if err := r.Update(ctx, a); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := r.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := r.Update(ctx, b); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, _ := r.List(ctx)
	if len(got) != 1 || got[0] != a {
		t.Fatalf("unexpected entries %+v", got)
	}
	got[0].Description = "mutated"
	again, _ := r.List(ctx)
	if again[0].Description != "Luz" {
		t.Fatal("List must return a copy")
	}
}
