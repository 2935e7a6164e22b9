package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"financeiro/internal/core"
	"financeiro/internal/log"
)

func TestRows(t *testing.T) {
	entries := []core.Entry{{
		ID: "e1", DueDate: mustDate("2025-01-15"), Description: "Luz", Note: "a, b",
		Category: core.CategoryFixedCost, Kind: core.KindExpense, Amount: core.Cents(15000), Status: core.StatusOpen,
	}}
	rows := Rows(entries)
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[0][8] != "barcode" {
		t.Errorf("unexpected header %v", rows[0])
	}
	want := []any{"e1", "2025-01-15", "Luz", "a, b", "FixedCost", "Expense", "150.00", "Open", ""}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("column %d = %v, want %v", i, rows[1][i], v)
		}
	}
}

func TestRowsEmptyCollection(t *testing.T) {
	if rows := Rows(nil); len(rows) != 1 {
		t.Fatalf("expected only the header, got %d rows", len(rows))
	}
}

func TestQuoteSheet(t *testing.T) {
	cases := map[string]string{
		"Entries":       "'Entries'",
		"Contas 2025":   "'Contas 2025'",
		"Joana's bills": "'Joana''s bills'",
	}
	for in, want := range cases {
		if got := quoteSheet(in); got != want {
			t.Errorf("quoteSheet(%q) = %q, want %q", in, got, want)
		}
	}
	if lastColumn() != "I" {
		t.Errorf("lastColumn() = %q, want I", lastColumn())
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), Config{SpreadsheetID: "s"}, log.Discard())
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
	if _, err := NewClient(context.Background(), Config{}, log.Discard()); err == nil {
		t.Fatal("expected missing spreadsheet id error")
	}
}

func TestMirrorClearsThenWrites(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
		body  gsheet.ValueRange
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":clear"):
			calls = append(calls, "clear")
		case r.Method == http.MethodPut:
			calls = append(calls, "update")
			b, _ := io.ReadAll(r.Body)
			json.Unmarshal(b, &body)
			if r.URL.Query().Get("valueInputOption") != "RAW" {
				t.Errorf("expected RAW input, got %q", r.URL.RawQuery)
			}
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	c := NewWithService(svc, Config{SpreadsheetID: "sheet-1", SheetName: "Entries"}, log.Discard())

	entries := []core.Entry{
		{ID: "a", Description: "Salário", Category: core.CategoryIncome, Kind: core.KindIncome, Amount: core.Cents(500000), Status: core.StatusClosed},
		{ID: "b", Description: "Luz", Category: core.CategoryFixedCost, Kind: core.KindExpense, Amount: core.Cents(15000), Status: core.StatusOpen},
	}
	if err := c.Mirror(context.Background(), entries); err != nil {
		t.Fatalf("Mirror: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if strings.Join(calls, ",") != "clear,update" {
		t.Fatalf("expected clear then update, got %v", calls)
	}
	if len(body.Values) != 3 || body.Values[2][0] != "b" {
		t.Fatalf("unexpected written values %v", body.Values)
	}
}

func mustDate(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
