// Package storage provides the SQLite record store for ledger entries.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"financeiro/internal/core"
	"financeiro/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Repository = (*SQLiteRepository)(nil)

const entryColumns = `id, due_date, description, note, category, kind, amount_cents, status, barcode`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements store.Pinger
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// List returns every entry in insertion order.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []core.Entry{}
	for rows.Next() {
		var (
			e      core.Entry
			due    sql.NullString
			kind   string
			status string
			cents  int64
		)
		if err := rows.Scan(&e.ID, &due, &e.Description, &e.Note, &e.Category, &kind, &cents, &status, &e.Barcode); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if due.Valid {
			if e.DueDate, err = core.ParseDate(due.String); err != nil {
				return nil, fmt.Errorf("entry %s: %w", e.ID, err)
			}
		}
		e.Kind, e.Status, e.Amount = core.Kind(kind), core.Status(status), core.Cents(cents)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Insert stores entries in order within one transaction.
func (r *SQLiteRepository) Insert(ctx context.Context, entries ...core.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, nullDate(e.DueDate), e.Description, e.Note, e.Category,
			string(e.Kind), e.Amount.Cents, string(e.Status), e.Barcode); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}

	slog.InfoContext(ctx, "Entries saved to SQLite", "count", len(entries))
	return nil
}

// Update overwrites the entry with e's id.
func (r *SQLiteRepository) Update(ctx context.Context, e core.Entry) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries
		SET due_date = ?, description = ?, note = ?, category = ?, kind = ?,
		    amount_cents = ?, status = ?, barcode = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		nullDate(e.DueDate), e.Description, e.Note, e.Category, string(e.Kind),
		e.Amount.Cents, string(e.Status), e.Barcode, e.ID)
	if err != nil {
		return fmt.Errorf("update entry %s: %w", e.ID, err)
	}
	return expectOne(res, e.ID)
}

// Delete removes the entry with the given id.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("entry %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func nullDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
