// Package postgres provides a pgx-backed record store for ledger entries.
// The schema is embedded and applied with golang-migrate on Open.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"financeiro/internal/core"
	"financeiro/internal/storage"
	"financeiro/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var _ store.Repository = (*Store)(nil)

const entryColumns = `id, due_date, description, note, category, kind, amount_cents, status, barcode`

// Store holds a pgx connection pool. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open migrates the schema and establishes a pgx pool using dsn.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if err := Migrate(dsn); err != nil {
		return nil, err
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Migrate applies the embedded migrations to the database at dsn.
func Migrate(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(dsn))
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()
	return storage.Up(m)
}

// migrateURL rewrites a postgres URL to the scheme the pgx/v5 migrate
// driver registers.
func migrateURL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "pgx5://" + strings.TrimPrefix(dsn, scheme)
		}
	}
	return dsn
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// List returns every entry in insertion order.
func (s *Store) List(ctx context.Context) ([]core.Entry, error) {
	rows, err := s.pool.Query(ctx, `select `+entryColumns+` from entries order by seq`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	out := make([]core.Entry, 0)
	for rows.Next() {
		var (
			e      core.Entry
			due    *time.Time
			kind   string
			status string
			cents  int64
		)
		if err := rows.Scan(&e.ID, &due, &e.Description, &e.Note, &e.Category, &kind, &cents, &status, &e.Barcode); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if due != nil {
			e.DueDate = core.DateOf(*due)
		}
		e.Kind, e.Status, e.Amount = core.Kind(kind), core.Status(status), core.Cents(cents)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Insert writes entries in order within one transaction.
func (s *Store) Insert(ctx context.Context, entries ...core.Entry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`insert into entries (`+entryColumns+`) values ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			e.ID, dateArg(e.DueDate), e.Description, e.Note, e.Category,
			string(e.Kind), e.Amount.Cents, string(e.Status), e.Barcode)
	}
	br := tx.SendBatch(ctx, batch)
	for _, e := range entries {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// Update overwrites the entry with e's id.
func (s *Store) Update(ctx context.Context, e core.Entry) error {
	tag, err := s.pool.Exec(ctx, `
        update entries
        set due_date = $2, description = $3, note = $4, category = $5, kind = $6,
            amount_cents = $7, status = $8, barcode = $9, updated_at = now()
        where id = $1
    `, e.ID, dateArg(e.DueDate), e.Description, e.Note, e.Category,
		string(e.Kind), e.Amount.Cents, string(e.Status), e.Barcode)
	if err != nil {
		return fmt.Errorf("update entry %s: %w", e.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entry %s: %w", e.ID, core.ErrNotFound)
	}
	return nil
}

// Delete removes the entry with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `delete from entries where id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entry %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// Truncate removes every entry.
func (s *Store) Truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `truncate table entries restart identity`)
	return err
}

func dateArg(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Time()
}
