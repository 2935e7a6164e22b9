// Package store holds the in-memory authoritative entry collection and keeps
// it in step with the remote record store.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"financeiro/internal/core"
	"financeiro/internal/log"
)

type (
	// Draft is the input for a new entry. Empty Kind and Status default to
	// Expense and Open.
	Draft struct {
		DueDate     core.Date
		Description string
		Note        string
		Category    string
		Kind        core.Kind
		Amount      core.Money
		Status      core.Status
		Barcode     string
	}

	// Patch changes the non-nil fields of an entry. ClearDueDate removes the
	// due date.
	Patch struct {
		DueDate      *core.Date
		ClearDueDate bool
		Description  *string
		Note         *string
		Category     *string
		Kind         *core.Kind
		Amount       *core.Money
		Status       *core.Status
		Barcode      *string
	}

	// Snapshot is an immutable view of the collection at a version.
	Snapshot struct {
		Entries []core.Entry
		Version uint64
	}

	Option func(*Store)
)

// Store serialises local bookkeeping; remote calls run outside the lock so
// mutations on different ids do not wait on each other.
type Store struct {
	repo   Repository
	pub    Publisher
	logger *log.Logger
	events *log.StructuredLogger
	newID  func() string
	now    func() time.Time

	mu      sync.RWMutex
	entries []core.Entry
	version uint64
}

func WithPublisher(p Publisher) Option { return func(s *Store) { s.pub = p } }

func WithLogger(l *log.Logger) Option { return func(s *Store) { s.logger = l } }

func WithIDGenerator(f func() string) Option { return func(s *Store) { s.newID = f } }

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// New returns an empty store backed by repo. Call Load to fetch the
// remote collection.
func New(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		newID:  uuid.NewString,
		now:    time.Now,
		logger: log.New(log.DefaultConfig()),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentStore)
	s.events = log.NewStructuredLogger(s.logger)
	return s
}

// Load replaces the local collection with the remote one.
func (s *Store) Load(ctx context.Context) error {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return core.Unavailable("list entries", err)
	}
	s.mu.Lock()
	s.entries = slices.Clone(entries)
	s.version++
	v := s.version
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Entries loaded", log.FieldCount, len(entries), log.FieldVersion, v)
	return nil
}

// List returns a copy of the collection in insertion order.
func (s *Store) List() []core.Entry {
	return s.Snapshot().Entries
}

// Snapshot returns a copy of the collection with its version.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Entry, len(s.entries))
	copy(out, s.entries)
	return Snapshot{Entries: out, Version: s.version}
}

// Version changes whenever the collection does.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (core.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.entries[i], nil
	}
	return core.Entry{}, fmt.Errorf("get %q: %w", id, core.ErrNotFound)
}

// Create validates draft, stores it remotely and appends it locally.
func (s *Store) Create(ctx context.Context, d Draft) (core.Entry, error) {
	e := d.Entry()
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	e.ID = s.newID()

	if err := s.repo.Insert(ctx, e); err != nil {
		return core.Entry{}, core.Unavailable("create entry", err)
	}

	s.mu.Lock()
	s.entries = append(s.entries, e)
	v := s.bump()
	s.mu.Unlock()

	s.committed(ctx, core.OpCreated, v, e)
	return e, nil
}

// Update applies p to the entry with the given id.
func (s *Store) Update(ctx context.Context, id string, p Patch) (core.Entry, error) {
	current, err := s.Get(id)
	if err != nil {
		return core.Entry{}, err
	}
	next := p.apply(current).Normalize()
	if err := next.Validate(); err != nil {
		return core.Entry{}, err
	}
	return s.replace(ctx, core.OpUpdated, next)
}

// ToggleStatus flips the entry between Open and Closed.
func (s *Store) ToggleStatus(ctx context.Context, id string) (core.Entry, error) {
	current, err := s.Get(id)
	if err != nil {
		return core.Entry{}, err
	}
	current.Status = current.Status.Toggle()
	return s.replace(ctx, core.OpStatusToggled, current)
}

func (s *Store) replace(ctx context.Context, op core.ChangeOp, e core.Entry) (core.Entry, error) {
	if err := s.repo.Update(ctx, e); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Entry{}, fmt.Errorf("update %q: %w", e.ID, core.ErrNotFound)
		}
		return core.Entry{}, core.Unavailable("update entry", err)
	}

	s.mu.Lock()
	if i := s.indexOf(e.ID); i >= 0 {
		s.entries[i] = e
	}
	v := s.bump()
	s.mu.Unlock()

	s.committed(ctx, op, v, e)
	return e, nil
}

// Delete removes the entry with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	current, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("delete %q: %w", id, core.ErrNotFound)
		}
		return core.Unavailable("delete entry", err)
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.entries = slices.Delete(s.entries, i, i+1)
	}
	v := s.bump()
	s.mu.Unlock()

	s.committed(ctx, core.OpDeleted, v, current)
	return nil
}

// ImportBatch appends every entry in order; nothing is merged by id. An
// entry whose id is empty, or already taken by the collection or an earlier
// entry of the batch, gets a fresh id. The batch is validated up front and
// written in one remote call, so it lands whole or not at all.
func (s *Store) ImportBatch(ctx context.Context, entries []core.Entry) ([]core.Entry, error) {
	if len(entries) == 0 {
		return []core.Entry{}, nil
	}
	normalized := make([]core.Entry, len(entries))
	for i, e := range entries {
		e = e.Normalize()
		normalized[i] = e
		if err := e.Validate(); err != nil {
			var ve *core.ValidationError
			if errors.As(err, &ve) {
				return nil, &core.ValidationError{Line: i + 2, Msg: ve.Msg}
			}
			return nil, err
		}
	}

	s.mu.RLock()
	taken := make(map[string]struct{}, len(s.entries)+len(entries))
	for _, e := range s.entries {
		taken[e.ID] = struct{}{}
	}
	s.mu.RUnlock()

	batch := make([]core.Entry, len(normalized))
	for i, e := range normalized {
		if _, dup := taken[e.ID]; e.ID == "" || dup {
			e.ID = s.newID()
		}
		taken[e.ID] = struct{}{}
		batch[i] = e
	}

	if err := s.repo.Insert(ctx, batch...); err != nil {
		return nil, core.Unavailable("import entries", err)
	}

	s.mu.Lock()
	s.entries = append(s.entries, batch...)
	v := s.bump()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Entries imported", log.FieldCount, len(batch), log.FieldVersion, v)
	s.publish(ctx, core.OpImported, v, ids(batch))
	return slices.Clone(batch), nil
}

// Ready reports whether the remote store answers.
func (s *Store) Ready(ctx context.Context) error {
	if p, ok := s.repo.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close closes the repository and publisher when they hold resources.
func (s *Store) Close() error {
	var errs []error
	if c, ok := s.repo.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("repository: %w", err))
		}
	}
	if c, ok := s.pub.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.entries, func(e core.Entry) bool { return e.ID == id })
}

// bump must be called with mu held.
func (s *Store) bump() uint64 {
	s.version++
	return s.version
}

func (s *Store) committed(ctx context.Context, op core.ChangeOp, version uint64, e core.Entry) {
	s.events.LogEntryChanged(ctx, string(op), e.ID, string(e.Kind), e.Category, e.Amount.Cents, version)
	s.publish(ctx, op, version, []string{e.ID})
}

// publish never fails the mutation; the change is already committed.
func (s *Store) publish(ctx context.Context, op core.ChangeOp, version uint64, ids []string) {
	if s.pub == nil {
		return
	}
	ev := core.ChangeEvent{Op: op, IDs: ids, Version: version, Timestamp: s.now()}
	if err := s.pub.PublishChange(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish change event",
			log.FieldOperation, string(op),
			log.FieldVersion, version,
			log.FieldError, err)
	}
}

// Entry returns the entry d describes, normalized and with defaults applied.
// The id is left empty.
func (d Draft) Entry() core.Entry {
	e := core.Entry{
		DueDate:     d.DueDate,
		Description: d.Description,
		Note:        d.Note,
		Category:    d.Category,
		Kind:        d.Kind,
		Amount:      d.Amount,
		Status:      d.Status,
		Barcode:     d.Barcode,
	}.Normalize()
	if e.Kind == "" {
		e.Kind = core.KindExpense
	}
	if e.Status == "" {
		e.Status = core.StatusOpen
	}
	return e
}

func (p Patch) apply(e core.Entry) core.Entry {
	if p.ClearDueDate {
		e.DueDate = core.Date{}
	}
	if p.DueDate != nil {
		e.DueDate = *p.DueDate
	}
	if p.Description != nil {
		e.Description = strings.TrimSpace(*p.Description)
	}
	if p.Note != nil {
		e.Note = *p.Note
	}
	if p.Category != nil {
		e.Category = strings.TrimSpace(*p.Category)
	}
	if p.Kind != nil {
		e.Kind = *p.Kind
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Barcode != nil {
		e.Barcode = strings.TrimSpace(*p.Barcode)
	}
	return e
}

func ids(entries []core.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
