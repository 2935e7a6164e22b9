// Package memory is a process-local record store, seedable from a CSV export.
package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"financeiro/internal/codec"
	"financeiro/internal/core"
	"financeiro/internal/store"
)

var _ store.Repository = (*Repository)(nil)

type Repository struct {
	mu      sync.RWMutex
	entries []core.Entry
}

func New(seed ...core.Entry) *Repository {
	return &Repository{entries: slices.Clone(seed)}
}

// NewFromFile seeds the repository from a CSV export at path. A missing
// file yields an empty repository.
func NewFromFile(path string) (*Repository, error) {
	if path == "" {
		return New(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	entries, err := codec.Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return New(entries...), nil
}

func (r *Repository) List(_ context.Context) ([]core.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.entries), nil
}

// Insert appends entries; a duplicate id rejects the whole call.
func (r *Repository) Insert(_ context.Context, entries ...core.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{}, len(r.entries)+len(entries))
	for _, e := range r.entries {
		seen[e.ID] = struct{}{}
	}
	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("insert entry %s: duplicate id", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *Repository) Update(_ context.Context, e core.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(e.ID)
	if i < 0 {
		return fmt.Errorf("entry %s: %w", e.ID, core.ErrNotFound)
	}
	r.entries[i] = e
	return nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("entry %s: %w", id, core.ErrNotFound)
	}
	r.entries = slices.Delete(r.entries, i, i+1)
	return nil
}

func (r *Repository) indexOf(id string) int {
	return slices.IndexFunc(r.entries, func(e core.Entry) bool { return e.ID == id })
}
