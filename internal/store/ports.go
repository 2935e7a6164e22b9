package store

import (
	"context"

	"financeiro/internal/core"
)

// Ports for the remote collaborators of the entry store.
type (
	// Repository is the remote record store holding the entries collection.
	// List returns entries in insertion order. Update and Delete return
	// core.ErrNotFound for an unknown id.
	Repository interface {
		List(ctx context.Context) ([]core.Entry, error)
		Insert(ctx context.Context, entries ...core.Entry) error
		Update(ctx context.Context, e core.Entry) error
		Delete(ctx context.Context, id string) error
	}

	// Publisher announces committed changes.
	Publisher interface {
		PublishChange(ctx context.Context, ev core.ChangeEvent) error
	}

	// Pinger is implemented by repositories that can report readiness.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
