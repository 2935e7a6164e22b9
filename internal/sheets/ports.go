package sheets

import (
	"context"

	"financeiro/internal/core"
)

// Mirror replaces the contents of an external copy of the collection.
type Mirror interface {
	Mirror(ctx context.Context, entries []core.Entry) error
}
