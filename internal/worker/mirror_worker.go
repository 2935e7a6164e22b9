// Package worker keeps the spreadsheet mirror in step with the record store.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"financeiro/internal/core"
	"financeiro/internal/log"
	"financeiro/internal/sheets"
)

var mirrorRuns = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "financeiro_mirror_runs_total",
		Help: "Sheet mirror runs by trigger and result",
	},
	[]string{"trigger", "result"},
)

// Lister is the read side of the record store.
type Lister interface {
	List(ctx context.Context) ([]core.Entry, error)
}

// MirrorWorker rewrites the mirror from a fresh read of the record store.
// Runs are serialised so an event and the periodic sync never interleave.
type MirrorWorker struct {
	repo   Lister
	mirror sheets.Mirror
	logger *log.Logger

	mu sync.Mutex
}

func NewMirrorWorker(repo Lister, mirror sheets.Mirror, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &MirrorWorker{
		repo:   repo,
		mirror: mirror,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleChange processes a single change event from AMQP. The event only
// signals that the collection moved; the whole collection is reloaded.
func (w *MirrorWorker) HandleChange(ctx context.Context, ev core.ChangeEvent) error {
	w.logger.InfoContext(ctx, "Processing change event",
		log.FieldOperation, string(ev.Op),
		log.FieldVersion, ev.Version,
		log.FieldCount, len(ev.IDs))
	return w.sync(ctx, "event")
}

// FullSync mirrors the collection regardless of pending events.
func (w *MirrorWorker) FullSync(ctx context.Context) error {
	return w.sync(ctx, "periodic")
}

// Run calls FullSync immediately and then every interval until ctx is done.
// Failures are logged and retried on the next tick.
func (w *MirrorWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := w.FullSync(ctx); err != nil && ctx.Err() == nil {
			w.logger.ErrorContext(ctx, "Periodic mirror failed", log.FieldError, err)
		}
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Mirror worker stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *MirrorWorker) sync(ctx context.Context, trigger string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	entries, err := w.repo.List(ctx)
	if err != nil {
		mirrorRuns.WithLabelValues(trigger, "error").Inc()
		return core.Unavailable("list entries", err)
	}
	if err := w.mirror.Mirror(ctx, entries); err != nil {
		mirrorRuns.WithLabelValues(trigger, "error").Inc()
		return fmt.Errorf("mirror %d entries: %w", len(entries), err)
	}
	mirrorRuns.WithLabelValues(trigger, "ok").Inc()

	w.logger.InfoContext(ctx, "Mirror complete",
		log.FieldOperation, log.OpMirror,
		log.FieldCount, len(entries),
		log.FieldDuration, time.Since(start).Milliseconds(),
		"trigger", trigger)
	return nil
}
