// Package ctl implements the financeiro-ctl subcommands: offline template,
// validation, import, export and reports against the configured backend.
package ctl

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"financeiro/internal/backend"
	"financeiro/internal/log"
	"financeiro/internal/store"
)

// Env carries what the subcommands need from the outside world.
type Env struct {
	Out    io.Writer
	Err    io.Writer
	Logger *log.Logger
	Now    func() time.Time

	// Open creates the configured record store.
	Open func(ctx context.Context) (*backend.BackendResult, error)
}

// Register adds every subcommand to c.
func Register(c *subcommands.Commander, env *Env) {
	if env.Now == nil {
		env.Now = time.Now
	}
	if env.Logger == nil {
		env.Logger = log.Discard()
	}

	c.Register(&templateCmd{env: env}, "records")
	c.Register(&validateCmd{env: env}, "records")

	c.Register(&importCmd{env: env}, "store")
	c.Register(&exportCmd{env: env}, "store")

	c.Register(&summaryCmd{env: env}, "reports")
	c.Register(&monthsCmd{env: env}, "reports")
}

// openStore opens the backend and loads its entries. The returned func
// releases the backend.
func (e *Env) openStore(ctx context.Context) (*store.Store, func(), error) {
	res, err := e.Open(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open backend: %w", err)
	}
	release := func() {
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				e.Logger.Warn("Backend cleanup failed", log.FieldError, err)
			}
		}
	}
	st := store.New(res.Repository, store.WithLogger(e.Logger), store.WithClock(e.Now))
	if err := st.Load(ctx); err != nil {
		release()
		return nil, nil, err
	}
	return st, release, nil
}

func (e *Env) fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(e.Err, "Error:", err)
	return subcommands.ExitFailure
}

// printMarkdown renders md for the terminal, or writes it untouched when
// plain is set.
func (e *Env) printMarkdown(md string, plain bool) error {
	if plain {
		_, err := io.WriteString(e.Out, md)
		return err
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(e.Out, out)
	return err
}

func readFile(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}
