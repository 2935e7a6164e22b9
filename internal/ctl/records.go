package ctl

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"financeiro/internal/codec"
)

type templateCmd struct{ env *Env }

func (*templateCmd) Name() string     { return "template" }
func (*templateCmd) Synopsis() string { return "print an example import file" }
func (*templateCmd) Usage() string {
	return `financeiro-ctl template > entries.csv

  Prints the header line and one example record in the import format.
`
}
func (*templateCmd) SetFlags(*flag.FlagSet) {}

func (c *templateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Fprint(c.env.Out, codec.TemplateText())
	return subcommands.ExitSuccess
}

type validateCmd struct{ env *Env }

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "check an import file without storing it" }
func (*validateCmd) Usage() string {
	return `financeiro-ctl validate <file>

  Decodes the file as an import would and reports the first bad record.
  Use - to read standard input.
`
}
func (*validateCmd) SetFlags(*flag.FlagSet) {}

func (c *validateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(c.env.Err, c.Usage())
		return subcommands.ExitUsageError
	}
	text, err := readFile(f.Arg(0))
	if err != nil {
		return c.env.fail(err)
	}
	entries, err := codec.Decode(text)
	if err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintf(c.env.Out, "%s: %d valid records\n", f.Arg(0), len(entries))
	return subcommands.ExitSuccess
}

type importCmd struct{ env *Env }

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "append the records of a file to the store" }
func (*importCmd) Usage() string {
	return `financeiro-ctl import <file>

  Appends every record of the file to the configured backend. Nothing is
  stored when any record is invalid. Records whose id is empty or already
  taken get a fresh id.
`
}
func (*importCmd) SetFlags(*flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(c.env.Err, c.Usage())
		return subcommands.ExitUsageError
	}
	text, err := readFile(f.Arg(0))
	if err != nil {
		return c.env.fail(err)
	}
	entries, err := codec.Decode(text)
	if err != nil {
		return c.env.fail(err)
	}

	st, release, err := c.env.openStore(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	defer release()

	added, err := st.ImportBatch(ctx, entries)
	if err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintf(c.env.Out, "imported %d entries\n", len(added))
	return subcommands.ExitSuccess
}

type exportCmd struct {
	env    *Env
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write every entry in the import format" }
func (*exportCmd) Usage() string {
	return `financeiro-ctl export [-o <file>]

  Writes the whole collection. Without -o the text goes to standard output.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file. Use -o auto for the dated default name.")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, release, err := c.env.openStore(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	defer release()

	text := codec.Encode(st.List())
	switch c.output {
	case "":
		fmt.Fprint(c.env.Out, text)
		return subcommands.ExitSuccess
	case "auto":
		c.output = codec.FileName(c.env.Now())
	}
	if err := os.WriteFile(c.output, []byte(text), 0o644); err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintf(c.env.Err, "wrote %d entries to %s\n", len(st.List()), c.output)
	return subcommands.ExitSuccess
}
