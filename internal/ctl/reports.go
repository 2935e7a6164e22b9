package ctl

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"financeiro/internal/aggregate"
	"financeiro/internal/core"
)

type summaryCmd struct {
	env   *Env
	plain bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display total income, expense and balance" }
func (*summaryCmd) Usage() string {
	return `financeiro-ctl summary [-plain]

  Displays the headline figures of the whole collection in BRL.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.plain, "plain", false, "Print raw markdown instead of rendering it.")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, release, err := c.env.openStore(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	defer release()

	if err := c.env.printMarkdown(summaryMarkdown(aggregate.Summarize(st.List())), c.plain); err != nil {
		return c.env.fail(err)
	}
	return subcommands.ExitSuccess
}

func summaryMarkdown(s aggregate.Summary) string {
	var b strings.Builder
	b.WriteString("# Summary\n\n")
	b.WriteString("| | Amount |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Income | %s |\n", s.TotalIncome.Display())
	fmt.Fprintf(&b, "| Expense | %s |\n", s.TotalExpense.Display())
	fmt.Fprintf(&b, "| **Balance** | **%s** |\n\n", s.Balance.Display())
	fmt.Fprintf(&b, "Open expenses: %d\n\nClosed expenses: %d\n", s.OpenCount, s.ClosedCount)
	return b.String()
}

type monthsCmd struct {
	env   *Env
	plain bool
}

func (*monthsCmd) Name() string     { return "months" }
func (*monthsCmd) Synopsis() string { return "display income against expense per month" }
func (*monthsCmd) Usage() string {
	return `financeiro-ctl months [-plain]

  Displays one row per month with dated entries. Undated entries are
  counted but not placed in any month.
`
}

func (c *monthsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.plain, "plain", false, "Print raw markdown instead of rendering it.")
}

func (c *monthsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, release, err := c.env.openStore(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	defer release()

	if err := c.env.printMarkdown(monthsMarkdown(st.List()), c.plain); err != nil {
		return c.env.fail(err)
	}
	return subcommands.ExitSuccess
}

func monthsMarkdown(entries []core.Entry) string {
	var b strings.Builder
	b.WriteString("# Monthly balance\n\n")
	months := aggregate.MonthlyBalances(entries)
	if len(months) == 0 {
		b.WriteString("No dated entries.\n")
	} else {
		b.WriteString("| Month | Income | Expense | Net |\n|---|---:|---:|---:|\n")
		for _, m := range months {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", m.Month, m.Income.Display(), m.Expense.Display(), m.Net.Display())
		}
	}
	if n := aggregate.Undated(entries); n > 0 {
		fmt.Fprintf(&b, "\n%d undated entries not shown.\n", n)
	}
	return b.String()
}
