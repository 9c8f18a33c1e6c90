package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/renderer"
	"github.com/google/subcommands"
)

type showCmd struct {
	date   string
	period string
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display the balances of the books or of a backup" }
func (*showCmd) Usage() string {
	return `finbak show [-d <date>] [-p <period>] [<archive>]

  Displays the balance of every account on a date, from the books or from a
  backup archive. With -p, also lists the events of the period (day, week,
  month, quarter, year) containing the date.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the balances (YYYY-MM-DD).")
	f.StringVar(&c.period, "p", "", "Period of the events to list.")
}

func (c *showCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	var period date.Period
	if c.period != "" {
		if period, err = date.ParsePeriod(c.period); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}

	d, err := booksOrBackup(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	b.WriteString(renderer.BalancesMarkdown(d, on))
	if c.period != "" {
		b.WriteString("\n")
		b.WriteString(renderer.EventsMarkdown(d, date.NewRange(on, period)))
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

type diffCmd struct{}

func (*diffCmd) Name() string     { return "diff" }
func (*diffCmd) Synopsis() string { return "display the changes between a backup and the books" }
func (*diffCmd) Usage() string {
	return `finbak diff <archive> [<newer archive>]

  Displays what changed from the archive to the books, or to a newer
  archive.
`
}

func (c *diffCmd) SetFlags(f *flag.FlagSet) {}

func (c *diffCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 || f.NArg() > 2 {
		fmt.Fprintln(os.Stderr, "Error: diff requires one or two archive paths")
		return subcommands.ExitUsageError
	}
	older, err := booksOrBackup(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	newer, err := booksOrBackup(f.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.ChangesMarkdown("Changes", finance.Diff(newer, older)))
	return subcommands.ExitSuccess
}

// booksOrBackup loads the backup at path, or the books when path is empty.
func booksOrBackup(path string) (*finance.DataSet, error) {
	if path == "" {
		return loadBooks()
	}
	keys, err := openKeys()
	if err != nil {
		return nil, fmt.Errorf("could not open keys: %w", err)
	}
	d, err := finance.LoadBackup(path, keys)
	if err != nil {
		return nil, fmt.Errorf("could not read backup %q: %w", path, err)
	}
	return d, nil
}
