package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/etnz/finance"
	"github.com/etnz/finance/archive"
	"github.com/etnz/finance/item"
	"github.com/etnz/finance/renderer"
	"github.com/etnz/finance/secure"
	"github.com/fatih/color"
	"github.com/google/subcommands"
	"github.com/gosuri/uitable"
)

type backupCmd struct {
	mode  string
	force bool
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "save the books into a backup archive" }
func (*backupCmd) Usage() string {
	return `finbak backup [-mode <mode>] [-force] <archive>

  Validates the books, then writes them into a new archive. The mode is one
  of RAW, COMPRESS, ENCRYPT or COMPRESS_AND_ENCRYPT, and defaults to the
  'mode' configuration. Invalid books are not saved unless -force is set.
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.mode, "mode", "", "Storage mode of the archive files.")
	f.BoolVar(&c.force, "force", false, "Save the books even if they are not valid.")
}

func (c *backupCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: backup requires the archive path")
		return subcommands.ExitUsageError
	}
	mode := config.Mode
	if c.mode != "" {
		m, err := archive.ParseMode(c.mode)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		mode = m
	}

	d, err := loadBooks()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if d.Validate() == item.EditError {
		printMarkdown(renderer.ErrorsMarkdown(d))
		if !c.force {
			fmt.Fprintln(os.Stderr, "Error: the books are not valid, nothing saved")
			return subcommands.ExitFailure
		}
	}

	keys, err := openKeys()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening keys: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := finance.SaveBackup(f.Arg(0), keys, d, mode); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving backup %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Saved %d accounts, %d events and %d prices to %s\n", d.Accounts.Count(), d.Events.Count(), d.Prices.Count(), f.Arg(0))
	return subcommands.ExitSuccess
}

type restoreCmd struct {
	dryRun bool
}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "replace the books with the content of a backup" }
func (*restoreCmd) Usage() string {
	return `finbak restore [-n] <archive>

  Verifies and reads the archive, shows what changes compared to the books,
  then replaces the books. With -n the books are left untouched.
`
}

func (c *restoreCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "n", false, "Only show the changes.")
}

func (c *restoreCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: restore requires the archive path")
		return subcommands.ExitUsageError
	}
	keys, err := openKeys()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening keys: %v\n", err)
		return subcommands.ExitFailure
	}
	restored, err := finance.LoadBackup(f.Arg(0), keys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading backup %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	current, err := loadBooks()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.ChangesMarkdown("Restored Changes", finance.Diff(restored, current)))
	if c.dryRun {
		return subcommands.ExitSuccess
	}
	if err := finance.SaveDir(config.Books, restored); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing books: %v\n", err)
		return subcommands.ExitFailure
	}
	log.Info("books restored", "archive", f.Arg(0), "books", config.Books)
	return subcommands.ExitSuccess
}

type listCmd struct{}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list the files of a backup archive" }
func (*listCmd) Usage() string {
	return `finbak list <archive>...

  Lists the files of each archive, with their size and storage mode. Nothing
  is decrypted, no password is needed.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {}

func (c *listCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: list requires at least one archive path")
		return subcommands.ExitUsageError
	}
	status := subcommands.ExitSuccess
	for _, path := range f.Args() {
		// the header is readable without keys.
		r, err := archive.Open(path, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening archive %q: %v\n", path, err)
			status = subcommands.ExitFailure
			continue
		}
		printMarkdown(renderer.EntriesMarkdown(filepath.Base(path), r.Entries()))
		r.Close()
	}
	return status
}

type verifyCmd struct{}

func (*verifyCmd) Name() string     { return "verify" }
func (*verifyCmd) Synopsis() string { return "check the signatures and digests of backup archives" }
func (*verifyCmd) Usage() string {
	return `finbak verify <archive>...

  Reads every file of each archive, checking signatures and digests.
  Exits with a failure if any file is corrupted.
`
}

func (c *verifyCmd) SetFlags(f *flag.FlagSet) {}

func (c *verifyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: verify requires at least one archive path")
		return subcommands.ExitUsageError
	}
	keys, err := openKeys()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening keys: %v\n", err)
		return subcommands.ExitFailure
	}

	ok, failed := color.New(color.FgGreen), color.New(color.FgRed, color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("ARCHIVE", "FILE", "MODE", "STATUS")
	status := subcommands.ExitSuccess
	for _, path := range f.Args() {
		results, err := verify(path, keys)
		if err != nil {
			tbl.AddRow(path, "", "", failed.Sprint(err))
			status = subcommands.ExitFailure
			continue
		}
		for _, res := range results {
			if res.err != nil {
				tbl.AddRow(path, res.entry.Name, res.entry.Mode(), failed.Sprint(res.err))
				status = subcommands.ExitFailure
				continue
			}
			tbl.AddRow(path, res.entry.Name, res.entry.Mode(), ok.Sprint("OK"))
		}
	}
	fmt.Fprintln(color.Output, tbl)
	return status
}

type verified struct {
	entry *archive.FileEntry
	err   error
}

// verify reads every file of the archive at path to the end.
func verify(path string, keys *secure.Keys) ([]verified, error) {
	r, err := archive.Open(path, keys)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var results []verified
	for _, e := range r.Entries() {
		results = append(results, verified{entry: e, err: drain(r, e)})
	}
	return results, nil
}

func drain(r *archive.Reader, e *archive.FileEntry) error {
	in, err := r.InputStream(e)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(io.Discard, in)
	return err
}
