// Package cmd implements the finbak command line application: it keeps
// the books of a household in a directory of JSONL files, and saves them
// into signed and encrypted backup archives.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/etnz/finance"
	"github.com/etnz/finance/renderer"
	"github.com/etnz/finance/secure"
	"github.com/google/subcommands"
	"golang.org/x/term"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&initCmd{}, "keys")
	c.Register(&passwdCmd{}, "keys")
	c.Register(&secretCmd{}, "keys")

	c.Register(&backupCmd{}, "archives")
	c.Register(&restoreCmd{}, "archives")
	c.Register(&listCmd{}, "archives")
	c.Register(&verifyCmd{}, "archives")

	c.Register(&showCmd{}, "books")
	c.Register(&diffCmd{}, "books")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	keystoreFlag = flag.String("keystore", "", "Path to the keystore directory. Overrides the 'keystore' configuration.")
	booksFlag    = flag.String("books", "", "Path to the books directory. Overrides the 'books' configuration.")
	Verbose      = flag.Bool("v", false, "Verbose output.")
)

// Setup loads the configuration and sets the log level. It must be called
// after the flags are parsed.
func Setup() (*Config, error) {
	c, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if *keystoreFlag != "" {
		c.Keystore = *keystoreFlag
	}
	if *booksFlag != "" {
		c.Books = *booksFlag
	}
	if *Verbose {
		c.Verbose = true
	}
	if c.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	config = c
	return c, nil
}

// config is set by Setup.
var config = DefaultConfig()

// openKeys returns the keys of the configured keystore, initialised. The
// password is asked once per process.
var openKeys = sync.OnceValues(func() (*secure.Keys, error) {
	keys := secure.NewKeys(secure.NewDiskStore(config.Keystore), config.Iterations)
	if err := keys.Init(passwordPrompt); err != nil {
		return nil, err
	}
	return keys, nil
})

// passwordPrompt reads the password from the configuration, or from the
// terminal without echo.
func passwordPrompt(create bool) ([]byte, error) {
	if config.Password != "" {
		return []byte(config.Password), nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("no terminal to read the password from, set FINBAK_PASSWORD")
	}
	read := func(prompt string) ([]byte, error) {
		fmt.Fprint(os.Stderr, prompt)
		defer fmt.Fprintln(os.Stderr)
		return term.ReadPassword(fd)
	}
	if !create {
		return read("Password: ")
	}
	password, err := read("New password: ")
	if err != nil {
		return nil, err
	}
	if len(password) == 0 {
		return nil, fmt.Errorf("empty password")
	}
	again, err := read("Repeat password: ")
	if err != nil {
		return nil, err
	}
	if string(again) != string(password) {
		return nil, fmt.Errorf("passwords do not match")
	}
	return password, nil
}

// loadBooks loads the configured books directory.
func loadBooks() (*finance.DataSet, error) {
	d, err := finance.LoadDir(config.Books)
	if err != nil {
		return nil, fmt.Errorf("could not load books %q: %w", config.Books, err)
	}
	return d, nil
}

// printMarkdown renders md on stdout, styled when stdout is a terminal.
func printMarkdown(md string) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		fmt.Print(md)
		return
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		width = 80
	}
	fmt.Print(renderer.Terminal(md, config.Style, width))
}
