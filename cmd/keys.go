package cmd

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finance/secure"
	"github.com/fatih/color"
	"github.com/google/subcommands"
)

type initCmd struct {
	force bool
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create the keys protecting the backups" }
func (*initCmd) Usage() string {
	return `finbak init [-force]

  Creates the keystore: a password, a key pair used to sign and encrypt
  backups, and a database key. Does nothing if the keystore exists, unless
  -force is set: new keys cannot read the backups made with the old ones.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "Replace existing keys.")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	keys := secure.NewKeys(secure.NewDiskStore(config.Keystore), config.Iterations)
	if keys.Exists() && !c.force {
		fmt.Printf("Keystore %s already exists\n", config.Keystore)
		return subcommands.ExitSuccess
	}
	var err error
	if keys.Exists() {
		color.New(color.FgYellow).Fprintln(os.Stderr, "Warning: existing backups will not be readable with the new keys.")
		err = keys.Regenerate(passwordPrompt)
	} else {
		err = keys.Init(passwordPrompt)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating keys: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Keys created in %s\n", config.Keystore)
	return subcommands.ExitSuccess
}

type passwdCmd struct{}

func (*passwdCmd) Name() string     { return "passwd" }
func (*passwdCmd) Synopsis() string { return "change the keystore password" }
func (*passwdCmd) Usage() string {
	return `finbak passwd

  Asks for the current password, then for a new one. Existing backups remain
  readable.
`
}

func (c *passwdCmd) SetFlags(f *flag.FlagSet) {}

func (c *passwdCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	keys, err := openKeys()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening keys: %v\n", err)
		return subcommands.ExitFailure
	}
	// the configured password is the current one.
	prompt := passwordPrompt
	if config.Password != "" {
		prompt = func(bool) ([]byte, error) {
			return nil, fmt.Errorf("cannot change the password set by the configuration")
		}
	}
	if err := keys.ChangePassword(prompt); err != nil {
		fmt.Fprintf(os.Stderr, "Error changing password: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println("Password changed")
	return subcommands.ExitSuccess
}

type secretCmd struct {
	open bool
}

func (*secretCmd) Name() string     { return "secret" }
func (*secretCmd) Synopsis() string { return "seal a secret with the database key" }
func (*secretCmd) Usage() string {
	return `finbak secret [-open] <value>

  Seals value with the database key and prints it in base64, so it can be
  stored in a configuration file. With -open, prints the value back.
`
}

func (c *secretCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.open, "open", false, "Open a sealed secret.")
}

func (c *secretCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: secret requires exactly one value")
		return subcommands.ExitUsageError
	}
	keys, err := openKeys()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening keys: %v\n", err)
		return subcommands.ExitFailure
	}
	if !c.open {
		sealed, err := keys.EncryptSecret([]byte(f.Arg(0)))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error sealing secret: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(base64.StdEncoding.EncodeToString(sealed))
		return subcommands.ExitSuccess
	}
	sealed, err := base64.StdEncoding.DecodeString(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding secret: %v\n", err)
		return subcommands.ExitUsageError
	}
	plain, err := keys.DecryptSecret(sealed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening secret: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(plain))
	return subcommands.ExitSuccess
}
