package cmd

import (
	"fmt"
	"os"

	"github.com/etnz/finance/archive"
	"github.com/etnz/finance/secure"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config is the configuration of the application, read from a .finbak.yaml
// file and FINBAK_* environment variables.
type Config struct {
	Keystore   string       // keystore directory
	Books      string       // books directory
	Iterations int          // PBKDF2 iterations of new passwords
	Mode       archive.Mode // default backup mode
	Verbose    bool
	Password   string // non interactive password
	Style      string // glamour style
}

// DefaultConfig returns the configuration used without any file or
// environment.
func DefaultConfig() *Config {
	return &Config{
		Keystore:   "~/.finbak/keys",
		Books:      ".",
		Iterations: secure.DefaultIterations,
		Mode:       archive.CompressAndEncrypt,
		Style:      "dark",
	}
}

// LoadConfig reads the configuration. The .finbak.yaml file is looked up in
// $FINBAK_CONFIG_PATH, then the home directory, then the current directory.
// A missing file is not an error.
func LoadConfig() (*Config, error) {
	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("keystore", def.Keystore)
	v.SetDefault("books", def.Books)
	v.SetDefault("iterations", def.Iterations)
	v.SetDefault("mode", def.Mode.String())
	v.SetDefault("verbose", false)
	v.SetDefault("password", "")
	v.SetDefault("style", def.Style)

	v.SetConfigName(".finbak") // .yaml is implicit
	v.SetEnvPrefix("FINBAK")
	v.AutomaticEnv()
	if override := os.Getenv("FINBAK_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	mode, err := archive.ParseMode(v.GetString("mode"))
	if err != nil {
		return nil, fmt.Errorf("invalid mode in configuration: %w", err)
	}
	keystore, err := homedir.Expand(v.GetString("keystore"))
	if err != nil {
		return nil, fmt.Errorf("invalid keystore path: %w", err)
	}
	books, err := homedir.Expand(v.GetString("books"))
	if err != nil {
		return nil, fmt.Errorf("invalid books path: %w", err)
	}
	return &Config{
		Keystore:   keystore,
		Books:      books,
		Iterations: v.GetInt("iterations"),
		Mode:       mode,
		Verbose:    v.GetBool("verbose"),
		Password:   v.GetString("password"),
		Style:      v.GetString("style"),
	}, nil
}
