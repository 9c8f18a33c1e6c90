package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/charmbracelet/log"
)

const (
	EnvKeystore = "FINBAK_KEYSTORE"
	EnvBooks    = "FINBAK_BOOKS"
	EnvVerbose  = "FINBAK_VERBOSE"
)

// RunExtension attempts to find and execute an external finbak-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found or executed.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "finbak-" + subcommand

	// Look for the external command in PATH
	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		log.Debug("external command not found", "name", externalCmdName, "err", err)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Pass the resolved configuration as environment variables
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, EnvKeystore+"="+config.Keystore)
	cmd.Env = append(cmd.Env, EnvBooks+"="+config.Books)
	cmd.Env = append(cmd.Env, EnvVerbose+"="+strconv.FormatBool(config.Verbose))

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}
