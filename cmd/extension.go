package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Environment variables passed to cct-<name> extension binaries, mirroring
// the global flags. They double as the keys of the optional .castor.env
// configuration file.
const (
	EnvRegistryFile = "CCT_REGISTRY_FILE"
	EnvCurrency     = "CCT_CURRENCY"
	EnvVerbose      = "CCT_VERBOSE"
)

// RunExtension looks for a cct-<subcommand> binary in PATH and runs it.
// It reports whether an extension was found, and its exit code.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "cct-" + subcommand

	path, err := exec.LookPath(name)
	if err != nil {
		log.Debug().Str("command", name).Msg("no extension found in PATH")
		return false, 0
	}

	cmd := exec.Command(path, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr

	// The globals travel as environment variables, so an extension sees
	// the same registry and currency the builtins do.
	cmd.Env = append(os.Environ(),
		EnvRegistryFile+"="+*registryFile,
		EnvCurrency+"="+*defaultCurrency,
		EnvVerbose+"="+strconv.FormatBool(*Verbose),
	)

	err = cmd.Run()
	var exit *exec.ExitError
	switch {
	case err == nil:
		return true, 0
	case errors.As(err, &exit):
		return true, exit.ExitCode()
	default:
		fmt.Fprintf(os.Stderr, "Error executing extension %q: %v\n", name, err)
		return true, 1
	}
}
