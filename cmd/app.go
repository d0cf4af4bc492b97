// Package cmd implements the cct command line application to manage a
// shared property purchase.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/castorhq/castor"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Commands lists the built-in subcommands in registration order. The main
// package registers them all, and dispatches any other name to a cct-<name>
// extension binary.
var Commands = []subcommands.Command{
	&formulaCmd{},
	&ratioCmd{},
	&lotCmd{},
	&joinCmd{},
	&priceCmd{},
	&breakdownCmd{},
	&timelineCmd{},
	&exportCmd{},
	&publishCmd{},
	&importLegacyCmd{},
	&fmtCmd{},
	&inseeCmd{},
	&topicCmd{},
	&assistCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	registryFile    = flag.String("registry-file", stringSetting(EnvRegistryFile, "castor.jsonl"), "Path to the registry file (JSONL format)")
	defaultCurrency = flag.String("currency", stringSetting(EnvCurrency, "EUR"), "Currency of amounts entered on the command line")
	Verbose         = flag.Bool("v", boolSetting(EnvVerbose, false), "Enable debug logging")
)

var settings sync.Once

// loadSettings reads the optional .castor.env file and the environment, so
// that global flag defaults can be configured without repeating them on
// every call.
func loadSettings() {
	settings.Do(func() {
		viper.SetConfigFile(".castor.env")
		_ = viper.ReadInConfig()
		viper.AutomaticEnv()
	})
}

func stringSetting(key, fallback string) string {
	loadSettings()
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func boolSetting(key string, fallback bool) bool {
	loadSettings()
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return fallback
}

// Setup applies the global flags. Call it once, after flag.Parse.
func Setup() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// DecodeRegistryFile decodes the registry from the app registry file. A
// missing file is an empty registry, so that the first record command can
// create it.
func DecodeRegistryFile() (*castor.Registry, error) {
	f, err := os.Open(*registryFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("file", *registryFile).Msg("registry file does not exist, starting from an empty registry")
		return castor.NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open registry file %q: %w", *registryFile, err)
	}
	defer f.Close()

	reg, err := castor.DecodeRegistry(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode registry file %q: %w", *registryFile, err)
	}
	return reg, nil
}

// DecodeEngine decodes the registry file and commits it to a fresh engine,
// so report commands always see validated, fully priced state.
func DecodeEngine() (*castor.Engine, error) {
	reg, err := DecodeRegistryFile()
	if err != nil {
		return nil, err
	}
	eng := castor.NewEngine()
	if _, err := eng.CommitInputs(reg); err != nil {
		return nil, err
	}
	return eng, nil
}

// appendRecord appends a single record to the app registry file, creating
// the file when needed. Record commands validate before calling it.
func appendRecord(record any) subcommands.ExitStatus {
	filename := *registryFile
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening registry file %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	if err := castor.EncodeRecord(f, record); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to registry file %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Successfully appended record to %s\n", filename)
	return subcommands.ExitSuccess
}
