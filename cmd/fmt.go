package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/castorhq/castor"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	output string
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the registry file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `cct fmt [-o <file>]

  Validates and formats the registry file. This command reads all records,
  validates them, applies available quick-fixes (like filling missing
  currencies), and writes them back in canonical JSONL form: the formula
  first, then the ratio, the lots by id, and the participants by entry date.
  By default the registry file is rewritten in place.

Usage Examples:
# Rewrites the default registry file.
$ cct fmt

`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file, - for stdout. Rewrites the registry file by default.")
}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	reg, err := DecodeRegistryFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := reg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error validating registry: %v\n", err)
		return subcommands.ExitFailure
	}

	var w io.Writer
	switch c.output {
	case "-":
		w = os.Stdout
	case "":
		file, err := os.OpenFile(*registryFile, os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening registry file %q for writing: %v\n", *registryFile, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	default:
		file, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	}

	if err := castor.EncodeRegistry(w, reg); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding registry: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.output == "" {
		fmt.Printf("Registry file %q has been formatted.\n", *registryFile)
	}
	return subcommands.ExitSuccess
}
