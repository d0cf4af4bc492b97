package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/castorhq/castor"
	"github.com/google/subcommands"
)

func main() {
	// The migrate tool needs its own set of flags, independent of the main cct tool.
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	commander := subcommands.NewCommander(flag.CommandLine, "migrate")
	commander.Register(&registryCmd{}, "")
	commander.Register(&checkCmd{}, "")
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// load decodes a registry from path, with castor.DecodeLegacy for browser
// exports or castor.DecodeRegistry for migrated files.
func load(path string, decode func(io.Reader) (*castor.Registry, error)) (*castor.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", path, err)
	}
	defer f.Close()
	reg, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", path, err)
	}
	return reg, nil
}

// timeline replays a registry file through a fresh engine and exports its
// ledger.
func timeline(path string, decode func(io.Reader) (*castor.Registry, error)) ([]castor.LedgerEntry, error) {
	reg, err := load(path, decode)
	if err != nil {
		return nil, err
	}
	eng := castor.NewEngine()
	if _, err := eng.CommitInputs(reg); err != nil {
		return nil, fmt.Errorf("could not compute the timeline: %w", err)
	}
	return eng.ExportLedger(), nil
}

// --- registryCmd ---

type registryCmd struct {
	in  string
	out string
}

func (*registryCmd) Name() string { return "registry" }
func (*registryCmd) Synopsis() string {
	return "converts a browser app export into a registry file"
}
func (*registryCmd) Usage() string {
	return `migrate registry -in <browser_export.json> -out <registry.jsonl>

Converts the JSON document exported by the browser calculator into a canonical
registry file. The input and output must be different files to prevent
accidental data loss.
`
}
func (c *registryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "in", "", "The path to the browser app JSON export.")
	f.StringVar(&c.out, "out", "", "The path where the registry.jsonl will be written.")
}

func (c *registryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch {
	case c.in == "" || c.out == "":
		fmt.Fprintln(os.Stderr, "Error: -in and -out flags are required.")
		return subcommands.ExitUsageError
	case filepath.Clean(c.in) == filepath.Clean(c.out):
		fmt.Fprintln(os.Stderr, "Error: -in and -out must not be the same file.")
		return subcommands.ExitUsageError
	}
	if err := c.run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Successfully migrated browser export to %s\n", c.out)
	return subcommands.ExitSuccess
}

func (c *registryCmd) run() error {
	reg, err := load(c.in, castor.DecodeLegacy)
	if err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("imported registry does not validate: %w", err)
	}
	out, err := os.Create(c.out)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", c.out, err)
	}
	defer out.Close()
	return castor.EncodeRegistry(out, reg)
}

// --- checkCmd ---

type checkCmd struct {
	legacy   string
	registry string
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "verifies a migration by comparing the computed timelines" }
func (*checkCmd) Usage() string {
	return `migrate check -legacy <browser_export.json> -registry <registry.jsonl>

Computes the timeline from the original browser export and from the migrated
registry, and compares them event by event: price, reserve, and positions must
match exactly.
`
}
func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.legacy, "legacy", "", "Path to the original browser app JSON export.")
	f.StringVar(&c.registry, "registry", "", "Path to the migrated registry.jsonl file.")
}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.legacy == "" || c.registry == "" {
		fmt.Fprintln(os.Stderr, "Error: -legacy and -registry flags are required.")
		return subcommands.ExitUsageError
	}

	legacyEntries, err := timeline(c.legacy, castor.DecodeLegacy)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	migratedEntries, err := timeline(c.registry, castor.DecodeRegistry)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	if len(legacyEntries) != len(migratedEntries) {
		fmt.Fprintf(os.Stderr, "Timelines differ in length: legacy has %d events, migrated has %d.\n",
			len(legacyEntries), len(migratedEntries))
		return subcommands.ExitFailure
	}

	fmt.Println("  #  |    Date    | Participant | Legacy                     | Migrated")
	fmt.Println("-----------------------------------------------------------------------------------")
	diffs := 0
	for i := range legacyEntries {
		l, m := legacyEntries[i], migratedEntries[i]
		ok := l.Snapshot.Entry().Equal(m.Snapshot.Entry()) &&
			l.Snapshot.Reserve().Equal(m.Snapshot.Reserve())

		mark := "  "
		if !ok {
			mark = "!!"
			diffs++
		}
		fmt.Printf("%s %2d | %s | %-11s | %-26s | %s\n",
			mark, l.Snapshot.Seq(), l.Snapshot.When(),
			l.Snapshot.Entry().Participant(),
			describe(l), describe(m))
	}

	if diffs > 0 {
		fmt.Fprintf(os.Stderr, "\n%d event(s) differ between the legacy export and the migrated registry.\n", diffs)
		return subcommands.ExitFailure
	}
	fmt.Println("\nTimelines match event by event.")
	return subcommands.ExitSuccess
}

func describe(le castor.LedgerEntry) string {
	if tx := le.Transaction; tx != nil {
		return fmt.Sprintf("buys at %s", tx.Price())
	}
	return fmt.Sprintf("contributes %s", le.Snapshot.Entry().Amount())
}
