package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/castorhq/castor/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command tree for shell completion. Complete
// inspects the COMP_LINE environment and exits early when the shell is
// asking for candidates.
func completion() *complete.Command {
	sub := make(map[string]*complete.Command, len(cmd.Commands))
	for _, c := range cmd.Commands {
		sub[c.Name()] = &complete.Command{}
	}
	return &complete.Command{
		Sub: sub,
		Flags: map[string]complete.Predictor{
			"registry-file": predict.Files("*.jsonl"),
			"currency":      predict.Set{"EUR", "USD", "CHF", "GBP"},
			"v":             predict.Nothing,
		},
	}
}

// isBuiltin reports whether name is one of the registered subcommands, so
// anything else can be dispatched to a cct-<name> extension.
func isBuiltin(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	for _, c := range cmd.Commands {
		if c.Name() == name {
			return true
		}
	}
	return false
}

func main() {
	completion().Complete("cct")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	cmd.Setup()

	if args := flag.Args(); len(args) > 0 && !isBuiltin(args[0]) {
		if ran, code := cmd.RunExtension(args[0], args[1:]); ran {
			os.Exit(code)
		}
	}

	os.Exit(int(commander.Execute(context.Background())))
}
