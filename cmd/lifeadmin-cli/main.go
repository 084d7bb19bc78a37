package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"lifeadmin/internal/cli"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range cli.Commands(cli.DefaultOpener, os.Stdout, os.Stderr) {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
