package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "gasmap",
		Usage: "Browse Spanish fuel station prices on a list and a map",
		Commands: []*cli.Command{
			serveCommand(),
			searchCommand(),
			snapshotCommand(),
			checkStatusCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
