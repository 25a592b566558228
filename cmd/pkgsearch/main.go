package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/pkgsearch/internal/config"
	"github.com/kailas-cloud/pkgsearch/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "pkgsearch",
		Usage:   "Package search API and index tooling",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Environment name, selects config/<env>.yaml",
				EnvVars: []string{"ENV"},
				Value:   config.GetEnv(),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveCommand,
			},
			{
				Name:      "explain",
				Usage:     "Compile a query and print the index request as JSON",
				ArgsUsage: "<query>",
				Action:    explainCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "from",
						Usage: "Result offset",
					},
					&cli.IntFlag{
						Name:  "size",
						Usage: "Page size",
					},
					&cli.BoolFlag{
						Name:  "suggestions",
						Usage: "Compile with the suggestions profile",
					},
					&cli.BoolFlag{
						Name:  "text-only",
						Usage: "Print only the free text left after removing qualifiers",
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Create the package index if needed and load packages from a JSON Lines file",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the JSON Lines file, - for stdin",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of packages written per batch",
						Value: 500,
					},
				},
			},
			{
				Name:  "version",
				Usage: "Print build information",
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprintln(c.App.Writer, version.String())
					return err
				},
			},
		},
	}
}
