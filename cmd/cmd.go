// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// actionsCommand handles automated action operations
func actionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "actions",
		Aliases: []string{"act"},
		Usage:   "Automated reconciliation actions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List available actions and their options",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ActionsList,
			},
			{
				Name:  "run",
				Usage: "Run an action to completion, one step at a time",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "key",
					},
				},
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "option",
						Aliases: []string{"o"},
						Usage:   "Action option as name=value, repeatable",
					},
					&cli.BoolFlag{
						Name:  "resume",
						Usage: "Resume the action already in flight instead of configuring a new one",
					},
				},
				Action: r.ActionsRun,
			},
			{
				Name:   "teardown",
				Usage:  "Abort the action currently in flight",
				Action: r.ActionsTeardown,
			},
		},
	}
}

// serveCommand starts the automation web service
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the automation web service",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides configuration)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive action runs.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for running actions",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "key",
			},
		},
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "option",
				Aliases: []string{"o"},
				Usage:   "Action option as name=value, repeatable",
			},
		},
		Action: r.TUI,
	}
}
