package cli

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "goldrun"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		cli: &cli.App{
			Name:  AppName,
			Usage: "Resource-aware runner for golden-file test suites",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging and diagnostic capture",
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Discover and run the test suite under a directory",
		ArgsUsage: "[DIR]",
		Action:    app.run,
		Flags:     runFlags(),
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List previous runs",
		Action: app.list,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Limit number of results (default: 20)",
				Value:   20,
			},
		},
	})
	// Default action when no subcommand is specified
	app.cli.Action = app.run
	app.cli.Flags = append(app.cli.Flags, runFlags()...)
	return app
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "Process slots available to concurrently running tests",
			Value:   runtime.NumCPU(),
		},
		&cli.IntFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "Wall-clock budget per execution stage, in seconds",
			Value:   600,
		},
		&cli.Float64Flag{
			Name:  "tolerance",
			Usage: "Numeric tolerance passed to the comparison tool",
			Value: 1e-9,
		},
		&cli.StringFlag{
			Name:  "include",
			Usage: "Glob pattern a test name must match to be scheduled",
		},
		&cli.StringFlag{
			Name:  "exclude",
			Usage: "Glob pattern removing matching test names from the run",
		},
		&cli.StringFlag{
			Name:  "mpi-launcher",
			Usage: "Multi-process launch wrapper",
			Value: "mpirun",
		},
		&cli.BoolFlag{
			Name:  "always-mpi",
			Usage: "Prefix the launch wrapper even for single-process tests",
		},
		&cli.StringFlag{
			Name:  "diff-tool",
			Usage: "External tolerance-based comparison tool",
			Value: "numdiff",
		},
		&cli.StringFlag{
			Name:  "executable",
			Usage: "Test executable backing every descriptor (overrides the per-directory convention)",
		},
		&cli.BoolFlag{
			Name:  "keep",
			Usage: "Keep captured .actual output files after comparison",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML config file (default: .goldrun.yaml if present)",
		},
	}
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		a.cli.Version = version + " (commit: " + commit[:8] + ", built: " + date + ")"
	}
}
