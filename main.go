package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/stride/internal/commands"
	"github.com/hay-kot/stride/internal/core/blob"
	"github.com/hay-kot/stride/internal/core/config"
	"github.com/hay-kot/stride/internal/core/identity"
	"github.com/hay-kot/stride/internal/printer"
	"github.com/hay-kot/stride/internal/store/jsonfile"
	"github.com/hay-kot/stride/internal/store/sqlite"
	"github.com/hay-kot/stride/internal/tracker"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	if err := setupLogger("info", ""); err != nil {
		panic(err)
	}

	p := printer.New(os.Stderr)
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		p = printer.NewPlain(os.Stderr)
	}

	var (
		ctx   = printer.NewContext(context.Background(), p)
		flags = &commands.Flags{}
	)

	var closeStore func() error

	app := &cli.Command{
		Name:      "stride",
		Usage:     "Log runs and rides from the command line",
		UsageText: "stride [global options] command [command options]",
		Description: `Stride keeps a local log of running and cycling sessions. Each activity is
pinned to a location and gets its pace or speed computed when it is recorded.

Run 'stride' with no arguments to list recorded activities.
Run 'stride log' to record one interactively.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("STRIDE_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (optional)",
				Sources:     cli.EnvVars("STRIDE_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("STRIDE_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("STRIDE_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := setupLogger(flags.LogLevel, flags.LogFile); err != nil {
				return ctx, err
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			blobs, closer, err := openBlobs(ctx, cfg)
			if err != nil {
				return ctx, err
			}
			flags.Blobs, closeStore = blobs, closer

			var (
				ids    = identity.New(cfg.AllocatorOptions())
				logger = log.With().Str("component", "tracker").Logger()
			)

			flags.Service = tracker.New(blobs, ids, logger, tracker.Options{Mode: cfg.Validation.Mode})
			flags.LoadResult = flags.Service.Restore(ctx)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closeStore == nil {
				return nil
			}
			return closeStore()
		},
	}

	lsCmd := commands.NewLsCmd(flags)

	app = commands.NewRunCmd(flags).Register(app)
	app = commands.NewRideCmd(flags).Register(app)
	app = commands.NewLogCmd(flags).Register(app)
	app = lsCmd.Register(app)
	app = commands.NewShowCmd(flags).Register(app)
	app = commands.NewImportCmd(flags).Register(app)
	app = commands.NewResetCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags).Register(app)

	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'stride --help' for usage", c.Args().First())
		}
		return lsCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		printer.Ctx(ctx).FatalError(err)
		exitCode = 1
	}

	os.Exit(exitCode)
}

// openBlobs opens the configured backend. The returned func closes it and
// may be nil.
func openBlobs(ctx context.Context, cfg *config.Config) (blob.Store, func() error, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.StorePath())
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		return db, db.Close, nil
	default:
		return jsonfile.New(cfg.StorePath()), nil, nil
	}
}

func setupLogger(level string, logFile string) error {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}

	if logFile != "" {
		// Create log directory if it doesn't exist
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		output = io.MultiWriter(
			zerolog.ConsoleWriter{Out: os.Stderr},
			file,
		)
	}

	log.Logger = log.Output(output).Level(parsedLevel)

	return nil
}
