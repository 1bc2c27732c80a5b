package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	kcli "github.com/mrlokans/kindle-cards/internal/cli"
	"github.com/mrlokans/kindle-cards/internal/config"
	"github.com/mrlokans/kindle-cards/internal/logger"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// flagKeys maps command line flags onto configuration keys. Flags only
// override the configuration when given explicitly.
var flagKeys = map[string]string{
	"clippings-path": config.KeyClippingsPath,
	"document":       config.KeyDocumentPath,
	"backup":         config.KeyBackupPath,
	"records":        config.KeyRecordsPath,
	"format":         config.KeyRecordsFormat,
	"merge-notes":    config.KeyMergeNotes,
	"strict":         config.KeyStrict,
}

func run(ctx context.Context, cmd *cli.Command) error {
	overrides := make(map[string]any)
	for flag, key := range flagKeys {
		if !cmd.IsSet(flag) {
			continue
		}
		switch flag {
		case "merge-notes", "strict":
			overrides[key] = cmd.Bool(flag)
		default:
			overrides[key] = cmd.String(flag)
		}
	}
	if cmd.Bool("verbose") {
		overrides[config.KeyLogLevel] = "debug"
	}

	cfg, err := config.NewConfig(cmd.String("config"), overrides)
	if err != nil {
		return err
	}
	log := logger.New(os.Stderr, cfg.Level)

	if cmd.Bool("validate") {
		if cmd.IsSet("start-date") {
			log.Warn("--start-date has no effect with --validate")
		}
		return kcli.NewValidateCommand(cfg, os.Stdout, log).Run(ctx)
	}

	render := kcli.NewRenderCommand(cfg, cmd.String("start-date"), os.Stdout, log)
	render.Verbose = cmd.Bool("verbose")
	return render.Run(ctx)
}

func main() {
	// -v selects validate mode, so the version flag keeps only its long name
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}

	cmd := &cli.Command{
		Name:    "kindle-cards",
		Usage:   "Turn Kindle highlights into flashcards",
		Version: fmt.Sprintf("%s (%s)", Version, Commit),
		Description: "Without --validate, converts \"My Clippings.txt\" into a Markdown document\n" +
			"with one section per clipping. Fill in each \"### Definition\" section, then\n" +
			"run with --validate to check the document and write the flashcard records.",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "start-date",
				Aliases: []string{"d"},
				Usage:   "only keep clippings added on or after this date (MM-DD-YYYY)",
			},
			&cli.BoolFlag{
				Name:    "validate",
				Aliases: []string{"v"},
				Usage:   "validate the reviewed document and write the records",
			},
			&cli.StringFlag{
				Name:        "clippings-path",
				Aliases:     []string{"p"},
				Usage:       "path to the Kindle export",
				DefaultText: config.DefaultClippingsPath,
			},
			&cli.StringFlag{
				Name:        "document",
				Usage:       "path of the intermediate Markdown document",
				DefaultText: config.DefaultDocumentPath,
			},
			&cli.StringFlag{
				Name:        "backup",
				Usage:       "where the previous document is copied before it is overwritten",
				DefaultText: config.DefaultBackupPath,
			},
			&cli.StringFlag{
				Name:        "records",
				Usage:       "path of the record file",
				DefaultText: config.DefaultRecordsPath,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "record file format: json or yaml",
				DefaultText: config.DefaultRecordsFormat,
			},
			&cli.BoolFlag{
				Name:  "merge-notes",
				Usage: "fold notes into the highlight they annotate",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "abort on the first malformed clipping instead of skipping it",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "debug logging and a listing of the drafted cards",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to an optional YAML config file",
				Sources: cli.EnvVars(config.EnvPrefix + "_CONFIG"),
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(kcli.ExitCode(err))
	}
}
