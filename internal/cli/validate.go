package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mrlokans/kindle-cards/internal/config"
	"github.com/mrlokans/kindle-cards/internal/exporters"
	"github.com/mrlokans/kindle-cards/internal/logger"
	"github.com/mrlokans/kindle-cards/internal/parsers"
	"github.com/mrlokans/kindle-cards/internal/storage"
)

// ValidateCommand checks the reviewed document and writes the record file.
// Nothing is written unless every card passes.
type ValidateCommand struct {
	Config *config.Config
	Out    io.Writer
	Logger *slog.Logger
}

func NewValidateCommand(cfg *config.Config, out io.Writer, log *slog.Logger) *ValidateCommand {
	if log == nil {
		log = logger.Discard()
	}
	return &ValidateCommand{
		Config: cfg,
		Out:    out,
		Logger: log,
	}
}

func (cmd *ValidateCommand) Run(ctx context.Context) error {
	cfg := cmd.Config

	fmt.Fprintln(cmd.Out, "Kindle Cards Validation")
	fmt.Fprintln(cmd.Out, "=======================")
	fmt.Fprintf(cmd.Out, "Document: %s\n", cfg.DocumentPath)

	data, err := storage.ReadFile(cfg.DocumentPath)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	loader := parsers.NewCardLoader(cfg.Location())
	cards, err := loader.ValidateAll(data)
	if err != nil {
		var all parsers.ValidationErrors
		if errors.As(err, &all) {
			for _, violation := range all {
				cmd.Logger.Error("invalid card",
					slog.Int("position", violation.Position),
					slog.String("title", violation.Title),
					slog.String("rule", string(violation.Rule)),
					slog.String("detail", violation.Detail))
			}
		}
		return err
	}

	fmt.Fprintf(cmd.Out, "Validated %d cards\n", len(cards))

	if err := ctx.Err(); err != nil {
		return err
	}

	exporter := exporters.NewRecordExporter(cfg.Records.Path, exporters.RecordFormat(cfg.Format))
	result, err := exporter.Export(cards)
	if err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}

	fmt.Fprintf(cmd.Out, "Wrote %d records to %s\n", result.CardsProcessed, result.Path)
	cmd.Logger.Debug("records written",
		slog.String("path", result.Path),
		slog.String("format", string(exporter.Format)),
		slog.Int("records", result.CardsProcessed))
	return nil
}
