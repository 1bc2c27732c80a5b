package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/mrlokans/kindle-cards/internal/cards"
	"github.com/mrlokans/kindle-cards/internal/config"
	"github.com/mrlokans/kindle-cards/internal/entities"
	"github.com/mrlokans/kindle-cards/internal/exporters"
	"github.com/mrlokans/kindle-cards/internal/filters"
	"github.com/mrlokans/kindle-cards/internal/kindle"
	"github.com/mrlokans/kindle-cards/internal/logger"
	"github.com/mrlokans/kindle-cards/internal/storage"
)

const listTitleWidth = 48

// RenderCommand converts the clippings export into the intermediate document.
type RenderCommand struct {
	Config    *config.Config
	StartDate string // MM-DD-YYYY, empty keeps every clipping
	Verbose   bool
	Out       io.Writer
	Logger    *slog.Logger
}

func NewRenderCommand(cfg *config.Config, startDate string, out io.Writer, log *slog.Logger) *RenderCommand {
	if log == nil {
		log = logger.Discard()
	}
	return &RenderCommand{
		Config:    cfg,
		StartDate: startDate,
		Out:       out,
		Logger:    log,
	}
}

func (cmd *RenderCommand) Run(ctx context.Context) error {
	cfg := cmd.Config
	loc := cfg.Location()

	cutoffTime, err := cmd.cutoff(loc)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Out, "Kindle Cards")
	fmt.Fprintln(cmd.Out, "============")
	fmt.Fprintf(cmd.Out, "File: %s\n", cfg.ClippingsPath)

	data, err := storage.ReadFile(cfg.ClippingsPath)
	if err != nil {
		return fmt.Errorf("failed to read clippings: %w", err)
	}

	parser := kindle.NewParser(
		kindle.WithLocation(loc),
		kindle.WithDateLayouts(cfg.DateLayouts...),
		kindle.WithStrict(cfg.Strict),
	)
	result, err := parser.ParseEntries(bytes.NewReader(data))
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		cmd.Logger.Warn("skipping malformed entry",
			slog.Int("entry", warning.Index),
			slog.Int("line", warning.Line),
			slog.String("reason", warning.Reason))
	}
	for _, skipped := range result.Skipped {
		cmd.Logger.Debug("skipping entry",
			slog.Int("entry", skipped.Index),
			slog.String("title", skipped.Title),
			slog.String("reason", skipped.Reason))
	}

	fmt.Fprintf(cmd.Out, "Parsed %d entries: %d clippings, %d skipped, %d malformed\n",
		result.Entries, len(result.Clippings), len(result.Skipped), len(result.Warnings))

	clippings := filters.Since(result.Clippings, cutoffTime)
	if !cutoffTime.IsZero() {
		fmt.Fprintf(cmd.Out, "Kept %d clippings added on or after %s\n", len(clippings), cmd.StartDate)
	}

	drafts := cards.Draft(clippings, cards.Options{MergeNotes: cfg.MergeNotes})
	if cmd.Verbose {
		printCardList(cmd.Out, drafts)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	renderer := exporters.NewMarkdownRenderer(cfg.DocumentPath, cfg.BackupPath, entities.DocumentMeta{
		Source:     filepath.Base(cfg.ClippingsPath),
		StartDate:  cmd.StartDate,
		Timezone:   cfg.Timezone,
		MergeNotes: cfg.MergeNotes,
	})
	exported, err := renderer.Export(drafts)
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	if exported.BackupPath != "" {
		fmt.Fprintf(cmd.Out, "Previous document backed up to %s\n", exported.BackupPath)
	}
	fmt.Fprintf(cmd.Out, "Wrote %d cards to %s\n", exported.CardsProcessed, exported.Path)
	fmt.Fprintf(cmd.Out, "\nFill in the %q sections, then run with --validate.\n", entities.DefinitionHeading)

	cmd.Logger.Debug("document written",
		slog.String("path", exported.Path),
		slog.Int("cards", exported.CardsProcessed))
	return nil
}

func (cmd *RenderCommand) cutoff(loc *time.Location) (time.Time, error) {
	if cmd.StartDate == "" {
		return time.Time{}, nil
	}
	return filters.ParseCutoff(cmd.StartDate, loc)
}

// printCardList prints one aligned line per card. Titles are measured in
// terminal cells so wide scripts keep the columns straight.
func printCardList(w io.Writer, drafts []entities.Card) {
	fmt.Fprintln(w, "\n=== Cards ===")
	for i, card := range drafts {
		title := runewidth.Truncate(card.Source.DisplayTitle(), listTitleWidth, "...")
		fmt.Fprintf(w, "%3d. %s  %s\n", i+1, runewidth.FillRight(title, listTitleWidth), exporters.MetadataLine(card.Source))
	}
	fmt.Fprintln(w)
}
