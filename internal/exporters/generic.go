package exporters

import "github.com/mrlokans/kindle-cards/internal/entities"

// CardExporter writes a card sequence to its destination.
type CardExporter interface {
	Export(cards []entities.Card) (ExportResult, error)
}

var (
	_ CardExporter = (*MarkdownRenderer)(nil)
	_ CardExporter = (*RecordExporter)(nil)
)

type ExportResult struct {
	Path           string `json:"path"`
	CardsProcessed int    `json:"cards_processed"`
	BackupPath     string `json:"backup_path,omitempty"` // set when a previous file was backed up
}
