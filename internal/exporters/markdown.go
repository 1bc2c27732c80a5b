package exporters

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/kindle-cards/internal/entities"
	"github.com/mrlokans/kindle-cards/internal/storage"
)

// MarkdownRenderer writes the intermediate document.
//
// The document at Path is always overwritten, never merged: edits made to a
// previous document are lost unless BackupPath is set, in which case the
// previous file is copied there first.
type MarkdownRenderer struct {
	Path       string
	BackupPath string
	Meta       entities.DocumentMeta
}

func NewMarkdownRenderer(path, backupPath string, meta entities.DocumentMeta) *MarkdownRenderer {
	return &MarkdownRenderer{
		Path:       path,
		BackupPath: backupPath,
		Meta:       meta,
	}
}

func (r *MarkdownRenderer) Export(cards []entities.Card) (ExportResult, error) {
	result := ExportResult{Path: r.Path}

	doc, err := GenerateMarkdown(cards, r.Meta)
	if err != nil {
		return result, err
	}

	if r.BackupPath != "" {
		copied, err := storage.Backup(r.Path, r.BackupPath)
		if err != nil {
			return result, fmt.Errorf("failed to back up %s: %w", r.Path, err)
		}
		if copied {
			result.BackupPath = r.BackupPath
		}
	}

	if err := storage.WriteFile(r.Path, doc); err != nil {
		return result, err
	}

	result.CardsProcessed = len(cards)
	return result, nil
}

// GenerateMarkdown renders the intermediate document. The output depends
// only on its arguments, so the same cards always give the same bytes.
func GenerateMarkdown(cards []entities.Card, meta entities.DocumentMeta) ([]byte, error) {
	var builder strings.Builder

	if meta.Generator == "" {
		meta.Generator = entities.Generator
	}
	frontmatter, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	fmt.Fprintf(&builder, "---\n")
	builder.Write(frontmatter)
	fmt.Fprintf(&builder, "---\n")

	for _, card := range cards {
		fmt.Fprintf(&builder, "\n## %s\n\n", card.Source.DisplayTitle())
		fmt.Fprintf(&builder, "`%s`\n\n", MetadataLine(card.Source))
		for _, line := range strings.Split(card.Front, "\n") {
			if line == "" {
				builder.WriteString(">\n")
				continue
			}
			fmt.Fprintf(&builder, "> %s\n", line)
		}
		fmt.Fprintf(&builder, "\n%s\n\n", entities.DefinitionHeading)
		if card.Back != "" {
			fmt.Fprintf(&builder, "%s\n", card.Back)
		}
	}

	return []byte(builder.String()), nil
}

// MetadataLine renders e.g. "highlight | page 8 | location 64-64 | added 2025-04-15 22:16:21".
func MetadataLine(c entities.Clipping) string {
	parts := []string{string(c.Kind)}
	if label := c.LocationLabel(); label != "" {
		parts = append(parts, label)
	}
	parts = append(parts, "added "+c.AddedAt.Format(entities.AddedLayout))
	return strings.Join(parts, " | ")
}
