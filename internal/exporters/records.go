package exporters

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/mrlokans/kindle-cards/internal/entities"
	"github.com/mrlokans/kindle-cards/internal/storage"
)

type RecordFormat string

const (
	RecordFormatJSON RecordFormat = "json"
	RecordFormatYAML RecordFormat = "yaml"
)

// ErrSchema indicates that the records do not match the published schema.
var ErrSchema = errors.New("records do not match schema")

//go:embed records.schema.json
var recordSchemaJSON string

var recordSchema = jsonschema.MustCompileString("records.schema.json", recordSchemaJSON)

// Record is one flashcard as consumed by the import application.
type Record struct {
	ID     string            `json:"id" yaml:"id"`
	Type   entities.CardType `json:"type" yaml:"type"`
	Front  string            `json:"front" yaml:"front"`
	Back   string            `json:"back" yaml:"back"`
	Source RecordSource      `json:"source" yaml:"source"`
}

type RecordSource struct {
	Title       string                `json:"title" yaml:"title"`
	Author      string                `json:"author,omitempty" yaml:"author,omitempty"`
	Kind        entities.ClippingKind `json:"kind" yaml:"kind"`
	Page        int                   `json:"page,omitempty" yaml:"page,omitempty"`
	PageEnd     int                   `json:"page_end,omitempty" yaml:"page_end,omitempty"`
	Location    int                   `json:"location,omitempty" yaml:"location,omitempty"`
	LocationEnd int                   `json:"location_end,omitempty" yaml:"location_end,omitempty"`
	AddedAt     string                `json:"added_at" yaml:"added_at"`
}

// NewRecord converts a validated card.
func NewRecord(card entities.Card) Record {
	src := card.Source
	return Record{
		ID:    card.ID(),
		Type:  card.Type,
		Front: card.Front,
		Back:  card.Back,
		Source: RecordSource{
			Title:       src.Title,
			Author:      src.Author,
			Kind:        src.Kind,
			Page:        src.Page,
			PageEnd:     src.PageEnd,
			Location:    src.Location,
			LocationEnd: src.LocationEnd,
			AddedAt:     src.AddedAt.Format(time.RFC3339),
		},
	}
}

// RecordExporter writes the final record file.
type RecordExporter struct {
	Path   string
	Format RecordFormat
}

func NewRecordExporter(path string, format RecordFormat) *RecordExporter {
	if format == "" {
		format = RecordFormatJSON
	}
	return &RecordExporter{
		Path:   path,
		Format: format,
	}
}

func (e *RecordExporter) Export(cards []entities.Card) (ExportResult, error) {
	result := ExportResult{Path: e.Path}

	data, err := e.Encode(cards)
	if err != nil {
		return result, err
	}
	if err := storage.WriteFile(e.Path, data); err != nil {
		return result, err
	}

	result.CardsProcessed = len(cards)
	return result, nil
}

// Encode serializes cards in the exporter's format. An empty sequence
// encodes as an empty list.
func (e *RecordExporter) Encode(cards []entities.Card) ([]byte, error) {
	records := make([]Record, 0, len(cards))
	for _, card := range cards {
		records = append(records, NewRecord(card))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	if err := validateRecords(data); err != nil {
		return nil, err
	}

	switch e.Format {
	case RecordFormatJSON:
		return append(data, '\n'), nil
	case RecordFormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return nil, fmt.Errorf("failed to encode records: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode records: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported record format %q", e.Format)
	}
}

func validateRecords(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode records: %w", err)
	}

	err := recordSchema.Validate(doc)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return fmt.Errorf("%w: %s", ErrSchema, strings.Join(schemaIssues(validationErr), "; "))
}

func schemaIssues(err *jsonschema.ValidationError) []string {
	var issues []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			issues = append(issues, fmt.Sprintf("%s: %s", node.InstanceLocation, node.Message))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
