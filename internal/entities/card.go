package entities

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type CardType string

const (
	CardTypeBasic CardType = "basic"
	CardTypeCloze CardType = "cloze"
)

// ClozeMarker opens an Anki cloze deletion, e.g. "{{c1::term}}".
const ClozeMarker = "{{c"

// cardNamespace seeds the name-based card IDs so they stay stable between runs.
var cardNamespace = uuid.MustParse("6f1c7c0e-3b0d-4d55-9a43-2f4c7e0b8a11")

// Card is a clipping enriched with the fields the user fills in while
// reviewing the intermediate document.
type Card struct {
	Source Clipping
	Type   CardType
	Front  string
	Back   string
}

// NewCard drafts a basic card for a clipping with an empty back side.
func NewCard(clipping Clipping) Card {
	return Card{
		Source: clipping,
		Type:   CardTypeBasic,
		Front:  clipping.Content,
	}
}

// ID returns a UUIDv5 derived from the source metadata, so re-running the
// conversion on the same export yields the same identifiers.
func (c Card) ID() string {
	key := fmt.Sprintf("%s|%s|%s|%d|%d|%d",
		strings.ToLower(c.Source.Title),
		strings.ToLower(c.Source.Author),
		c.Source.Kind,
		c.Source.Page,
		c.Source.Location,
		c.Source.AddedAt.Unix(),
	)
	return uuid.NewSHA1(cardNamespace, []byte(key)).String()
}

// DetectType marks cards whose front carries a cloze deletion.
func DetectType(front string) CardType {
	if strings.Contains(front, ClozeMarker) {
		return CardTypeCloze
	}
	return CardTypeBasic
}
