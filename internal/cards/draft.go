// Package cards turns parsed clippings into card drafts for the
// intermediate document.
//
// By default every clipping becomes its own card with an empty back side.
// When notes are merged, a note written at the position of the preceding
// highlight fills in that highlight's back side instead of producing a card
// of its own. Each note line is read with a small syntax:
//
//   - "term ... extra" hides every occurrence of term in the highlight as a
//     cloze deletion and puts extra on the back
//   - "term .. extra .. more" puts each part on its own back line
//   - anything else is copied to the back verbatim
package cards

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mrlokans/kindle-cards/internal/entities"
)

const (
	clozeSeparator = "..."
	extraSeparator = " .. "
)

type Options struct {
	MergeNotes bool
}

// Draft builds one card per clipping, or folds notes into their highlight
// when opts.MergeNotes is set. Source order is kept.
func Draft(clippings []entities.Clipping, opts Options) []entities.Card {
	drafts := make([]entities.Card, 0, len(clippings))
	lastHighlight := -1

	for _, clipping := range clippings {
		if opts.MergeNotes && clipping.Kind == entities.ClippingKindNote && lastHighlight >= 0 {
			target := &drafts[lastHighlight]
			if target.Source.SamePosition(clipping) {
				mergeNote(target, clipping.Content)
				continue
			}
		}

		drafts = append(drafts, entities.NewCard(clipping))
		if clipping.Kind == entities.ClippingKindHighlight {
			lastHighlight = len(drafts) - 1
		}
	}

	return drafts
}

func mergeNote(card *entities.Card, note string) {
	var back []string

	for _, line := range strings.Split(note, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if term, extra, ok := strings.Cut(line, clozeSeparator); ok {
			if front, clozed := clozeTerm(card.Front, strings.TrimSpace(term)); clozed {
				card.Front = front
				if extra = strings.TrimSpace(extra); extra != "" {
					back = append(back, extra)
				}
				continue
			}
		}

		if strings.Contains(line, extraSeparator) {
			for _, part := range strings.Split(line, extraSeparator) {
				if part = strings.TrimSpace(part); part != "" {
					back = append(back, part)
				}
			}
			continue
		}

		back = append(back, line)
	}

	if len(back) > 0 {
		joined := strings.Join(back, "\n")
		if card.Back == "" {
			card.Back = joined
		} else {
			card.Back = card.Back + "\n\n" + joined
		}
	}
	card.Type = entities.DetectType(card.Front)
}

// clozeSpan matches a cloze deletion already present in the front.
var clozeSpan = regexp.MustCompile(`\{\{c(\d+)::.*?\}\}`)

// clozeTerm wraps every case-insensitive occurrence of term in a numbered
// cloze deletion. Occurrences inside an existing deletion are left alone.
// Reports false when term is empty or absent.
func clozeTerm(front, term string) (string, bool) {
	if term == "" {
		return front, false
	}

	spans := clozeSpan.FindAllStringSubmatchIndex(front, -1)
	n := 1
	for _, span := range spans {
		if index, err := strconv.Atoi(front[span[2]:span[3]]); err == nil && index >= n {
			n = index + 1
		}
	}

	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(term))
	var out strings.Builder
	last, clozed := 0, false
	for _, match := range pattern.FindAllStringIndex(front, -1) {
		if insideSpan(match, spans) {
			continue
		}
		out.WriteString(front[last:match[0]])
		fmt.Fprintf(&out, "{{c%d::%s}}", n, front[match[0]:match[1]])
		last, clozed = match[1], true
	}
	if !clozed {
		return front, false
	}
	out.WriteString(front[last:])
	return out.String(), true
}

func insideSpan(match []int, spans [][]int) bool {
	for _, span := range spans {
		if match[0] < span[1] && match[1] > span[0] {
			return true
		}
	}
	return false
}
