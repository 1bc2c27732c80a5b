package entities

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Title with author: "Book Title (Author Name)". Some books don't have the
// author in parentheses.
var titleAuthorPattern = regexp.MustCompile(`^(.+?)\s*\(([^)]+)\)\s*$`)

// ClippingKind is the annotation type reported by the e-reader.
type ClippingKind string

const (
	ClippingKindHighlight ClippingKind = "highlight"
	ClippingKindNote      ClippingKind = "note"
	ClippingKindBookmark  ClippingKind = "bookmark"
)

// Valid reports whether k is one of the known kinds.
func (k ClippingKind) Valid() bool {
	switch k {
	case ClippingKindHighlight, ClippingKindNote, ClippingKindBookmark:
		return true
	}
	return false
}

// Clipping is a single highlight, note or bookmark taken from the export.
type Clipping struct {
	Title  string
	Author string
	Kind   ClippingKind

	// Location information, 0 when the export did not carry it
	Page        int
	PageEnd     int
	Location    int
	LocationEnd int

	AddedAt time.Time
	Content string
}

// DisplayTitle joins title and author back into the "Title (Author)" form
// used by the export.
func (c Clipping) DisplayTitle() string {
	if c.Author == "" {
		return c.Title
	}
	return fmt.Sprintf("%s (%s)", c.Title, c.Author)
}

// SplitDisplayTitle is the inverse of DisplayTitle. The last parenthesized
// group is taken as the author.
func SplitDisplayTitle(line string) (title, author string) {
	matches := titleAuthorPattern.FindStringSubmatch(line)
	if len(matches) == 3 {
		return strings.TrimSpace(matches[1]), strings.TrimSpace(matches[2])
	}
	return strings.TrimSpace(line), ""
}

// LocationLabel renders the page and location ranges, e.g.
// "page 8 | location 64-64". Returns an empty string when neither is known.
func (c Clipping) LocationLabel() string {
	var parts []string
	if c.Page > 0 {
		parts = append(parts, "page "+formatRange(c.Page, c.PageEnd))
	}
	if c.Location > 0 {
		parts = append(parts, "location "+formatRange(c.Location, c.LocationEnd))
	}
	return strings.Join(parts, " | ")
}

// SamePosition reports whether both clippings point at the same spot of the
// same book. Kindle writes a note with the start location of the highlight
// it belongs to.
func (c Clipping) SamePosition(other Clipping) bool {
	if !strings.EqualFold(c.Title, other.Title) || !strings.EqualFold(c.Author, other.Author) {
		return false
	}
	if c.Location > 0 && other.Location > 0 {
		return c.Location == other.Location || (c.LocationEnd > 0 && c.LocationEnd == other.Location)
	}
	if c.Page > 0 && other.Page > 0 {
		return c.Page == other.Page
	}
	return false
}

func formatRange(start, end int) string {
	if end > 0 {
		return fmt.Sprintf("%d-%d", start, end)
	}
	return fmt.Sprintf("%d", start)
}
