package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClipping_DisplayTitle(t *testing.T) {
	assert.Equal(t, "The Selfish Gene (Richard Dawkins)",
		Clipping{Title: "The Selfish Gene", Author: "Richard Dawkins"}.DisplayTitle())
	assert.Equal(t, "Untitled notes", Clipping{Title: "Untitled notes"}.DisplayTitle())
}

func TestClipping_LocationLabel(t *testing.T) {
	tests := []struct {
		name     string
		clipping Clipping
		expected string
	}{
		{"page and location", Clipping{Page: 8, Location: 64, LocationEnd: 64}, "page 8 | location 64-64"},
		{"page range only", Clipping{Page: 207, PageEnd: 208}, "page 207-208"},
		{"location only", Clipping{Location: 346}, "location 346"},
		{"nothing", Clipping{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.clipping.LocationLabel())
		})
	}
}

func TestClipping_SamePosition(t *testing.T) {
	highlight := Clipping{Title: "Book", Author: "A", Location: 307, LocationEnd: 309}

	assert.True(t, highlight.SamePosition(Clipping{Title: "book", Author: "a", Location: 307}))
	assert.True(t, highlight.SamePosition(Clipping{Title: "Book", Author: "A", Location: 309}))
	assert.False(t, highlight.SamePosition(Clipping{Title: "Book", Author: "A", Location: 400}))
	assert.False(t, highlight.SamePosition(Clipping{Title: "Other", Author: "A", Location: 307}))
	assert.True(t, Clipping{Title: "B", Page: 3}.SamePosition(Clipping{Title: "B", Page: 3}))
	assert.False(t, Clipping{Title: "B"}.SamePosition(Clipping{Title: "B"}))
}

func TestCard_ID(t *testing.T) {
	added := time.Date(2022, 3, 20, 9, 0, 0, 0, time.UTC)
	card := NewCard(Clipping{Title: "Book", Kind: ClippingKindHighlight, Location: 10, AddedAt: added, Content: "text"})

	t.Run("stable across calls", func(t *testing.T) {
		assert.Equal(t, card.ID(), card.ID())
	})

	t.Run("ignores edits to front and back", func(t *testing.T) {
		edited := card
		edited.Front = "{{c1::text}}"
		edited.Back = "definition"
		assert.Equal(t, card.ID(), edited.ID())
	})

	t.Run("differs by location", func(t *testing.T) {
		other := card
		other.Source.Location = 11
		assert.NotEqual(t, card.ID(), other.ID())
	})
}

func TestDetectType(t *testing.T) {
	assert.Equal(t, CardTypeCloze, DetectType("a {{c1::word}} here"))
	assert.Equal(t, CardTypeBasic, DetectType("plain text"))
}

func TestSplitDisplayTitle(t *testing.T) {
	for _, clipping := range []Clipping{
		{Title: "The Selfish Gene", Author: "Richard Dawkins"},
		{Title: "Dune (Dune Chronicles)", Author: "Frank Herbert"},
		{Title: "Harry_Potter_und_die_Kammer_des_Schreckens"},
	} {
		title, author := SplitDisplayTitle(clipping.DisplayTitle())
		assert.Equal(t, clipping.Title, title)
		assert.Equal(t, clipping.Author, author)
	}
}
