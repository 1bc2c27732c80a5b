package kindle

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kindle-cards/internal/entities"
)

// Test fixtures are adapted from https://github.com/biokraft/kindle2readwise/tree/main/tests/fixtures

func TestParser_ParseEntries_BasicHighlight(t *testing.T) {
	input := `The_Power_of_Now (Eckhart Tolle)
- Your Highlight on page 8 | Location 64-64 | Added on Tuesday, April 15, 2025 10:16:21 PM

would change for the better. Values would shift in the flotsam
==========
`

	parser := NewParser(WithLocation(time.UTC))
	result, err := parser.ParseEntries(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Clippings) != 1 {
		t.Fatalf("expected 1 clipping, got %d", len(result.Clippings))
	}

	clipping := result.Clippings[0]
	if clipping.Title != "The_Power_of_Now" {
		t.Errorf("expected title 'The_Power_of_Now', got '%s'", clipping.Title)
	}
	if clipping.Author != "Eckhart Tolle" {
		t.Errorf("expected author 'Eckhart Tolle', got '%s'", clipping.Author)
	}
	if clipping.Kind != entities.ClippingKindHighlight {
		t.Errorf("expected kind highlight, got '%s'", clipping.Kind)
	}
	if clipping.Page != 8 {
		t.Errorf("expected page 8, got %d", clipping.Page)
	}
	if clipping.Location != 64 || clipping.LocationEnd != 64 {
		t.Errorf("expected location 64-64, got %d-%d", clipping.Location, clipping.LocationEnd)
	}
	expectedDate := time.Date(2025, 4, 15, 22, 16, 21, 0, time.UTC)
	if !clipping.AddedAt.Equal(expectedDate) {
		t.Errorf("expected date %s, got %s", expectedDate, clipping.AddedAt)
	}
	if clipping.Content != "would change for the better. Values would shift in the flotsam" {
		t.Errorf("unexpected content: %s", clipping.Content)
	}
}

func TestParser_ParseEntries_Note(t *testing.T) {
	input := `The_Power_of_Now (Eckhart Tolle)
- Your Note on page 31 | Location 307 | Added on Tuesday, April 15, 2025 11:33:26 PM

Watch the thinker or be present in the moment
==========
`

	result, err := NewParser().ParseEntries(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Clippings, 1)

	clipping := result.Clippings[0]
	assert.Equal(t, entities.ClippingKindNote, clipping.Kind)
	assert.Equal(t, 31, clipping.Page)
	assert.Equal(t, 307, clipping.Location)
	assert.Equal(t, 0, clipping.LocationEnd)
	assert.Equal(t, "Watch the thinker or be present in the moment", clipping.Content)
}

func TestParser_ParseEntries_Bookmark(t *testing.T) {
	input := `Fahrenheit 451 (Ray Bradbury)
- Your Bookmark at location 346 | Added on Saturday, 26 March 2016 15:46:21


==========
`

	result, err := NewParser().ParseEntries(strings.NewReader(input))
	require.NoError(t, err)

	// Bookmarks are reported as skipped, not as malformed
	assert.Empty(t, result.Clippings)
	assert.Empty(t, result.Warnings)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, entities.ClippingKindBookmark, result.Skipped[0].Kind)
	assert.Equal(t, "bookmark", result.Skipped[0].Reason)
	assert.Equal(t, "Fahrenheit 451 (Ray Bradbury)", result.Skipped[0].Title)
}

func TestParser_ParseEntries_LocationOnlyFormat(t *testing.T) {
	input := `Fahrenheit 451 (Ray Bradbury)
- Your Highlight at location 784-785 | Added on Saturday, 26 March 2016 18:37:26

Who knows who might be the target of the well-read man?
==========
`

	result, err := NewParser(WithLocation(time.UTC)).ParseEntries(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Clippings, 1)

	clipping := result.Clippings[0]
	assert.Equal(t, 784, clipping.Location)
	assert.Equal(t, 785, clipping.LocationEnd)
	assert.Equal(t, 0, clipping.Page)
	assert.Equal(t, time.Date(2016, 3, 26, 18, 37, 26, 0, time.UTC), clipping.AddedAt)
}

func TestParser_ParseEntries_NoAuthor(t *testing.T) {
	input := `Harry_Potter_und_die_Kammer_des_Schreckens
- Your Highlight on page 207-207 | Added on Monday, April 21, 2025 8:55:24 PM

Harry drehte sich auf die Seite
==========
`

	result, err := NewParser().ParseEntries(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Clippings, 1)

	clipping := result.Clippings[0]
	assert.Equal(t, "Harry_Potter_und_die_Kammer_des_Schreckens", clipping.Title)
	assert.Empty(t, clipping.Author)
	assert.Equal(t, 207, clipping.Page)
	assert.Equal(t, 207, clipping.PageEnd)
}

func TestParser_ParseEntries_MultiLineHighlight(t *testing.T) {
	input := `Test Book (Test Author)
- Your Highlight on page 1 | Location 10-15 | Added on Wednesday, January 1, 2025 12:00:00 PM

This highlight spans
multiple lines of text
that should be preserved.
==========
`

	result, err := NewParser().ParseEntries(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Clippings, 1)

	expectedText := "This highlight spans\nmultiple lines of text\nthat should be preserved."
	assert.Equal(t, expectedText, result.Clippings[0].Content)
}

func TestParser_ParseEntries_EmptyHighlight(t *testing.T) {
	input := `Test Book (Test Author)
- Your Highlight on Location 275 | Added on Monday, January 6, 2025 3:10:00 PM


==========
`

	result, err := NewParser().ParseEntries(strings.NewReader(input))
	require.NoError(t, err)

	assert.Empty(t, result.Clippings)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "empty content", result.Skipped[0].Reason)
}

func TestParser_ParseEntries_NoTrailingSeparator(t *testing.T) {
	input := `Test Book (Test Author)
- Your Highlight on page 1 | Added on Wednesday, January 1, 2025 12:00:00 PM

last entry without separator`

	result, err := NewParser().ParseEntries(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Clippings, 1)
	assert.Equal(t, "last entry without separator", result.Clippings[0].Content)
}

func TestParser_ParseEntries_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "\n\n", "   \n"} {
		result, err := NewParser().ParseEntries(strings.NewReader(input))
		require.NoError(t, err)
		assert.Empty(t, result.Clippings)
		assert.Zero(t, result.Entries)
	}
}

func TestParser_ParseEntries_SampleFile(t *testing.T) {
	f, err := os.Open("testdata/sample_clippings.txt")
	require.NoError(t, err)
	defer f.Close()

	result, err := NewParser().ParseEntries(f)
	require.NoError(t, err)

	assert.Equal(t, 6, result.Entries)

	// Source order is preserved and malformed/skipped entries are left out
	titles := make([]string, 0, len(result.Clippings))
	for _, c := range result.Clippings {
		titles = append(titles, c.Title)
	}
	assert.Equal(t, []string{
		"The_Power_of_Now",
		"The_Power_of_Now",
		"Fahrenheit 451",
		"Harry_Potter_und_die_Kammer_des_Schreckens",
	}, titles)

	// The byte order mark and CRLF line endings of the first entry are stripped
	assert.Equal(t, "would change for the better. Values would shift in the flotsam", result.Clippings[0].Content)
	assert.Equal(t, "Harry drehte sich auf die Seite\nund schlief ein.", result.Clippings[3].Content)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 3, result.Skipped[0].Index)

	require.Len(t, result.Warnings, 1)
	warning := result.Warnings[0]
	assert.Equal(t, 5, warning.Index)
	assert.True(t, errors.Is(warning, ErrUnknownDateFormat))
	assert.Contains(t, warning.Error(), "entry 5")
}

func TestParser_ParseEntries_StrictAbortsOnFirstMalformed(t *testing.T) {
	f, err := os.Open("testdata/sample_clippings.txt")
	require.NoError(t, err)
	defer f.Close()

	_, err = NewParser(WithStrict(true)).ParseEntries(f)
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 5, parseErr.Index)
}

func TestParser_ParseEntries_AllMalformed(t *testing.T) {
	f, err := os.Open("testdata/malformed_only.txt")
	require.NoError(t, err)
	defer f.Close()

	_, err = NewParser().ParseEntries(f)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoEntries))

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Zero(t, parseErr.Index)
}

func TestParser_ParseEntries_CustomDateLayout(t *testing.T) {
	input := `Test Book (Test Author)
- Your Highlight on page 1 | Added on 2022-03-20 14:05

ISO dated highlight
==========
`

	_, err := NewParser().ParseEntries(strings.NewReader(input))
	require.Error(t, err, "ISO dates are not a default layout")

	result, err := NewParser(WithDateLayouts("2006-01-02 15:04"), WithLocation(time.UTC)).
		ParseEntries(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Clippings, 1)
	assert.Equal(t, time.Date(2022, 3, 20, 14, 5, 0, 0, time.UTC), result.Clippings[0].AddedAt)
}

func TestParseTitleAuthor(t *testing.T) {
	tests := []struct {
		line   string
		title  string
		author string
	}{
		{"The Selfish Gene (Richard Dawkins)", "The Selfish Gene", "Richard Dawkins"},
		{"Dune (Dune Chronicles) (Frank Herbert)", "Dune (Dune Chronicles)", "Frank Herbert"},
		{"Just A Title", "Just A Title", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			title, author := parseTitleAuthor(tt.line)
			assert.Equal(t, tt.title, title)
			assert.Equal(t, tt.author, author)
		})
	}
}

func TestParser_ParseEntries_HighlightsWithNotes(t *testing.T) {
	f, err := os.Open("testdata/with_notes.txt")
	require.NoError(t, err)
	defer f.Close()

	result, err := NewParser().ParseEntries(f)
	require.NoError(t, err)
	require.Len(t, result.Clippings, 4)

	kinds := []entities.ClippingKind{}
	for _, c := range result.Clippings {
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []entities.ClippingKind{
		entities.ClippingKindHighlight,
		entities.ClippingKindNote,
		entities.ClippingKindHighlight,
		entities.ClippingKindNote,
	}, kinds)
	assert.True(t, result.Clippings[0].SamePosition(result.Clippings[1]))
	assert.Equal(t, "Cognitive Revolution ... the emergence of fictive language", result.Clippings[1].Content)
}
