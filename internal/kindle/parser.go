package kindle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/kindle-cards/internal/entities"
)

const (
	entrySeparator = "=========="
	byteOrderMark  = "\ufeff"
	maxLineSize    = 1024 * 1024
)

// Regex patterns for parsing metadata lines
var (
	// Matches: "- Your Highlight on page 8 | Location 64-64 | Added on Tuesday, April 15, 2025 10:16:21 PM"
	// or: "- Your Note on page 31 | Location 307 | Added on Tuesday, April 15, 2025 11:33:26 PM"
	// or: "- Your Highlight at location 784-785 | Added on Saturday, 26 March 2016 18:37:26"
	// or: "- Your Bookmark at location 346 | Added on Saturday, 26 March 2016 15:46:21"
	metadataPattern = regexp.MustCompile(`(?i)^- Your (Highlight|Note|Bookmark)\b`)

	// Page patterns: "on page 8" or "on page 207-207"
	pagePattern = regexp.MustCompile(`(?i)(?:on )?page (\d+)(?:-(\d+))?`)

	// Location patterns: "Location 64-64" or "location 1406-1407" or "at location 784-785"
	locationPattern = regexp.MustCompile(`(?i)(?:at )?location (\d+)(?:-(\d+))?`)
)

// DefaultDateLayouts are the "Added on" formats observed in the wild:
// "Tuesday, April 15, 2025 10:16:21 PM" and "Saturday, 26 March 2016 14:59:39".
var DefaultDateLayouts = []string{
	"Monday, January 2, 2006 3:04:05 PM",
	"Monday, January 2, 2006 15:04:05",
	"Monday, 2 January 2006 3:04:05 PM",
	"Monday, 2 January 2006 15:04:05",
	"January 2, 2006 3:04:05 PM",
	"2 January 2006 15:04:05",
}

// SkippedEntry is a well-formed entry that was intentionally not converted.
type SkippedEntry struct {
	Index  int
	Kind   entities.ClippingKind
	Title  string
	Reason string
}

// ParseResult is the outcome of parsing a whole export.
type ParseResult struct {
	Clippings []entities.Clipping
	Warnings  []*ParseError
	Skipped   []SkippedEntry
	Entries   int
}

// Parser parses Kindle My Clippings.txt format
type Parser struct {
	dateLayouts []string
	location    *time.Location
	strict      bool
}

type Option func(*Parser)

// WithDateLayouts registers additional date layouts, tried after the defaults.
func WithDateLayouts(layouts ...string) Option {
	return func(p *Parser) {
		for _, layout := range layouts {
			if layout = strings.TrimSpace(layout); layout != "" {
				p.dateLayouts = append(p.dateLayouts, layout)
			}
		}
	}
}

// WithLocation sets the zone the export's wall-clock dates are read in.
func WithLocation(loc *time.Location) Option {
	return func(p *Parser) {
		if loc != nil {
			p.location = loc
		}
	}
}

// WithStrict makes the first malformed entry abort the parse.
func WithStrict(strict bool) Option {
	return func(p *Parser) {
		p.strict = strict
	}
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{
		dateLayouts: append([]string(nil), DefaultDateLayouts...),
		location:    time.Local,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// entryResult is the tagged outcome of a single block: exactly one of
// clipping, skip or err is meaningful.
type entryResult struct {
	clipping entities.Clipping
	skip     string
	err      error
}

// ParseEntries parses individual clipping entries from the reader, keeping
// their source order. Malformed entries are reported in ParseResult.Warnings
// unless the parser is strict.
func (p *Parser) ParseEntries(r io.Reader) (*ParseResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	result := &ParseResult{}
	var currentLines []string
	lineNo, startLine := 0, 1

	flush := func() error {
		defer func() { currentLines = nil }()
		if isBlank(currentLines) {
			return nil
		}
		result.Entries++
		return p.collect(result, result.Entries, startLine, currentLines)
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == entrySeparator {
			if err := flush(); err != nil {
				return nil, err
			}
			startLine = lineNo + 1
			continue
		}

		currentLines = append(currentLines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading clippings: %w", err)
	}

	// Handle last entry if file doesn't end with separator
	if err := flush(); err != nil {
		return nil, err
	}

	if result.Entries > 0 && len(result.Warnings) == result.Entries {
		return nil, &ParseError{
			Reason: fmt.Sprintf("all %d entries are malformed", result.Entries),
			Err:    ErrNoEntries,
		}
	}

	return result, nil
}

func (p *Parser) collect(result *ParseResult, index, line int, lines []string) error {
	outcome := p.parseEntry(lines)

	switch {
	case outcome.err != nil:
		parseErr := &ParseError{Index: index, Line: line, Reason: outcome.err.Error(), Err: outcome.err}
		if p.strict {
			return parseErr
		}
		result.Warnings = append(result.Warnings, parseErr)
	case outcome.skip != "":
		result.Skipped = append(result.Skipped, SkippedEntry{
			Index:  index,
			Kind:   outcome.clipping.Kind,
			Title:  outcome.clipping.DisplayTitle(),
			Reason: outcome.skip,
		})
	default:
		result.Clippings = append(result.Clippings, outcome.clipping)
	}
	return nil
}

func (p *Parser) parseEntry(lines []string) entryResult {
	lines = trimLeadingBlank(lines)
	if len(lines) < 2 {
		return entryResult{err: ErrEntryTooShort}
	}

	// First line: Title (Author) or just Title
	titleLine := strings.TrimSpace(strings.TrimPrefix(lines[0], byteOrderMark))
	title, author := parseTitleAuthor(titleLine)

	// Second line: Metadata (type, page, location, date)
	metadataLine := strings.TrimSpace(lines[1])
	matches := metadataPattern.FindStringSubmatch(metadataLine)
	if matches == nil {
		return entryResult{err: fmt.Errorf("%w: %q", ErrInvalidMetadata, metadataLine)}
	}

	clipping := entities.Clipping{
		Title:  title,
		Author: author,
		Kind:   entities.ClippingKind(strings.ToLower(matches[1])),
	}
	clipping.Page, clipping.PageEnd = parseRange(pagePattern, metadataLine)
	clipping.Location, clipping.LocationEnd = parseRange(locationPattern, metadataLine)

	addedAt, err := p.parseDate(metadataLine)
	if err != nil {
		return entryResult{err: err}
	}
	clipping.AddedAt = addedAt
	clipping.Content = parseContent(lines[2:])

	// Bookmarks are skipped entirely (they have no text content)
	if clipping.Kind == entities.ClippingKindBookmark {
		return entryResult{clipping: clipping, skip: "bookmark"}
	}
	if clipping.Content == "" {
		return entryResult{clipping: clipping, skip: "empty content"}
	}

	return entryResult{clipping: clipping}
}

// parseContent drops the blank line that follows the metadata and keeps the
// rest verbatim.
func parseContent(lines []string) string {
	var textLines []string
	startContent := false
	for _, line := range lines {
		if !startContent && strings.TrimSpace(line) == "" {
			startContent = true
			continue
		}
		startContent = true
		textLines = append(textLines, line)
	}
	return strings.TrimSpace(strings.Join(textLines, "\n"))
}

func parseTitleAuthor(line string) (title, author string) {
	// No author in parentheses, the whole line is the title
	return entities.SplitDisplayTitle(line)
}

func parseRange(pattern *regexp.Regexp, line string) (start, end int) {
	matches := pattern.FindStringSubmatch(line)
	if len(matches) >= 2 {
		start, _ = strconv.Atoi(matches[1])
		if len(matches) >= 3 && matches[2] != "" {
			end, _ = strconv.Atoi(matches[2])
		}
	}
	return
}

func (p *Parser) parseDate(line string) (time.Time, error) {
	// Extract the date part after "Added on"
	idx := strings.Index(strings.ToLower(line), "added on")
	if idx == -1 {
		return time.Time{}, fmt.Errorf("%w: no \"Added on\" in %q", ErrUnknownDateFormat, line)
	}

	dateStr := strings.TrimSpace(line[idx+len("added on"):])
	for _, layout := range p.dateLayouts {
		t, err := time.ParseInLocation(layout, dateStr, p.location)
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownDateFormat, dateStr)
}

func trimLeadingBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(strings.TrimPrefix(lines[0], byteOrderMark)) == "" {
		lines = lines[1:]
	}
	return lines
}

func isBlank(lines []string) bool {
	return len(trimLeadingBlank(lines)) == 0
}
