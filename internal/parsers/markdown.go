package parsers

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/mrlokans/kindle-cards/internal/entities"
)

// CardLoader reads the reviewed intermediate document back into cards.
type CardLoader struct {
	location *time.Location
}

// NewCardLoader returns a loader that reads "added" stamps in loc unless the
// document's frontmatter names a time zone.
func NewCardLoader(loc *time.Location) *CardLoader {
	if loc == nil {
		loc = time.Local
	}
	return &CardLoader{location: loc}
}

// Load returns the cards of the document in document order, or the first
// *ValidationError found. Nothing is dropped or corrected.
func (l *CardLoader) Load(data []byte) ([]entities.Card, error) {
	cards, errs := l.load(data)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return cards, nil
}

// ValidateAll checks the whole document and reports every problem as
// ValidationErrors. The cards that passed are returned either way.
func (l *CardLoader) ValidateAll(data []byte) ([]entities.Card, error) {
	cards, errs := l.load(data)
	if len(errs) > 0 {
		return cards, errs
	}
	return cards, nil
}

// ReadMeta splits the frontmatter off the document.
func ReadMeta(data []byte) (entities.DocumentMeta, []byte, error) {
	var meta entities.DocumentMeta
	if len(bytes.TrimSpace(data)) == 0 {
		return meta, nil, nil
	}

	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return meta, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta, body, nil
}

type heading struct {
	line  int
	level int
	title string
}

// section is one "## " block of the document, without the heading line.
type section struct {
	position    int
	title       string
	firstLine   int // 1-based document line of lines[0]
	lines       []string
	definitions []int // indexes into lines
}

func (l *CardLoader) load(data []byte) ([]entities.Card, ValidationErrors) {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	meta, body, err := ReadMeta(data)
	if err != nil {
		return nil, ValidationErrors{{Rule: RuleStructure, Detail: err.Error()}}
	}

	loc := l.location
	if meta.Timezone != "" {
		zone, err := time.LoadLocation(meta.Timezone)
		if err != nil {
			return nil, ValidationErrors{{Rule: RuleStructure, Detail: fmt.Sprintf("unknown timezone %q", meta.Timezone)}}
		}
		loc = zone
	}

	offset := 0
	if bytes.HasSuffix(data, body) {
		offset = bytes.Count(data[:len(data)-len(body)], []byte("\n"))
	}

	lines := strings.Split(string(body), "\n")
	headings := findHeadings(body)

	var errs ValidationErrors
	var sections []section

	for i, line := range lines {
		if len(headings) > 0 && headings[0].level == 2 && i >= headings[0].line {
			break
		}
		if strings.TrimSpace(line) != "" {
			errs = append(errs, &ValidationError{
				Rule:   RuleStructure,
				Detail: fmt.Sprintf("unexpected text before the first card at line %d: %q", offset+i+1, strings.TrimSpace(line)),
			})
			break
		}
	}

	for _, h := range headings {
		if h.level == 2 {
			sections = append(sections, section{
				position:  len(sections) + 1,
				title:     h.title,
				firstLine: offset + h.line + 2,
			})
			continue
		}
		if len(sections) > 0 {
			current := &sections[len(sections)-1]
			current.definitions = append(current.definitions, h.line)
		}
	}

	for i := range sections {
		start := sections[i].firstLine - offset - 1
		end := len(lines)
		if i+1 < len(sections) {
			end = sections[i+1].firstLine - offset - 2
		}
		sections[i].lines = lines[start:end]
		for j, line := range sections[i].definitions {
			sections[i].definitions[j] = line - start
		}
	}

	cards := make([]entities.Card, 0, len(sections))
	for _, sec := range sections {
		card, cardErrs := parseCard(sec, loc)
		if len(cardErrs) > 0 {
			errs = append(errs, cardErrs...)
			continue
		}
		cards = append(cards, card)
	}

	return cards, errs
}

// findHeadings returns the top-level ATX card headings and Definition
// headings with their 0-based line numbers. Headings nested in quotes or
// lists and lines inside code blocks are not top-level nodes, so they never
// split the document.
func findHeadings(body []byte) []heading {
	doc := goldmark.DefaultParser().Parse(text.NewReader(body))

	var headings []heading
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		node, ok := n.(*ast.Heading)
		if !ok || node.Lines().Len() == 0 {
			continue
		}

		segment := node.Lines().At(0)
		lineStart := bytes.LastIndexByte(body[:segment.Start], '\n') + 1
		// Setext headings have their text at the start of the line
		if !strings.HasPrefix(strings.TrimLeft(string(body[lineStart:segment.Start]), " "), "#") {
			continue
		}

		h := heading{
			line:  bytes.Count(body[:segment.Start], []byte("\n")),
			level: node.Level,
		}
		switch {
		case h.level == 2:
			// Raw line, so a trailing " #" stays part of the title
			h.title = rawHeadingText(body, lineStart, node.Level)
		case h.level == 3 && isDefinitionTitle(string(segment.Value(body))):
		default:
			continue
		}
		headings = append(headings, h)
	}
	return headings
}

// rawHeadingText returns the ATX heading line starting at lineStart without
// its opening "#" run.
func rawHeadingText(body []byte, lineStart, level int) string {
	line := body[lineStart:]
	if end := bytes.IndexByte(line, '\n'); end >= 0 {
		line = line[:end]
	}
	trimmed := strings.TrimLeft(string(line), " ")
	return strings.TrimSpace(trimmed[level:])
}

func isDefinitionTitle(title string) bool {
	want := strings.TrimPrefix(entities.DefinitionHeading, "### ")
	return strings.EqualFold(strings.TrimSpace(strings.TrimSuffix(title, ":")), want)
}

func parseCard(sec section, loc *time.Location) (entities.Card, ValidationErrors) {
	var errs ValidationErrors
	fail := func(rule Rule, format string, args ...any) {
		errs = append(errs, &ValidationError{
			Position: sec.position,
			Title:    sec.title,
			Rule:     rule,
			Detail:   fmt.Sprintf(format, args...),
		})
	}

	title, author := entities.SplitDisplayTitle(sec.title)
	card := entities.Card{Source: entities.Clipping{Title: title, Author: author}}

	head := sec.lines
	if len(sec.definitions) > 0 {
		head = sec.lines[:sec.definitions[0]]
	}

	var (
		metadata   string
		hasMeta    bool
		quote      []string
		strayLine  int
		strayValue string
	)
	for i, line := range head {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			if len(quote) > 0 {
				quote = append(quote, "")
			}
		case strings.HasPrefix(trimmed, "`") && !hasMeta && len(quote) == 0:
			metadata, hasMeta = trimmed, true
		case strings.HasPrefix(trimmed, ">"):
			// Only the marker is removed, the rest of the line is content
			content := strings.TrimPrefix(strings.TrimLeft(line, " \t"), ">")
			quote = append(quote, strings.TrimPrefix(content, " "))
		default:
			if strayLine == 0 {
				strayLine, strayValue = sec.firstLine+i, trimmed
			}
		}
	}

	if !hasMeta {
		fail(RuleMetadata, "metadata line is missing")
	} else if err := parseMetadata(metadata, loc, &card.Source); err != nil {
		fail(RuleMetadata, "%v", err)
	}

	card.Front = strings.TrimSpace(strings.Join(quote, "\n"))
	card.Source.Content = card.Front
	card.Type = entities.DetectType(card.Front)
	switch {
	case len(quote) == 0:
		fail(RuleFront, "quote block is missing")
	case card.Front == "":
		fail(RuleFront, "quote block is empty")
	}

	switch len(sec.definitions) {
	case 0:
		fail(RuleDefinitionMarker, "%q heading is missing", entities.DefinitionHeading)
	case 1:
	default:
		fail(RuleDefinitionMarker, "found %d %q headings, expected one", len(sec.definitions), entities.DefinitionHeading)
	}

	if strayLine > 0 {
		fail(RuleStructure, "unexpected text at line %d: %q", strayLine, strayValue)
	}

	if len(sec.definitions) == 1 {
		back := sec.lines[sec.definitions[0]+1:]
		card.Back = strings.TrimSpace(strings.Join(back, "\n"))
		if card.Back == "" {
			fail(RuleBack, "definition is empty")
		}
	}

	return card, errs
}

// parseMetadata reads a line such as
// "`highlight | page 8 | location 64-64 | added 2025-04-15 22:16:21`".
func parseMetadata(line string, loc *time.Location, clipping *entities.Clipping) error {
	parts := strings.Split(strings.TrimSpace(strings.Trim(line, "`")), "|")

	kind := entities.ClippingKind(strings.ToLower(strings.TrimSpace(parts[0])))
	if !kind.Valid() || kind == entities.ClippingKindBookmark {
		return fmt.Errorf("unknown clipping kind %q", strings.TrimSpace(parts[0]))
	}
	clipping.Kind = kind

	var err error
	added := false
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		key, value, _ := strings.Cut(part, " ")
		value = strings.TrimSpace(value)

		switch strings.ToLower(key) {
		case "page":
			clipping.Page, clipping.PageEnd, err = parseRange(value)
		case "location":
			clipping.Location, clipping.LocationEnd, err = parseRange(value)
		case "added":
			clipping.AddedAt, err = time.ParseInLocation(entities.AddedLayout, value, loc)
			if err != nil {
				err = fmt.Errorf("added date %q does not match %s", value, entities.AddedLayout)
			}
			added = true
		default:
			err = fmt.Errorf("unexpected field %q", part)
		}
		if err != nil {
			return err
		}
	}

	if !added {
		return fmt.Errorf("added date is missing")
	}
	return nil
}

func parseRange(value string) (start, end int, err error) {
	first, last, isRange := strings.Cut(value, "-")
	if start, err = strconv.Atoi(first); err != nil || start <= 0 {
		return 0, 0, fmt.Errorf("invalid range %q", value)
	}
	if isRange {
		if end, err = strconv.Atoi(last); err != nil || end <= 0 {
			return 0, 0, fmt.Errorf("invalid range %q", value)
		}
	}
	return start, end, nil
}
