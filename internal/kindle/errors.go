package kindle

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEntries indicates that the export had entry blocks but none of them could be parsed
	ErrNoEntries = errors.New("no parseable entries in clippings file")

	// ErrEntryTooShort indicates a block without a metadata line
	ErrEntryTooShort = errors.New("entry too short")

	// ErrInvalidMetadata indicates the second line is not a "- Your ..." metadata line
	ErrInvalidMetadata = errors.New("invalid metadata line")

	// ErrUnknownDateFormat indicates that none of the configured date layouts matched
	ErrUnknownDateFormat = errors.New("unknown date format")
)

// ParseError describes a malformed entry of the export.
type ParseError struct {
	Index  int // 1-based entry index, 0 when the error is about the whole file
	Line   int // line on which the entry starts
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Index == 0 {
		return fmt.Sprintf("parse clippings: %s", e.Reason)
	}
	return fmt.Sprintf("entry %d (line %d): %s", e.Index, e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
