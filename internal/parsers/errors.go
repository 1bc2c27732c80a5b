package parsers

import (
	"fmt"
	"strings"
)

// Rule names the check a card section failed.
type Rule string

const (
	RuleMetadata         Rule = "metadata"
	RuleFront            Rule = "front"
	RuleDefinitionMarker Rule = "definition-marker"
	RuleStructure        Rule = "structure"
	RuleBack             Rule = "back"
)

// ValidationError reports the first problem found in one card section of the
// intermediate document.
type ValidationError struct {
	Position int // 1-based card position, 0 for text outside any card
	Title    string
	Rule     Rule
	Detail   string
}

func (e *ValidationError) Error() string {
	if e.Position == 0 {
		return fmt.Sprintf("document: %s: %s", e.Rule, e.Detail)
	}
	return fmt.Sprintf("card %d %q: %s: %s", e.Position, e.Title, e.Rule, e.Detail)
}

// ValidationErrors is every problem of a document, in document order.
type ValidationErrors []*ValidationError

func (errs ValidationErrors) Error() string {
	switch len(errs) {
	case 0:
		return "no validation errors"
	case 1:
		return errs[0].Error()
	}

	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  %s", len(errs), strings.Join(messages, "\n  "))
}

func (errs ValidationErrors) Unwrap() []error {
	unwrapped := make([]error, 0, len(errs))
	for _, err := range errs {
		unwrapped = append(unwrapped, err)
	}
	return unwrapped
}
