package cli

import (
	"errors"

	"github.com/mrlokans/kindle-cards/internal/exporters"
	"github.com/mrlokans/kindle-cards/internal/kindle"
	"github.com/mrlokans/kindle-cards/internal/parsers"
)

// Process exit codes
const (
	ExitOK         = 0
	ExitFailure    = 1 // I/O, configuration and anything unexpected
	ExitParse      = 2
	ExitValidation = 3
)

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	var parseErr *kindle.ParseError
	var validationErr *parsers.ValidationError

	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &parseErr):
		return ExitParse
	case errors.As(err, &validationErr), errors.Is(err, exporters.ErrSchema):
		return ExitValidation
	default:
		return ExitFailure
	}
}
