package harvest

import (
	"errors"
	"fmt"
)

// ErrYearNotFound is returned when no heading, data line or filename reveals
// the report year. It is fatal for the document.
var ErrYearNotFound = errors.New("report year not found")

// YearNotFoundError names the document whose year could not be determined.
type YearNotFoundError struct {
	Document string
}

func (e *YearNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Document, ErrYearNotFound)
}

func (e *YearNotFoundError) Unwrap() error {
	return ErrYearNotFound
}
