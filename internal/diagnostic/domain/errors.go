package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogNotFound is returned when no catalog is registered under a key.
	ErrCatalogNotFound = errors.New("catalog not found")
	// ErrMissingAnswer marks a question that received no value.
	ErrMissingAnswer = errors.New("answer is missing")
)

// ParseError reports a submitted value that is missing or not an integer.
type ParseError struct {
	Question int
	Value    string
	Err      error
}

func (e *ParseError) Error() string {
	if errors.Is(e.Err, ErrMissingAnswer) {
		return fmt.Sprintf("question_%d: %v", e.Question, e.Err)
	}
	return fmt.Sprintf("question_%d: cannot parse %q as integer", e.Question, e.Value)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SelectionError reports a parsed value that does not select any option.
type SelectionError struct {
	Question int
	Value    int
	Mode     AnswerMode
	Options  int
}

func (e *SelectionError) Error() string {
	if e.Mode == AnswerModeScore {
		return fmt.Sprintf("question_%d: score %d does not match any option", e.Question, e.Value)
	}
	return fmt.Sprintf("question_%d: option %d out of range [0,%d)", e.Question, e.Value, e.Options)
}
