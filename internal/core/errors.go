package core

import "fmt"

// ParseError is returned when a source document is not a well-formed list of
// groups.
type ParseError struct {
	Document string // Name of the offending document (path or "<stdin>")
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Document, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
