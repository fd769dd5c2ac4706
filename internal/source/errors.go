package source

import "fmt"

// SourceNotFoundError is returned when a source path does not exist, can't
// be read, or holds no documents.
type SourceNotFoundError struct {
	Path string
	Err  error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Path, e.Err)
}

func (e *SourceNotFoundError) Unwrap() error { return e.Err }
