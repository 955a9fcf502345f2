package pptxjson

import (
	"errors"
	"fmt"
)

// ErrPartNotFound is returned when a zip entry or XML part does not exist.
var ErrPartNotFound = errors.New("part not found in package")

// ArchiveError reports a failed read of a single archive entry. Element-level
// resolvers log it and degrade the element; only package-level parts
// (presentation.xml, slide parts) surface it from Convert.
type ArchiveError struct {
	Path string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive entry %s: %v", e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err wraps ErrPartNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPartNotFound)
}
