package store

import "fmt"

// NotFoundError reports a lookup for a document name that does not exist in
// the store. It is fatal for the specific lookup only, not for the store.
type NotFoundError struct {
	// Name is the document name that was requested.
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %q not found", e.Name)
}

// LoadError represents a file system level failure while loading document
// sources (missing path, permission denied, unreadable file).
type LoadError struct {
	// Path is the file or directory that failed to load.
	Path string

	// Message describes the error.
	Message string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load documents from %q: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load documents from %q: %s", e.Path, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}
