package doc

import "fmt"

// SchemaError represents a structural error in a document's metadata or body.
// It is fatal at load time: a store is never constructed from a batch that
// contains a schema error.
type SchemaError struct {
	// Document is the name of the offending document, if it could be
	// determined (a document missing its name reports the source file
	// instead).
	Document string

	// Field is the field or section that failed validation
	// (e.g. "name", "relation.kind", "sections[2].topic").
	Field string

	// Message describes the error.
	Message string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.Document != "" {
		return fmt.Sprintf("schema error in document %q at %s: %s", e.Document, e.Field, e.Message)
	}
	return fmt.Sprintf("schema error at %s: %s", e.Field, e.Message)
}

// ParseError represents a YAML syntax error in a document source.
type ParseError struct {
	// SourceFile is the path of the file that failed to parse.
	SourceFile string

	// Message describes the parsing error.
	Message string

	// Cause is the underlying YAML parser error.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error in %q: %s: %v", e.SourceFile, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error in %q: %s", e.SourceFile, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
