package engine

import "fmt"

// InvalidContextError reports a query context that cannot be resolved.
// Consistent with the fail-fast policy, an unusable context produces a
// structured failure rather than an empty default result.
type InvalidContextError struct {
	// Field is the context field that failed validation.
	Field string

	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *InvalidContextError) Error() string {
	return fmt.Sprintf("invalid query context: %s: %s", e.Field, e.Message)
}
