package directory

import "fmt"

// NotFoundError means the directory has no record matching the query.
// Never retried; the caller decides how to proceed.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("directory has no match for %q", e.Query)
}

// ServiceUnavailableError means every retry attempt failed transiently.
// Recoverable by retrying the whole operation later.
type ServiceUnavailableError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("directory %s unavailable after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *ServiceUnavailableError) Unwrap() error {
	return e.Err
}
