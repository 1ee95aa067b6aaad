package source

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a malformed query source: SQL that does not
// prepare, or arguments that do not match the statement's placeholders.
// It is raised synchronously from Prepare, before any observer is attached.
type ConfigurationError struct {
	// Query is the offending SQL text.
	Query string

	// Message describes the problem.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err is (or wraps) a
// ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
