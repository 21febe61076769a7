package dns

import (
	"fmt"
	"strings"
)

// ValidationError reports a missing or malformed option. It is raised before
// any request for the affected value is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// MissingOption returns the ValidationError for a required option left empty.
func MissingOption(name string) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf("Option %q must be specified", name)}
}

// HostTypeError reports a host list entry that is not a string.
type HostTypeError struct {
	Got string // null, boolean, number or object
}

func (e *HostTypeError) Error() string {
	return "Host must be a string, got " + e.Got
}

// HTTPError reports a transport-level response other than 200 OK.
type HTTPError struct {
	StatusCode int
	StatusText string // reason phrase, may be empty
}

func (e *HTTPError) Error() string {
	return strings.TrimSpace(fmt.Sprintf("Request failed with status %d %s", e.StatusCode, e.StatusText))
}

// ProtocolError reports a response body without the expected root element.
type ProtocolError struct {
	Root string
	Err  error // underlying parse error, if any
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("Invalid response, missing `%s` property", e.Root)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ProviderError reports a request the provider processed and rejected.
type ProviderError struct {
	Messages []string
}

func (e *ProviderError) Error() string {
	return "Failed to update record:\n" + strings.Join(e.Messages, "\n")
}
