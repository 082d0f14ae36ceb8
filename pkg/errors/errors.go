// Package errors defines the error types returned by the Reddit client.
//
// Every core operation returns one of these as a plain value; nothing is
// retried internally and facades hand them back unchanged, so callers can
// branch with errors.As on the concrete type.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnexpectedShape is wrapped by a ParseError when a response decoded as
// JSON but did not have the structure the endpoint promises, for example an
// empty array from the post comments endpoint.
var ErrUnexpectedShape = stderrors.New("unexpected response shape")

// ConfigError indicates a problem with the client configuration.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// MissingCredentialsError is returned when a user-context operation is
// attempted without the credentials it needs. It is always produced before
// any network call.
type MissingCredentialsError struct {
	// Fields lists the credential fields that were empty.
	Fields []string
}

func (e *MissingCredentialsError) Error() string {
	if len(e.Fields) == 0 {
		return "missing credentials"
	}
	return "missing credentials: " + strings.Join(e.Fields, ", ")
}

// TransportError indicates the request never produced an HTTP response:
// DNS, TLS, connection reset, timeout or context cancellation.
type TransportError struct {
	// Operation is the name of the operation that failed
	Operation string
	// URL is the URL that was being accessed
	URL string
	// Err is the underlying transport error
	Err error
}

func (e *TransportError) Error() string {
	msg := "unknown transport failure"
	if e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" && e.URL != "" {
		return fmt.Sprintf("transport error during %s to %s: %s", e.Operation, e.URL, msg)
	} else if e.Operation != "" {
		return fmt.Sprintf("transport error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("transport error: %s", msg)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError represents an HTTP response that came back with an unexpected
// status code. The raw body is kept so callers can inspect Reddit's message.
type StatusError struct {
	// Operation is the name of the API operation that failed
	Operation string
	// URL is the URL that was requested
	URL string
	// StatusCode is the HTTP status code
	StatusCode int
	// Status is the status line text, e.g. "404 Not Found"
	Status string
	// Header holds the response headers
	Header http.Header
	// Body contains the raw response body
	Body []byte
}

func (e *StatusError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("status %d", e.StatusCode))
	if e.URL != "" {
		parts = append(parts, "url "+e.URL)
	}
	if len(e.Body) > 0 {
		parts = append(parts, fmt.Sprintf("body: %q", truncate(string(e.Body), 256)))
	}

	if e.Operation != "" {
		return fmt.Sprintf("unexpected response during %s: %s", e.Operation, strings.Join(parts, ", "))
	}
	return "unexpected response: " + strings.Join(parts, ", ")
}

// Temporary reports whether the status usually clears on its own (429 and
// 5xx). The client never acts on this; it is a hint for callers that retry.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// AuthError indicates the token endpoint answered with an error-shaped body.
// Reddit uses HTTP 200 for some rejected grants, so this is distinct from a
// StatusError.
type AuthError struct {
	// Code is the upstream error string, e.g. "invalid_grant".
	Code string
}

func (e *AuthError) Error() string {
	if e.Code == "" {
		return "auth error"
	}
	return "auth error: " + e.Code
}

// ParseError indicates a problem parsing the API response.
type ParseError struct {
	// Operation is the name of the API operation where parsing failed
	Operation string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ParseError) Error() string {
	// Use Message if available, otherwise use Err.Error()
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" {
		return fmt.Sprintf("parse error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("parse error: %s", msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
