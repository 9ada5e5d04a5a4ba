package calendar

import (
	"fmt"
	"net/http"
	"strings"
)

// AuthError indicates that the identity provider rejected the client
// credentials or the token exchange could not be completed. The message is
// sanitized upstream detail; it never contains the client secret.
type AuthError struct {
	// Status is the HTTP status returned by the token endpoint,
	// zero when the exchange failed before a response was received.
	Status int

	// Message is the upstream error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("token exchange failed (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("token exchange failed: %s", e.Message)
}

// Unwrap implements the errors.Unwrap interface.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// AccessDeniedError indicates that a mailbox is not on the configured
// allowlist. It is raised before any network call and is never downgraded
// to an empty result set.
type AccessDeniedError struct {
	Mailbox string
	Allowed []string
}

// Error implements the error interface.
func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("mailbox access denied for %q (allowed: %s)",
		e.Mailbox, strings.Join(e.Allowed, ", "))
}

// UpstreamError indicates a non-2xx response from the calendar API.
type UpstreamError struct {
	// Op is the operation that failed (e.g. "calendarView").
	Op string

	// Status is the upstream HTTP status code.
	Status int

	// Body is a truncated copy of the upstream response body.
	Body string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.AccessProblem() {
		return fmt.Sprintf("calendar %s: upstream denied the request (status %d, likely consent or policy misconfiguration): %s",
			e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("calendar %s: upstream returned status %d: %s", e.Op, e.Status, e.Body)
}

// AccessProblem reports whether the failure looks like a consent or policy
// misconfiguration rather than a transient fault.
func (e *UpstreamError) AccessProblem() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}
