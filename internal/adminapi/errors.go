package adminapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for errors.Is matching.
var (
	// ErrTransport is matched by every network, HTTP status or envelope failure.
	ErrTransport = errors.New("admin API request failed")

	// ErrEmptyResponse is matched when a successful response carries no data.
	ErrEmptyResponse = errors.New("admin API returned no data")

	// ErrIncompatibleServer is matched when the server version fails the
	// configured constraint.
	ErrIncompatibleServer = errors.New("admin API server version not supported")

	// ErrMissingBaseURL is returned by NewClient without a base URL.
	ErrMissingBaseURL = errors.New("admin API base URL is not configured")

	// ErrReasonRequired is returned when rejecting without a reason.
	ErrReasonRequired = errors.New("a rejection reason is required")
)

// TransportError reports a failed request. StatusCode is 0 when no response
// was received.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: HTTP %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
}

// Unwrap returns the underlying network error, if any.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTransport) succeed.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Kind names the failure class for telemetry.
func (e *TransportError) Kind() string {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return "auth"
	case e.StatusCode == http.StatusTooManyRequests:
		return "rate_limit"
	case e.StatusCode >= http.StatusInternalServerError:
		return "server"
	case e.StatusCode != 0:
		return "client"
	default:
		return "network"
	}
}

// Temporary reports whether retrying the request may succeed.
func (e *TransportError) Temporary() bool {
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

// EmptyResponseError reports a successful response without a payload.
type EmptyResponseError struct {
	Path string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("%s: response contained no data", e.Path)
}

// Is makes errors.Is(err, ErrEmptyResponse) succeed.
func (e *EmptyResponseError) Is(target error) bool {
	return target == ErrEmptyResponse
}

// Kind names the failure class for telemetry.
func (e *EmptyResponseError) Kind() string { return "empty_response" }

// VersionError reports a server whose version fails the constraint.
type VersionError struct {
	ServerVersion string
	Constraint    string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("server version %s does not satisfy %s", e.ServerVersion, e.Constraint)
}

// Is makes errors.Is(err, ErrIncompatibleServer) succeed.
func (e *VersionError) Is(target error) bool {
	return target == ErrIncompatibleServer
}

// Kind names the failure class for telemetry.
func (e *VersionError) Kind() string { return "version" }
