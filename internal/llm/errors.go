package llm

import (
	"errors"
	"fmt"
	"net/http"

	"llmrouter/pkg/types"
)

// TransportError means the backend could not be reached: connection refused,
// DNS failure or timeout.
type TransportError struct {
	Provider types.Provider
	Op       string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport: %v", e.Provider.Label(), e.Op, e.Err)
}

func (e *TransportError) Unwrap() error   { return e.Err }
func (e *TransportError) StatusCode() int { return http.StatusServiceUnavailable }

// UpstreamError is a non-2xx response from a backend. Body holds the
// (truncated) response text when the backend sent one.
type UpstreamError struct {
	Provider types.Provider
	Op       string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s failed: HTTP %d", e.Provider.Label(), e.Op, e.Status)
	}
	return fmt.Sprintf("%s %s failed: HTTP %d: %s", e.Provider.Label(), e.Op, e.Status, e.Body)
}

func (e *UpstreamError) StatusCode() int { return http.StatusBadGateway }

// ProtocolError means a response body did not match the expected shape.
type ProtocolError struct {
	Provider types.Provider
	Op       string
	Err      error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s %s: malformed response: %v", e.Provider.Label(), e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error   { return e.Err }
func (e *ProtocolError) StatusCode() int { return http.StatusBadGateway }

// NotFoundError means a model id is absent from a provider's listing.
type NotFoundError struct {
	Provider types.Provider
	ModelID  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("model %s not found on %s", e.ModelID, e.Provider.Label())
}

func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// InvalidRequestError is returned before any network I/O when a request
// carries values no backend accepts.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

func (e *InvalidRequestError) StatusCode() int { return http.StatusBadRequest }

// IsTransport reports whether err is or wraps a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsUpstream reports whether err is or wraps an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// IsProtocol reports whether err is or wraps a ProtocolError.
func IsProtocol(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsInvalidRequest reports whether err is or wraps an InvalidRequestError.
func IsInvalidRequest(err error) bool {
	var ie *InvalidRequestError
	return errors.As(err, &ie)
}
